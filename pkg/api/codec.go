package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is registered with connect for application/json payloads.
const CodecName = "json"

// JSONCodec marshals plain Go structs with encoding/json. It replaces
// connect's protobuf JSON codec on both handlers and clients.
type JSONCodec struct{}

func (JSONCodec) Name() string { return CodecName }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	return nil
}
