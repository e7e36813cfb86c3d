package api

import (
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrorInfo is the machine-readable detail attached to every error the
// services return.
type ErrorInfo struct {
	Kind    string
	Message string
	Fields  map[string]any
}

// NewErrorDetail encodes info as a google.protobuf.Struct detail.
func NewErrorDetail(info ErrorInfo) (*connect.ErrorDetail, error) {
	fields := map[string]any{
		"kind":    info.Kind,
		"message": info.Message,
	}
	for k, v := range info.Fields {
		fields[k] = v
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return connect.NewErrorDetail(st)
}

// ErrorInfoOf extracts the first ErrorInfo detail from err.
func ErrorInfoOf(err error) (ErrorInfo, bool) {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return ErrorInfo{}, false
	}
	for _, detail := range connectErr.Details() {
		msg, err := detail.Value()
		if err != nil {
			continue
		}
		st, ok := msg.(*structpb.Struct)
		if !ok {
			continue
		}
		m := st.AsMap()
		info := ErrorInfo{Fields: map[string]any{}}
		for k, v := range m {
			switch k {
			case "kind":
				info.Kind, _ = v.(string)
			case "message":
				info.Message, _ = v.(string)
			default:
				info.Fields[k] = v
			}
		}
		return info, true
	}
	return ErrorInfo{}, false
}
