// Package receipts stores payment proof images on the local filesystem.
package receipts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// URLPrefix is prepended to stored file names to form receipt references.
const URLPrefix = "/receipts/"

// DefaultMaxBytes caps a single upload.
const DefaultMaxBytes int64 = 3 << 20

var (
	ErrTooLarge        = errors.New("receipt exceeds the size limit")
	ErrUnsupportedType = errors.New("receipt must be a JPEG, PNG or WebP image")
	ErrEmpty           = errors.New("receipt is empty")
	ErrNotFound        = errors.New("receipt not found")
)

// allowed maps accepted MIME types to the extension used on disk.
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ownerSuffix names the sidecar file holding the uploader's user ID.
const ownerSuffix = ".owner"

// namePattern matches the file names Save produces.
var namePattern = regexp.MustCompile(`^[0-9a-f-]{36}\.(jpg|png|webp)$`)

// LocalStore writes receipts into a directory.
type LocalStore struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
}

// NewLocalStore creates dir if needed. maxBytes <= 0 uses DefaultMaxBytes.
func NewLocalStore(dir string, maxBytes int64, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes, logger: logger}, nil
}

// MaxBytes is the upload limit.
func (s *LocalStore) MaxBytes() int64 {
	return s.maxBytes
}

// Save sniffs and stores r, returning the receipt reference
// (URLPrefix + file name). Content type is decided from the bytes, never from
// the client's claims.
func (s *LocalStore) Save(ctx context.Context, ownerID string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read receipt: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowed[mtype.String()]
	if !ok {
		s.logger.Warn("Rejected receipt upload", "user_id", ownerID, "detected", mtype.String())
		return "", fmt.Errorf("%w (got %s)", ErrUnsupportedType, mtype.String())
	}

	name := uuid.New().String() + ext
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create receipt file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}
	// The owner is written first so a visible receipt always has one.
	if err := os.WriteFile(filepath.Join(s.dir, name+ownerSuffix), []byte(ownerID), 0o644); err != nil {
		return "", fmt.Errorf("failed to record receipt owner: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(filepath.Join(s.dir, name+ownerSuffix))
		return "", fmt.Errorf("failed to store receipt: %w", err)
	}

	s.logger.Info("Receipt stored", "user_id", ownerID, "file", name, "type", mtype.String(), "bytes", len(data))
	return URLPrefix + name, nil
}

// Open returns a stored receipt and its MIME type. Names not produced by Save
// are ErrNotFound.
func (s *LocalStore) Open(name string) (*os.File, string, error) {
	if !namePattern.MatchString(name) {
		return nil, "", ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	for mtype, ext := range allowed {
		if filepath.Ext(name) == ext {
			return f, mtype, nil
		}
	}
	return f, "application/octet-stream", nil
}

// Owner returns the ID of the user who uploaded name. Receipts stored without
// an owner record report "".
func (s *LocalStore) Owner(name string) (string, error) {
	if !namePattern.MatchString(name) {
		return "", ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+ownerSuffix))
	if errors.Is(err, os.ErrNotExist) {
		if _, statErr := os.Stat(filepath.Join(s.dir, name)); statErr != nil {
			return "", ErrNotFound
		}
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
