// Package storage is the blob-store collaborator: store bytes, get back an
// opaque reference. The core never touches paths or URLs beyond that.
package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type BlobStore interface {
	// Store persists data and returns an opaque reference. suggestedName is
	// advisory only; implementations must namespace it to avoid collisions.
	Store(data []byte, suggestedName string) (string, error)
}

// DiskStore writes blobs under a single directory, each prefixed with a
// generated unique id so uploaded filenames can never collide.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Store(data []byte, suggestedName string) (string, error) {
	name := uuid.New().String()
	if safe := sanitizeFilename(suggestedName); safe != "" {
		name = name + "_" + safe
	}
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return name, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// DecodeSignatureDataURL decodes the canvas signature payload the fill and
// review forms submit ("data:image/png;base64,....").
func DecodeSignatureDataURL(dataURL string) ([]byte, error) {
	_, encoded, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, fmt.Errorf("malformed signature data URL")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	return data, nil
}
