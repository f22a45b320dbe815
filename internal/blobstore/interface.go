package blobstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when no object exists at a path.
var ErrNotFound = errors.New("object not found")

// ErrInvalidPath is returned for object paths that are empty, absolute or escape the root.
var ErrInvalidPath = errors.New("invalid object path")

// Metadata is the custom key/value metadata attached to one object.
type Metadata map[string]string

// BlobRef identifies one persisted object.
type BlobRef struct {
	Path      string
	SHA256    string
	SizeBytes int64
}

// ObjectInfo describes a stored object without its bytes.
type ObjectInfo struct {
	Path        string    `json:"path"`
	SizeBytes   int64     `json:"size_bytes"`
	SHA256      string    `json:"sha256"`
	ContentType string    `json:"content_type"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ObjectStore is the path-addressed byte store used by the upload workflow.
// Uploading to an existing path overwrites it.
type ObjectStore interface {
	Upload(ctx context.Context, path string, r io.Reader, meta Metadata) (BlobRef, error)
	ResolveURL(ctx context.Context, ref BlobRef) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Stat(ctx context.Context, path string) (ObjectInfo, error)
	// List returns objects whose path starts with prefix, ordered by path.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
