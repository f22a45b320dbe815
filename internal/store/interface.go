package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lookbook/internal/models"
)

// ErrNotFound is returned by Get when no document exists for the key.
var ErrNotFound = errors.New("document not found")

// Document is one raw stored record.
type Document struct {
	Collection models.Collection
	ID         string
	Body       []byte
}

// Patch describes a field-level union merge applied by Merge.
// Tags are union-appended into the stored "tags" object. SetIfAbsent fields
// are written only when the stored document lacks them.
type Patch struct {
	Tags        models.TagSet
	SetIfAbsent map[string]any
}

// KeyValueStore abstracts the document store backends.
type KeyValueStore interface {
	Get(ctx context.Context, collection models.Collection, id string) ([]byte, error)
	Put(ctx context.Context, collection models.Collection, id string, body []byte) error
	// Merge applies patch as one read-modify-write, creating the document when absent.
	Merge(ctx context.Context, collection models.Collection, id string, patch Patch) error
	List(ctx context.Context, collection models.Collection) ([]Document, error)
	Close() error
}

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// OpenBackend opens the named backend rooted at path.
func OpenBackend(backend, path string) (KeyValueStore, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		return Open(path)
	case BackendBadger:
		return OpenBadger(path)
	case BackendBolt:
		return OpenBolt(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// GetJSON loads one document and decodes it into dst.
func GetJSON(ctx context.Context, kv KeyValueStore, collection models.Collection, id string, dst any) error {
	body, err := kv.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

// PutJSON encodes doc and stores it, replacing any previous version.
func PutJSON(ctx context.Context, kv KeyValueStore, collection models.Collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return kv.Put(ctx, collection, id, body)
}

func validateKey(collection models.Collection, id string) error {
	if !models.IsValidCollection(collection) {
		return fmt.Errorf("invalid collection: %q", collection)
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("document id is required")
	}
	return nil
}
