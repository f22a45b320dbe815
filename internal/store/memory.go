package store

import (
	"context"
	"sort"
	"sync"

	"lookbook/internal/models"
)

// MemoryStore is an in-process KeyValueStore used for tests and throwaway runs.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[models.Collection]map[string][]byte
}

var _ KeyValueStore = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{docs: make(map[models.Collection]map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, collection models.Collection, id string) ([]byte, error) {
	if err := validateKey(collection, id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), body...), nil
}

func (s *MemoryStore) Put(ctx context.Context, collection models.Collection, id string, body []byte) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bucket(collection)[id] = append([]byte(nil), body...)
	return nil
}

func (s *MemoryStore) Merge(ctx context.Context, collection models.Collection, id string, patch Patch) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(collection)
	body, err := ApplyPatch(bucket[id], patch)
	if err != nil {
		return err
	}
	bucket[id] = body
	return nil
}

// List returns documents ordered by id.
func (s *MemoryStore) List(ctx context.Context, collection models.Collection) ([]Document, error) {
	if err := validateKey(collection, "-"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.docs[collection]))
	for id, body := range s.docs[collection] {
		docs = append(docs, Document{Collection: collection, ID: id, Body: append([]byte(nil), body...)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) bucket(collection models.Collection) map[string][]byte {
	b, ok := s.docs[collection]
	if !ok {
		b = make(map[string][]byte)
		s.docs[collection] = b
	}
	return b
}
