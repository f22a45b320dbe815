package store

import (
	"context"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"lookbook/internal/models"
)

// BoltStore keeps one bolt bucket per collection.
type BoltStore struct {
	db *bolt.DB
}

var _ KeyValueStore = (*BoltStore)(nil)

// OpenBolt creates and opens a bolt database file at path and makes sure
// every collection bucket exists.
func OpenBolt(path string) (*BoltStore, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path is required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file: %v", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, c := range []models.Collection{models.CollectionImages, models.CollectionItems, models.CollectionBrands, models.CollectionArtists} {
			if _, err := tx.CreateBucketIfNotExists([]byte(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(ctx context.Context, collection models.Collection, id string) ([]byte, error) {
	if err := validateKey(collection, id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		// Values are only valid for the life of the transaction.
		result = append([]byte(nil), v...)
		return nil
	})
	return result, err
}

func (s *BoltStore) Put(ctx context.Context, collection models.Collection, id string, body []byte) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		return b.Put([]byte(id), body)
	})
}

func (s *BoltStore) Merge(ctx context.Context, collection models.Collection, id string, patch Patch) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		body, err := ApplyPatch(b.Get([]byte(id)), patch)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), body)
	})
}

func (s *BoltStore) List(ctx context.Context, collection models.Collection) ([]Document, error) {
	if err := validateKey(collection, "-"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs := []Document{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			docs = append(docs, Document{
				Collection: collection,
				ID:         string(k),
				Body:       append([]byte(nil), v...),
			})
			return nil
		})
	})
	return docs, err
}

func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
