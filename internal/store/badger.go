package store

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"lookbook/internal/models"
)

const (
	badgerMergeAttempts = 10
	badgerMergeStripes  = 64
)

// BadgerStore keeps documents in a badger database under doc/<collection>/<id> keys.
// Merges on the same key are serialized in-process; badger's optimistic
// transactions would otherwise abort all but one concurrent writer.
type BadgerStore struct {
	db          *badger.DB
	mergeStripe [badgerMergeStripes]sync.Mutex
}

var _ KeyValueStore = (*BadgerStore)(nil)

// OpenBadger opens (or creates) a badger database directory at path.
func OpenBadger(path string) (*BadgerStore, error) {
	if path == "" {
		return nil, fmt.Errorf("badger path is required")
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(ctx context.Context, collection models.Collection, id string) ([]byte, error) {
	if err := validateKey(collection, id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(collection, id))
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return result, err
}

func (s *BadgerStore) Put(ctx context.Context, collection models.Collection, id string, body []byte) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(collection, id), body)
	})
}

// Merge holds the key's stripe lock for the whole read-modify-write. The
// conflict retry only covers races with Put.
func (s *BadgerStore) Merge(ctx context.Context, collection models.Collection, id string, patch Patch) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}

	key := docKey(collection, id)
	mu := s.stripeFor(key)
	mu.Lock()
	defer mu.Unlock()

	var err error
	for attempt := 0; attempt < badgerMergeAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			var existing []byte
			item, getErr := txn.Get(key)
			switch {
			case getErr == nil:
				existing, getErr = item.ValueCopy(nil)
				if getErr != nil {
					return getErr
				}
			case !errors.Is(getErr, badger.ErrKeyNotFound):
				return getErr
			}

			body, patchErr := ApplyPatch(existing, patch)
			if patchErr != nil {
				return patchErr
			}
			return txn.Set(key, body)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("merge %s/%s: %w", collection, id, err)
}

func (s *BadgerStore) stripeFor(key []byte) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write(key)
	return &s.mergeStripe[h.Sum32()%badgerMergeStripes]
}

func (s *BadgerStore) List(ctx context.Context, collection models.Collection) ([]Document, error) {
	if err := validateKey(collection, "-"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := collectionPrefix(collection)
	docs := []Document{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			body, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			id := string(item.Key()[len(prefix):])
			docs = append(docs, Document{Collection: collection, ID: id, Body: body})
		}
		return nil
	})
	return docs, err
}

func (s *BadgerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func collectionPrefix(collection models.Collection) []byte {
	return []byte("doc/" + string(collection) + "/")
}

func docKey(collection models.Collection, id string) []byte {
	return append(collectionPrefix(collection), id...)
}
