package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"lookbook/internal/models"
)

func openBackendsForTest(t *testing.T) map[string]KeyValueStore {
	t.Helper()
	dir := t.TempDir()

	sqliteStore, err := Open(filepath.Join(dir, "docs.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	badgerStore, err := OpenBadger(filepath.Join(dir, "badger"))
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	boltStore, err := OpenBolt(filepath.Join(dir, "docs.bolt"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}

	backends := map[string]KeyValueStore{
		BackendMemory: NewMemory(),
		BackendSQLite: sqliteStore,
		BackendBadger: badgerStore,
		BackendBolt:   boltStore,
	}
	t.Cleanup(func() {
		for name, kv := range backends {
			if err := kv.Close(); err != nil {
				t.Errorf("close %s: %v", name, err)
			}
		}
	})
	return backends
}

func TestBackendsGetPutList(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackendsForTest(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get(ctx, models.CollectionItems, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			item := models.Item{ID: "item-1", Name: "Classic Tee", Price: models.Price{Amount: "30", Currency: models.CurrencyUSD}}
			if err := PutJSON(ctx, kv, models.CollectionItems, item.ID, item); err != nil {
				t.Fatalf("put: %v", err)
			}
			item.Description = "overwritten"
			if err := PutJSON(ctx, kv, models.CollectionItems, item.ID, item); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			var got models.Item
			if err := GetJSON(ctx, kv, models.CollectionItems, item.ID, &got); err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Description != "overwritten" || got.Name != "Classic Tee" {
				t.Fatalf("unexpected item: %#v", got)
			}

			docs, err := kv.List(ctx, models.CollectionItems)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(docs) != 1 || docs[0].ID != item.ID {
				t.Fatalf("expected exactly one stored item, got %#v", docs)
			}

			others, err := kv.List(ctx, models.CollectionBrands)
			if err != nil {
				t.Fatalf("list brands: %v", err)
			}
			if len(others) != 0 {
				t.Fatalf("collections must not leak into each other, got %d brands", len(others))
			}
		})
	}
}

func TestBackendsRejectInvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackendsForTest(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Put(ctx, models.Collection("users"), "x", []byte("{}")); err == nil {
				t.Fatal("expected unknown collection to be rejected")
			}
			if err := kv.Put(ctx, models.CollectionBrands, "  ", []byte("{}")); err == nil {
				t.Fatal("expected blank id to be rejected")
			}
		})
	}
}

func TestBackendsMergeCreatesAndUnions(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackendsForTest(t) {
		t.Run(name, func(t *testing.T) {
			err := kv.Merge(ctx, models.CollectionArtists, "artist-1", Patch{
				Tags:        models.TagSet{models.TagImages: {"img-1"}, models.TagItems: {"item-1"}},
				SetIfAbsent: map[string]any{"id": "artist-1", "name": "Jane"},
			})
			if err != nil {
				t.Fatalf("first merge: %v", err)
			}
			err = kv.Merge(ctx, models.CollectionArtists, "artist-1", Patch{
				Tags:        models.TagSet{models.TagImages: {"img-2", "img-1"}, models.TagBrands: {"brand-1"}},
				SetIfAbsent: map[string]any{"name": "ignored"},
			})
			if err != nil {
				t.Fatalf("second merge: %v", err)
			}

			var artist models.Artist
			if err := GetJSON(ctx, kv, models.CollectionArtists, "artist-1", &artist); err != nil {
				t.Fatalf("get artist: %v", err)
			}
			if artist.Name != "Jane" || artist.ID != "artist-1" {
				t.Fatalf("set-if-absent fields wrong: %#v", artist)
			}
			want := models.TagSet{
				models.TagImages: {"img-1", "img-2"},
				models.TagItems:  {"item-1"},
				models.TagBrands: {"brand-1"},
			}
			if !artist.Tags.Covers(want) || !want.Covers(artist.Tags) {
				t.Fatalf("unexpected tags: %#v", artist.Tags)
			}
			if got := artist.Tags.Get(models.TagImages); len(got) != 2 || got[0] != "img-1" {
				t.Fatalf("expected append order preserved, got %v", got)
			}
		})
	}
}

func TestBackendsConcurrentMergesLoseNothing(t *testing.T) {
	ctx := context.Background()
	const writers = 16
	for name, kv := range openBackendsForTest(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					errs <- kv.Merge(ctx, models.CollectionBrands, "acme", Patch{
						Tags: models.TagSet{models.TagImages: {fmt.Sprintf("img-%02d", i)}},
					})
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				if err != nil {
					t.Fatalf("merge: %v", err)
				}
			}

			body, err := kv.Get(ctx, models.CollectionBrands, "acme")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			var brand models.Brand
			if err := json.Unmarshal(body, &brand); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := len(brand.Tags.Get(models.TagImages)); got != writers {
				t.Fatalf("expected %d image refs after concurrent merges, got %d", writers, got)
			}
		})
	}
}

func TestBackendsConcurrentMergesAcrossKeys(t *testing.T) {
	ctx := context.Background()
	brands := []string{"acme", "levi", "zara"}
	const rounds = 8
	for name, kv := range openBackendsForTest(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errs := make(chan error, rounds*len(brands))
			for i := 0; i < rounds; i++ {
				for _, brand := range brands {
					wg.Add(1)
					go func(i int, brand string) {
						defer wg.Done()
						errs <- kv.Merge(ctx, models.CollectionBrands, brand, Patch{
							Tags:        models.TagSet{models.TagItems: {fmt.Sprintf("item-%02d", i)}},
							SetIfAbsent: map[string]any{"name": brand},
						})
					}(i, brand)
				}
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				if err != nil {
					t.Fatalf("merge: %v", err)
				}
			}

			for _, id := range brands {
				var brand models.Brand
				if err := GetJSON(ctx, kv, models.CollectionBrands, id, &brand); err != nil {
					t.Fatalf("get %s: %v", id, err)
				}
				if brand.Name != id || len(brand.Tags.Get(models.TagItems)) != rounds {
					t.Fatalf("brand %s: name=%q items=%v", id, brand.Name, brand.Tags.Get(models.TagItems))
				}
			}
		})
	}
}

func TestOpenBackendUnknown(t *testing.T) {
	if _, err := OpenBackend("mongo", t.TempDir()); err == nil {
		t.Fatal("expected unknown backend error")
	}
	kv, err := OpenBackend(" Memory ", "")
	if err != nil {
		t.Fatalf("open memory backend: %v", err)
	}
	if _, ok := kv.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", kv)
	}
}
