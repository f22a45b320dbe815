package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"lookbook/internal/blobstore"
	"lookbook/internal/imaging"
	"lookbook/internal/models"
	"lookbook/internal/store"
)

var errInjected = errors.New("injected failure")

func docKey(collection models.Collection, id string) string {
	return string(collection) + "/" + id
}

// recordingDocs counts writes and fails the keys listed in failPut/failMerge.
// blockMerge, when set, runs before every merge.
type recordingDocs struct {
	*store.MemoryStore

	mu         sync.Mutex
	puts       int
	merges     int
	failPut    map[string]error
	failMerge  map[string]error
	blockMerge func(ctx context.Context) error
}

func newRecordingDocs() *recordingDocs {
	return &recordingDocs{MemoryStore: store.NewMemory(), failPut: map[string]error{}, failMerge: map[string]error{}}
}

func (d *recordingDocs) Put(ctx context.Context, collection models.Collection, id string, body []byte) error {
	d.mu.Lock()
	d.puts++
	err := d.failPut[docKey(collection, id)]
	d.mu.Unlock()
	if err != nil {
		return err
	}
	return d.MemoryStore.Put(ctx, collection, id, body)
}

func (d *recordingDocs) Merge(ctx context.Context, collection models.Collection, id string, patch store.Patch) error {
	d.mu.Lock()
	d.merges++
	err := d.failMerge[docKey(collection, id)]
	d.mu.Unlock()
	if err != nil {
		return err
	}
	if d.blockMerge != nil {
		if err := d.blockMerge(ctx); err != nil {
			return err
		}
	}
	return d.MemoryStore.Merge(ctx, collection, id, patch)
}

func (d *recordingDocs) writes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.puts + d.merges
}

// memoryBlobs is an in-memory BlobWriter. block, when set, runs before every upload.
type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]blobstore.Metadata
	uploads []string
	fail    map[string]error
	block   func(ctx context.Context) error
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{objects: map[string][]byte{}, meta: map[string]blobstore.Metadata{}, fail: map[string]error{}}
}

func (b *memoryBlobs) Upload(ctx context.Context, path string, r io.Reader, meta blobstore.Metadata) (blobstore.BlobRef, error) {
	if b.block != nil {
		if err := b.block(ctx); err != nil {
			return blobstore.BlobRef{}, err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return blobstore.BlobRef{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, path)
	if err := b.fail[path]; err != nil {
		return blobstore.BlobRef{}, err
	}
	b.objects[path] = data
	b.meta[path] = meta
	return blobstore.BlobRef{Path: path, SizeBytes: int64(len(data))}, nil
}

func (b *memoryBlobs) ResolveURL(_ context.Context, ref blobstore.BlobRef) (string, error) {
	return "mem://" + ref.Path, nil
}

func (b *memoryBlobs) uploadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.uploads)
}

// identityProcessor returns its input unchanged.
type identityProcessor struct {
	err error
}

func (p identityProcessor) Compress(_ context.Context, data []byte, _ float64, _ int) (imaging.Compressed, error) {
	if p.err != nil {
		return imaging.Compressed{}, p.err
	}
	return imaging.Compressed{Data: bytes.Clone(data), ContentType: "image/jpeg", Passthrough: true}, nil
}

func region(item string, top, left float64, brands ...string) Region {
	return Region{
		Position:  models.Position{Top: top, Left: left},
		Item:      ItemInput{Name: item, Price: models.Price{Amount: "30", Currency: models.CurrencyUSD}, Category: models.CategoryClothing},
		Brands:    brands,
		Image:     []byte("item-picture-" + item),
		MediaType: "image/png",
	}
}

func validRequest(regions ...Region) Request {
	if len(regions) == 0 {
		regions = []Region{region("Classic Tee", 10, 20, "Acme")}
	}
	return Request{
		Image:       []byte("image-bytes-B"),
		FileName:    "Summer Look.jpg",
		Title:       "Summer look",
		Artist:      "Jane",
		Description: "linen and cotton",
		Regions:     regions,
	}
}
