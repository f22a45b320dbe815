package upload

import (
	"context"
	"io"

	"lookbook/internal/blobstore"
	"lookbook/internal/imaging"
	"lookbook/internal/models"
	"lookbook/internal/store"
)

// DocumentWriter is the slice of store.KeyValueStore the workflow writes through.
type DocumentWriter interface {
	Put(ctx context.Context, collection models.Collection, id string, body []byte) error
	Merge(ctx context.Context, collection models.Collection, id string, patch store.Patch) error
}

// BlobWriter is the slice of blobstore.ObjectStore the workflow writes through.
type BlobWriter interface {
	Upload(ctx context.Context, path string, r io.Reader, meta blobstore.Metadata) (blobstore.BlobRef, error)
	ResolveURL(ctx context.Context, ref blobstore.BlobRef) (string, error)
}

// ImageProcessor compresses image payloads before upload.
type ImageProcessor = imaging.Processor

var (
	_ DocumentWriter = (store.KeyValueStore)(nil)
	_ BlobWriter     = (blobstore.ObjectStore)(nil)
)
