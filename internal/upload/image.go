package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"lookbook/internal/blobstore"
	"lookbook/internal/models"
)

// ImageCommitter persists the uploaded photograph and its record.
type ImageCommitter struct {
	docs   DocumentWriter
	blobs  BlobWriter
	images ImageProcessor
	policy Policy
	now    func() time.Time
	logger *slog.Logger
}

func NewImageCommitter(docs DocumentWriter, blobs BlobWriter, images ImageProcessor, policy Policy, now func() time.Time, logger *slog.Logger) *ImageCommitter {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageCommitter{
		docs:   docs,
		blobs:  blobs,
		images: images,
		policy: policy.withDefaults(),
		now:    now,
		logger: logger.With("component", "image_committer"),
	}
}

// ImageBlobPath is the object path of an uploaded photograph.
func ImageBlobPath(fileName string) string {
	return path.Join("images", blobSegment(fileName))
}

// Commit stores the image blob tagged with the image id and then the image record.
func (c *ImageCommitter) Commit(ctx context.Context, graph TagGraph, req Request, tagged []models.TaggedItem) (models.Image, error) {
	compressed, err := c.images.Compress(ctx, req.Image, c.policy.Quality, c.policy.MaxDimension)
	if err != nil {
		return models.Image{}, &RemoteWriteError{Step: StepCompress, Region: -1, Err: err}
	}

	meta := blobstore.Metadata{"id": graph.ImageID()}
	ref, err := c.blobs.Upload(ctx, ImageBlobPath(req.FileName), bytes.NewReader(compressed.Data), meta)
	if err != nil {
		return models.Image{}, &RemoteWriteError{Step: StepUploadBlob, Region: -1, Err: err}
	}

	record := models.Image{
		ID:          graph.ImageID(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		FileName:    strings.TrimSpace(req.FileName),
		TaggedItems: append([]models.TaggedItem{}, tagged...),
		Tags:        graph.ImageTags(),
		UpdatedAt:   c.now().UTC(),
	}
	body, err := json.Marshal(record)
	if err != nil {
		return models.Image{}, &RemoteWriteError{Step: StepPutImage, Region: -1, Err: fmt.Errorf("encode image: %w", err)}
	}
	if err := c.docs.Put(ctx, models.CollectionImages, record.ID, body); err != nil {
		return models.Image{}, &RemoteWriteError{Step: StepPutImage, Region: -1, Err: err}
	}

	c.logger.Debug("image committed", "image_id", record.ID, "blob", ref.Path, "tagged_items", len(tagged))
	return record, nil
}
