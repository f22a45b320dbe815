package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"lookbook/internal/blobstore"
	"lookbook/internal/ids"
	"lookbook/internal/models"
)

// ItemCommitter persists the picture and record of every tagged item.
type ItemCommitter struct {
	docs    DocumentWriter
	blobs   BlobWriter
	images  ImageProcessor
	allowed mediaTypeSet
	policy  Policy
	logger  *slog.Logger
}

func NewItemCommitter(docs DocumentWriter, blobs BlobWriter, images ImageProcessor, policy Policy, logger *slog.Logger) *ItemCommitter {
	if logger == nil {
		logger = slog.Default()
	}
	policy = policy.withDefaults()
	return &ItemCommitter{
		docs:    docs,
		blobs:   blobs,
		images:  images,
		allowed: newMediaTypeSet(policy.AllowedItemMediaTypes),
		policy:  policy,
		logger:  logger.With("component", "item_committer"),
	}
}

// itemPathIDLen is how much of the item id suffixes its picture path.
const itemPathIDLen = 12

// ItemBlobPath is the object path of an item picture. The id suffix keeps
// names that sanitize alike ("T/Shirt", "T_Shirt") on separate objects.
func ItemBlobPath(name string) string {
	return path.Join("items", blobSegment(name)+"-"+ids.ItemID(name)[:itemPathIDLen])
}

// Commit writes regions strictly in input order and returns one TaggedItem
// per region. It stops at the first failure; earlier items stay written.
func (c *ItemCommitter) Commit(ctx context.Context, graph TagGraph, regions []Region) ([]models.TaggedItem, error) {
	tagged := make([]models.TaggedItem, 0, len(regions))
	for i, region := range regions {
		mediaType := regionMediaType(region)
		if !c.allowed.allows(mediaType) {
			return tagged, &FormatError{Region: i, MediaType: mediaType}
		}

		name := strings.TrimSpace(region.Item.Name)
		itemID := ids.ItemID(name)

		compressed, err := c.images.Compress(ctx, region.Image, c.policy.Quality, c.policy.MaxDimension)
		if err != nil {
			return tagged, &RemoteWriteError{Step: StepCompress, Region: i, Err: err}
		}

		ref, err := c.blobs.Upload(ctx, ItemBlobPath(name), bytes.NewReader(compressed.Data), blobstore.Metadata{"id": itemID})
		if err != nil {
			return tagged, &RemoteWriteError{Step: StepUploadBlob, Region: i, Err: err}
		}
		url, err := c.blobs.ResolveURL(ctx, ref)
		if err != nil {
			return tagged, &RemoteWriteError{Step: StepResolveURL, Region: i, Err: err}
		}

		record := models.Item{
			ID:           itemID,
			Name:         name,
			Price:        region.Item.Price,
			Category:     region.Item.Category,
			AffiliateURL: strings.TrimSpace(region.Item.AffiliateURL),
			ImageURL:     url,
			Description:  region.Item.Description,
			Tags:         graph.ItemTags(itemID),
		}
		body, err := json.Marshal(record)
		if err != nil {
			return tagged, &RemoteWriteError{Step: StepPutItem, Region: i, Err: fmt.Errorf("encode item: %w", err)}
		}
		if err := c.docs.Put(ctx, models.CollectionItems, itemID, body); err != nil {
			return tagged, &RemoteWriteError{Step: StepPutItem, Region: i, Err: err}
		}

		c.logger.Debug("item committed", "region", i, "item_id", itemID, "blob", ref.Path)
		tagged = append(tagged, models.TaggedItem{ID: itemID, Position: region.Position})
	}
	return tagged, nil
}
