package catalog

import (
	"context"
	"errors"
	"fmt"

	"lookbook/internal/blobstore"
	"lookbook/internal/models"
	"lookbook/internal/store"
)

// HoverItem is one tagged region resolved to its item record.
type HoverItem struct {
	Position models.Position `json:"pos"`
	Item     models.Item     `json:"item"`
}

// ArtistImage is another photograph of the same artist.
type ArtistImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ImageDetail is everything the image page shows.
type ImageDetail struct {
	Image        models.Image  `json:"image"`
	ImageURL     string        `json:"image_url,omitempty"`
	Items        []HoverItem   `json:"items"`
	Brands       []string      `json:"brands"`
	Artists      []string      `json:"artists"`
	ArtistImages []ArtistImage `json:"artist_images"`
}

// GetImageDetail resolves an image's tagged items, brand and artist names,
// and the artist's other photographs. References to missing records are
// skipped so one dangling id does not hide the whole page.
func (c *Catalog) GetImageDetail(ctx context.Context, imageID string) (ImageDetail, error) {
	img, err := c.GetImage(ctx, imageID)
	if err != nil {
		return ImageDetail{}, err
	}
	if img.ID == "" {
		img.ID = imageID
	}

	detail := ImageDetail{
		Image:        img,
		Items:        []HoverItem{},
		Brands:       []string{},
		Artists:      []string{},
		ArtistImages: []ArtistImage{},
	}

	for _, tagged := range img.TaggedItems {
		item, err := c.GetItem(ctx, tagged.ID)
		if errors.Is(err, store.ErrNotFound) {
			c.logger.Debug("tagged item missing", "image_id", img.ID, "item_id", tagged.ID)
			continue
		}
		if err != nil {
			return ImageDetail{}, fmt.Errorf("load item %s: %w", tagged.ID, err)
		}
		detail.Items = append(detail.Items, HoverItem{Position: tagged.Position, Item: item})
	}

	for _, id := range img.Tags.Get(models.TagBrands) {
		brand, err := c.GetBrand(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.logger.Debug("tagged brand missing", "image_id", img.ID, "brand_id", id)
			continue
		}
		if err != nil {
			return ImageDetail{}, fmt.Errorf("load brand %s: %w", id, err)
		}
		detail.Brands = models.AppendUnique(detail.Brands, brand.Name)
	}

	urls, err := c.imageURLs(ctx)
	if err != nil {
		return ImageDetail{}, err
	}
	detail.ImageURL = urls[img.ID]

	seen := map[string]struct{}{img.ID: {}}
	for _, id := range img.Tags.Get(models.TagArtists) {
		artist, err := c.GetArtist(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.logger.Debug("tagged artist missing", "image_id", img.ID, "artist_id", id)
			continue
		}
		if err != nil {
			return ImageDetail{}, fmt.Errorf("load artist %s: %w", id, err)
		}
		detail.Artists = append(detail.Artists, artist.Name)

		for _, other := range artist.Tags.Get(models.TagImages) {
			if _, dup := seen[other]; dup {
				continue
			}
			url, ok := urls[other]
			if !ok {
				continue
			}
			seen[other] = struct{}{}
			detail.ArtistImages = append(detail.ArtistImages, ArtistImage{ID: other, URL: url})
		}
	}

	return detail, nil
}

// ImageURL returns the public URL of the stored photograph with image id.
func (c *Catalog) ImageURL(ctx context.Context, imageID string) (string, error) {
	urls, err := c.imageURLs(ctx)
	if err != nil {
		return "", err
	}
	url, ok := urls[imageID]
	if !ok {
		return "", store.ErrNotFound
	}
	return url, nil
}

// imageURLs maps image ids to URLs using the id metadata on each image blob.
func (c *Catalog) imageURLs(ctx context.Context) (map[string]string, error) {
	objects, err := c.blobs.List(ctx, imagesPrefix)
	if err != nil {
		return nil, fmt.Errorf("list image blobs: %w", err)
	}
	urls := make(map[string]string, len(objects))
	for _, obj := range objects {
		id := obj.Metadata["id"]
		if id == "" {
			continue
		}
		url, err := c.blobs.ResolveURL(ctx, blobstore.BlobRef{Path: obj.Path})
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", obj.Path, err)
		}
		urls[id] = url
	}
	return urls, nil
}
