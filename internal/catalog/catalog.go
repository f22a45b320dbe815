package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"lookbook/internal/blobstore"
	"lookbook/internal/ids"
	"lookbook/internal/models"
	"lookbook/internal/store"
)

// ErrNameRequired is returned when a brand is created without a name.
var ErrNameRequired = errors.New("name is required")

// imagesPrefix is where uploaded photographs are stored.
const imagesPrefix = "images/"

// Catalog answers read queries over the committed graph and manages brands.
type Catalog struct {
	docs   store.KeyValueStore
	blobs  blobstore.ObjectStore
	logger *slog.Logger
}

func New(docs store.KeyValueStore, blobs blobstore.ObjectStore, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{docs: docs, blobs: blobs, logger: logger.With("component", "catalog")}
}

// CreateBrand registers a brand by display name. Creating an existing brand
// keeps its stored name and tags; created reports whether it was new.
func (c *Catalog) CreateBrand(ctx context.Context, name string) (models.Brand, bool, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return models.Brand{}, false, ErrNameRequired
	}
	id := ids.NameID(name)

	_, err := c.docs.Get(ctx, models.CollectionBrands, id)
	created := errors.Is(err, store.ErrNotFound)
	if err != nil && !created {
		return models.Brand{}, false, fmt.Errorf("load brand: %w", err)
	}

	patch := store.Patch{SetIfAbsent: map[string]any{"id": id, "name": name}}
	if err := c.docs.Merge(ctx, models.CollectionBrands, id, patch); err != nil {
		return models.Brand{}, false, fmt.Errorf("create brand: %w", err)
	}
	brand, err := c.GetBrand(ctx, id)
	if err != nil {
		return models.Brand{}, false, err
	}
	if created {
		c.logger.Info("brand created", "brand_id", id, "name", name)
	}
	return brand, created, nil
}

// ListBrands returns every brand ordered by name, case-insensitively.
func (c *Catalog) ListBrands(ctx context.Context) ([]models.Brand, error) {
	docs, err := c.docs.List(ctx, models.CollectionBrands)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	brands := make([]models.Brand, 0, len(docs))
	for _, doc := range docs {
		brand, err := decode[models.Brand](doc.Body)
		if err != nil {
			return nil, fmt.Errorf("decode brand %s: %w", doc.ID, err)
		}
		if brand.ID == "" {
			brand.ID = doc.ID
		}
		brands = append(brands, brand)
	}
	sort.SliceStable(brands, func(i, j int) bool {
		return strings.ToLower(brands[i].Name) < strings.ToLower(brands[j].Name)
	})
	return brands, nil
}

// GetBrand loads a brand by id, or by display name when ref is not an id.
func (c *Catalog) GetBrand(ctx context.Context, ref string) (models.Brand, error) {
	id := resolveRef(ref)
	brand, err := load[models.Brand](ctx, c.docs, models.CollectionBrands, id)
	if err != nil {
		return models.Brand{}, err
	}
	if brand.ID == "" {
		brand.ID = id
	}
	return brand, nil
}

// GetArtist loads an artist by id, or by display name when ref is not an id.
func (c *Catalog) GetArtist(ctx context.Context, ref string) (models.Artist, error) {
	id := resolveRef(ref)
	artist, err := load[models.Artist](ctx, c.docs, models.CollectionArtists, id)
	if err != nil {
		return models.Artist{}, err
	}
	if artist.ID == "" {
		artist.ID = id
	}
	return artist, nil
}

// GetItem loads an item by id, or by display name when ref is not an id.
func (c *Catalog) GetItem(ctx context.Context, ref string) (models.Item, error) {
	id := resolveRef(ref)
	item, err := load[models.Item](ctx, c.docs, models.CollectionItems, id)
	if err != nil {
		return models.Item{}, err
	}
	if item.ID == "" {
		item.ID = id
	}
	return item, nil
}

// GetImage loads one image record.
func (c *Catalog) GetImage(ctx context.Context, id string) (models.Image, error) {
	return load[models.Image](ctx, c.docs, models.CollectionImages, strings.TrimSpace(id))
}

// resolveRef maps a display name to its name id; generated ids pass through.
func resolveRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if ids.Valid(ref) {
		return ref
	}
	return ids.NameID(ref)
}

// Counts returns the number of stored documents per collection.
func (c *Catalog) Counts(ctx context.Context) (map[models.Collection]int, error) {
	out := make(map[models.Collection]int, 4)
	for _, collection := range []models.Collection{
		models.CollectionImages,
		models.CollectionItems,
		models.CollectionBrands,
		models.CollectionArtists,
	} {
		docs, err := c.docs.List(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", collection, err)
		}
		out[collection] = len(docs)
	}
	return out, nil
}
