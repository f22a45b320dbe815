package upload

import (
	"fmt"
	"strings"

	"lookbook/internal/ids"
	"lookbook/internal/models"
)

// TagGraph is the cross-reference graph of one upload. It is built once by
// BuildTags and never modified; accessors return copies.
type TagGraph struct {
	imageID    string
	artistID   string
	artistName string
	items      []string
	brands     []string
	itemBrands map[string][]string
	itemNames  map[string]string
	brandNames map[string]string
}

// BuildTags derives every identifier of an upload and the references between
// them. No remote call is made.
func BuildTags(regions []Region, artistName string, image []byte) (TagGraph, error) {
	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return TagGraph{}, &ValidationError{Field: "artist", Reason: "is required"}
	}
	if len(image) == 0 {
		return TagGraph{}, &ValidationError{Field: "image", Reason: "is required"}
	}

	g := TagGraph{
		imageID:    ids.ContentID(image),
		artistID:   ids.NameID(artistName),
		artistName: artistName,
		itemBrands: map[string][]string{},
		itemNames:  map[string]string{},
		brandNames: map[string]string{},
	}

	for i, region := range regions {
		name := strings.TrimSpace(region.Item.Name)
		if name == "" {
			return TagGraph{}, &ValidationError{Field: fmt.Sprintf("regions[%d].item.name", i), Reason: "is required"}
		}

		var brandIDs []string
		for _, brand := range region.Brands {
			brand = strings.TrimSpace(brand)
			if brand == "" {
				continue
			}
			id := ids.NameID(brand)
			if _, ok := g.brandNames[id]; !ok {
				g.brandNames[id] = brand
			}
			brandIDs = models.AppendUnique(brandIDs, id)
		}
		if len(brandIDs) == 0 {
			return TagGraph{}, &ValidationError{Field: fmt.Sprintf("regions[%d].brands", i), Reason: "at least one brand is required"}
		}

		itemID := ids.ItemID(name)
		if _, ok := g.itemNames[itemID]; !ok {
			g.itemNames[itemID] = name
		}
		g.items = models.AppendUnique(g.items, itemID)
		g.brands = models.AppendUnique(g.brands, brandIDs...)
		g.itemBrands[itemID] = models.AppendUnique(g.itemBrands[itemID], brandIDs...)
	}

	return g, nil
}

func (g TagGraph) ImageID() string    { return g.imageID }
func (g TagGraph) ArtistID() string   { return g.artistID }
func (g TagGraph) ArtistName() string { return g.artistName }

// Items returns the item ids in first-seen order.
func (g TagGraph) Items() []string { return append([]string(nil), g.items...) }

// Brands returns the brand ids in first-seen order.
func (g TagGraph) Brands() []string { return append([]string(nil), g.brands...) }

// BrandName returns the display name first given for brand id.
func (g TagGraph) BrandName(id string) string { return g.brandNames[id] }

// ItemName returns the display name first given for item id.
func (g TagGraph) ItemName(id string) string { return g.itemNames[id] }

// ImageTags is the tag set stored on the image record.
func (g TagGraph) ImageTags() models.TagSet {
	return models.TagSet{}.
		With(models.TagImages, g.imageID).
		With(models.TagItems, g.items...).
		With(models.TagBrands, g.brands...).
		With(models.TagArtists, g.artistID)
}

// ItemTags is the tag set stored on one item record.
func (g TagGraph) ItemTags(itemID string) models.TagSet {
	return models.TagSet{}.
		With(models.TagImages, g.imageID).
		With(models.TagBrands, g.itemBrands[itemID]...).
		With(models.TagArtists, g.artistID)
}

// BrandBackrefs is merged into every brand referenced by the upload.
func (g TagGraph) BrandBackrefs() models.TagSet {
	return g.ImageTags().Only(models.TagImages, models.TagArtists, models.TagItems)
}

// ArtistBackrefs is merged into the upload's artist.
func (g TagGraph) ArtistBackrefs() models.TagSet {
	return g.ImageTags().Only(models.TagImages, models.TagBrands, models.TagItems)
}
