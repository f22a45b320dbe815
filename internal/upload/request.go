package upload

import "lookbook/internal/models"

// ItemInput is the curator-entered description of one tagged item.
type ItemInput struct {
	Name         string
	Price        models.Price
	Category     models.ItemCategory
	AffiliateURL string
	Description  string
}

// Region is one tagged area of the uploaded image.
type Region struct {
	Position models.Position
	Item     ItemInput
	Brands   []string
	// Image is the item's own picture; MediaType is its declared encoding.
	Image     []byte
	MediaType string
}

// Request is the full input of one upload.
type Request struct {
	Image       []byte
	FileName    string
	Title       string
	Artist      string
	Description string
	Regions     []Region
}
