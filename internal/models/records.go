package models

import "time"

// Position locates a tagged region as percentage offsets from the image's
// top-left corner.
type Position struct {
	Top  float64 `json:"top" yaml:"top"`
	Left float64 `json:"left" yaml:"left"`
}

// Price is an amount as entered by the curator plus its currency.
type Price struct {
	Amount   string   `json:"amount" yaml:"amount"`
	Currency Currency `json:"currency" yaml:"currency"`
}

// Item is a purchasable product shown on one or more images.
type Item struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Price        Price        `json:"price"`
	Category     ItemCategory `json:"category,omitempty"`
	AffiliateURL string       `json:"affiliate_url,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	Description  string       `json:"description,omitempty"`
	Hyped        int          `json:"hyped"`
	Tags         TagSet       `json:"tags"`
}

// TaggedItem links an image to one committed item.
type TaggedItem struct {
	ID       string   `json:"id"`
	Position Position `json:"pos"`
}

// Image is a curated photograph with its tagged regions.
type Image struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	FileName    string       `json:"file_name,omitempty"`
	Hyped       int          `json:"hyped"`
	TaggedItems []TaggedItem `json:"tagged_items"`
	Tags        TagSet       `json:"tags"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Brand is a label that sells tagged items.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tags TagSet `json:"tags"`
}

// Artist is the person pictured or credited on an image.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tags TagSet `json:"tags"`
}
