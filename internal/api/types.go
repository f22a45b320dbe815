package api

import "lookbook/internal/models"

// ErrorResponse is a generic JSON error wrapper. Upload is set when an
// upload failed after it started writing, so callers can see what was kept.
type ErrorResponse struct {
	Error     string          `json:"error"`
	Code      string          `json:"code,omitempty"`
	ErrorCode int             `json:"error_code,omitempty"`
	Upload    *UploadResponse `json:"upload,omitempty"`
}

// InfoResponse is the response from GET /v1/info.
type InfoResponse struct {
	StoreBackend          string         `json:"store_backend"`
	Counts                map[string]int `json:"counts"`
	AllowedItemMediaTypes []string       `json:"allowed_item_media_types"`
	DescriptionMaxBytes   int            `json:"description_max_bytes"`
	CuratorAuth           bool           `json:"curator_auth"`
}

// UploadItem is the item half of one tagged region.
type UploadItem struct {
	Name         string       `json:"name" yaml:"name"`
	Price        models.Price `json:"price" yaml:"price"`
	Category     string       `json:"category,omitempty" yaml:"category"`
	AffiliateURL string       `json:"affiliate_url,omitempty" yaml:"affiliate_url"`
	Description  string       `json:"description,omitempty" yaml:"description"`
}

// UploadRegion is one entry of the multipart "regions" field. File names
// the multipart part that carries the item's own image.
type UploadRegion struct {
	Position  models.Position `json:"pos"`
	Item      UploadItem      `json:"item"`
	Brands    []string        `json:"brands"`
	File      string          `json:"file"`
	MediaType string          `json:"media_type,omitempty"`
}

// UploadFile is one file carried by an upload request.
type UploadFile struct {
	Name      string
	MediaType string
	Data      []byte
}

// UploadRegionInput pairs a region with its item image for Client.Upload.
type UploadRegionInput struct {
	Position models.Position
	Item     UploadItem
	Brands   []string
	Image    UploadFile
}

// UploadRequest is the client-side form of POST /v1/uploads.
type UploadRequest struct {
	Image       UploadFile
	FileName    string
	Title       string
	Artist      string
	Description string
	Regions     []UploadRegionInput
}

// TargetResponse is the back-reference merge outcome for one record.
type TargetResponse struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Error      string `json:"error,omitempty"`
}

// PropagationResponse lists every back-reference target of an upload.
type PropagationResponse struct {
	Targets []TargetResponse `json:"targets"`
}

// UploadResponse is the response from POST /v1/uploads.
type UploadResponse struct {
	UploadID    string              `json:"upload_id"`
	State       string              `json:"state"`
	ImageID     string              `json:"image_id,omitempty"`
	ArtistID    string              `json:"artist_id,omitempty"`
	ItemIDs     []string            `json:"item_ids,omitempty"`
	BrandIDs    []string            `json:"brand_ids,omitempty"`
	TaggedItems []models.TaggedItem `json:"tagged_items,omitempty"`
	Propagation PropagationResponse `json:"propagation"`
}

// HoverItem is one tagged region of an image with its item record.
type HoverItem struct {
	Position models.Position `json:"pos"`
	Item     models.Item     `json:"item"`
}

// ArtistImage links another photograph of the same artist.
type ArtistImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ImageDetailResponse is the response from GET /v1/images/{id}.
type ImageDetailResponse struct {
	Image        models.Image  `json:"image"`
	ImageURL     string        `json:"image_url,omitempty"`
	Items        []HoverItem   `json:"items"`
	Brands       []string      `json:"brands"`
	Artists      []string      `json:"artists"`
	ArtistImages []ArtistImage `json:"artist_images"`
}

// BrandCreateRequest is the payload of POST /v1/brands.
type BrandCreateRequest struct {
	Name string `json:"name"`
}

// BrandCreateResponse reports the stored brand and whether it was new.
type BrandCreateResponse struct {
	Brand   models.Brand `json:"brand"`
	Created bool         `json:"created"`
}
