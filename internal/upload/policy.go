package upload

import (
	"mime"
	"net/http"
	"sort"
	"strings"
	"time"

	"lookbook/internal/ids"
	"lookbook/internal/imaging"
	"lookbook/internal/models"
)

const (
	DefaultTimeout                = 2 * time.Minute
	DefaultPropagationConcurrency = 8
)

// DefaultAllowedItemMediaTypes lists the item image encodings accepted by default.
var DefaultAllowedItemMediaTypes = []string{"image/jpeg", "image/png", "image/webp", "image/avif"}

// Policy holds the tunables of one orchestrator.
type Policy struct {
	AllowedItemMediaTypes  []string
	DescriptionMaxBytes    int
	Quality                float64
	MaxDimension           int
	Timeout                time.Duration
	PropagationConcurrency int
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		AllowedItemMediaTypes:  append([]string(nil), DefaultAllowedItemMediaTypes...),
		DescriptionMaxBytes:    models.DefaultDescriptionMaxBytes,
		Quality:                imaging.DefaultQuality,
		MaxDimension:           imaging.DefaultMaxDimension,
		Timeout:                DefaultTimeout,
		PropagationConcurrency: DefaultPropagationConcurrency,
	}
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if len(p.AllowedItemMediaTypes) == 0 {
		p.AllowedItemMediaTypes = def.AllowedItemMediaTypes
	}
	if p.DescriptionMaxBytes <= 0 {
		p.DescriptionMaxBytes = def.DescriptionMaxBytes
	}
	if p.Quality <= 0 || p.Quality > 1 {
		p.Quality = def.Quality
	}
	if p.MaxDimension <= 0 {
		p.MaxDimension = def.MaxDimension
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	if p.PropagationConcurrency <= 0 {
		p.PropagationConcurrency = def.PropagationConcurrency
	}
	return p
}

// mediaTypeSet is the normalized allow-list of a policy.
type mediaTypeSet map[string]struct{}

func newMediaTypeSet(values []string) mediaTypeSet {
	set := mediaTypeSet{}
	for _, raw := range values {
		if mediaType := NormalizeMediaType(raw); mediaType != "" {
			set[mediaType] = struct{}{}
		}
	}
	return set
}

func (s mediaTypeSet) allows(mediaType string) bool {
	_, ok := s[NormalizeMediaType(mediaType)]
	return ok
}

func (s mediaTypeSet) sorted() []string {
	out := make([]string, 0, len(s))
	for mediaType := range s {
		out = append(out, mediaType)
	}
	sort.Strings(out)
	return out
}

// NormalizeMediaType strips parameters and lower-cases raw. Unparseable input
// yields "".
func NormalizeMediaType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parsed))
}

// regionMediaType is the declared media type of an item picture, or the
// sniffed one when none was declared.
func regionMediaType(region Region) string {
	if declared := NormalizeMediaType(region.MediaType); declared != "" {
		return declared
	}
	if len(region.Image) == 0 {
		return ""
	}
	return NormalizeMediaType(http.DetectContentType(region.Image))
}

// blobSegment turns a display name into one safe object path segment.
func blobSegment(name string) string {
	segment := strings.NewReplacer("/", "_", `\`, "_").Replace(ids.StorageName(name))
	switch segment {
	case "", ".", "..":
		return "_"
	}
	return segment
}
