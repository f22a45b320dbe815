package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultQuality      = 1.0
	DefaultMaxDimension = 1280
)

// Compressed is the output of one Compress call.
type Compressed struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	// Passthrough reports that the input was returned unchanged.
	Passthrough bool
}

// Processor shrinks image payloads before they are stored.
type Processor interface {
	Compress(ctx context.Context, data []byte, quality float64, maxDimension int) (Compressed, error)
}

// Resizer decodes jpeg, png, gif and webp input, bounds the longest side to
// maxDimension and re-encodes. Opaque images become JPEG; images with an
// alpha channel stay PNG. Formats it cannot decode (avif) pass through.
type Resizer struct {
	logger *slog.Logger
}

var _ Processor = (*Resizer)(nil)

func NewResizer(logger *slog.Logger) *Resizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resizer{logger: logger.With("component", "imaging")}
}

func (r *Resizer) Compress(ctx context.Context, data []byte, quality float64, maxDimension int) (Compressed, error) {
	if err := ctx.Err(); err != nil {
		return Compressed{}, err
	}
	if len(data) == 0 {
		return Compressed{}, fmt.Errorf("image payload is empty")
	}
	if quality <= 0 || quality > 1 {
		return Compressed{}, fmt.Errorf("quality must be in (0, 1], got %v", quality)
	}
	if maxDimension < 0 {
		return Compressed{}, fmt.Errorf("max dimension must not be negative")
	}

	sniffed := http.DetectContentType(data)
	if !decodable(sniffed) {
		r.logger.Debug("image passthrough", "content_type", sniffed, "bytes", len(data))
		return Compressed{Data: data, ContentType: sniffed, Passthrough: true}, nil
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Compressed{}, fmt.Errorf("decode %s: %w", sniffed, err)
	}

	img := fit(src, maxDimension)
	bounds := img.Bounds()

	var buf bytes.Buffer
	contentType := "image/jpeg"
	if hasAlpha(img) {
		contentType = "image/png"
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)})
	}
	if err != nil {
		return Compressed{}, fmt.Errorf("encode %s: %w", contentType, err)
	}

	r.logger.Debug("image compressed",
		"format", format,
		"content_type", contentType,
		"in_bytes", len(data),
		"out_bytes", buf.Len(),
		"width", bounds.Dx(),
		"height", bounds.Dy(),
	)
	return Compressed{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

func decodable(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

// fit scales src so neither side exceeds maxDimension, keeping aspect ratio.
func fit(src image.Image, maxDimension int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDimension == 0 || (w <= maxDimension && h <= maxDimension) {
		return src
	}

	nw, nh := maxDimension, maxDimension
	if w >= h {
		nh = h * maxDimension / w
	} else {
		nw = w * maxDimension / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

func jpegQuality(q float64) int {
	v := int(q*100 + 0.5)
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}
