// Package imaging decodes, resizes and encodes raster images for the
// thumbnail pipeline.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// Registered decoders for uploads, templates and editor output.
	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
)

// MaxPixels bounds width*height of any image this package decodes. The
// header is checked before pixels are allocated.
const MaxPixels = 40_000_000

var ErrTooManyPixels = errors.New("image dimensions too large")

var encoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// Decode decodes PNG, JPEG or WebP bytes. Failures, including images over
// MaxPixels, are domain decode errors.
func Decode(data []byte) (image.Image, error) {
	if err := checkPixels(data); err != nil {
		return nil, domain.Decode(err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.Decode(err)
	}
	return img, nil
}

// DecodeConfig returns the dimensions of an encoded image.
func DecodeConfig(data []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, domain.Decode(err)
	}
	return cfg, nil
}

func checkPixels(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	return nil
}

// EncodePNG encodes img as PNG. Output depends only on the pixels.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, domain.Internal("encode png", err)
	}
	return buf.Bytes(), nil
}
