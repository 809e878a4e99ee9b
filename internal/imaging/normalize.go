package imaging

import (
	"errors"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Normalizer fits images into a fixed canvas without cropping.
type Normalizer struct {
	Width  int
	Height int
	Scaler xdraw.Scaler
}

// NewNormalizer returns a 1280x720 normalizer using Catmull-Rom resampling.
func NewNormalizer() *Normalizer {
	return &Normalizer{Width: DefaultWidth, Height: DefaultHeight, Scaler: xdraw.CatmullRom}
}

// Normalize decodes data and returns a PNG of exactly Width x Height with the
// source scaled to fit, centered, on a transparent background. Sources over
// MaxPixels are rejected as validation errors.
func (n *Normalizer) Normalize(data []byte) ([]byte, error) {
	if err := checkPixels(data); errors.Is(err, ErrTooManyPixels) {
		return nil, domain.Validationf("image dimensions too large")
	}
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return EncodePNG(n.Fit(src))
}

// Fit performs the contain fit on a decoded image.
func (n *Normalizer) Fit(src image.Image) *image.NRGBA {
	w, h := n.size()
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	if sb.Empty() {
		return canvas
	}
	dst := ContainRect(sb.Dx(), sb.Dy(), w, h)
	scaler := n.Scaler
	if scaler == nil {
		scaler = xdraw.CatmullRom
	}
	if dst.Dx() == sb.Dx() && dst.Dy() == sb.Dy() {
		draw.Draw(canvas, dst, src, sb.Min, draw.Src)
		return canvas
	}
	scaler.Scale(canvas, dst, src, sb, xdraw.Src, nil)
	return canvas
}

func (n *Normalizer) size() (int, int) {
	w, h := n.Width, n.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// ContainRect returns the centered rectangle of a srcW x srcH image scaled to
// fit inside a frameW x frameH frame.
func ContainRect(srcW, srcH, frameW, frameH int) image.Rectangle {
	scale := math.Min(float64(frameW)/float64(srcW), float64(frameH)/float64(srcH))
	w := int(math.Round(float64(srcW) * scale))
	h := int(math.Round(float64(srcH) * scale))
	w = min(max(w, 1), frameW)
	h = min(max(h, 1), frameH)
	x := (frameW - w) / 2
	y := (frameH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
