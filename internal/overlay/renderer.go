// Package overlay draws the thumbnail caption onto the edited image.
package overlay

import (
	"image"
	"image/color"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/imaging"
)

// OutlineColor is fixed; the style has no outline color.
var OutlineColor color.Color = color.Black

// Renderer draws text captions. It holds no per-request state.
type Renderer struct {
	fonts *FontBook
}

func NewRenderer(fonts *FontBook) *Renderer {
	return &Renderer{fonts: fonts}
}

// Render decodes data, draws text with style and returns PNG bytes of the
// same dimensions.
func (r *Renderer) Render(data []byte, text string, style domain.TextStyle) ([]byte, error) {
	src, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	canvas := NewCanvas(src)
	if err := r.Paint(canvas, text, style); err != nil {
		return nil, err
	}
	return imaging.EncodePNG(canvas.Image())
}

// Paint issues the draw calls for text on s: font selection, the black
// outline when OutlineWidth > 0, then the fill.
func (r *Renderer) Paint(s Surface, text string, style domain.TextStyle) error {
	face, err := r.fonts.Face(style.FontFamily, style.FontSize)
	if err != nil {
		return domain.Internal("load font", err)
	}
	x, y := Anchor(s.Bounds(), style.Position)
	s.SetFont(face)
	if style.OutlineWidth > 0 {
		s.StrokeText(text, x, y, style.OutlineWidth, OutlineColor)
	}
	s.FillText(text, x, y, style.FillColor())
	return nil
}

// Anchor returns the text center for a position: horizontally centered, at
// 20%, 50% or 80% of the height.
func Anchor(b image.Rectangle, pos domain.Position) (float64, float64) {
	x := float64(b.Min.X) + float64(b.Dx())/2
	frac := 0.5
	switch pos {
	case domain.PositionTop:
		frac = 0.2
	case domain.PositionBottom:
		frac = 0.8
	}
	return x, float64(b.Min.Y) + float64(b.Dy())*frac
}
