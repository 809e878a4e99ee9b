package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Surface is the drawing target of the renderer. Text is anchored at its
// horizontal and vertical center.
type Surface interface {
	Bounds() image.Rectangle
	SetFont(face font.Face)
	StrokeText(text string, x, y float64, width int, c color.Color)
	FillText(text string, x, y float64, c color.Color)
}

// Canvas is a raster Surface backed by an RGBA copy of the source image.
type Canvas struct {
	img  *image.RGBA
	face font.Face
}

// NewCanvas copies src into a new RGBA image of identical size, anchored at
// the origin.
func NewCanvas(src image.Image) *Canvas {
	sb := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(img, img.Bounds(), src, sb.Min, draw.Src)
	return &Canvas{img: img}
}

func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

func (c *Canvas) SetFont(face font.Face) { c.face = face }

// StrokeText paints the glyphs repeatedly at every offset inside a disc of
// diameter width, which outlines them by width/2 on each side.
func (c *Canvas) StrokeText(text string, x, y float64, width int, col color.Color) {
	if width <= 0 {
		return
	}
	r := math.Max(float64(width)/2, 1)
	ir := int(math.Ceil(r))
	for dy := -ir; dy <= ir; dy++ {
		for dx := -ir; dx <= ir; dx++ {
			if float64(dx*dx+dy*dy) > r*r {
				continue
			}
			c.drawText(text, x+float64(dx), y+float64(dy), col)
		}
	}
}

func (c *Canvas) FillText(text string, x, y float64, col color.Color) {
	c.drawText(text, x, y, col)
}

func (c *Canvas) drawText(text string, x, y float64, col color.Color) {
	if c.face == nil || text == "" {
		return
	}
	advance := font.MeasureString(c.face, text)
	m := c.face.Metrics()
	left := x - float64(advance)/128
	// Middle of the em box sits on y.
	baseline := y + float64(m.Ascent-m.Descent)/128
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.Point26_6{X: toFixed(left), Y: toFixed(baseline)},
	}
	d.DrawString(text)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
