package overlay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/opentype"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
)

// builtinFaces maps each selectable family to a bundled bold Go font. The Go
// fonts have no serif face, so Times New Roman uses the sans bold too. The
// browser families are not redistributable, so FONT_DIR can supply the real
// files.
var builtinFaces = map[string]string{
	"Arial":           "gobold",
	"Helvetica":       "gobold",
	"Verdana":         "gobold",
	"Impact":          "gobold",
	"Comic Sans MS":   "gobolditalic",
	"Times New Roman": "gobold",
}

var goFonts = map[string][]byte{
	"gobold":       gobold.TTF,
	"gobolditalic": gobolditalic.TTF,
}

// FontBook resolves font families to parsed fonts. It is safe for concurrent
// use; faces are created per call.
type FontBook struct {
	fonts map[string]*opentype.Font
}

// NewFontBook parses the bundled fonts and, when dir is non-empty, overrides
// families with "<Family> Bold.ttf", "<Family>.ttf" (or .otf, with or without
// spaces) found in dir.
func NewFontBook(dir string) (*FontBook, error) {
	parsed := make(map[string]*opentype.Font)
	book := &FontBook{fonts: make(map[string]*opentype.Font, len(domain.FontFamilies))}
	for _, family := range domain.FontFamilies {
		name := builtinFaces[family]
		f, ok := parsed[name]
		if !ok {
			var err error
			f, err = opentype.Parse(goFonts[name])
			if err != nil {
				return nil, fmt.Errorf("overlay: parse %s: %w", name, err)
			}
			parsed[name] = f
		}
		book.fonts[family] = f
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return book, nil
	}
	for _, family := range domain.FontFamilies {
		path, ok := findFontFile(dir, family)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("overlay: read font %s: %w", path, err)
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("overlay: parse font %s: %w", path, err)
		}
		book.fonts[family] = f
	}
	return book, nil
}

func findFontFile(dir, family string) (string, bool) {
	compact := strings.ReplaceAll(family, " ", "")
	for _, base := range []string{family + " Bold", compact + "-Bold", family, compact} {
		for _, ext := range []string{".ttf", ".otf"} {
			path := filepath.Join(dir, base+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}
	return "", false
}

// Face returns a new face for family at size pixels. Unknown families fall
// back to the default family.
func (b *FontBook) Face(family string, size int) (font.Face, error) {
	if b == nil {
		return nil, errors.New("overlay: font book not configured")
	}
	canonical, ok := domain.CanonicalFontFamily(family)
	if !ok {
		canonical = domain.DefaultFontFamily
	}
	f := b.fonts[canonical]
	if f == nil {
		return nil, fmt.Errorf("overlay: no font for %s", canonical)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
