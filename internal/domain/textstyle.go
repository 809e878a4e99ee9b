package domain

import (
	"encoding/json"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

type Position string

const (
	PositionTop    Position = "top"
	PositionMiddle Position = "middle"
	PositionBottom Position = "bottom"
)

// FontFamilies is the closed set of selectable font families.
var FontFamilies = []string{
	"Arial",
	"Impact",
	"Comic Sans MS",
	"Verdana",
	"Helvetica",
	"Times New Roman",
}

const (
	DefaultFontFamily   = "Arial"
	DefaultFontSize     = 60
	DefaultColor        = "#000000"
	DefaultOutlineWidth = 0
	DefaultPosition     = PositionMiddle

	MinFontSize     = 20
	MaxFontSize     = 120
	MaxOutlineWidth = 10
)

// TextStyle describes how the overlay text is drawn.
type TextStyle struct {
	FontFamily   string   `json:"fontFamily"`
	FontSize     int      `json:"fontSize"`
	Color        string   `json:"color"`
	OutlineWidth int      `json:"outlineWidth"`
	Position     Position `json:"position"`
}

// DefaultTextStyle returns Arial / 60 / #000000 / 0 / middle.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontFamily:   DefaultFontFamily,
		FontSize:     DefaultFontSize,
		Color:        DefaultColor,
		OutlineWidth: DefaultOutlineWidth,
		Position:     DefaultPosition,
	}
}

// textStyleJSON uses pointers so absent fields can fall back to defaults
// while explicit zero values are kept.
type textStyleJSON struct {
	FontFamily   *string      `json:"fontFamily"`
	FontSize     *json.Number `json:"fontSize"`
	Color        *string      `json:"color"`
	OutlineWidth *json.Number `json:"outlineWidth"`
	Position     *string      `json:"position"`
}

// ParseTextStyle decodes the textSettings JSON document. An empty document
// yields the defaults.
func ParseTextStyle(raw string) (TextStyle, error) {
	style := DefaultTextStyle()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return style, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var in textStyleJSON
	if err := dec.Decode(&in); err != nil || dec.More() {
		return TextStyle{}, Validationf("textSettings must be valid JSON")
	}
	if in.FontFamily != nil {
		style.FontFamily = *in.FontFamily
	}
	if in.FontSize != nil {
		n, err := jsonInt(*in.FontSize)
		if err != nil {
			return TextStyle{}, Validationf("fontSize must be an integer")
		}
		style.FontSize = n
	}
	if in.Color != nil {
		style.Color = *in.Color
	}
	if in.OutlineWidth != nil {
		n, err := jsonInt(*in.OutlineWidth)
		if err != nil {
			return TextStyle{}, Validationf("outlineWidth must be an integer")
		}
		style.OutlineWidth = n
	}
	if in.Position != nil {
		style.Position = Position(*in.Position)
	}
	return style.Normalize()
}

// jsonInt accepts integral numbers, including ones written as 60.0.
func jsonInt(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != float64(int(f)) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}

// Normalize canonicalizes the font family and position names and validates
// every field.
func (s TextStyle) Normalize() (TextStyle, error) {
	family, ok := CanonicalFontFamily(s.FontFamily)
	if !ok {
		return TextStyle{}, Validationf("fontFamily must be one of %s", strings.Join(FontFamilies, ", "))
	}
	s.FontFamily = family
	if s.FontSize < MinFontSize || s.FontSize > MaxFontSize {
		return TextStyle{}, Validationf("fontSize must be between %d and %d", MinFontSize, MaxFontSize)
	}
	if s.OutlineWidth < 0 || s.OutlineWidth > MaxOutlineWidth {
		return TextStyle{}, Validationf("outlineWidth must be between 0 and %d", MaxOutlineWidth)
	}
	if _, err := ParseHexColor(s.Color); err != nil {
		return TextStyle{}, err
	}
	s.Color = strings.ToUpper(strings.TrimSpace(s.Color))
	switch Position(strings.ToLower(strings.TrimSpace(string(s.Position)))) {
	case PositionTop:
		s.Position = PositionTop
	case PositionMiddle, "":
		s.Position = PositionMiddle
	case PositionBottom:
		s.Position = PositionBottom
	default:
		return TextStyle{}, Validationf("position must be top, middle or bottom")
	}
	return s, nil
}

// FillColor returns the parsed text color. It falls back to black for a
// style that was never normalized.
func (s TextStyle) FillColor() color.RGBA {
	c, err := ParseHexColor(s.Color)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return c
}

// CanonicalFontFamily matches name case-insensitively against FontFamilies.
func CanonicalFontFamily(name string) (string, bool) {
	fold := cases.Fold()
	key := fold.String(strings.Join(strings.Fields(name), " "))
	for _, f := range FontFamilies {
		if fold.String(f) == key {
			return f, true
		}
	}
	return "", false
}

// ParseHexColor parses #RRGGBB or #RGB into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return color.RGBA{}, Validationf("color must be a hex RGB value like #FFFFFF")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, Validationf("color must be a hex RGB value like #FFFFFF")
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
