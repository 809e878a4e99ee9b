package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ExpressionVector is the facial pose sent to the expression editor.
type ExpressionVector struct {
	Smile       float64 `json:"smile"`
	Eyebrow     float64 `json:"eyebrow"`
	Blink       float64 `json:"blink"`
	Wink        float64 `json:"wink"`
	PupilX      float64 `json:"pupil_x"`
	PupilY      float64 `json:"pupil_y"`
	RotatePitch float64 `json:"rotate_pitch"`
	RotateYaw   float64 `json:"rotate_yaw"`
	RotateRoll  float64 `json:"rotate_roll"`
}

// PresetField is the form field naming an expression preset.
const PresetField = "preset"

// ExpressionRange is the inclusive valid range of one expression field.
type ExpressionRange struct {
	Name string
	Min  float64
	Max  float64
}

// ExpressionRanges lists the fields in wire order.
var ExpressionRanges = []ExpressionRange{
	{Name: "smile", Min: -0.3, Max: 1.3},
	{Name: "eyebrow", Min: -10, Max: 15},
	{Name: "blink", Min: -20, Max: 5},
	{Name: "wink", Min: 0, Max: 25},
	{Name: "pupil_x", Min: -15, Max: 15},
	{Name: "pupil_y", Min: -15, Max: 15},
	{Name: "rotate_pitch", Min: -20, Max: 20},
	{Name: "rotate_yaw", Min: -20, Max: 20},
	{Name: "rotate_roll", Min: -20, Max: 20},
}

func (e *ExpressionVector) field(name string) *float64 {
	switch name {
	case "smile":
		return &e.Smile
	case "eyebrow":
		return &e.Eyebrow
	case "blink":
		return &e.Blink
	case "wink":
		return &e.Wink
	case "pupil_x":
		return &e.PupilX
	case "pupil_y":
		return &e.PupilY
	case "rotate_pitch":
		return &e.RotatePitch
	case "rotate_yaw":
		return &e.RotateYaw
	case "rotate_roll":
		return &e.RotateRoll
	}
	return nil
}

// Values returns the fields keyed by their wire names.
func (e ExpressionVector) Values() map[string]float64 {
	out := make(map[string]float64, len(ExpressionRanges))
	for _, r := range ExpressionRanges {
		out[r.Name] = *e.field(r.Name)
	}
	return out
}

// Validate checks every field against its range.
func (e ExpressionVector) Validate() error {
	for _, r := range ExpressionRanges {
		v := *e.field(r.Name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Validationf("%s must be a finite number", r.Name)
		}
		if v < r.Min || v > r.Max {
			return Validationf("%s must be between %g and %g", r.Name, r.Min, r.Max)
		}
	}
	return nil
}

// ParseExpression reads the nine expression fields from form values. Missing
// or blank fields default to 0, or to the named preset's value when the
// preset field is set.
func ParseExpression(values url.Values) (ExpressionVector, error) {
	var e ExpressionVector
	if name := strings.TrimSpace(values.Get(PresetField)); name != "" {
		p, ok := LookupPreset(name)
		if !ok {
			return ExpressionVector{}, Validationf("unknown preset %q", name)
		}
		e = p
	}
	for _, r := range ExpressionRanges {
		raw := strings.TrimSpace(values.Get(r.Name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ExpressionVector{}, Validationf("%s must be a number", r.Name)
		}
		*e.field(r.Name) = v
	}
	if err := e.Validate(); err != nil {
		return ExpressionVector{}, err
	}
	return e, nil
}
