package domain

import "strings"

// ExpressionPreset is a named, fixed expression.
type ExpressionPreset struct {
	Name       string           `json:"name"`
	Expression ExpressionVector `json:"expression"`
}

// ExpressionPresets lists the presets in display order.
var ExpressionPresets = []ExpressionPreset{
	{Name: "Happy", Expression: ExpressionVector{Smile: 1.0, Eyebrow: 5}},
	{Name: "Thoughtful", Expression: ExpressionVector{
		Smile: -0.1, Eyebrow: 8, PupilX: 8, PupilY: 5, RotatePitch: 10, RotateYaw: 10,
	}},
	{Name: "Playful", Expression: ExpressionVector{
		Smile: 0.8, Eyebrow: 3, Wink: 20, PupilX: 5, PupilY: -3, RotatePitch: -3, RotateYaw: -5, RotateRoll: 5,
	}},
}

// LookupPreset finds a preset by name, ignoring case.
func LookupPreset(name string) (ExpressionVector, bool) {
	name = strings.TrimSpace(name)
	for _, p := range ExpressionPresets {
		if strings.EqualFold(p.Name, name) {
			return p.Expression, true
		}
	}
	return ExpressionVector{}, false
}
