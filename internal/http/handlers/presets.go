package handlers

import (
	"net/http"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
)

// ListPresets handles GET /api/presets.
func (a *App) ListPresets(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": domain.ExpressionPresets})
}
