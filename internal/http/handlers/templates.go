package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/templates"
)

type templateItem struct {
	templates.Template
	URL string `json:"url"`
}

// ListTemplates handles GET /api/templates.
func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list := a.Templates.List()
	items := make([]templateItem, 0, len(list))
	for _, t := range list {
		items = append(items, templateItem{Template: t, URL: "/templates/" + t.ID})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// TemplateImage handles GET /templates/{id}.
func (a *App) TemplateImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := a.Templates.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
