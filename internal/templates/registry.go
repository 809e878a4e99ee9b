// Package templates holds the read-only sample images that can be picked
// instead of uploading a photo.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
)

//go:embed assets/*.png
var bundled embed.FS

// Template describes one selectable template.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Catalog is the fixed set of shipped templates, in display order.
var Catalog = []Template{
	{ID: "gaming", Name: "Gaming Thumbnail", Description: "Perfect for gaming videos", Category: "Gaming"},
	{ID: "tutorial", Name: "Tutorial Template", Description: "Great for how-to videos", Category: "Education"},
	{ID: "vlog", Name: "Vlog Template", Description: "Ideal for vlogs and personal content", Category: "Lifestyle"},
	{ID: "tech", Name: "Tech Review", Description: "Best for product reviews", Category: "Technology"},
}

var extensions = []struct {
	ext  string
	mime string
}{
	{".png", "image/png"},
	{".jpg", "image/jpeg"},
	{".jpeg", "image/jpeg"},
}

// Registry resolves template ids to image bytes. Ids are only ever matched
// against Catalog, never used as paths directly.
type Registry struct {
	fsys  fs.FS
	items map[string]Template
}

// NewRegistry serves the bundled images, or the images in dir when dir is
// set. Every catalog entry must have an image.
func NewRegistry(dir string) (*Registry, error) {
	var fsys fs.FS
	if dir = strings.TrimSpace(dir); dir != "" {
		fsys = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(bundled, "assets")
		if err != nil {
			return nil, fmt.Errorf("templates: %w", err)
		}
		fsys = sub
	}
	r := &Registry{fsys: fsys, items: make(map[string]Template, len(Catalog))}
	for _, t := range Catalog {
		if _, _, ok := r.locate(t.ID); !ok {
			return nil, fmt.Errorf("templates: no image for %q", t.ID)
		}
		r.items[t.ID] = t
	}
	return r, nil
}

func (r *Registry) locate(id string) (string, string, bool) {
	for _, e := range extensions {
		name := path.Clean(id + e.ext)
		if info, err := fs.Stat(r.fsys, name); err == nil && !info.IsDir() {
			return name, e.mime, true
		}
	}
	return "", "", false
}

// List returns the catalog entries in display order.
func (r *Registry) List() []Template {
	out := make([]Template, 0, len(Catalog))
	for _, t := range Catalog {
		if _, ok := r.items[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Lookup returns the image bytes and MIME type of a template. Unknown ids
// are domain not-found errors.
func (r *Registry) Lookup(id string) ([]byte, string, error) {
	id = strings.TrimSpace(id)
	if _, ok := r.items[id]; !ok {
		return nil, "", domain.NotFoundf("template %q not found", id)
	}
	name, mime, ok := r.locate(id)
	if !ok {
		return nil, "", domain.NotFoundf("template %q not found", id)
	}
	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, "", domain.Internal("read template", err)
	}
	return data, mime, nil
}
