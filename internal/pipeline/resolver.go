package pipeline

import (
	"context"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
)

// DefaultMaxUploadBytes caps uploaded source images.
const DefaultMaxUploadBytes = 5 << 20

// TemplateSource returns template image bytes by id.
type TemplateSource interface {
	Lookup(id string) ([]byte, string, error)
}

// Resolver turns a SourceImageRequest into raw image bytes. It never makes
// network calls.
type Resolver struct {
	Templates TemplateSource
	MaxBytes  int64
}

// Resolve reads the uploaded file or the selected template.
func (r *Resolver) Resolve(ctx context.Context, src domain.SourceImageRequest) ([]byte, string, error) {
	if err := src.Validate(); err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if src.Upload != nil {
		return r.readUpload(src.Upload)
	}
	if r.Templates == nil {
		return nil, "", domain.NotFoundf("template %q not found", src.TemplateID)
	}
	return r.Templates.Lookup(src.TemplateID)
}

func (r *Resolver) readUpload(up domain.UploadedFile) ([]byte, string, error) {
	limit := r.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	if up.Size() > limit {
		return nil, "", domain.Validationf("image must be at most %d bytes", limit)
	}
	f, err := os.Open(up.Path())
	if err != nil {
		return nil, "", domain.Internal("open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, "", domain.Internal("read upload", err)
	}
	if int64(len(data)) > limit {
		return nil, "", domain.Validationf("image must be at most %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, "", domain.Validationf("image is empty")
	}

	mt := mimetype.Detect(data)
	switch {
	case mt.Is("image/jpeg"):
		return data, "image/jpeg", nil
	case mt.Is("image/png"):
		return data, "image/png", nil
	}
	return nil, "", domain.Validationf("unsupported image type")
}
