package domain

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UploadedFile is an image spooled to local disk by the transport layer.
// Remove must be safe to call more than once.
type UploadedFile interface {
	Path() string
	Filename() string
	MIMEType() string
	Size() int64
	Remove() error
}

// SourceImageRequest holds exactly one of Upload or TemplateID.
type SourceImageRequest struct {
	Upload     UploadedFile
	TemplateID string
}

// Release deletes the spooled upload, if any.
func (s SourceImageRequest) Release() error {
	if s.Upload == nil {
		return nil
	}
	return s.Upload.Remove()
}

// Validate enforces that exactly one source is present.
func (s SourceImageRequest) Validate() error {
	hasUpload := s.Upload != nil
	hasTemplate := strings.TrimSpace(s.TemplateID) != ""
	switch {
	case !hasUpload && !hasTemplate:
		return Validationf("missing image source")
	case hasUpload && hasTemplate:
		return Validationf("provide either an image or a templateId, not both")
	}
	return nil
}

// ThumbnailRequest is the validated input of one generation.
type ThumbnailRequest struct {
	Text       string
	Style      TextStyle
	Expression ExpressionVector
	Source     SourceImageRequest
}

// NewThumbnailRequest builds and validates a request from form values and an
// optional spooled upload. The upload is not released on error; the caller
// owns it.
func NewThumbnailRequest(values url.Values, upload UploadedFile) (ThumbnailRequest, error) {
	req := ThumbnailRequest{
		Text: norm.NFC.String(strings.TrimSpace(values.Get("text"))),
		Source: SourceImageRequest{
			Upload:     upload,
			TemplateID: strings.TrimSpace(values.Get("templateId")),
		},
	}
	if req.Text == "" {
		return ThumbnailRequest{}, Validationf("text is required")
	}
	if err := req.Source.Validate(); err != nil {
		return ThumbnailRequest{}, err
	}
	style, err := ParseTextStyle(values.Get("textSettings"))
	if err != nil {
		return ThumbnailRequest{}, err
	}
	req.Style = style
	expr, err := ParseExpression(values)
	if err != nil {
		return ThumbnailRequest{}, err
	}
	req.Expression = expr
	return req, nil
}
