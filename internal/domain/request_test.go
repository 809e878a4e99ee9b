package domain

import (
	"errors"
	"net/url"
	"testing"
)

type fakeUpload struct {
	removed int
}

func (f *fakeUpload) Path() string     { return "/tmp/upload" }
func (f *fakeUpload) Filename() string { return "face.png" }
func (f *fakeUpload) MIMEType() string { return "image/png" }
func (f *fakeUpload) Size() int64      { return 10 }
func (f *fakeUpload) Remove() error    { f.removed++; return nil }

func TestNewThumbnailRequestDefaults(t *testing.T) {
	values := url.Values{}
	values.Set("text", "  Top 10 Tips  ")
	values.Set("templateId", "gaming")

	req, err := NewThumbnailRequest(values, nil)
	if err != nil {
		t.Fatalf("NewThumbnailRequest returned error: %v", err)
	}
	if req.Text != "Top 10 Tips" {
		t.Fatalf("text = %q, want %q", req.Text, "Top 10 Tips")
	}
	if req.Style != DefaultTextStyle() {
		t.Fatalf("style = %+v, want defaults", req.Style)
	}
	if req.Expression != (ExpressionVector{}) {
		t.Fatalf("expression = %+v, want zero vector", req.Expression)
	}
	if req.Source.TemplateID != "gaming" {
		t.Fatalf("template id = %q, want gaming", req.Source.TemplateID)
	}
}

func TestNewThumbnailRequestValidation(t *testing.T) {
	upload := &fakeUpload{}
	tests := []struct {
		name   string
		values url.Values
		upload UploadedFile
		want   string
	}{
		{
			name:   "empty text",
			values: url.Values{"text": {"   "}, "templateId": {"gaming"}},
			want:   "text is required",
		},
		{
			name:   "missing source",
			values: url.Values{"text": {"hello"}},
			want:   "missing image source",
		},
		{
			name:   "both sources",
			values: url.Values{"text": {"hello"}, "templateId": {"gaming"}},
			upload: upload,
			want:   "provide either an image or a templateId, not both",
		},
		{
			name:   "bad expression number",
			values: url.Values{"text": {"hello"}, "templateId": {"gaming"}, "smile": {"wide"}},
			want:   "smile must be a number",
		},
		{
			name:   "expression out of range",
			values: url.Values{"text": {"hello"}, "templateId": {"gaming"}, "wink": {"-1"}},
			want:   "wink must be between 0 and 25",
		},
		{
			name:   "bad text settings",
			values: url.Values{"text": {"hello"}, "templateId": {"gaming"}, "textSettings": {"{"}},
			want:   "textSettings must be valid JSON",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewThumbnailRequest(tc.values, tc.upload)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("error = %v, want validation error", err)
			}
			if got := PublicMessage(err); got != tc.want {
				t.Fatalf("message = %q, want %q", got, tc.want)
			}
		})
	}
	if upload.removed != 0 {
		t.Fatalf("upload removed %d times, want 0 (caller owns it)", upload.removed)
	}
}

func TestSourceReleaseRemovesUpload(t *testing.T) {
	upload := &fakeUpload{}
	src := SourceImageRequest{Upload: upload}
	if err := src.Release(); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if upload.removed != 1 {
		t.Fatalf("removed = %d, want 1", upload.removed)
	}
	if err := (SourceImageRequest{TemplateID: "gaming"}).Release(); err != nil {
		t.Fatalf("Release without upload error: %v", err)
	}
}

func TestPublicMessageHidesInternalErrors(t *testing.T) {
	err := Upstream("prediction failed", errors.New("dial tcp: refused"))
	if got := PublicMessage(err); got != "" {
		t.Fatalf("PublicMessage = %q, want empty", got)
	}
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream kind")
	}
	if got := PublicMessage(NotFoundf("template %q not found", "x")); got != `template "x" not found` {
		t.Fatalf("not found message = %q", got)
	}
}
