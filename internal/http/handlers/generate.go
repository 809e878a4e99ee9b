package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/storage"
)

const (
	imageField    = "image"
	maxFieldBytes = 64 << 10
	// Room for the text fields and multipart framing on top of the image.
	formOverhead = 1 << 20
)

type generateResponse struct {
	Output []string `json:"output"`
}

// Generate handles POST /api/generate.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.MethodNotAllowed(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.Spool.MaxBytes()+formOverhead)

	values, upload, err := a.readForm(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var up domain.UploadedFile
	if upload != nil {
		up = upload
	}
	req, err := domain.NewThumbnailRequest(values, up)
	if err != nil {
		if upload != nil {
			_ = upload.Remove()
		}
		a.fail(w, r, err)
		return
	}

	result, err := a.Pipeline.Generate(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, generateResponse{Output: []string{result.DataURL()}})
}

// readForm streams the multipart body. The image part goes straight to the
// spool; every other part is collected as a form value. On error nothing is
// left on disk.
func (a *App) readForm(r *http.Request) (url.Values, *storage.SpooledFile, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, domain.Validationf("request must be multipart/form-data")
	}
	values := url.Values{}
	var upload *storage.SpooledFile
	discard := func() {
		if upload != nil {
			_ = upload.Remove()
		}
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			discard()
			return nil, nil, bodyError(err)
		}
		name := part.FormName()
		switch {
		case name == "":
		case name == imageField:
			if upload != nil {
				part.Close()
				discard()
				return nil, nil, domain.Validationf("only one image may be uploaded")
			}
			upload, err = a.spoolPart(r, part)
			if err != nil {
				part.Close()
				return nil, nil, err
			}
		default:
			v, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			if err != nil {
				part.Close()
				discard()
				return nil, nil, bodyError(err)
			}
			if len(v) > maxFieldBytes {
				part.Close()
				discard()
				return nil, nil, domain.Validationf("%s is too long", name)
			}
			values.Add(name, string(v))
		}
		part.Close()
	}
	return values, upload, nil
}

// spoolPart writes one file part to disk. An empty file part, which browsers
// send when no file was chosen, counts as no upload.
func (a *App) spoolPart(r *http.Request, part *multipart.Part) (*storage.SpooledFile, error) {
	f, err := a.Spool.Write(r.Context(), part.FileName(), part.Header.Get("Content-Type"), part)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, domain.Validationf("image must be at most %d bytes", a.Spool.MaxBytes())
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, bodyError(err)
		}
		return nil, domain.Internal("spool upload", err)
	}
	if f.Size() == 0 {
		_ = f.Remove()
		return nil, nil
	}
	return f, nil
}

func bodyError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return domain.Validationf("request body too large")
	}
	return domain.Validationf("malformed multipart body")
}
