package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrTooLarge is returned when an upload exceeds the spool limit.
var ErrTooLarge = errors.New("storage: upload too large")

// Spool writes request uploads to temporary files on the local filesystem.
// Each file belongs to exactly one request and is removed by it.
type Spool struct {
	basePath string
	maxBytes int64
}

// NewSpool initializes a Spool rooted at basePath, or at a directory under
// os.TempDir when basePath is empty.
func NewSpool(basePath string, maxBytes int64) (*Spool, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), "thumbnail-uploads")
	}
	if maxBytes <= 0 {
		return nil, errors.New("storage: max bytes must be positive")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &Spool{basePath: basePath, maxBytes: maxBytes}, nil
}

// BasePath returns the configured root directory.
func (s *Spool) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// MaxBytes returns the per-file size limit.
func (s *Spool) MaxBytes() int64 {
	if s == nil {
		return 0
	}
	return s.maxBytes
}

// Write copies r into a new temp file. Files larger than the limit are
// removed and ErrTooLarge is returned.
func (s *Spool) Write(ctx context.Context, filename, mimeType string, r io.Reader) (*SpooledFile, error) {
	if s == nil {
		return nil, errors.New("storage: no spool configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := uuid.NewString() + sanitizeExt(filename)
	fullPath := filepath.Join(s.basePath, name)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("storage: create file: %w", err)
	}
	sf := &SpooledFile{path: fullPath, filename: filepath.Base(filename), mimeType: mimeType}
	n, copyErr := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = sf.Remove()
		return nil, fmt.Errorf("storage: write file: %w", copyErr)
	case closeErr != nil:
		_ = sf.Remove()
		return nil, fmt.Errorf("storage: close file: %w", closeErr)
	case n > s.maxBytes:
		_ = sf.Remove()
		return nil, ErrTooLarge
	}
	sf.size = n
	return sf, nil
}

// sanitizeExt keeps a short alphanumeric extension from the client filename.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// SpooledFile is one temp upload. Remove deletes it once; later calls are
// no-ops.
type SpooledFile struct {
	path     string
	filename string
	mimeType string
	size     int64

	once      sync.Once
	removeErr error
}

func (f *SpooledFile) Path() string     { return f.path }
func (f *SpooledFile) Filename() string { return f.filename }
func (f *SpooledFile) MIMEType() string { return f.mimeType }
func (f *SpooledFile) Size() int64      { return f.size }

func (f *SpooledFile) Remove() error {
	f.once.Do(func() {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.removeErr = fmt.Errorf("storage: remove file: %w", err)
		}
	})
	return f.removeErr
}
