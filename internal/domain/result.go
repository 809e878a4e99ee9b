package domain

import "encoding/base64"

// ThumbnailResult is the encoded output of one generation.
type ThumbnailResult struct {
	PNG    []byte
	Width  int
	Height int
}

// DataURL returns the PNG as a base64 data URL.
func (r ThumbnailResult) DataURL() string {
	return DataURL("image/png", r.PNG)
}

// DataURL encodes data inline with the given MIME type.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
