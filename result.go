package tinify

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ResultMeta is the metadata returned by Store.
type ResultMeta struct {
	header http.Header
}

func newResultMeta(h http.Header) *ResultMeta {
	return &ResultMeta{header: h.Clone()}
}

// Width returns the Image-Width header, if present and numeric.
func (m *ResultMeta) Width() (int, bool) { return intHeader(m.header, "Image-Width") }

// Height returns the Image-Height header, if present and numeric.
func (m *ResultMeta) Height() (int, bool) { return intHeader(m.header, "Image-Height") }

// Location returns the URL of the stored object.
func (m *ResultMeta) Location() (string, bool) { return stringHeader(m.header, "Location") }

// Result is a processed image: its metadata and bytes.
type Result struct {
	meta *ResultMeta
	data []byte
}

func newResult(h http.Header, data []byte) *Result {
	return &Result{meta: newResultMeta(h), data: append([]byte(nil), data...)}
}

// Width returns the image width, if reported.
func (r *Result) Width() (int, bool) { return r.meta.Width() }

// Height returns the image height, if reported.
func (r *Result) Height() (int, bool) { return r.meta.Height() }

// Size returns the Content-Length header, if present and numeric.
func (r *Result) Size() (int64, bool) {
	v, ok := stringHeader(r.meta.header, "Content-Length")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MediaType returns the Content-Type header, if present.
func (r *Result) MediaType() (string, bool) { return stringHeader(r.meta.header, "Content-Type") }

// ContentType is an alias for MediaType.
func (r *Result) ContentType() (string, bool) { return r.MediaType() }

// Extension returns a file extension without the dot, e.g. "png" or "jpg",
// derived from the media type.
func (r *Result) Extension() (string, bool) {
	mt, ok := r.MediaType()
	if !ok {
		return "", false
	}
	mt, _, _ = strings.Cut(mt, ";")
	mt = strings.TrimSpace(mt)

	if m := mimetype.Lookup(mt); m != nil && m.Extension() != "" {
		return strings.TrimPrefix(m.Extension(), "."), true
	}
	_, sub, found := strings.Cut(mt, "/")
	if !found || sub == "" {
		return "", false
	}
	return sub, true
}

// Data returns a copy of the image bytes.
func (r *Result) Data() []byte { return append([]byte(nil), r.data...) }

// ToBuffer is an alias for Data.
func (r *Result) ToBuffer() []byte { return r.Data() }

// ToFile writes the image bytes to path.
func (r *Result) ToFile(path string) error { return writeFile(path, r.data) }

func stringHeader(h http.Header, key string) (string, bool) {
	v := strings.TrimSpace(h.Get(key))
	return v, v != ""
}

func intHeader(h http.Header, key string) (int, bool) {
	v, ok := stringHeader(h, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
