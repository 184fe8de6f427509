package tinify

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// request is what the fake service received.
type request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// fakeService stands in for the API. Responses are produced by handle,
// which also sees the fake's own URL so it can mint Location headers.
type fakeService struct {
	*httptest.Server

	mu       sync.Mutex
	requests []request
}

func newFakeService(t *testing.T, handle func(f *fakeService, w http.ResponseWriter, r request)) *fakeService {
	t.Helper()
	f := &fakeService{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req := request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body}
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()
		handle(f, w, req)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeService) all() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request(nil), f.requests...)
}

func (f *fakeService) last() request {
	reqs := f.all()
	return reqs[len(reqs)-1]
}

func (f *fakeService) shared(key string) *Shared {
	return New(Settings{Key: key, Endpoint: f.URL})
}

// imageService mimics the happy path: uploads create /output/loc1, fetches
// return the stored payload, stores return a bucket location.
func imageService(payload []byte) func(f *fakeService, w http.ResponseWriter, r request) {
	return func(f *fakeService, w http.ResponseWriter, r request) {
		switch {
		case r.Method == http.MethodPost && r.Path == "/shrink":
			w.Header().Set("Location", f.URL+"/output/loc1")
			w.Header().Set("Compression-Count", "7")
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet && r.Path == "/output/loc1":
			w.Header().Set("Image-Width", "400")
			w.Header().Set("Image-Height", "300")
			w.Header().Set("Content-Type", "image/png")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(payload)
		case r.Method == http.MethodPost && r.Path == "/output/loc1":
			w.Header().Set("Location", "https://bucket.s3-region.amazonaws.com/some/path")
			w.Header().Set("Image-Width", "400")
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"NotFound","message":"Unknown route"}`))
		}
	}
}
