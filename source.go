package tinify

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/tinify/apierror"
	"github.com/GriffinCanCode/tinify/client"
)

// Source is an uploaded image plus the commands to apply when it is
// fetched or stored. A Source is immutable: every chaining method returns
// a new Source and leaves the receiver untouched, so values can be shared
// between goroutines. Chaining performs no I/O.
type Source struct {
	shared   *Shared
	url      string
	commands map[string]any
}

func newSource(shared *Shared, url string, commands map[string]any) *Source {
	if commands == nil {
		commands = map[string]any{}
	}
	return &Source{shared: shared, url: url, commands: commands}
}

// URL returns the resource reference issued by the service.
func (s *Source) URL() string { return s.url }

// Commands returns a copy of the pending commands.
func (s *Source) Commands() map[string]any {
	return cloneMap(s.commands)
}

// With returns a Source with the named command set to payload, replacing
// any earlier payload under the same name.
func (s *Source) With(name string, payload any) *Source {
	next := cloneMap(s.commands)
	next[name] = clonePayload(payload)
	return newSource(s.shared, s.url, next)
}

// Resize returns a Source that resizes the image.
func (s *Source) Resize(opts ResizeOptions) *Source {
	return s.With(CommandResize, opts)
}

// Convert returns a Source that converts the image to another format.
func (s *Source) Convert(opts ConvertOptions) *Source {
	return s.With(CommandConvert, opts)
}

// Transform returns a Source that applies opts, e.g. a background color
// for formats without transparency.
func (s *Source) Transform(opts TransformOptions) *Source {
	return s.With(CommandTransform, opts)
}

// Preserve returns a Source that keeps the listed metadata fields.
func (s *Source) Preserve(fields ...string) *Source {
	return s.With(CommandPreserve, append([]string{}, fields...))
}

// Result fetches the processed image.
func (s *Source) Result(ctx context.Context) (*Result, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	resp, err := c.Execute(ctx, http.MethodGet, s.url, s.commands, nil)
	if err != nil {
		return nil, err
	}
	return newResult(resp.Header, resp.Body), nil
}

// Store uploads the processed image to external storage and returns the
// response metadata; the image bytes are not downloaded.
func (s *Source) Store(ctx context.Context, opts StoreOptions) (*ResultMeta, error) {
	return s.store(ctx, opts)
}

// StoreWith is Store with an arbitrary JSON-encodable target description.
func (s *Source) StoreWith(ctx context.Context, target any) (*ResultMeta, error) {
	return s.store(ctx, target)
}

func (s *Source) store(ctx context.Context, target any) (*ResultMeta, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	body := cloneMap(s.commands)
	body[CommandStore] = target
	resp, err := c.Execute(ctx, http.MethodPost, s.url, body, nil)
	if err != nil {
		return nil, err
	}
	return newResultMeta(resp.Header), nil
}

// client fails for a Source that did not come from an upload, such as
// the zero value.
func (s *Source) client() (*client.Client, error) {
	if s == nil || s.shared == nil || s.url == "" {
		return nil, apierror.New(apierror.KindClient, "Source has no uploaded image; create it with FromBuffer, FromFile or FromURL", "", 0)
	}
	return s.shared.Client()
}

// ToBuffer fetches the processed image bytes.
func (s *Source) ToBuffer(ctx context.Context) ([]byte, error) {
	r, err := s.Result(ctx)
	if err != nil {
		return nil, err
	}
	return r.ToBuffer(), nil
}

// ToFile fetches the processed image and writes it to path.
func (s *Source) ToFile(ctx context.Context, path string) error {
	r, err := s.Result(ctx)
	if err != nil {
		return err
	}
	return r.ToFile(path)
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for k, v := range in {
		out[k] = clonePayload(v)
	}
	return out
}

// clonePayload copies the JSON-like containers a caller may keep mutating.
// Other values are stored as given.
func clonePayload(v any) any {
	switch p := v.(type) {
	case map[string]any:
		return cloneMap(p)
	case map[string]string:
		out := make(map[string]string, len(p))
		for k, s := range p {
			out[k] = s
		}
		return out
	case []any:
		out := make([]any, len(p))
		for i, e := range p {
			out[i] = clonePayload(e)
		}
		return out
	case []string:
		return append([]string{}, p...)
	case ConvertOptions:
		return ConvertOptions{Type: append([]string{}, p.Type...)}
	default:
		return v
	}
}
