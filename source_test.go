package tinify

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/tinify/apierror"
)

var pngPayload = []byte("\x89PNG\r\n\x1a\nsmall-png-bytes")

func TestFromBuffer(t *testing.T) {
	svc := newFakeService(t, imageService(pngPayload))
	s := svc.shared("valid")
	ctx := context.Background()

	source, err := s.FromBuffer(ctx, []byte("png file"))
	require.NoError(t, err)

	upload := svc.last()
	assert.Equal(t, http.MethodPost, upload.Method)
	assert.Equal(t, "/shrink", upload.Path)
	assert.Equal(t, []byte("png file"), upload.Body)
	assert.Equal(t, svc.URL+"/output/loc1", source.URL())
	assert.Empty(t, source.Commands())

	t.Run("fetch without commands", func(t *testing.T) {
		data, err := source.ToBuffer(ctx)
		require.NoError(t, err)

		fetch := svc.last()
		assert.Equal(t, http.MethodGet, fetch.Method)
		assert.Equal(t, "/output/loc1", fetch.Path)
		assert.Empty(t, fetch.Body)
		assert.Equal(t, pngPayload, data)
	})

	t.Run("compression count", func(t *testing.T) {
		n, ok := s.CompressionCount()
		assert.True(t, ok)
		assert.Equal(t, int64(7), n)
	})
}

func TestFromURL(t *testing.T) {
	t.Run("submits source url", func(t *testing.T) {
		svc := newFakeService(t, imageService(pngPayload))

		source, err := svc.shared("valid").FromURL(context.Background(), "http://example.com/test.jpg")
		require.NoError(t, err)

		upload := svc.last()
		assert.Equal(t, http.MethodPost, upload.Method)
		assert.Equal(t, "/shrink", upload.Path)
		assert.JSONEq(t, `{"source":{"url":"http://example.com/test.jpg"}}`, string(upload.Body))
		assert.Equal(t, "application/json", upload.Header.Get("Content-Type"))
		assert.Equal(t, svc.URL+"/output/loc1", source.URL())
	})

	t.Run("unreachable source", func(t *testing.T) {
		svc := newFakeService(t, func(f *fakeService, w http.ResponseWriter, r request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Source not found","message":"Cannot parse URL"}`))
		})

		source, err := svc.shared("valid").FromURL(context.Background(), "http://x/y.jpg")
		require.Error(t, err)
		assert.Nil(t, source)
		assert.JSONEq(t, `{"source":{"url":"http://x/y.jpg"}}`, string(svc.last().Body))
		assert.ErrorIs(t, err, apierror.ErrClient)
		assert.Equal(t, "Cannot parse URL (HTTP 400/Source not found)", err.Error())
	})
}

func TestFromFile(t *testing.T) {
	svc := newFakeService(t, imageService(pngPayload))
	path := filepath.Join(t.TempDir(), "input.png")
	require.NoError(t, os.WriteFile(path, []byte("png file"), 0o600))

	source, err := svc.shared("valid").FromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png file"), svc.last().Body)
	assert.Equal(t, svc.URL+"/output/loc1", source.URL())

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.shared("valid").FromFile(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestChaining(t *testing.T) {
	base := newSource(New(Settings{}), "https://api.tinify.com/output/loc1", nil)

	t.Run("does not mutate the parent", func(t *testing.T) {
		resized := base.Resize(ResizeOptions{Width: 400})

		assert.NotContains(t, base.Commands(), CommandResize)
		assert.Contains(t, resized.Commands(), CommandResize)
		assert.Equal(t, base.URL(), resized.URL())
	})

	t.Run("same command overwrites", func(t *testing.T) {
		s := base.
			Resize(ResizeOptions{Width: 100}).
			Resize(ResizeOptions{Width: 200})

		assert.Equal(t, map[string]any{CommandResize: ResizeOptions{Width: 200}}, s.Commands())
	})

	t.Run("independent commands accumulate", func(t *testing.T) {
		s := base.
			Resize(ResizeOptions{Method: MethodFit, Width: 100, Height: 60}).
			Preserve(PreserveCopyright, PreserveLocation).
			Convert(ConvertOptions{Type: []string{"image/webp"}}).
			Transform(TransformOptions{Background: "white"})

		assert.Len(t, s.Commands(), 4)
	})

	t.Run("siblings do not share state", func(t *testing.T) {
		parent := base.With("custom", map[string]any{"a": 1})
		left := parent.With("left", true)
		right := parent.With("right", true)

		assert.NotContains(t, left.Commands(), "right")
		assert.NotContains(t, right.Commands(), "left")
		assert.Len(t, parent.Commands(), 1)
	})

	t.Run("payload maps are copied", func(t *testing.T) {
		payload := map[string]any{"width": 100}
		s := base.With(CommandResize, payload)
		payload["width"] = 999

		assert.Equal(t, map[string]any{"width": 100}, s.Commands()[CommandResize])

		got := s.Commands()
		got[CommandResize].(map[string]any)["width"] = 1
		assert.Equal(t, map[string]any{"width": 100}, s.Commands()[CommandResize])
	})

	t.Run("preserve fields are copied", func(t *testing.T) {
		fields := []string{PreserveCopyright}
		s := base.Preserve(fields...)
		fields[0] = PreserveCreation

		assert.Equal(t, []string{PreserveCopyright}, s.Commands()[CommandPreserve])
	})

	t.Run("concurrent chaining", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s := base.Resize(ResizeOptions{Width: i + 1})
				assert.Len(t, s.Commands(), 1)
			}(i)
		}
		wg.Wait()
		assert.Empty(t, base.Commands())
	})
}

func TestResultWithCommands(t *testing.T) {
	svc := newFakeService(t, imageService(pngPayload))
	s := svc.shared("valid")
	ctx := context.Background()
	source, err := s.FromBuffer(ctx, []byte("png file"))
	require.NoError(t, err)

	t.Run("resize", func(t *testing.T) {
		result, err := source.Resize(ResizeOptions{Width: 400}).Result(ctx)
		require.NoError(t, err)

		fetch := svc.last()
		assert.Equal(t, http.MethodGet, fetch.Method)
		assert.Equal(t, `{"resize":{"width":400}}`, string(fetch.Body))
		assert.Equal(t, "application/json", fetch.Header.Get("Content-Type"))

		w, ok := result.Width()
		assert.True(t, ok)
		assert.Equal(t, 400, w)
		assert.Equal(t, pngPayload, result.Data())
	})

	t.Run("overwritten resize", func(t *testing.T) {
		_, err := source.
			Resize(ResizeOptions{Width: 100}).
			Resize(ResizeOptions{Width: 200}).
			Result(ctx)
		require.NoError(t, err)

		assert.JSONEq(t, `{"resize":{"width":200}}`, string(svc.last().Body))
	})

	t.Run("several commands", func(t *testing.T) {
		_, err := source.
			Preserve(PreserveCopyright, PreserveLocation).
			Resize(ResizeOptions{Method: MethodFit, Width: 100, Height: 60}).
			Convert(ConvertOptions{Type: []string{"image/webp", "image/png"}}).
			Transform(TransformOptions{Background: "black"}).
			Result(ctx)
		require.NoError(t, err)

		assert.Equal(t,
			`{"convert":{"type":["image/webp","image/png"]},`+
				`"preserve":["copyright","location"],`+
				`"resize":{"method":"fit","width":100,"height":60},`+
				`"transform":{"background":"black"}}`,
			string(svc.last().Body))
	})

	t.Run("to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.png")
		require.NoError(t, source.ToFile(ctx, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, pngPayload, data)
	})
}

func TestStore(t *testing.T) {
	svc := newFakeService(t, imageService(pngPayload))
	ctx := context.Background()
	source, err := svc.shared("valid").FromBuffer(ctx, []byte("png file"))
	require.NoError(t, err)

	t.Run("with resize", func(t *testing.T) {
		meta, err := source.Resize(ResizeOptions{Width: 400}).Store(ctx, StoreOptions{Service: "s3"})
		require.NoError(t, err)

		store := svc.last()
		assert.Equal(t, http.MethodPost, store.Method)
		assert.Equal(t, "/output/loc1", store.Path)
		assert.JSONEq(t, `{"resize":{"width":400},"store":{"service":"s3"}}`, string(store.Body))

		location, ok := meta.Location()
		assert.True(t, ok)
		assert.Equal(t, "https://bucket.s3-region.amazonaws.com/some/path", location)
		w, ok := meta.Width()
		assert.True(t, ok)
		assert.Equal(t, 400, w)
		_, ok = meta.Height()
		assert.False(t, ok)
	})

	t.Run("does not add store to the source", func(t *testing.T) {
		_, err := source.StoreWith(ctx, map[string]any{"service": "gcs", "gcp_access_token": "token"})
		require.NoError(t, err)

		assert.JSONEq(t, `{"store":{"service":"gcs","gcp_access_token":"token"}}`, string(svc.last().Body))
		assert.NotContains(t, source.Commands(), CommandStore)
	})

	t.Run("s3 options", func(t *testing.T) {
		_, err := source.Store(ctx, StoreOptions{
			Service:            "s3",
			AWSAccessKeyID:     "AKIA",
			AWSSecretAccessKey: "secret",
			Region:             "us-west-1",
			Path:               "bucket/file.png",
			Headers:            map[string]string{"Cache-Control": "max-age=60"},
		})
		require.NoError(t, err)

		assert.JSONEq(t, `{"store":{
			"service":"s3",
			"aws_access_key_id":"AKIA",
			"aws_secret_access_key":"secret",
			"region":"us-west-1",
			"path":"bucket/file.png",
			"headers":{"Cache-Control":"max-age=60"}}}`, string(svc.last().Body))
	})
}

func TestTerminalErrors(t *testing.T) {
	svc := newFakeService(t, func(f *fakeService, w http.ResponseWriter, r request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"Credentials are invalid"}`))
	})
	ctx := context.Background()
	source := newSource(svc.shared("invalid"), svc.URL+"/output/loc1", nil)

	_, err := source.Result(ctx)
	assert.ErrorIs(t, err, apierror.ErrAccount)

	_, err = source.Store(ctx, StoreOptions{Service: "s3"})
	assert.ErrorIs(t, err, apierror.ErrAccount)

	_, err = source.ToBuffer(ctx)
	assert.ErrorIs(t, err, apierror.ErrAccount)

	err = source.ToFile(ctx, filepath.Join(t.TempDir(), "never.png"))
	assert.ErrorIs(t, err, apierror.ErrAccount)

	t.Run("without key", func(t *testing.T) {
		_, err := newSource(New(Settings{}), svc.URL+"/output/loc1", nil).Result(ctx)
		assert.ErrorIs(t, err, apierror.ErrAccount)
	})

	t.Run("zero value source", func(t *testing.T) {
		before := len(svc.all())
		for _, source := range []*Source{{}, (&Source{}).Resize(ResizeOptions{Width: 10})} {
			_, err := source.Result(ctx)
			assert.ErrorIs(t, err, apierror.ErrClient)

			_, err = source.Store(ctx, StoreOptions{Service: "s3"})
			assert.ErrorIs(t, err, apierror.ErrClient)

			_, err = source.ToBuffer(ctx)
			assert.ErrorIs(t, err, apierror.ErrClient)

			err = source.ToFile(ctx, filepath.Join(t.TempDir(), "never.png"))
			assert.ErrorIs(t, err, apierror.ErrClient)
		}
		assert.Len(t, svc.all(), before)
	})
}
