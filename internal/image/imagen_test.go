package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type imagenServer struct {
	*httptest.Server
	hits    atomic.Int32
	path    string
	key     string
	payload imagenRequest
}

func newImagenServer(t *testing.T, status int, body string) *imagenServer {
	t.Helper()
	s := &imagenServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.path = r.URL.Path
		s.key = r.URL.Query().Get("key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &s.payload)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newRenderer(s *imagenServer, key string) *ImagenRenderer {
	return &ImagenRenderer{
		Client:  s.Client(),
		Key:     key,
		Model:   "imagen-3.0-generate-002",
		BaseURL: s.URL + "/v1beta",
	}
}

func TestImagenRenderer_Render(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes the first prediction", func(t *testing.T) {
		srv := newImagenServer(t, http.StatusOK, `{"predictions":[{"bytesBase64Encoded":"`+pngBase64+`","mimeType":"image/png"}]}`)

		img, err := newRenderer(srv, "AIza-test").Render(ctx, "a 2x2 grid")
		require.NoError(t, err)

		want, _ := base64.StdEncoding.DecodeString(pngBase64)
		assert.Equal(t, want, img)
		assert.Equal(t, "image/png", http.DetectContentType(img))
		assert.Equal(t, pngBase64, base64.StdEncoding.EncodeToString(img))

		assert.Equal(t, "/v1beta/models/imagen-3.0-generate-002:predict", srv.path)
		assert.Equal(t, "AIza-test", srv.key)
		require.Len(t, srv.payload.Instances, 1)
		assert.Equal(t, "a 2x2 grid", srv.payload.Instances[0].Prompt)
	})

	t.Run("missing credential makes no call", func(t *testing.T) {
		srv := newImagenServer(t, http.StatusOK, `{}`)

		_, err := newRenderer(srv, "").Render(ctx, "a 2x2 grid")
		assert.ErrorIs(t, err, ErrMissingCredential)
		assert.Zero(t, srv.hits.Load())
	})

	malformed := map[string]string{
		"no predictions":   `{}`,
		"empty list":       `{"predictions":[]}`,
		"no bytes field":   `{"predictions":[{"mimeType":"image/png"}]}`,
		"not json":         `<html>oops</html>`,
		"not base64":       `{"predictions":[{"bytesBase64Encoded":"***"}]}`,
		"predictions null": `{"predictions":null}`,
	}
	for name, body := range malformed {
		t.Run("malformed: "+name, func(t *testing.T) {
			srv := newImagenServer(t, http.StatusOK, body)
			_, err := newRenderer(srv, "AIza-test").Render(ctx, "a 2x2 grid")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}

	t.Run("non-2xx carries status and body", func(t *testing.T) {
		srv := newImagenServer(t, http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid"}}`)

		_, err := newRenderer(srv, "AIza-test").Render(ctx, "a 2x2 grid")
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "API key not valid")
	})

	t.Run("transport errors do not leak the key", func(t *testing.T) {
		srv := newImagenServer(t, http.StatusOK, `{}`)
		r := newRenderer(srv, "AIza-very-secret")
		srv.Close()

		_, err := r.Render(ctx, "a 2x2 grid")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "AIza-very-secret")
	})
}

func TestImagenRenderer_Endpoint(t *testing.T) {
	r := &ImagenRenderer{Key: "k&y", Model: "imagen-3.0-generate-002"}
	assert.Equal(t, DefaultImagenBaseURL+"/models/imagen-3.0-generate-002:predict?key=k%26y", r.endpoint())

	r.BaseURL = "http://localhost:8080/v1beta/"
	assert.Equal(t, "http://localhost:8080/v1beta/models/imagen-3.0-generate-002:predict?key=k%26y", r.endpoint())
}
