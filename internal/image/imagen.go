package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmorgan81/fourpanel/internal/log"
)

const DefaultImagenBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenRequest struct {
	Instances []imagenInstance `json:"instances"`
}

type imagenPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType,omitempty"`
}

type imagenResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
}

// ImagenRenderer calls the Imagen predict endpoint. Its fields are set once and never changed,
// so one value can serve concurrent requests.
type ImagenRenderer struct {
	Client  *http.Client
	Key     string
	Model   string
	BaseURL string
}

func (g *ImagenRenderer) Render(ctx context.Context, prompt string) ([]byte, error) {
	if g.Key == "" {
		return nil, ErrMissingCredential
	}

	logger := log.FromContextOrDiscard(ctx).WithGroup("ImagenRenderer").With("model", g.Model)
	logger.Info("generating image", "prompt_chars", len(prompt))

	body, err := json.Marshal(imagenRequest{Instances: []imagenInstance{{Prompt: prompt}}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// url.Error repeats the request URL, which holds the key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, fmt.Errorf("imagen request: %s: %w", urlErr.Op, urlErr.Err)
		}
		return nil, fmt.Errorf("imagen request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var out imagenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(out.Predictions) == 0 || out.Predictions[0].BytesBase64Encoded == "" {
		return nil, fmt.Errorf("%w: missing predictions[0].bytesBase64Encoded", ErrMalformedResponse)
	}

	img, err := base64.StdEncoding.DecodeString(out.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	logger.Info("received image", "bytes", len(img), "mime_type", out.Predictions[0].MimeType)
	return img, nil
}

func (g *ImagenRenderer) endpoint() string {
	base := strings.TrimSuffix(g.BaseURL, "/")
	if base == "" {
		base = DefaultImagenBaseURL
	}
	return fmt.Sprintf("%s/models/%s:predict?%s", base, url.PathEscape(g.Model), url.Values{"key": {g.Key}}.Encode())
}
