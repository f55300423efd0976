package image

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("image generator credential is not configured")
	ErrMalformedResponse = errors.New("malformed response from image generator")
)

// StatusError carries a non-2xx answer from the image collaborator.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("image generator returned status %d: %s", e.StatusCode, e.Body)
}

// Renderer turns a text prompt into encoded image bytes.
type Renderer interface {
	Render(ctx context.Context, prompt string) ([]byte, error)
}
