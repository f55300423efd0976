package panel

import (
	"context"
	"errors"
	"testing"

	"github.com/dmorgan81/fourpanel/internal/image"
	"github.com/dmorgan81/fourpanel/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDescriber struct {
	describeFunc func(ctx context.Context, word string) (string, error)
}

func (m *mockDescriber) Describe(ctx context.Context, word string) (string, error) {
	return m.describeFunc(ctx, word)
}

type mockRenderer struct {
	calls      int
	renderFunc func(ctx context.Context, prompt string) ([]byte, error)
}

func (m *mockRenderer) Render(ctx context.Context, prompt string) ([]byte, error) {
	m.calls++
	return m.renderFunc(ctx, prompt)
}

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestNew(t *testing.T) {
	_, err := New(nil, &mockRenderer{})
	assert.Error(t, err)
	_, err = New(&mockDescriber{}, nil)
	assert.Error(t, err)
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("passes the description to the renderer", func(t *testing.T) {
		d := &mockDescriber{describeFunc: func(_ context.Context, word string) (string, error) {
			return "grid for " + word, nil
		}}
		r := &mockRenderer{renderFunc: func(_ context.Context, p string) ([]byte, error) {
			assert.Equal(t, "grid for marngle", p)
			return png, nil
		}}
		g, err := New(d, r)
		require.NoError(t, err)

		img, err := g.Generate(ctx, "marngle")
		require.NoError(t, err)
		assert.Equal(t, png, img)
	})

	t.Run("describe failure skips rendering", func(t *testing.T) {
		d := &mockDescriber{describeFunc: func(context.Context, string) (string, error) {
			return "", prompt.ErrUnexpectedResponse
		}}
		r := &mockRenderer{}
		g, _ := New(d, r)

		_, err := g.Generate(ctx, "marngle")
		assert.ErrorIs(t, err, prompt.ErrUnexpectedResponse)
		assert.Zero(t, r.calls)
	})

	t.Run("render failure is wrapped", func(t *testing.T) {
		d := &mockDescriber{describeFunc: func(context.Context, string) (string, error) { return "grid", nil }}
		r := &mockRenderer{renderFunc: func(context.Context, string) ([]byte, error) {
			return nil, &image.StatusError{StatusCode: 500, Body: "boom"}
		}}
		g, _ := New(d, r)

		_, err := g.Generate(ctx, "marngle")
		var statusErr *image.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, 500, statusErr.StatusCode)
	})
}
