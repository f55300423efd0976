// Package panel produces a four-panel image for a word: one text round trip, then one image round
// trip.
package panel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmorgan81/fourpanel/internal/image"
	"github.com/dmorgan81/fourpanel/internal/log"
	"github.com/dmorgan81/fourpanel/internal/prompt"
	"github.com/samber/do"
)

const ContentType = "image/png"

type Generator struct {
	describer prompt.Describer
	renderer  image.Renderer
}

func NewGenerator(i *do.Injector) (*Generator, error) {
	return New(do.MustInvoke[prompt.Describer](i), do.MustInvoke[image.Renderer](i))
}

func New(describer prompt.Describer, renderer image.Renderer) (*Generator, error) {
	if describer == nil {
		return nil, fmt.Errorf("describer is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	return &Generator{describer: describer, renderer: renderer}, nil
}

func (g *Generator) Generate(ctx context.Context, word string) ([]byte, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("Generator").With("word", word)

	description, err := g.describer.Describe(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("describe %q: %w", word, err)
	}

	img, err := g.renderer.Render(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", word, err)
	}

	if detected := http.DetectContentType(img); detected != ContentType {
		logger.Warn("rendered bytes do not look like a png", "detected", detected)
	}
	return img, nil
}
