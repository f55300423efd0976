package inject

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/fourpanel/internal/config"
	"github.com/dmorgan81/fourpanel/internal/handler"
	"github.com/dmorgan81/fourpanel/internal/image"
	"github.com/dmorgan81/fourpanel/internal/log"
	"github.com/dmorgan81/fourpanel/internal/page"
	"github.com/dmorgan81/fourpanel/internal/panel"
	"github.com/dmorgan81/fourpanel/internal/param"
	"github.com/dmorgan81/fourpanel/internal/prompt"
	"github.com/dmorgan81/fourpanel/internal/store"
	"github.com/dmorgan81/fourpanel/internal/wordlist"
	"github.com/samber/do"
)

func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	logger := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[context.Context](injector, ctx)
	do.ProvideValue[*slog.Logger](injector, logger)
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	// AWS clients are only built when a word list or credential lives in AWS.
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.Provide[store.Reader](injector, func(i *do.Injector) (store.Reader, error) {
		reader := &store.SchemeReader{Local: &store.FileReader{}}
		if strings.HasPrefix(cfg.WordList.Path, "s3://") {
			reader.S3 = &store.S3Reader{Client: do.MustInvoke[*s3.Client](i)}
		}
		return reader, nil
	})

	do.ProvideNamedValue[string](injector, "wordlist_path", cfg.WordList.Path)
	do.ProvideNamedValue[bool](injector, "validate_words", cfg.WordList.Validate)
	do.ProvideNamedValue[string](injector, "static_dir", cfg.StaticDir)
	do.ProvideNamedValue[string](injector, "cors_origin", cfg.CORSOrigin)

	do.ProvideNamed[string](injector, "anthropic_key", func(i *do.Injector) (string, error) {
		return resolve(ctx, i, cfg.Anthropic.Key, cfg.Anthropic.KeyParam)
	})
	do.ProvideNamed[string](injector, "gemini_key", func(i *do.Injector) (string, error) {
		return resolve(ctx, i, cfg.Gemini.Key, cfg.Gemini.KeyParam)
	})

	do.Provide[*wordlist.Dictionary](injector, wordlist.NewDictionary)
	do.Provide[prompt.Describer](injector, func(i *do.Injector) (prompt.Describer, error) {
		return newDescriber(ctx, i, cfg)
	})
	do.Provide[image.Renderer](injector, func(i *do.Injector) (image.Renderer, error) {
		return &image.ImagenRenderer{
			Client:  do.MustInvoke[*http.Client](i),
			Key:     do.MustInvokeNamed[string](i, "gemini_key"),
			Model:   cfg.Imagen.Model,
			BaseURL: cfg.Imagen.BaseURL,
		}, nil
	})
	do.Provide[*panel.Generator](injector, panel.NewGenerator)
	do.ProvideValue[*page.Templator](injector, &page.Templator{})
	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}

// Check builds the handler graph so that an unreadable word list or unresolvable credential
// fails at startup. With RequireCredentials set, empty credentials fail too.
func Check(injector *do.Injector, cfg *config.Config) error {
	if _, err := do.Invoke[*handler.Handler](injector); err != nil {
		return err
	}
	if !cfg.RequireCredentials {
		return nil
	}

	var errs []error
	if key := do.MustInvokeNamed[string](injector, "gemini_key"); key == "" {
		errs = append(errs, fmt.Errorf("image generation: %w", image.ErrMissingCredential))
	}
	if cfg.Text.Provider == config.ProviderAnthropic {
		if key := do.MustInvokeNamed[string](injector, "anthropic_key"); key == "" {
			errs = append(errs, fmt.Errorf("text generation: %w", image.ErrMissingCredential))
		}
	}
	return errors.Join(errs...)
}

func newDescriber(ctx context.Context, i *do.Injector, cfg *config.Config) (prompt.Describer, error) {
	client := do.MustInvoke[*http.Client](i)
	switch cfg.Text.Provider {
	case config.ProviderGemini:
		return prompt.NewGeminiDescriber(ctx, prompt.GeminiParams{
			Key:       do.MustInvokeNamed[string](i, "gemini_key"),
			Model:     cfg.Gemini.TextModel,
			MaxTokens: cfg.Text.MaxTokens,
			BaseURL:   cfg.Gemini.BaseURL,
			Client:    client,
		})
	default:
		return prompt.NewAnthropicDescriber(prompt.AnthropicParams{
			Key:       do.MustInvokeNamed[string](i, "anthropic_key"),
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Text.MaxTokens,
			BaseURL:   cfg.Anthropic.BaseURL,
			Client:    client,
		}), nil
	}
}

func resolve(ctx context.Context, i *do.Injector, value, path string) (string, error) {
	var fetcher param.Fetcher
	if value == "" && path != "" {
		fetcher = do.MustInvoke[param.Fetcher](i)
	}
	return param.Resolve(ctx, fetcher, value, path)
}
