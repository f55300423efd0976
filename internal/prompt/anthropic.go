package prompt

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/dmorgan81/fourpanel/internal/log"
)

type AnthropicDescriber struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

type AnthropicParams struct {
	Key       string
	Model     string
	MaxTokens int
	BaseURL   string
	Client    *http.Client
}

// NewAnthropicDescriber builds a client whose credential is fixed for its lifetime. The SDK's
// own retries are disabled; a failed call fails the request.
func NewAnthropicDescriber(params AnthropicParams) *AnthropicDescriber {
	opts := []option.RequestOption{
		option.WithAPIKey(params.Key),
		option.WithMaxRetries(0),
	}
	if params.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(params.BaseURL, "/")+"/"))
	}
	if params.Client != nil {
		opts = append(opts, option.WithHTTPClient(params.Client))
	}
	return &AnthropicDescriber{
		client:    anthropic.NewClient(opts...),
		model:     params.Model,
		maxTokens: int64(params.MaxTokens),
	}
}

func (d *AnthropicDescriber) Describe(ctx context.Context, word string) (string, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("AnthropicDescriber").With("word", word, "model", d.model)
	logger.Info("generating panel descriptions")

	msg, err := d.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(d.model),
		MaxTokens: d.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Instruction(word))),
		},
	})
	if err != nil {
		return "", err
	}

	if len(msg.Content) == 0 {
		return "", fmt.Errorf("%w: no content blocks", ErrUnexpectedResponse)
	}
	block := msg.Content[0]
	if block.Type != "text" {
		return "", fmt.Errorf("%w: content block type %q", ErrUnexpectedResponse, block.Type)
	}

	logger.Info("received panel descriptions", "chars", len(block.Text), "stop_reason", string(msg.StopReason))
	return block.Text, nil
}
