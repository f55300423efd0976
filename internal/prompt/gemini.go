package prompt

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmorgan81/fourpanel/internal/log"
	"google.golang.org/genai"
)

type GeminiDescriber struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

type GeminiParams struct {
	Key       string
	Model     string
	MaxTokens int
	BaseURL   string
	Client    *http.Client
}

func NewGeminiDescriber(ctx context.Context, params GeminiParams) (*GeminiDescriber, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      params.Key,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  params.Client,
		HTTPOptions: genai.HTTPOptions{BaseURL: params.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiDescriber{
		client:    client,
		model:     params.Model,
		maxTokens: int32(params.MaxTokens),
	}, nil
}

func (d *GeminiDescriber) Describe(ctx context.Context, word string) (string, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("GeminiDescriber").With("word", word, "model", d.model)
	logger.Info("generating panel descriptions")

	resp, err := d.client.Models.GenerateContent(ctx, d.model, genai.Text(Instruction(word)),
		&genai.GenerateContentConfig{MaxOutputTokens: d.maxTokens},
	)
	if err != nil {
		return "", err
	}

	text, err := firstText(resp)
	if err != nil {
		return "", err
	}
	logger.Info("received panel descriptions", "chars", len(text))
	return text, nil
}

// firstText applies the same rule as the Anthropic path: the first part of the first candidate
// must be text. Thought parts are skipped.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrUnexpectedResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.Text == "" {
				return "", fmt.Errorf("%w: first part is not text", ErrUnexpectedResponse)
			}
			return part.Text, nil
		}
	}
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return "", fmt.Errorf("%w: finish reason %s", ErrUnexpectedResponse, candidate.FinishReason)
	}
	return "", fmt.Errorf("%w: empty candidate", ErrUnexpectedResponse)
}
