package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/ai"
	"github.com/sashabaranov/go-openai"
)

var _ ports.CompletionClient = (*CompletionClient)(nil)

// CompletionClient talks to any OpenAI compatible chat completions endpoint.
type CompletionClient struct {
	client *openai.Client
}

// NewCompletionClient builds a client for apiKey. An empty baseURL keeps the
// public OpenAI endpoint.
func NewCompletionClient(apiKey, baseURL string) (*CompletionClient, error) {
	if apiKey == "" {
		return nil, apperrors.ErrNoCompletionBackend.WithContext("detail", "openai API key is empty")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &CompletionClient{client: openai.NewClientWithConfig(cfg)}, nil
}

func (c *CompletionClient) Complete(ctx context.Context, req models.CompletionRequest) (models.InvocationResult, error) {
	_, name := config.SplitModel(req.Model)

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       name,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return models.InvocationResult{}, classify(req.Model, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return models.InvocationResult{}, apperrors.NewPermanentError(req.Model, 0, apperrors.ErrEmptyCompletion)
	}

	choice := resp.Choices[0]
	return models.InvocationResult{
		Text:         choice.Message.Content,
		FinishReason: finishReason(choice.FinishReason),
		Model:        req.Model,
	}, nil
}

func finishReason(r openai.FinishReason) string {
	switch r {
	case openai.FinishReasonStop:
		return models.FinishReasonStop
	case openai.FinishReasonLength:
		return models.FinishReasonLength
	case openai.FinishReasonContentFilter:
		return models.FinishReasonSafety
	case "":
		return models.FinishReasonUnknown
	default:
		return models.FinishReasonOther
	}
}

func classify(model string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return ai.ClassifyStatus(model, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return ai.ClassifyStatus(model, reqErr.HTTPStatusCode, err)
	}
	return ai.ClassifyTransport(model, err)
}
