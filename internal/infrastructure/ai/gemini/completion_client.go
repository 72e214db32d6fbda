package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/ai"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ ports.CompletionClient = (*CompletionClient)(nil)

type generateFunc func(ctx context.Context, req models.CompletionRequest) (*genai.GenerateContentResponse, error)

// CompletionClient sends one system/user prompt pair to a Gemini model.
type CompletionClient struct {
	client   *genai.Client
	generate generateFunc
}

func NewCompletionClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*CompletionClient, error) {
	if apiKey == "" {
		return nil, apperrors.ErrNoCompletionBackend.WithContext("detail", "gemini API key is empty")
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &CompletionClient{client: client}
	c.generate = c.generateContent
	return c, nil
}

func (c *CompletionClient) Complete(ctx context.Context, req models.CompletionRequest) (models.InvocationResult, error) {
	resp, err := c.generate(ctx, req)
	if err != nil {
		return models.InvocationResult{}, classify(req.Model, err)
	}

	text, reason := formatResponse(resp)
	if strings.TrimSpace(text) == "" {
		return models.InvocationResult{}, apperrors.NewPermanentError(req.Model, 0,
			apperrors.ErrEmptyCompletion.WithContext("finish_reason", reason))
	}

	return models.InvocationResult{
		Text:         text,
		FinishReason: reason,
		Model:        req.Model,
	}, nil
}

func (c *CompletionClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *CompletionClient) generateContent(ctx context.Context, req models.CompletionRequest) (*genai.GenerateContentResponse, error) {
	_, name := config.SplitModel(req.Model)
	model := c.client.GenerativeModel(name)
	model.SetTemperature(float32(req.Temperature))
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	return model.GenerateContent(ctx, genai.Text(req.User))
}

// formatResponse returns the text of the first candidate and its finish reason.
func formatResponse(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", models.FinishReasonUnknown
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return sb.String(), finishReason(cand.FinishReason)
}

func finishReason(r genai.FinishReason) string {
	switch r {
	case genai.FinishReasonStop:
		return models.FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return models.FinishReasonLength
	case genai.FinishReasonSafety:
		return models.FinishReasonSafety
	case genai.FinishReasonRecitation:
		return models.FinishReasonRecitation
	case genai.FinishReasonOther:
		return models.FinishReasonOther
	default:
		return models.FinishReasonUnknown
	}
}

func classify(model string, err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return apperrors.NewPermanentError(model, 0, err)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return ai.ClassifyStatus(model, gErr.Code, err)
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
			return apperrors.NewTransientError(model, 0, err)
		case codes.Canceled:
			return err
		default:
			return apperrors.NewPermanentError(model, 0, err)
		}
	}

	return ai.ClassifyTransport(model, err)
}
