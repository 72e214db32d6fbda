package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, req models.CompletionRequest) (models.InvocationResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.InvocationResult), args.Error(1)
}

func TestNewModelRouter(t *testing.T) {
	r := NewModelRouter()
	assert.NotNil(t, r)
	assert.Empty(t, r.List())
}

func TestRegister(t *testing.T) {
	r := NewModelRouter()

	require.NoError(t, r.Register(config.AIGemini, &MockCompletionClient{}))
	assert.True(t, r.IsRegistered(config.AIGemini))

	err := r.Register(config.AIGemini, &MockCompletionClient{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestResolve(t *testing.T) {
	gem := &MockCompletionClient{}
	oai := &MockCompletionClient{}
	r := NewModelRouter()
	require.NoError(t, r.Register(config.AIGemini, gem))
	require.NoError(t, r.Register(config.AIOpenAI, oai))

	tests := []struct {
		model string
		want  *MockCompletionClient
	}{
		{"gemini-2.5-pro", gem},
		{"gpt-4o", oai},
		{"o3-mini", oai},
		{"openai/llama-3-70b", oai},
		{"gemini/gemini-2.5-flash", gem},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, err := r.Resolve(tt.model)
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}

	_, err := r.Resolve("claude-x")
	assert.ErrorIs(t, err, apperrors.ErrUnknownModel)
}

func TestComplete_Routes(t *testing.T) {
	oai := &MockCompletionClient{}
	r := NewModelRouter()
	require.NoError(t, r.Register(config.AIOpenAI, oai))

	req := models.CompletionRequest{User: "u", Model: "gpt-4o"}
	oai.On("Complete", mock.Anything, req).Return(models.InvocationResult{Text: "ok", Model: "gpt-4o"}, nil).Once()

	res, err := r.Complete(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	oai.AssertExpectations(t)
}

func TestComplete_UnknownModelIsPermanent(t *testing.T) {
	r := NewModelRouter()

	_, err := r.Complete(context.Background(), models.CompletionRequest{Model: "gemini-2.5-pro"})

	require.Error(t, err)
	assert.False(t, apperrors.IsTransient(err))
	var mErr *apperrors.ModelError
	assert.True(t, errors.As(err, &mErr))
	assert.Equal(t, "gemini-2.5-pro", mErr.Model)
}
