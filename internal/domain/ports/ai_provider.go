package ports

import (
	"context"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
)

// CompletionClient performs one completion call for one model id.
// Failures are *errors.ModelError so callers can tell transient from permanent.
type CompletionClient interface {
	Complete(ctx context.Context, req models.CompletionRequest) (models.InvocationResult, error)
}

// TokenCounter estimates how many tokens a text costs in a prompt.
type TokenCounter interface {
	CountTokens(text string) int
}
