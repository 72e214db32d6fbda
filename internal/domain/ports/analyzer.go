package ports

import (
	"context"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
)

// DeploymentImpactAnalyzer runs the whole analysis for a PR URL.
type DeploymentImpactAnalyzer interface {
	Analyze(ctx context.Context, prURL string, opts models.AnalyzeOptions) (models.Outcome, error)
}
