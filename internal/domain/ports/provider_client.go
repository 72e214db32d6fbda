package ports

import (
	"context"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
)

// ProviderClient is the pull request host as seen by one analysis.
type ProviderClient interface {
	// GetChangedFiles returns the files of the PR in the order the host lists them.
	GetChangedFiles(ctx context.Context) ([]models.ChangedFile, error)
	// GetLanguageStats returns bytes per language for the repository.
	GetLanguageStats(ctx context.Context) (map[string]int, error)
	GetPRMetadata(ctx context.Context) (models.PRMetadata, error)
	// GetDescription returns the PR body. With splitWalkthrough the per-file
	// walkthrough section is cut from the text and returned separately.
	GetDescription(ctx context.Context, splitWalkthrough bool) (string, []models.FileDescription, error)
	// PostComment publishes a comment. Temporary comments are the ones
	// RemoveProvisionalComment deletes.
	PostComment(ctx context.Context, text string, temporary bool) error
	// PostOrUpdatePersistentComment edits the comment that starts with header,
	// or creates it.
	PostOrUpdatePersistentComment(ctx context.Context, text, header string, finalMessage bool) error
	RemoveProvisionalComment(ctx context.Context) error
}

// ProviderFactory resolves the ProviderClient for a PR URL.
type ProviderFactory interface {
	ForURL(ctx context.Context, prURL string) (ProviderClient, error)
}
