package github

import (
	"context"
	"net/url"

	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/google/go-github/github"
)

// GitHubProviderFactory creates a GitHubClient per pull request URL.
type GitHubProviderFactory struct {
	token   string
	trans   *i18n.Translations
	baseURL *url.URL
}

func NewGitHubProviderFactory(token string, trans *i18n.Translations) *GitHubProviderFactory {
	return &GitHubProviderFactory{token: token, trans: trans}
}

// WithBaseURL points the API client somewhere other than api.github.com. The
// URL must end with a slash.
func (f *GitHubProviderFactory) WithBaseURL(u *url.URL) *GitHubProviderFactory {
	f.baseURL = u
	return f
}

func (f *GitHubProviderFactory) ForURL(_ context.Context, prURL string) (ports.ProviderClient, error) {
	ref, err := ParsePRURL(prURL)
	if err != nil {
		return nil, err
	}
	if f.token == "" {
		return nil, apperrors.ErrTokenMissing
	}

	client := newAPIClient(f.token)
	if f.baseURL != nil {
		client.BaseURL = f.baseURL
	}
	return newGitHubClientFromAPI(client, ref, f.trans), nil
}

// Name is the host this factory serves.
func (f *GitHubProviderFactory) Name() string {
	return "github.com"
}

// compile-time check that the go-github services satisfy the narrow interfaces.
var (
	_ PullRequestsService = (*github.PullRequestsService)(nil)
	_ IssuesService       = (*github.IssuesService)(nil)
	_ RepositoriesService = (*github.RepositoriesService)(nil)
)
