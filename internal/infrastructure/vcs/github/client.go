package github

import (
	"context"
	"net/http"
	"strconv"

	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/regex"
	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// PRRef identifies a pull request on GitHub.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

// ParsePRURL accepts web (github.com/o/r/pull/n) and API
// (api.github.com/repos/o/r/pulls/n) pull request URLs.
func ParsePRURL(prURL string) (PRRef, error) {
	m := regex.GitHubPRURL.FindStringSubmatch(prURL)
	if m == nil {
		m = regex.GitHubAPIPRURL.FindStringSubmatch(prURL)
	}
	if m == nil {
		return PRRef{}, apperrors.ErrInvalidPRURL.WithContext("detail", prURL)
	}
	n, err := strconv.Atoi(m[3])
	if err != nil || n <= 0 {
		return PRRef{}, apperrors.ErrInvalidPRURL.WithContext("detail", prURL)
	}
	return PRRef{Owner: m[1], Repo: m[2], Number: n}, nil
}

func newAPIClient(token string) *github.Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return github.NewClient(httpClient)
}

// NewGitHubClient builds a client for ref authenticated with token.
func NewGitHubClient(ref PRRef, token string, trans *i18n.Translations) *GitHubClient {
	return newGitHubClientFromAPI(newAPIClient(token), ref, trans)
}

func newGitHubClientFromAPI(client *github.Client, ref PRRef, trans *i18n.Translations) *GitHubClient {
	return NewGitHubClientWithServices(
		client.PullRequests,
		client.Issues,
		client.Repositories,
		ref.Owner,
		ref.Repo,
		ref.Number,
		trans,
	)
}
