package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/google/go-github/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	owner  = "test-owner"
	repo   = "test-repo"
	number = 42
)

func newTestClient(t *testing.T) (*GitHubClient, *MockPRService, *MockIssuesService, *MockRepoService) {
	t.Helper()
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	pr, issues, repos := &MockPRService{}, &MockIssuesService{}, &MockRepoService{}
	return NewGitHubClientWithServices(pr, issues, repos, owner, repo, number, trans), pr, issues, repos
}

func TestGitHubClient_GetChangedFiles(t *testing.T) {
	t.Run("should follow pagination and keep order", func(t *testing.T) {
		client, pr, _, _ := newTestClient(t)

		pr.On("ListFiles", mock.Anything, owner, repo, number, mock.MatchedBy(func(o *github.ListOptions) bool { return o.Page == 0 })).
			Return([]*github.CommitFile{
				{Filename: github.String("a.go"), Status: github.String("modified"), Patch: github.String("@@ -1 +1 @@\n-a\n+b"), Additions: github.Int(1), Deletions: github.Int(1)},
			}, &github.Response{NextPage: 2}, nil).Once()
		pr.On("ListFiles", mock.Anything, owner, repo, number, mock.MatchedBy(func(o *github.ListOptions) bool { return o.Page == 2 })).
			Return([]*github.CommitFile{
				{Filename: github.String("b.go"), Status: github.String("removed")},
			}, &github.Response{}, nil).Once()

		files, err := client.GetChangedFiles(context.Background())

		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, models.ChangedFile{Filename: "a.go", Status: "modified", Patch: "@@ -1 +1 @@\n-a\n+b", Additions: 1, Deletions: 1}, files[0])
		assert.Equal(t, "b.go", files[1].Filename)
		assert.Equal(t, models.FileStatusRemoved, files[1].Status)
		pr.AssertExpectations(t)
	})

	t.Run("should wrap API errors", func(t *testing.T) {
		client, pr, _, _ := newTestClient(t)
		pr.On("ListFiles", mock.Anything, owner, repo, number, mock.Anything).
			Return(nil, nil, errors.New("404 Not Found"))

		_, err := client.GetChangedFiles(context.Background())

		assert.ErrorIs(t, err, apperrors.ErrFetchPR)
		assert.Contains(t, err.Error(), "404 Not Found")
	})
}

func TestGitHubClient_GetPRMetadata(t *testing.T) {
	client, pr, _, _ := newTestClient(t)

	pr.On("Get", mock.Anything, owner, repo, number).Return(&github.PullRequest{
		Title: github.String("Add cache layer"),
		Head:  &github.PullRequestBranch{Ref: github.String("feat/cache")},
	}, &github.Response{}, nil)
	pr.On("ListCommits", mock.Anything, owner, repo, number, mock.Anything).Return([]*github.RepositoryCommit{
		{Commit: &github.Commit{Message: github.String("add cache")}},
		{Commit: &github.Commit{Message: github.String("tune ttl")}},
	}, &github.Response{}, nil)

	meta, err := client.GetPRMetadata(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.PRMetadata{
		Number:         number,
		Title:          "Add cache layer",
		Branch:         "feat/cache",
		CommitMessages: []string{"add cache", "tune ttl"},
	}, meta)
}

func TestGitHubClient_GetLanguageStats(t *testing.T) {
	client, _, _, repos := newTestClient(t)
	repos.On("ListLanguages", mock.Anything, owner, repo).Return(map[string]int{"Go": 1000, "Shell": 20}, &github.Response{}, nil)

	langs, err := client.GetLanguageStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1000, langs["Go"])
}

func TestGitHubClient_GetDescription(t *testing.T) {
	body := "Adds a cache.\n\n### Walkthrough\n- `cache/cache.go`: new LRU cache\n- `main.go`: wires the cache\n\n## Notes\nDeploy after the migration."

	t.Run("should return the raw body without splitting", func(t *testing.T) {
		client, pr, _, _ := newTestClient(t)
		pr.On("Get", mock.Anything, owner, repo, number).Return(&github.PullRequest{Body: github.String(body)}, &github.Response{}, nil)

		desc, files, err := client.GetDescription(context.Background(), false)

		require.NoError(t, err)
		assert.Equal(t, body, desc)
		assert.Nil(t, files)
	})

	t.Run("should split the walkthrough", func(t *testing.T) {
		client, pr, _, _ := newTestClient(t)
		pr.On("Get", mock.Anything, owner, repo, number).Return(&github.PullRequest{Body: github.String(body)}, &github.Response{}, nil)

		desc, files, err := client.GetDescription(context.Background(), true)

		require.NoError(t, err)
		assert.Equal(t, "Adds a cache.\n\n## Notes\nDeploy after the migration.", desc)
		assert.Equal(t, []models.FileDescription{
			{Filename: "cache/cache.go", Summary: "new LRU cache"},
			{Filename: "main.go", Summary: "wires the cache"},
		}, files)
	})
}

func TestSplitWalkthrough_NoSection(t *testing.T) {
	desc, files := SplitWalkthrough("  just a description \n")

	assert.Equal(t, "just a description", desc)
	assert.Empty(t, files)
}

func TestGitHubClient_ProvisionalComment(t *testing.T) {
	client, _, issues, _ := newTestClient(t)

	issues.On("CreateComment", mock.Anything, owner, repo, number, mock.MatchedBy(func(c *github.IssueComment) bool {
		return c.GetBody() == "in progress"
	})).Return(&github.IssueComment{ID: github.Int64(7)}, &github.Response{}, nil).Once()
	issues.On("DeleteComment", mock.Anything, owner, repo, int64(7)).Return(&github.Response{}, nil).Once()

	require.NoError(t, client.PostComment(context.Background(), "in progress", true))
	require.NoError(t, client.RemoveProvisionalComment(context.Background()))
	require.NoError(t, client.RemoveProvisionalComment(context.Background()))

	issues.AssertExpectations(t)
	issues.AssertNumberOfCalls(t, "DeleteComment", 1)
}

func TestGitHubClient_PostOrUpdatePersistentComment(t *testing.T) {
	const header = "## Deployment Impact Analysis 🚀"

	t.Run("should create the comment when none exists", func(t *testing.T) {
		client, _, issues, _ := newTestClient(t)
		issues.On("ListComments", mock.Anything, owner, repo, number, mock.Anything).
			Return([]*github.IssueComment{{ID: github.Int64(1), Body: github.String("LGTM")}}, &github.Response{}, nil)
		issues.On("CreateComment", mock.Anything, owner, repo, number, mock.MatchedBy(func(c *github.IssueComment) bool {
			return c.GetBody() == header+"\n\nreport"
		})).Return(&github.IssueComment{ID: github.Int64(2)}, &github.Response{}, nil).Once()

		require.NoError(t, client.PostOrUpdatePersistentComment(context.Background(), "report", header, true))
		issues.AssertExpectations(t)
		issues.AssertNotCalled(t, "EditComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should edit the existing comment and post the update notice", func(t *testing.T) {
		client, _, issues, _ := newTestClient(t)
		issues.On("ListComments", mock.Anything, owner, repo, number, mock.Anything).
			Return([]*github.IssueComment{{
				ID:      github.Int64(9),
				Body:    github.String(header + "\n\nold report"),
				HTMLURL: github.String("https://github.com/test-owner/test-repo/pull/42#issuecomment-9"),
			}}, &github.Response{}, nil)
		issues.On("EditComment", mock.Anything, owner, repo, int64(9), mock.MatchedBy(func(c *github.IssueComment) bool {
			return c.GetBody() == header+"\n\nnew report"
		})).Return(&github.IssueComment{}, &github.Response{}, nil).Once()
		issues.On("CreateComment", mock.Anything, owner, repo, number, mock.MatchedBy(func(c *github.IssueComment) bool {
			return strings.Contains(c.GetBody(), "issuecomment-9")
		})).Return(&github.IssueComment{ID: github.Int64(10)}, &github.Response{}, nil).Once()

		require.NoError(t, client.PostOrUpdatePersistentComment(context.Background(), "new report", header, true))
		issues.AssertExpectations(t)
	})

	t.Run("should wrap edit failures", func(t *testing.T) {
		client, _, issues, _ := newTestClient(t)
		issues.On("ListComments", mock.Anything, owner, repo, number, mock.Anything).
			Return([]*github.IssueComment{{ID: github.Int64(9), Body: github.String(header)}}, &github.Response{}, nil)
		issues.On("EditComment", mock.Anything, owner, repo, int64(9), mock.Anything).
			Return(nil, nil, errors.New("403 Forbidden"))

		err := client.PostOrUpdatePersistentComment(context.Background(), "r", header, false)

		assert.ErrorIs(t, err, apperrors.ErrPostComment)
	})
}

func TestParsePRURL(t *testing.T) {
	tests := []struct {
		url     string
		want    PRRef
		wantErr bool
	}{
		{url: "https://github.com/octo/app/pull/12", want: PRRef{"octo", "app", 12}},
		{url: "https://github.com/octo/app/pull/12/files", want: PRRef{"octo", "app", 12}},
		{url: "https://api.github.com/repos/octo/app/pulls/7", want: PRRef{"octo", "app", 7}},
		{url: "https://gitlab.com/octo/app/-/merge_requests/3", wantErr: true},
		{url: "https://github.com/octo/app/pull/0", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParsePRURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidPRURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGitHubProviderFactory_ForURL(t *testing.T) {
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	t.Run("should require a token", func(t *testing.T) {
		_, err := NewGitHubProviderFactory("", trans).ForURL(context.Background(), "https://github.com/o/r/pull/1")
		assert.ErrorIs(t, err, apperrors.ErrTokenMissing)
	})

	t.Run("should reject foreign URLs", func(t *testing.T) {
		_, err := NewGitHubProviderFactory("tok", trans).ForURL(context.Background(), "https://example.com/x")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPRURL)
	})

	t.Run("should talk to the configured API", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, "/repos/o/r/languages", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Go": 300, "Makefile": 10}`))
		}))
		defer srv.Close()
		base, err := url.Parse(srv.URL + "/")
		require.NoError(t, err)

		client, err := NewGitHubProviderFactory("tok", trans).WithBaseURL(base).ForURL(context.Background(), "https://github.com/o/r/pull/1")
		require.NoError(t, err)

		langs, err := client.GetLanguageStats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Go": 300, "Makefile": 10}, langs)
		assert.Equal(t, "Bearer tok", gotAuth)
	})
}
