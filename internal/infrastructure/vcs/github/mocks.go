package github

import (
	"context"

	"github.com/google/go-github/github"
	"github.com/stretchr/testify/mock"
)

type MockPRService struct {
	mock.Mock
}

func (m *MockPRService) Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number)
	pr, _ := args.Get(0).(*github.PullRequest)
	resp, _ := args.Get(1).(*github.Response)
	return pr, resp, args.Error(2)
}

func (m *MockPRService) ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	files, _ := args.Get(0).([]*github.CommitFile)
	resp, _ := args.Get(1).(*github.Response)
	return files, resp, args.Error(2)
}

func (m *MockPRService) ListCommits(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	commits, _ := args.Get(0).([]*github.RepositoryCommit)
	resp, _ := args.Get(1).(*github.Response)
	return commits, resp, args.Error(2)
}

type MockIssuesService struct {
	mock.Mock
}

func (m *MockIssuesService) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, comment)
	c, _ := args.Get(0).(*github.IssueComment)
	resp, _ := args.Get(1).(*github.Response)
	return c, resp, args.Error(2)
}

func (m *MockIssuesService) EditComment(ctx context.Context, owner, repo string, id int64, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, id, comment)
	c, _ := args.Get(0).(*github.IssueComment)
	resp, _ := args.Get(1).(*github.Response)
	return c, resp, args.Error(2)
}

func (m *MockIssuesService) DeleteComment(ctx context.Context, owner, repo string, id int64) (*github.Response, error) {
	args := m.Called(ctx, owner, repo, id)
	resp, _ := args.Get(0).(*github.Response)
	return resp, args.Error(1)
}

func (m *MockIssuesService) ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	comments, _ := args.Get(0).([]*github.IssueComment)
	resp, _ := args.Get(1).(*github.Response)
	return comments, resp, args.Error(2)
}

type MockRepoService struct {
	mock.Mock
}

func (m *MockRepoService) ListLanguages(ctx context.Context, owner, repo string) (map[string]int, *github.Response, error) {
	args := m.Called(ctx, owner, repo)
	langs, _ := args.Get(0).(map[string]int)
	resp, _ := args.Get(1).(*github.Response)
	return langs, resp, args.Error(2)
}
