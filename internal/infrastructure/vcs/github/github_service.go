package github

import (
	"context"
	"strings"
	"sync"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/logger"
	"github.com/Tomas-vilte/MateImpact/internal/regex"
	"github.com/google/go-github/github"
)

var _ ports.ProviderClient = (*GitHubClient)(nil)

const perPage = 100

type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
	ListCommits(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error)
}

type IssuesService interface {
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	EditComment(ctx context.Context, owner, repo string, id int64, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	DeleteComment(ctx context.Context, owner, repo string, id int64) (*github.Response, error)
	ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error)
}

type RepositoriesService interface {
	ListLanguages(ctx context.Context, owner, repo string) (map[string]int, *github.Response, error)
}

// GitHubClient serves one pull request.
type GitHubClient struct {
	prService     PullRequestsService
	issuesService IssuesService
	repoService   RepositoriesService
	owner         string
	repo          string
	number        int
	trans         *i18n.Translations

	mu          sync.Mutex
	provisional []int64
}

func NewGitHubClientWithServices(
	prService PullRequestsService,
	issuesService IssuesService,
	repoService RepositoriesService,
	owner string,
	repo string,
	number int,
	trans *i18n.Translations,
) *GitHubClient {
	return &GitHubClient{
		prService:     prService,
		issuesService: issuesService,
		repoService:   repoService,
		owner:         owner,
		repo:          repo,
		number:        number,
		trans:         trans,
	}
}

func (ghc *GitHubClient) fetchErr(err error) error {
	return apperrors.ErrFetchPR.WithError(err).
		WithContext("repo", ghc.owner+"/"+ghc.repo).
		WithContext("pr", ghc.number)
}

func (ghc *GitHubClient) postErr(err error) error {
	return apperrors.ErrPostComment.WithError(err).
		WithContext("repo", ghc.owner+"/"+ghc.repo).
		WithContext("pr", ghc.number)
}

func (ghc *GitHubClient) GetChangedFiles(ctx context.Context) ([]models.ChangedFile, error) {
	var files []models.ChangedFile
	opts := &github.ListOptions{PerPage: perPage}
	for {
		page, resp, err := ghc.prService.ListFiles(ctx, ghc.owner, ghc.repo, ghc.number, opts)
		if err != nil {
			return nil, ghc.fetchErr(err)
		}
		for _, f := range page {
			files = append(files, models.ChangedFile{
				Filename:  f.GetFilename(),
				Status:    f.GetStatus(),
				Patch:     f.GetPatch(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

func (ghc *GitHubClient) GetLanguageStats(ctx context.Context) (map[string]int, error) {
	langs, _, err := ghc.repoService.ListLanguages(ctx, ghc.owner, ghc.repo)
	if err != nil {
		return nil, ghc.fetchErr(err)
	}
	return langs, nil
}

func (ghc *GitHubClient) GetPRMetadata(ctx context.Context) (models.PRMetadata, error) {
	pr, _, err := ghc.prService.Get(ctx, ghc.owner, ghc.repo, ghc.number)
	if err != nil {
		return models.PRMetadata{}, ghc.fetchErr(err)
	}

	var messages []string
	opts := &github.ListOptions{PerPage: perPage}
	for {
		commits, resp, err := ghc.prService.ListCommits(ctx, ghc.owner, ghc.repo, ghc.number, opts)
		if err != nil {
			return models.PRMetadata{}, ghc.fetchErr(err)
		}
		for _, c := range commits {
			messages = append(messages, c.GetCommit().GetMessage())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return models.PRMetadata{
		Number:         ghc.number,
		Title:          pr.GetTitle(),
		Branch:         pr.GetHead().GetRef(),
		CommitMessages: messages,
	}, nil
}

func (ghc *GitHubClient) GetDescription(ctx context.Context, splitWalkthrough bool) (string, []models.FileDescription, error) {
	pr, _, err := ghc.prService.Get(ctx, ghc.owner, ghc.repo, ghc.number)
	if err != nil {
		return "", nil, ghc.fetchErr(err)
	}
	body := pr.GetBody()
	if !splitWalkthrough {
		return body, nil, nil
	}
	desc, files := SplitWalkthrough(body)
	return desc, files, nil
}

// SplitWalkthrough cuts the walkthrough section out of a PR body and parses
// its per-file entries. The section runs from its heading to the next heading.
func SplitWalkthrough(body string) (string, []models.FileDescription) {
	loc := regex.WalkthroughHeading.FindStringIndex(body)
	if loc == nil {
		return strings.TrimSpace(body), nil
	}

	before := body[:loc[0]]
	rest := body[loc[1]:]
	section, after := rest, ""
	lines := strings.SplitAfter(rest, "\n")
	offset := 0
	for i, l := range lines {
		if i > 0 && strings.HasPrefix(strings.TrimSpace(l), "#") {
			section, after = rest[:offset], rest[offset:]
			break
		}
		offset += len(l)
	}

	var files []models.FileDescription
	for _, l := range strings.Split(section, "\n") {
		m := regex.WalkthroughEntry.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		files = append(files, models.FileDescription{Filename: m[1], Summary: strings.TrimSpace(m[2])})
	}

	desc := strings.TrimSpace(strings.TrimSpace(before) + "\n\n" + strings.TrimSpace(after))
	return desc, files
}

func (ghc *GitHubClient) PostComment(ctx context.Context, text string, temporary bool) error {
	comment, _, err := ghc.issuesService.CreateComment(ctx, ghc.owner, ghc.repo, ghc.number, &github.IssueComment{Body: github.String(text)})
	if err != nil {
		return ghc.postErr(err)
	}
	if temporary {
		ghc.mu.Lock()
		ghc.provisional = append(ghc.provisional, comment.GetID())
		ghc.mu.Unlock()
	}
	return nil
}

func (ghc *GitHubClient) PostOrUpdatePersistentComment(ctx context.Context, text, header string, finalMessage bool) error {
	body := header + "\n\n" + text

	existing, err := ghc.findComment(ctx, header)
	if err != nil {
		return ghc.postErr(err)
	}
	if existing == nil {
		return ghc.PostComment(ctx, body, false)
	}

	if _, _, err := ghc.issuesService.EditComment(ctx, ghc.owner, ghc.repo, existing.GetID(), &github.IssueComment{Body: github.String(body)}); err != nil {
		return ghc.postErr(err)
	}
	logger.Debug(ctx, "persistent comment updated", "comment_id", existing.GetID())

	if finalMessage {
		msg := ghc.trans.GetMessage("persistent_comment_updated", 0, map[string]interface{}{
			"URL": existing.GetHTMLURL(),
		})
		return ghc.PostComment(ctx, msg, false)
	}
	return nil
}

func (ghc *GitHubClient) findComment(ctx context.Context, header string) (*github.IssueComment, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: perPage}}
	for {
		comments, resp, err := ghc.issuesService.ListComments(ctx, ghc.owner, ghc.repo, ghc.number, opts)
		if err != nil {
			return nil, err
		}
		for _, c := range comments {
			if strings.HasPrefix(c.GetBody(), header) {
				return c, nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

// RemoveProvisionalComment deletes every temporary comment posted through this
// client. Calling it again is a no-op.
func (ghc *GitHubClient) RemoveProvisionalComment(ctx context.Context) error {
	ghc.mu.Lock()
	ids := ghc.provisional
	ghc.provisional = nil
	ghc.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if _, err := ghc.issuesService.DeleteComment(ctx, ghc.owner, ghc.repo, id); err != nil {
			logger.Warn(ctx, "could not delete provisional comment", "comment_id", id, "error", err)
			if firstErr == nil {
				firstErr = ghc.postErr(err)
			}
		}
	}
	return firstErr
}
