package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/diffbudget"
	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/logger"
	"github.com/Tomas-vilte/MateImpact/internal/metrics"
	"github.com/Tomas-vilte/MateImpact/internal/prompt"
	"github.com/google/uuid"
)

var _ ports.DeploymentImpactAnalyzer = (*DeploymentImpactService)(nil)

// DeploymentImpactService runs one analysis per call. Calls share only
// read-only settings and the metrics collectors.
type DeploymentImpactService struct {
	providers  ports.ProviderFactory
	completion ports.CompletionClient
	counter    ports.TokenCounter
	renderer   *prompt.Renderer
	fallback   *FallbackController
	settings   *config.Settings
	trans      *i18n.Translations
	metrics    *metrics.Metrics
	out        io.Writer
	now        func() time.Time
}

type DeploymentImpactOption func(*DeploymentImpactService)

func WithProviderFactory(f ports.ProviderFactory) DeploymentImpactOption {
	return func(s *DeploymentImpactService) {
		s.providers = f
	}
}

func WithCompletionClient(c ports.CompletionClient) DeploymentImpactOption {
	return func(s *DeploymentImpactService) {
		s.completion = c
	}
}

func WithTokenCounter(c ports.TokenCounter) DeploymentImpactOption {
	return func(s *DeploymentImpactService) {
		s.counter = c
	}
}

func WithSettings(settings *config.Settings) DeploymentImpactOption {
	return func(s *DeploymentImpactService) {
		s.settings = settings
	}
}

func WithTranslations(trans *i18n.Translations) DeploymentImpactOption {
	return func(s *DeploymentImpactService) {
		s.trans = trans
	}
}

func WithMetrics(m *metrics.Metrics) DeploymentImpactOption {
	return func(s *DeploymentImpactService) {
		s.metrics = m
	}
}

func WithFallbackController(c *FallbackController) DeploymentImpactOption {
	return func(s *DeploymentImpactService) {
		s.fallback = c
	}
}

// WithOutput sets where CLI mode writes the report.
func WithOutput(w io.Writer) DeploymentImpactOption {
	return func(s *DeploymentImpactService) {
		s.out = w
	}
}

func WithClock(now func() time.Time) DeploymentImpactOption {
	return func(s *DeploymentImpactService) {
		s.now = now
	}
}

func NewDeploymentImpactService(opts ...DeploymentImpactOption) (*DeploymentImpactService, error) {
	s := &DeploymentImpactService{
		renderer: prompt.NewRenderer(),
		out:      os.Stdout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case s.providers == nil:
		return nil, apperrors.ErrInvalidConfig.WithContext("detail", "no VCS provider factory")
	case s.completion == nil:
		return nil, apperrors.ErrNoCompletionBackend
	case s.counter == nil:
		return nil, apperrors.ErrInvalidConfig.WithContext("detail", "no token counter")
	case s.settings == nil:
		return nil, apperrors.ErrInvalidConfig.WithContext("detail", "settings not resolved")
	case s.trans == nil:
		return nil, apperrors.ErrInvalidConfig.WithContext("detail", "no translations")
	}
	if s.fallback == nil {
		s.fallback = NewFallbackController(s.settings.MaxAttempts, s.metrics)
	}
	return s, nil
}

// Analyze predicts the deployment impact of the pull request at prURL.
//
// The returned Outcome lists every state the run went through. An exhausted
// fallback chain and a failed publish end in StateCompleted without error;
// missing template variables, provider failures, cancellation and panics are
// returned. When publishing, every failure posts one failure notice and the
// provisional marker is removed after it.
func (s *DeploymentImpactService) Analyze(ctx context.Context, prURL string, opts models.AnalyzeOptions) (outcome models.Outcome, err error) {
	out := models.NewOutcome()
	start := s.now()

	if strings.TrimSpace(prURL) == "" {
		return *out, apperrors.ErrNoPRURL
	}

	ctx = logger.With(ctx,
		"pr_url", prURL,
		"run_id", uuid.NewString())
	log := logger.FromContext(ctx)

	publish := s.settings.PublishOutput
	if opts.Publish != nil {
		publish = *opts.Publish
	}

	var (
		client       ports.ProviderClient
		markerPosted bool
		notified     bool
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("deployment impact pipeline panicked", "panic", r)
			err = apperrors.ErrPipelinePanic.WithContext("detail", fmt.Sprint(r))
		}
		if err != nil && client != nil && !notified {
			s.notifyFailure(ctx, client, publish)
		}
		if markerPosted {
			s.removeMarker(context.WithoutCancel(ctx), client)
		}
		s.metrics.ObserveRun(out.State().String(), s.now().Sub(start))
		outcome = *out
	}()

	client, err = s.providers.ForURL(ctx, prURL)
	if err != nil {
		return *out, err
	}

	files, err := client.GetChangedFiles(ctx)
	if err != nil {
		return *out, err
	}
	if len(files) == 0 {
		log.Info("pull request has no changed files, skipping analysis")
		return *out, out.Advance(models.StateCompleted)
	}

	files = append([]models.ChangedFile(nil), files...)
	actx, err := s.buildContext(ctx, client, files)
	if err != nil {
		return *out, err
	}

	if publish {
		marker := s.trans.GetMessage("provisional_marker", 0, nil)
		if err := client.PostComment(ctx, marker, true); err != nil {
			log.Warn("could not post provisional marker", "error", err)
		} else {
			markerPosted = true
		}
	}

	candidates, err := s.settings.Candidates()
	if err != nil {
		return *out, err
	}

	budget, err := s.diffBudget(actx, candidates)
	if err != nil {
		return *out, err
	}

	budgeter := &diffbudget.Budgeter{
		Counter: s.counter,
		Policy:  diffbudget.ParsePolicy(s.settings.TruncationPolicy),
		Ignore:  s.settings.IgnoreGlobs,
	}
	diff := budgeter.Build(files, budget)
	log.Info("diff budgeted",
		"budget", budget,
		"tokens", diff.Tokens,
		"files", len(diff.Included),
		"truncated", len(diff.Truncated),
		"omitted", len(diff.Omitted))

	if diff.Empty() {
		log.Info("no diff available for analysis")
		if err := out.Advance(models.StateDiffEmpty); err != nil {
			return *out, err
		}
		return *out, out.Advance(models.StateCompleted)
	}
	s.metrics.ObserveDiffTokens(diff.Tokens)

	if err := actx.SetDiff(diff.Diff); err != nil {
		return *out, err
	}

	prompts, err := s.renderer.RenderPair(s.settings.SystemPrompt, s.settings.UserPrompt, actx)
	if err != nil {
		log.Error("could not render prompts", "error", err)
		return *out, err
	}

	result, err := s.fallback.Run(ctx, candidates, func(ctx context.Context, model string) (models.InvocationResult, error) {
		return s.completion.Complete(ctx, models.CompletionRequest{
			System:      prompts.System,
			User:        prompts.User,
			Model:       model,
			Temperature: s.settings.Temperature,
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrFallbackExhausted) {
			return *out, err
		}
		log.Warn("every model failed, skipping deployment impact analysis", "error", err)
		if err := out.Advance(models.StateExhausted); err != nil {
			return *out, err
		}
		return *out, out.Advance(models.StateCompleted)
	}

	if err := out.Advance(models.StatePredicted); err != nil {
		return *out, err
	}
	if result.FinishReason == models.FinishReasonLength {
		log.Warn("model output was cut at the length limit", "model", result.Model)
	}

	out.Report = FormatReport(result.Text)
	out.Model = result.Model

	switch {
	case publish:
		if err := s.publish(ctx, client, out.Report); err != nil {
			log.Error("could not publish deployment impact analysis", "error", err)
			if advErr := out.Advance(models.StatePublishFailed); advErr != nil {
				return *out, advErr
			}
			s.notifyFailure(ctx, client, true)
			notified = true
		} else {
			out.Published = true
		}
	case opts.CLIMode:
		if _, err := fmt.Fprintln(s.out, out.Report); err != nil {
			log.Warn("could not write report", "error", err)
		}
	}

	log.Info("deployment impact analysis finished",
		"model", result.Model,
		"attempt", result.Attempt,
		"published", out.Published)
	return *out, out.Advance(models.StateCompleted)
}

func (s *DeploymentImpactService) buildContext(ctx context.Context, client ports.ProviderClient, files []models.ChangedFile) (*models.AnalysisContext, error) {
	meta, err := client.GetPRMetadata(ctx)
	if err != nil {
		return nil, err
	}

	langs, err := client.GetLanguageStats(ctx)
	if err != nil {
		logger.Warn(ctx, "could not read repository languages", "error", err)
	}

	useAIMetadata := s.settings.EnableAIMetadata && s.settings.IsAutoCommand
	description, fileDescriptions, err := client.GetDescription(ctx, useAIMetadata)
	if err != nil {
		return nil, err
	}
	if useAIMetadata {
		useAIMetadata = attachSummaries(files, fileDescriptions) > 0
	}

	return models.NewAnalysisContext(models.AnalysisInput{
		Title:             meta.Title,
		Branch:            meta.Branch,
		Description:       description,
		Language:          MainLanguage(langs, files),
		CommitMessages:    formatCommitMessages(meta.CommitMessages),
		ExtraInstructions: s.settings.ExtraInstructions,
		IsAIMetadata:      useAIMetadata,
		Date:              s.now().Format(time.DateOnly),
	}), nil
}

// diffBudget is the smallest budget across candidates, so one diff serves the
// whole fallback chain.
func (s *DeploymentImpactService) diffBudget(actx *models.AnalysisContext, candidates models.ModelCandidates) (int, error) {
	empty, err := s.renderer.RenderPair(s.settings.SystemPrompt, s.settings.UserPrompt, actx)
	if err != nil {
		return 0, err
	}
	overhead := s.counter.CountTokens(empty.System) + s.counter.CountTokens(empty.User)

	budget := -1
	for _, model := range candidates {
		b := config.ContextWindow(model, s.settings.MaxModelTokens) - overhead - s.settings.OutputReserve
		if budget < 0 || b < budget {
			budget = b
		}
	}
	return max(budget, 0), nil
}

func (s *DeploymentImpactService) publish(ctx context.Context, client ports.ProviderClient, report string) error {
	var err error
	if s.settings.PersistentComment {
		// The persistent header takes the place of the report header.
		body := strings.TrimPrefix(report, ReportHeader)
		err = client.PostOrUpdatePersistentComment(ctx, body, PersistentCommentHeader, s.settings.FinalUpdateMessage)
	} else {
		err = client.PostComment(ctx, report, false)
	}
	if err != nil {
		return apperrors.ErrPublish.WithError(err)
	}
	return nil
}

// notifyFailure posts the failure notice once. Its own errors are only logged.
func (s *DeploymentImpactService) notifyFailure(ctx context.Context, client ports.ProviderClient, publish bool) {
	if !publish {
		return
	}
	notice := s.trans.GetMessage("analysis_failed_notice", 0, nil)
	if err := client.PostComment(context.WithoutCancel(ctx), notice, false); err != nil {
		logger.Warn(ctx, "could not post failure notice", "error", err)
	}
}

func (s *DeploymentImpactService) removeMarker(ctx context.Context, client ports.ProviderClient) {
	if err := client.RemoveProvisionalComment(ctx); err != nil {
		logger.Warn(ctx, "could not remove provisional marker", "error", err)
	}
}

func attachSummaries(files []models.ChangedFile, descriptions []models.FileDescription) int {
	summaries := make(map[string]string, len(descriptions))
	for _, d := range descriptions {
		summaries[d.Filename] = d.Summary
	}
	attached := 0
	for i := range files {
		if sum, ok := summaries[files[i].Filename]; ok && sum != "" {
			files[i].AISummary = sum
			attached++
		}
	}
	return attached
}

func formatCommitMessages(messages []string) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, strings.TrimSpace(m))
	}
	return sb.String()
}
