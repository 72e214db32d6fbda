package di

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/ai/gemini"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/ai/openai"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/ai/registry"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/tokens"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/vcs/github"
	vcsregistry "github.com/Tomas-vilte/MateImpact/internal/infrastructure/vcs/registry"
	"github.com/Tomas-vilte/MateImpact/internal/logger"
	"github.com/Tomas-vilte/MateImpact/internal/metrics"
	"github.com/Tomas-vilte/MateImpact/internal/services"
)

// Container manages the application dependencies.
type Container struct {
	settings     *config.Settings
	translations *i18n.Translations
	metrics      *metrics.Metrics

	// Registries
	modelRouter *registry.ModelRouter
	vcsRegistry *vcsregistry.VCSProviderRegistry

	mu       sync.Mutex
	closers  []io.Closer
	counter  ports.TokenCounter
	analyzer *services.DeploymentImpactService
}

func NewContainer(settings *config.Settings, trans *i18n.Translations) *Container {
	return &Container{
		settings:     settings,
		translations: trans,
		metrics:      metrics.New(),
		modelRouter:  registry.NewModelRouter(),
		vcsRegistry:  vcsregistry.NewVCSProviderRegistry(),
	}
}

// RegisterCompletionBackend routes the models of ai to client.
func (c *Container) RegisterCompletionBackend(ai config.AI, client ports.CompletionClient) error {
	if err := c.modelRouter.Register(ai, client); err != nil {
		return err
	}
	if closer, ok := client.(io.Closer); ok {
		c.mu.Lock()
		c.closers = append(c.closers, closer)
		c.mu.Unlock()
	}
	return nil
}

func (c *Container) RegisterVCSProvider(factory vcsregistry.VCSProviderFactory) error {
	return c.vcsRegistry.Register(factory)
}

// SetTokenCounter replaces the tiktoken counter built on first use.
func (c *Container) SetTokenCounter(counter ports.TokenCounter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter = counter
}

// RegisterDefaultProviders wires GitHub and every completion backend that has
// credentials in the settings.
func (c *Container) RegisterDefaultProviders(ctx context.Context) error {
	if err := c.RegisterVCSProvider(github.NewGitHubProviderFactory(c.settings.GitHubToken, c.translations)); err != nil {
		return err
	}

	if c.settings.GeminiAPIKey != "" {
		client, err := gemini.NewCompletionClient(ctx, c.settings.GeminiAPIKey)
		if err != nil {
			return err
		}
		if err := c.RegisterCompletionBackend(config.AIGemini, client); err != nil {
			return err
		}
	}

	if c.settings.OpenAIAPIKey != "" {
		client, err := openai.NewCompletionClient(c.settings.OpenAIAPIKey, c.settings.OpenAIBaseURL)
		if err != nil {
			return err
		}
		if err := c.RegisterCompletionBackend(config.AIOpenAI, client); err != nil {
			return err
		}
	}

	backends := c.modelRouter.List()
	if len(backends) == 0 {
		return apperrors.ErrNoCompletionBackend
	}
	logger.Debug(ctx, "providers registered",
		"completion_backends", backends,
		"vcs_providers", c.vcsRegistry.List())
	return nil
}

func (c *Container) Settings() *config.Settings {
	return c.settings
}

func (c *Container) Translations() *i18n.Translations {
	return c.translations
}

func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

func (c *Container) ModelRouter() *registry.ModelRouter {
	return c.modelRouter
}

func (c *Container) VCSRegistry() *vcsregistry.VCSProviderRegistry {
	return c.vcsRegistry
}

// GetAnalyzer returns the deployment impact service (lazy initialization).
func (c *Container) GetAnalyzer(ctx context.Context) (ports.DeploymentImpactAnalyzer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.analyzer != nil {
		return c.analyzer, nil
	}
	if c.counter == nil {
		c.counter = tokens.NewCounter(ctx)
	}

	svc, err := services.NewDeploymentImpactService(
		services.WithProviderFactory(c.vcsRegistry),
		services.WithCompletionClient(c.modelRouter),
		services.WithTokenCounter(c.counter),
		services.WithSettings(c.settings),
		services.WithTranslations(c.translations),
		services.WithMetrics(c.metrics),
	)
	if err != nil {
		return nil, err
	}
	c.analyzer = svc
	return svc, nil
}

// Close releases the completion backends.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
