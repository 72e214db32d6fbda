package factory

import (
	"context"
	"sync"

	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/di"
	"github.com/Tomas-vilte/MateImpact/internal/server"
)

// Runner is a long-running process such as the HTTP API.
type Runner interface {
	Run(ctx context.Context) error
}

// ServiceFactoryInterface builds services from the config file chosen on the
// command line. Commands receive it so configuration loads when they run.
type ServiceFactoryInterface interface {
	LoadSettings(configPath string) (*config.Settings, error)
	CreateAnalyzer(ctx context.Context, configPath string) (ports.DeploymentImpactAnalyzer, error)
	CreateServer(ctx context.Context, configPath, addr string) (Runner, error)
}

type ServiceFactory struct {
	mu        sync.Mutex
	container *di.Container
}

func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// LoadSettings reads configPath, or the default location when it is empty.
func (f *ServiceFactory) LoadSettings(configPath string) (*config.Settings, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

func (f *ServiceFactory) CreateAnalyzer(ctx context.Context, configPath string) (ports.DeploymentImpactAnalyzer, error) {
	c, err := f.getContainer(ctx, configPath)
	if err != nil {
		return nil, err
	}
	return c.GetAnalyzer(ctx)
}

// CreateServer builds the API. An empty addr falls back to server.addr.
func (f *ServiceFactory) CreateServer(ctx context.Context, configPath, addr string) (Runner, error) {
	c, err := f.getContainer(ctx, configPath)
	if err != nil {
		return nil, err
	}
	analyzer, err := c.GetAnalyzer(ctx)
	if err != nil {
		return nil, err
	}
	if addr == "" {
		addr = c.Settings().ServerAddr
	}
	return server.New(analyzer, c.Metrics(), addr), nil
}

// Close releases the container built by the last call, if any.
func (f *ServiceFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.container == nil {
		return nil
	}
	return f.container.Close()
}

func (f *ServiceFactory) getContainer(ctx context.Context, configPath string) (*di.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.container != nil {
		return f.container, nil
	}

	settings, err := f.LoadSettings(configPath)
	if err != nil {
		return nil, err
	}
	trans, err := i18n.NewTranslations(settings.Language, settings.LocalesDir)
	if err != nil {
		return nil, err
	}

	c := di.NewContainer(settings, trans)
	if err := c.RegisterDefaultProviders(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	f.container = c
	return c, nil
}
