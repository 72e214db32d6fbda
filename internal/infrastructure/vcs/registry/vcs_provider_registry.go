package registry

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
)

var _ ports.ProviderFactory = (*VCSProviderRegistry)(nil)

// VCSProviderFactory creates provider clients for the PR URLs of one host.
type VCSProviderFactory interface {
	ports.ProviderFactory
	// Name is the host served, e.g. "github.com".
	Name() string
}

// VCSProviderRegistry dispatches PR URLs to the factory registered for their host.
type VCSProviderRegistry struct {
	mu        sync.RWMutex
	factories map[string]VCSProviderFactory
}

func NewVCSProviderRegistry() *VCSProviderRegistry {
	return &VCSProviderRegistry{
		factories: make(map[string]VCSProviderFactory),
	}
}

// Register adds factory under its host name. Each host can be registered once.
func (r *VCSProviderRegistry) Register(factory VCSProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := factory.Name()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("VCS provider '%s' is already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Get returns the factory for host.
func (r *VCSProviderRegistry) Get(host string) (VCSProviderFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	host = strings.TrimPrefix(host, "api.")
	factory, exists := r.factories[host]
	if !exists {
		return nil, apperrors.ErrInvalidPRURL.WithContext("detail", fmt.Sprintf("no VCS provider for host %q", host))
	}
	return factory, nil
}

func (r *VCSProviderRegistry) ForURL(ctx context.Context, prURL string) (ports.ProviderClient, error) {
	if strings.TrimSpace(prURL) == "" {
		return nil, apperrors.ErrNoPRURL
	}
	u, err := url.Parse(prURL)
	if err != nil || u.Host == "" {
		return nil, apperrors.ErrInvalidPRURL.WithContext("detail", prURL)
	}

	factory, err := r.Get(u.Hostname())
	if err != nil {
		return nil, err
	}
	return factory.ForURL(ctx, prURL)
}

// List returns the registered hosts, sorted.
func (r *VCSProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.factories))
	for name := range r.factories {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}

func (r *VCSProviderRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}
