package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
)

var _ ports.CompletionClient = (*ModelRouter)(nil)

// modelPrefixes maps bare model ids to the backend that serves them.
var modelPrefixes = []struct {
	prefix string
	ai     config.AI
}{
	{"gemini-", config.AIGemini},
	{"gpt-", config.AIOpenAI},
	{"o1", config.AIOpenAI},
	{"o3", config.AIOpenAI},
	{"o4", config.AIOpenAI},
}

// ModelRouter is a registry of completion backends. It routes each request to
// the backend owning the requested model.
type ModelRouter struct {
	mu       sync.RWMutex
	backends map[config.AI]ports.CompletionClient
}

func NewModelRouter() *ModelRouter {
	return &ModelRouter{
		backends: make(map[config.AI]ports.CompletionClient),
	}
}

// Register adds a backend. Registering the same name twice is an error.
func (r *ModelRouter) Register(name config.AI, client ports.CompletionClient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("completion backend '%s' is already registered", name)
	}

	r.backends[name] = client
	return nil
}

// Resolve finds the backend for a model id, either "provider/model" or a bare
// id matched by prefix.
func (r *ModelRouter) Resolve(model string) (ports.CompletionClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, bare := config.SplitModel(model)
	if name == "" {
		for _, p := range modelPrefixes {
			if strings.HasPrefix(bare, p.prefix) {
				name = p.ai
				break
			}
		}
	}

	client, ok := r.backends[name]
	if !ok {
		return nil, apperrors.ErrUnknownModel.WithContext("detail", model)
	}
	return client, nil
}

// Complete forwards req to the backend that owns req.Model. An unroutable
// model is a permanent failure so the fallback chain moves on.
func (r *ModelRouter) Complete(ctx context.Context, req models.CompletionRequest) (models.InvocationResult, error) {
	client, err := r.Resolve(req.Model)
	if err != nil {
		return models.InvocationResult{}, apperrors.NewPermanentError(req.Model, 0, err)
	}
	return client.Complete(ctx, req)
}

// List returns the registered backend names, sorted.
func (r *ModelRouter) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

func (r *ModelRouter) IsRegistered(name config.AI) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.backends[name]
	return exists
}
