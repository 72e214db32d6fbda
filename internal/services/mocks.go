package services

import (
	"context"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	"github.com/stretchr/testify/mock"
)

type (
	MockProviderFactory struct {
		mock.Mock
	}

	MockProviderClient struct {
		mock.Mock
	}

	MockCompletionClient struct {
		mock.Mock
	}
)

func (m *MockProviderFactory) ForURL(ctx context.Context, prURL string) (ports.ProviderClient, error) {
	args := m.Called(ctx, prURL)
	client, _ := args.Get(0).(ports.ProviderClient)
	return client, args.Error(1)
}

func (m *MockProviderClient) GetChangedFiles(ctx context.Context) ([]models.ChangedFile, error) {
	args := m.Called(ctx)
	files, _ := args.Get(0).([]models.ChangedFile)
	return files, args.Error(1)
}

func (m *MockProviderClient) GetLanguageStats(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	langs, _ := args.Get(0).(map[string]int)
	return langs, args.Error(1)
}

func (m *MockProviderClient) GetPRMetadata(ctx context.Context) (models.PRMetadata, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.PRMetadata), args.Error(1)
}

func (m *MockProviderClient) GetDescription(ctx context.Context, splitWalkthrough bool) (string, []models.FileDescription, error) {
	args := m.Called(ctx, splitWalkthrough)
	files, _ := args.Get(1).([]models.FileDescription)
	return args.String(0), files, args.Error(2)
}

func (m *MockProviderClient) PostComment(ctx context.Context, text string, temporary bool) error {
	args := m.Called(ctx, text, temporary)
	return args.Error(0)
}

func (m *MockProviderClient) PostOrUpdatePersistentComment(ctx context.Context, text, header string, finalMessage bool) error {
	args := m.Called(ctx, text, header, finalMessage)
	return args.Error(0)
}

func (m *MockProviderClient) RemoveProvisionalComment(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCompletionClient) Complete(ctx context.Context, req models.CompletionRequest) (models.InvocationResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.InvocationResult), args.Error(1)
}
