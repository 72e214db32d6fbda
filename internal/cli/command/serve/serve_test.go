package serve

import (
	"context"
	"errors"
	"testing"

	"github.com/Tomas-vilte/MateImpact/internal/config"
	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	"github.com/Tomas-vilte/MateImpact/internal/infrastructure/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockServiceFactory struct {
	mock.Mock
}

func (m *MockServiceFactory) LoadSettings(configPath string) (*config.Settings, error) {
	args := m.Called(configPath)
	settings, _ := args.Get(0).(*config.Settings)
	return settings, args.Error(1)
}

func (m *MockServiceFactory) CreateAnalyzer(ctx context.Context, configPath string) (ports.DeploymentImpactAnalyzer, error) {
	args := m.Called(ctx, configPath)
	analyzer, _ := args.Get(0).(ports.DeploymentImpactAnalyzer)
	return analyzer, args.Error(1)
}

func (m *MockServiceFactory) CreateServer(ctx context.Context, configPath, addr string) (factory.Runner, error) {
	args := m.Called(ctx, configPath, addr)
	runner, _ := args.Get(0).(factory.Runner)
	return runner, args.Error(1)
}

type fakeRunner struct {
	ran bool
	err error
}

func (r *fakeRunner) Run(context.Context) error {
	r.ran = true
	return r.err
}


func TestServeCommand(t *testing.T) {
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	t.Run("should run the server on the given address", func(t *testing.T) {
		// Arrange
		f := new(MockServiceFactory)
		runner := &fakeRunner{}
		f.On("CreateServer", mock.Anything, "", ":8080").Return(runner, nil)
		cmd := NewServeCommand(f).CreateCommand(translations)

		// Act
		err := cmd.Run(context.Background(), []string{"serve", "--addr", ":8080"})

		// Assert
		assert.NoError(t, err)
		assert.True(t, runner.ran)
		f.AssertExpectations(t)
	})

	t.Run("should return the server error", func(t *testing.T) {
		// Arrange
		f := new(MockServiceFactory)
		f.On("CreateServer", mock.Anything, "", "").Return(&fakeRunner{err: errors.New("address in use")}, nil)
		cmd := NewServeCommand(f).CreateCommand(translations)

		// Act
		err := cmd.Run(context.Background(), []string{"serve"})

		// Assert
		assert.EqualError(t, err, "address in use")
	})

	t.Run("should fail when the server cannot be built", func(t *testing.T) {
		// Arrange
		f := new(MockServiceFactory)
		f.On("CreateServer", mock.Anything, "", "").Return(nil, errors.New("no backend"))
		cmd := NewServeCommand(f).CreateCommand(translations)

		// Act
		err := cmd.Run(context.Background(), []string{"serve"})

		// Assert
		assert.ErrorContains(t, err, "no backend")
	})
}
