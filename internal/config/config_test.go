package config

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvGitHubToken, EnvGeminiAPIKey, EnvOpenAIAPIKey, EnvOpenAIBaseURL} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0600))
	return p
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file resolves to defaults", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)

		s, err := cfg.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "en", s.Language)
		assert.True(t, s.PublishOutput)
		assert.Equal(t, 0.2, s.Temperature)
		assert.Equal(t, "gemini-2.5-pro", s.Model)
		assert.Equal(t, []string{"gemini-2.5-flash"}, s.FallbackModels)
		assert.Equal(t, 32000, s.MaxModelTokens)
		assert.Equal(t, 2, s.MaxAttempts)
		assert.Equal(t, 1500, s.OutputReserve)
		assert.Equal(t, PolicyHunks, s.TruncationPolicy)
		assert.True(t, s.PersistentComment)
		assert.True(t, s.FinalUpdateMessage)
		assert.Equal(t, prompt.DefaultSystemTemplate, s.SystemPrompt)
		assert.Equal(t, prompt.DefaultUserTemplate, s.UserPrompt)
		assert.Equal(t, ":5000", s.ServerAddr)
	})

	t.Run("file values and explicit zeros win over defaults", func(t *testing.T) {
		clearEnv(t)
		p := writeConfig(t, `
language = "es"
[config]
publish_output = false
temperature = 0.0
model = "gpt-4o"
fallback_models = []
max_attempts = 3
truncation_policy = "files"
ignore_globs = ["*.lock", "vendor/*"]
[pr_deployment_impact]
extra_instructions = "Focus on database migrations"
persistent_comment = false
[pr_deployment_impact_prompt]
user = "{{ title }}: {{ diff }}"
`)
		cfg, err := LoadConfig(p)
		require.NoError(t, err)
		s, err := cfg.Resolve()
		require.NoError(t, err)

		assert.Equal(t, "es", s.Language)
		assert.False(t, s.PublishOutput)
		assert.Equal(t, 0.0, s.Temperature)
		assert.Equal(t, "gpt-4o", s.Model)
		assert.Empty(t, s.FallbackModels)
		assert.Equal(t, 3, s.MaxAttempts)
		assert.Equal(t, PolicyFiles, s.TruncationPolicy)
		assert.Equal(t, []string{"*.lock", "vendor/*"}, s.IgnoreGlobs)
		assert.Equal(t, "Focus on database migrations", s.ExtraInstructions)
		assert.False(t, s.PersistentComment)
		assert.Equal(t, "{{ title }}: {{ diff }}", s.UserPrompt)
		assert.Equal(t, prompt.DefaultSystemTemplate, s.SystemPrompt)
	})

	t.Run("environment overrides secrets", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvGitHubToken, "ghp_env")
		t.Setenv(EnvGeminiAPIKey, "gem_env")
		t.Setenv(EnvOpenAIAPIKey, "oa_env")
		t.Setenv(EnvOpenAIBaseURL, "http://localhost:8080/v1")
		p := writeConfig(t, "github_token = \"ghp_file\"\n[gemini]\napi_key = \"gem_file\"\n")

		cfg, err := LoadConfig(p)
		require.NoError(t, err)

		assert.Equal(t, "ghp_env", cfg.GitHubToken)
		assert.Equal(t, "gem_env", cfg.Gemini.APIKey)
		assert.Equal(t, "oa_env", cfg.OpenAI.APIKey)
		assert.Equal(t, "http://localhost:8080/v1", cfg.OpenAI.BaseURL)
	})

	t.Run("malformed TOML", func(t *testing.T) {
		clearEnv(t)
		p := writeConfig(t, "[config\nmodel = ")

		_, err := LoadConfig(p)
		assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		clearEnv(t)
		p := writeConfig(t, "[config]\nmodle = \"gpt-4o\"\n")

		_, err := LoadConfig(p)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "config.modle")
	})
}

func TestResolve_Validation(t *testing.T) {
	neg := -1
	zero := 0
	hot := 3.5

	tests := []struct {
		name string
		cfg  Config
	}{
		{"temperature out of range", Config{Core: CoreConfig{Temperature: &hot}}},
		{"zero attempts", Config{Core: CoreConfig{MaxAttempts: &zero}}},
		{"zero token cap", Config{Core: CoreConfig{MaxModelTokens: &zero}}},
		{"negative reserve", Config{Core: CoreConfig{OutputReserve: &neg}}},
		{"unknown policy", Config{Core: CoreConfig{TruncationPolicy: "lines"}}},
		{"bad glob", Config{Core: CoreConfig{IgnoreGlobs: []string{"[a-"}}}},
		{"blank fallback", Config{Core: CoreConfig{FallbackModels: []string{" "}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Resolve()
			assert.Error(t, err)
		})
	}
}

func TestSettings_Candidates(t *testing.T) {
	cfg := Config{Core: CoreConfig{
		Model:          "gemini-2.5-pro",
		FallbackModels: []string{"gemini-2.5-flash", "gemini-2.5-pro", "gpt-4o"},
	}}
	s, err := cfg.Resolve()
	require.NoError(t, err)

	c, err := s.Candidates()
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash", "gpt-4o"}, []string(c))
}

func TestSettings_Lookup(t *testing.T) {
	s, err := (&Config{}).Resolve()
	require.NoError(t, err)

	v, ok := s.Lookup("config.temperature")
	require.True(t, ok)
	assert.Equal(t, 0.2, v)

	_, ok = s.Lookup("config.nope")
	assert.False(t, ok)

	assert.Contains(t, s.Keys(), "pr_deployment_impact.persistent_comment")
	assert.True(t, IsSecret("gemini.api_key"))
	assert.True(t, IsSecret("github_token"))
	assert.False(t, IsSecret("config.max_model_tokens"))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "nested", "config.toml")
	attempts := 4
	cfg := &Config{
		Language: "es",
		Core:     CoreConfig{Model: "gpt-4o-mini", MaxAttempts: &attempts},
		PathFile: p,
	}

	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig(p)
	require.NoError(t, err)
	s, err := loaded.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "es", s.Language)
	assert.Equal(t, "gpt-4o-mini", s.Model)
	assert.Equal(t, 4, s.MaxAttempts)
}

func TestContextWindow(t *testing.T) {
	assert.Equal(t, 32000, ContextWindow("gemini-2.5-pro", 32000))
	assert.Equal(t, 128000, ContextWindow("openai/gpt-4o", 0))
	assert.Equal(t, 32000, ContextWindow("some-local-model", 0))
	assert.Equal(t, 8000, ContextWindow("some-local-model", 8000))
}

func TestSplitModel(t *testing.T) {
	ai, name := SplitModel("openai/gpt-4o")
	assert.Equal(t, AIOpenAI, ai)
	assert.Equal(t, "gpt-4o", name)

	ai, name = SplitModel("meta/llama")
	assert.Equal(t, AI(""), ai)
	assert.Equal(t, "meta/llama", name)
}

func TestDefaultConfig_ResolvesToDefaults(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, SaveConfig(DefaultConfig(p)))

	loaded, err := LoadConfig(p)
	require.NoError(t, err)
	fromFile, err := loaded.Resolve()
	require.NoError(t, err)
	fromNothing, err := (&Config{}).Resolve()
	require.NoError(t, err)
	assert.Equal(t, fromNothing, fromFile)
}
