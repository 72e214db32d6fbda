package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/prompt"
)

type (
	// Config mirrors config.toml. Optional values are pointers so Resolve can
	// tell an explicit zero from an absent key.
	Config struct {
		Language    string       `toml:"language"`
		GitHubToken string       `toml:"github_token,omitempty"`
		Core        CoreConfig   `toml:"config"`
		Impact      ImpactConfig `toml:"pr_deployment_impact"`
		Prompt      PromptConfig `toml:"pr_deployment_impact_prompt"`
		Gemini      GeminiConfig `toml:"gemini"`
		OpenAI      OpenAIConfig `toml:"openai"`
		Server      ServerConfig `toml:"server"`

		PathFile string `toml:"-"`
	}

	CoreConfig struct {
		PublishOutput    *bool    `toml:"publish_output,omitempty"`
		Temperature      *float64 `toml:"temperature,omitempty"`
		EnableAIMetadata *bool    `toml:"enable_ai_metadata,omitempty"`
		IsAutoCommand    *bool    `toml:"is_auto_command,omitempty"`
		Model            string   `toml:"model,omitempty"`
		FallbackModels   []string `toml:"fallback_models,omitempty"`
		MaxModelTokens   *int     `toml:"max_model_tokens,omitempty"`
		MaxAttempts      *int     `toml:"max_attempts,omitempty"`
		OutputReserve    *int     `toml:"output_reserve_tokens,omitempty"`
		TruncationPolicy string   `toml:"truncation_policy,omitempty"`
		IgnoreGlobs      []string `toml:"ignore_globs,omitempty"`
	}

	ImpactConfig struct {
		ExtraInstructions  string `toml:"extra_instructions,omitempty"`
		PersistentComment  *bool  `toml:"persistent_comment,omitempty"`
		FinalUpdateMessage *bool  `toml:"final_update_message,omitempty"`
	}

	PromptConfig struct {
		System string `toml:"system,omitempty"`
		User   string `toml:"user,omitempty"`
	}

	GeminiConfig struct {
		APIKey string `toml:"api_key,omitempty"`
	}

	OpenAIConfig struct {
		APIKey  string `toml:"api_key,omitempty"`
		BaseURL string `toml:"base_url,omitempty"`
	}

	ServerConfig struct {
		Addr       string `toml:"addr,omitempty"`
		LocalesDir string `toml:"locales_dir,omitempty"`
	}
)

const (
	defaultLang              = "en"
	defaultPublishOutput     = true
	defaultTemperature       = 0.2
	defaultModel             = string(ModelGeminiV25Pro)
	defaultMaxModelTokens    = 32000
	defaultMaxAttempts       = 2
	defaultOutputReserve     = 1500
	defaultPersistentComment = true
	defaultFinalUpdate       = true
	defaultServerAddr        = ":5000"

	PolicyHunks = "hunks"
	PolicyFiles = "files"

	configDirName  = ".mate-impact"
	configFileName = "config.toml"
)

var defaultFallbackModels = []string{string(ModelGeminiV25Flash)}

// Environment variables that override the file.
const (
	EnvGitHubToken   = "GITHUB_TOKEN"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
)

// DefaultPath returns ~/.mate-impact/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	if home == "" {
		return "", errors.New("home directory is not set")
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// LoadConfig reads the TOML file at path, or the default location when path
// is empty, and applies environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{PathFile: path}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error checking config file: %w", err)
		}
	} else {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, apperrors.ErrInvalidConfig.WithError(err).WithContext("path", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, apperrors.ErrInvalidConfig.
				WithContext("path", path).
				WithContext("detail", "unknown keys: "+strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvGitHubToken); v != "" {
		c.GitHubToken = v
	}
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvOpenAIBaseURL); v != "" {
		c.OpenAI.BaseURL = v
	}
}

// DefaultConfig returns a file at path with every core default spelled out,
// used by `config init`. Prompts stay empty so the built-in templates apply.
func DefaultConfig(path string) *Config {
	publish, aiMeta, auto := defaultPublishOutput, false, false
	temperature := defaultTemperature
	maxTokens, attempts, reserve := defaultMaxModelTokens, defaultMaxAttempts, defaultOutputReserve
	persistent, final := defaultPersistentComment, defaultFinalUpdate

	return &Config{
		Language: defaultLang,
		Core: CoreConfig{
			PublishOutput:    &publish,
			Temperature:      &temperature,
			EnableAIMetadata: &aiMeta,
			IsAutoCommand:    &auto,
			Model:            defaultModel,
			FallbackModels:   append([]string(nil), defaultFallbackModels...),
			MaxModelTokens:   &maxTokens,
			MaxAttempts:      &attempts,
			OutputReserve:    &reserve,
			TruncationPolicy: PolicyHunks,
		},
		Impact: ImpactConfig{
			PersistentComment:  &persistent,
			FinalUpdateMessage: &final,
		},
		Server:   ServerConfig{Addr: defaultServerAddr},
		PathFile: path,
	}
}

// SaveConfig writes the file section of cfg back to cfg.PathFile.
func SaveConfig(cfg *Config) error {
	if cfg.PathFile == "" {
		return errors.New("config file path is not set")
	}
	if _, err := cfg.Resolve(); err != nil {
		return fmt.Errorf("refusing to save invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.PathFile), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	f, err := os.OpenFile(cfg.PathFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}

// Settings is the fully resolved configuration, built once at startup and
// passed down explicitly.
type Settings struct {
	Language    string
	GitHubToken string

	PublishOutput    bool
	Temperature      float64
	EnableAIMetadata bool
	IsAutoCommand    bool
	Model            string
	FallbackModels   []string
	MaxModelTokens   int
	MaxAttempts      int
	OutputReserve    int
	TruncationPolicy string
	IgnoreGlobs      []string

	ExtraInstructions  string
	PersistentComment  bool
	FinalUpdateMessage bool

	SystemPrompt string
	UserPrompt   string

	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	ServerAddr string
	LocalesDir string
}

// Resolve applies defaults and validates the result.
func (c *Config) Resolve() (*Settings, error) {
	s := &Settings{
		Language:           orDefault(c.Language, defaultLang),
		GitHubToken:        c.GitHubToken,
		PublishOutput:      boolOr(c.Core.PublishOutput, defaultPublishOutput),
		Temperature:        floatOr(c.Core.Temperature, defaultTemperature),
		EnableAIMetadata:   boolOr(c.Core.EnableAIMetadata, false),
		IsAutoCommand:      boolOr(c.Core.IsAutoCommand, false),
		Model:              orDefault(strings.TrimSpace(c.Core.Model), defaultModel),
		FallbackModels:     c.Core.FallbackModels,
		MaxModelTokens:     intOr(c.Core.MaxModelTokens, defaultMaxModelTokens),
		MaxAttempts:        intOr(c.Core.MaxAttempts, defaultMaxAttempts),
		OutputReserve:      intOr(c.Core.OutputReserve, defaultOutputReserve),
		TruncationPolicy:   orDefault(c.Core.TruncationPolicy, PolicyHunks),
		IgnoreGlobs:        c.Core.IgnoreGlobs,
		ExtraInstructions:  c.Impact.ExtraInstructions,
		PersistentComment:  boolOr(c.Impact.PersistentComment, defaultPersistentComment),
		FinalUpdateMessage: boolOr(c.Impact.FinalUpdateMessage, defaultFinalUpdate),
		SystemPrompt:       orDefault(c.Prompt.System, prompt.DefaultSystemTemplate),
		UserPrompt:         orDefault(c.Prompt.User, prompt.DefaultUserTemplate),
		GeminiAPIKey:       c.Gemini.APIKey,
		OpenAIAPIKey:       c.OpenAI.APIKey,
		OpenAIBaseURL:      c.OpenAI.BaseURL,
		ServerAddr:         orDefault(c.Server.Addr, defaultServerAddr),
		LocalesDir:         c.Server.LocalesDir,
	}
	if c.Core.FallbackModels == nil {
		s.FallbackModels = append([]string(nil), defaultFallbackModels...)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	invalid := func(detail string) error {
		return apperrors.ErrInvalidConfig.WithContext("detail", detail)
	}

	if s.Temperature < 0 || s.Temperature > 2 {
		return invalid(fmt.Sprintf("config.temperature must be between 0 and 2, got %v", s.Temperature))
	}
	if s.MaxAttempts < 1 {
		return invalid("config.max_attempts must be at least 1")
	}
	if s.MaxModelTokens <= 0 {
		return invalid("config.max_model_tokens must be greater than 0")
	}
	if s.OutputReserve < 0 {
		return invalid("config.output_reserve_tokens cannot be negative")
	}
	if s.TruncationPolicy != PolicyHunks && s.TruncationPolicy != PolicyFiles {
		return invalid(fmt.Sprintf("config.truncation_policy must be %q or %q", PolicyHunks, PolicyFiles))
	}
	for _, g := range s.IgnoreGlobs {
		if _, err := path.Match(g, ""); err != nil {
			return invalid(fmt.Sprintf("config.ignore_globs has a bad pattern %q", g))
		}
	}
	if _, err := s.Candidates(); err != nil {
		return err
	}
	return nil
}

// Candidates returns the primary model followed by the fallback models.
func (s *Settings) Candidates() (models.ModelCandidates, error) {
	ids := append([]string{s.Model}, s.FallbackModels...)
	return models.NewModelCandidates(ids...)
}

type entry struct {
	key   string
	value any
}

func (s *Settings) entries() []entry {
	return []entry{
		{"language", s.Language},
		{"github_token", s.GitHubToken},
		{"config.publish_output", s.PublishOutput},
		{"config.temperature", s.Temperature},
		{"config.enable_ai_metadata", s.EnableAIMetadata},
		{"config.is_auto_command", s.IsAutoCommand},
		{"config.model", s.Model},
		{"config.fallback_models", s.FallbackModels},
		{"config.max_model_tokens", s.MaxModelTokens},
		{"config.max_attempts", s.MaxAttempts},
		{"config.output_reserve_tokens", s.OutputReserve},
		{"config.truncation_policy", s.TruncationPolicy},
		{"config.ignore_globs", s.IgnoreGlobs},
		{"pr_deployment_impact.extra_instructions", s.ExtraInstructions},
		{"pr_deployment_impact.persistent_comment", s.PersistentComment},
		{"pr_deployment_impact.final_update_message", s.FinalUpdateMessage},
		{"pr_deployment_impact_prompt.system", s.SystemPrompt},
		{"pr_deployment_impact_prompt.user", s.UserPrompt},
		{"gemini.api_key", s.GeminiAPIKey},
		{"openai.api_key", s.OpenAIAPIKey},
		{"openai.base_url", s.OpenAIBaseURL},
		{"server.addr", s.ServerAddr},
		{"server.locales_dir", s.LocalesDir},
	}
}

// Keys lists the dotted keys understood by Lookup, in file order.
func (s *Settings) Keys() []string {
	es := s.entries()
	keys := make([]string, len(es))
	for i, e := range es {
		keys[i] = e.key
	}
	return keys
}

// Lookup returns a resolved value by its dotted key, e.g. "config.temperature".
func (s *Settings) Lookup(key string) (any, bool) {
	for _, e := range s.entries() {
		if e.key == key {
			return e.value, true
		}
	}
	return nil, false
}

// IsSecret reports whether the value behind key should be masked when shown.
func IsSecret(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "token")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
