package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeInput         ErrorType = "INPUT"
	TypeTemplate      ErrorType = "TEMPLATE"
	TypeModel         ErrorType = "MODEL"
	TypePublish       ErrorType = "PUBLISH"
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeVCS           ErrorType = "VCS"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if detail, ok := e.Context["detail"].(string); ok && detail != "" {
			msg += fmt.Sprintf(" - %s", detail)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type and message, so
// sentinels keep matching after WithError/WithContext copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Input errors
var (
	ErrNoPRURL = NewAppError(TypeInput, "PR URL is required", nil).
			WithSuggestion("Pass the pull request URL: mate-impact analyze --pr-url <url>")

	ErrInvalidPRURL = NewAppError(TypeInput, "PR URL is not a recognized pull request URL", nil).
			WithSuggestion("Use the form https://github.com/<owner>/<repo>/pull/<number>")
)

// Configuration errors
var (
	ErrNoModels = NewAppError(TypeConfiguration, "at least one model must be configured", nil).
			WithSuggestion("Set config.model in ~/.mate-impact/config.toml")

	ErrNoCompletionBackend = NewAppError(TypeConfiguration, "no completion backend is configured", nil).
				WithSuggestion("Export GEMINI_API_KEY or OPENAI_API_KEY")

	ErrTokenMissing = NewAppError(TypeConfiguration, "VCS token is missing", nil).
			WithSuggestion("Export GITHUB_TOKEN or set github_token in the config file")

	ErrInvalidConfig = NewAppError(TypeConfiguration, "configuration is not valid", nil)
)

// Model errors
var (
	ErrFallbackExhausted = NewAppError(TypeModel, "every fallback model failed", nil)

	ErrUnknownModel = NewAppError(TypeModel, "no backend registered for model", nil).
			WithSuggestion("Use a gemini-* or gpt-* model, or prefix the model with its provider (openai/<model>)")

	ErrEmptyCompletion = NewAppError(TypeModel, "model returned no content", nil)
)

// Pipeline errors
var (
	ErrPublish = NewAppError(TypePublish, "failed to publish deployment impact analysis", nil)

	ErrDiffAlreadySet = NewAppError(TypeInternal, "analysis diff can only be set once", nil)

	ErrInvalidTransition = NewAppError(TypeInternal, "invalid pipeline state transition", nil)

	ErrPipelinePanic = NewAppError(TypeInternal, "deployment impact pipeline panicked", nil)
)

// VCS errors
var (
	ErrFetchPR = NewAppError(TypeVCS, "failed to fetch pull request data", nil).
			WithSuggestion("Check the PR URL and that the token can read the repository")

	ErrPostComment = NewAppError(TypeVCS, "failed to post comment", nil).
			WithSuggestion("The token needs write access to issues and pull requests")
)

// TemplateRenderError is returned when a prompt template references a variable
// that the analysis context does not define, or the template cannot be parsed.
type TemplateRenderError struct {
	Template string
	Variable string
	Err      error
}

func (e *TemplateRenderError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: template %q references undefined variable %q", TypeTemplate, e.Template, e.Variable)
	}
	return fmt.Sprintf("%s: template %q could not be rendered: %v", TypeTemplate, e.Template, e.Err)
}

func (e *TemplateRenderError) Unwrap() error {
	return e.Err
}

// IsTemplateError reports whether err carries a TemplateRenderError.
func IsTemplateError(err error) bool {
	var tErr *TemplateRenderError
	return errors.As(err, &tErr)
}

// FailureKind separates model failures worth retrying from the ones that are not.
type FailureKind int

const (
	Permanent FailureKind = iota
	Transient
)

func (k FailureKind) String() string {
	if k == Transient {
		return "transient"
	}
	return "permanent"
}

// ModelError is the failure surfaced by a completion backend for one model.
type ModelError struct {
	Kind   FailureKind
	Model  string
	Status int
	Err    error
}

func (e *ModelError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s failure calling %s (status %d): %v", TypeModel, e.Kind, e.Model, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s failure calling %s: %v", TypeModel, e.Kind, e.Model, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as a retryable failure for model.
func NewTransientError(model string, status int, err error) *ModelError {
	return &ModelError{Kind: Transient, Model: model, Status: status, Err: err}
}

// NewPermanentError wraps err as a failure that retrying the same model cannot fix.
func NewPermanentError(model string, status int, err error) *ModelError {
	return &ModelError{Kind: Permanent, Model: model, Status: status, Err: err}
}

// IsTransient reports whether err is a retryable model failure.
func IsTransient(err error) bool {
	var mErr *ModelError
	if errors.As(err, &mErr) {
		return mErr.Kind == Transient
	}
	return false
}
