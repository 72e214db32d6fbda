package models

import (
	"maps"

	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
)

// Variable names available to prompt templates.
const (
	VarTitle             = "title"
	VarBranch            = "branch"
	VarDescription       = "description"
	VarLanguage          = "language"
	VarDiff              = "diff"
	VarCommitMessages    = "commit_messages_str"
	VarExtraInstructions = "extra_instructions"
	VarIsAIMetadata      = "is_ai_metadata"
	VarDate              = "date"
)

// AnalysisContext holds the variables rendered into the prompts of one
// analysis. Every field is fixed at construction except the diff, which is
// filled exactly once after budgeting.
type AnalysisContext struct {
	vars    map[string]any
	diffSet bool
}

// AnalysisInput collects the values used to build an AnalysisContext.
type AnalysisInput struct {
	Title             string
	Branch            string
	Description       string
	Language          string
	CommitMessages    string
	ExtraInstructions string
	IsAIMetadata      bool
	Date              string
}

func NewAnalysisContext(in AnalysisInput) *AnalysisContext {
	return &AnalysisContext{
		vars: map[string]any{
			VarTitle:             in.Title,
			VarBranch:            in.Branch,
			VarDescription:       in.Description,
			VarLanguage:          in.Language,
			VarDiff:              "",
			VarCommitMessages:    in.CommitMessages,
			VarExtraInstructions: in.ExtraInstructions,
			VarIsAIMetadata:      in.IsAIMetadata,
			VarDate:              in.Date,
		},
	}
}

// NewAnalysisContextFromVars builds a context from an arbitrary variable set.
// Missing names stay missing so strict rendering can report them.
func NewAnalysisContextFromVars(vars map[string]any) *AnalysisContext {
	cloned := maps.Clone(vars)
	if cloned == nil {
		cloned = map[string]any{}
	}
	return &AnalysisContext{vars: cloned}
}

// SetDiff fills the diff slot. A second call fails with ErrDiffAlreadySet.
func (c *AnalysisContext) SetDiff(diff string) error {
	if c.diffSet {
		return apperrors.ErrDiffAlreadySet
	}
	c.vars[VarDiff] = diff
	c.diffSet = true
	return nil
}

func (c *AnalysisContext) Diff() string {
	d, _ := c.vars[VarDiff].(string)
	return d
}

// Vars returns a copy of the variables for rendering.
func (c *AnalysisContext) Vars() map[string]any {
	return maps.Clone(c.vars)
}

func (c *AnalysisContext) Get(name string) (any, bool) {
	v, ok := c.vars[name]
	return v, ok
}
