// Package prompt renders the system and user prompts of an analysis.
//
// Templates use text/template with missingkey=error, so a variable the
// analysis context does not define fails the render instead of producing an
// empty string. Bare placeholders such as {{ title }} are accepted and read as
// {{ .title }}, and so is a single bare name after if, with, range, else if or
// not, as in {{ if not is_ai_metadata }}. Longer pipelines such as
// {{ if and .a .b }} need the .name form.
package prompt

import (
	"errors"
	"strings"
	"text/template"

	"github.com/Tomas-vilte/MateImpact/internal/domain/models"
	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/Tomas-vilte/MateImpact/internal/regex"
)

const (
	SystemTemplateName = "system"
	UserTemplateName   = "user"
)

// keywords of text/template that must not be rewritten into field access.
var keywords = map[string]bool{
	"end": true, "else": true, "nil": true, "true": true,
	"false": true, "break": true, "continue": true,
}

// Prompts is a rendered system/user pair.
type Prompts struct {
	System string
	User   string
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render fills tmpl with the variables of actx.
func (r *Renderer) Render(name, tmpl string, actx *models.AnalysisContext) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(normalize(tmpl))
	if err != nil {
		return "", &apperrors.TemplateRenderError{Template: name, Err: err}
	}

	var out strings.Builder
	if err := t.Execute(&out, actx.Vars()); err != nil {
		return "", &apperrors.TemplateRenderError{Template: name, Variable: missingVariable(err), Err: err}
	}
	return out.String(), nil
}

// RenderPair renders both templates against the same context.
func (r *Renderer) RenderPair(system, user string, actx *models.AnalysisContext) (Prompts, error) {
	sys, err := r.Render(SystemTemplateName, system, actx)
	if err != nil {
		return Prompts{}, err
	}
	usr, err := r.Render(UserTemplateName, user, actx)
	if err != nil {
		return Prompts{}, err
	}
	return Prompts{System: sys, User: usr}, nil
}

func normalize(tmpl string) string {
	tmpl = regex.BareCondition.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := regex.BareCondition.FindStringSubmatch(m)
		if keywords[sub[3]] {
			return m
		}
		return "{{" + sub[1] + sub[2] + "." + sub[3] + sub[4] + "}}"
	})
	return regex.BarePlaceholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := regex.BarePlaceholder.FindStringSubmatch(m)
		if keywords[sub[2]] {
			return m
		}
		return "{{" + sub[1] + "." + sub[2] + sub[3] + "}}"
	})
}

func missingVariable(err error) string {
	var execErr template.ExecError
	msg := err.Error()
	if errors.As(err, &execErr) {
		msg = execErr.Err.Error()
	}
	if m := regex.MissingMapKey.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	if m := regex.UndefinedField.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	return ""
}
