package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubPRURL(t *testing.T) {
	m := GitHubPRURL.FindStringSubmatch("https://github.com/acme/api/pull/42/files")
	assert.Equal(t, []string{"https://github.com/acme/api/pull/42/files", "acme", "api", "42"}, m)

	assert.Nil(t, GitHubPRURL.FindStringSubmatch("https://github.com/acme/api/issues/42"))

	m = GitHubAPIPRURL.FindStringSubmatch("https://api.github.com/repos/acme/api/pulls/7")
	assert.Equal(t, "7", m[3])
}

func TestBarePlaceholder(t *testing.T) {
	out := BarePlaceholder.ReplaceAllString("Title: {{ title }} / {{.branch}} / {{- diff -}}", "{{${1}.${2}${3}}}")
	assert.Equal(t, "Title: {{ .title }} / {{.branch}} / {{- .diff -}}", out)
}

func TestBareCondition(t *testing.T) {
	m := BareCondition.FindStringSubmatch("{{- else if not is_ai_metadata -}}")
	require.NotNil(t, m)
	assert.Equal(t, "else if not ", m[2])
	assert.Equal(t, "is_ai_metadata", m[3])

	assert.Nil(t, BareCondition.FindStringSubmatch("{{ if .title }}"))
	assert.Nil(t, BareCondition.FindStringSubmatch("{{ if and a b }}"))
}

func TestWalkthroughEntry(t *testing.T) {
	m := WalkthroughEntry.FindStringSubmatch("- `db/migrate.go`: adds index on users.email")
	assert.Equal(t, "db/migrate.go", m[1])
	assert.Equal(t, "adds index on users.email", m[2])

	m = WalkthroughEntry.FindStringSubmatch("| `cache.go` | new LRU layer |")
	assert.Equal(t, "cache.go", m[1])
	assert.Equal(t, "new LRU layer", m[2])
}
