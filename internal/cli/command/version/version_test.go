package version

import (
	"bytes"
	"context"
	"testing"

	"github.com/Tomas-vilte/MateImpact/internal/i18n"
	appversion "github.com/Tomas-vilte/MateImpact/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	cmd := NewVersionCommand().CreateCommand(translations)
	out := new(bytes.Buffer)
	cmd.Writer = out

	err = cmd.Run(context.Background(), []string{"version"})

	assert.NoError(t, err)
	assert.Equal(t, "mate-impact "+appversion.FullVersion()+"\n", out.String())
}
