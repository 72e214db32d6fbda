package tokens

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("a"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
}

func TestCounter_FallbackWithoutEncoding(t *testing.T) {
	c := &Counter{}

	assert.Equal(t, 0, c.CountTokens(""))
	assert.Equal(t, 25, c.CountTokens(strings.Repeat("x", 100)))
}

func TestCounter_Monotonic(t *testing.T) {
	c := NewCounter(context.Background())

	short := c.CountTokens("func main() {}")
	long := c.CountTokens(strings.Repeat("func main() {}\n", 50))

	assert.Positive(t, short)
	assert.Greater(t, long, short)
}
