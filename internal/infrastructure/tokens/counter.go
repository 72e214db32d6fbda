// Package tokens estimates how many model tokens a piece of text costs.
package tokens

import (
	"context"
	"sync"

	"github.com/Tomas-vilte/MateImpact/internal/domain/ports"
	"github.com/Tomas-vilte/MateImpact/internal/logger"
	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var _ ports.TokenCounter = (*Counter)(nil)

// Counter counts with the cl100k_base encoding, falling back to one token per
// four bytes when the encoding cannot be loaded.
type Counter struct {
	enc *tiktoken.Tiktoken
	mu  sync.Mutex
}

// NewCounter loads the encoding. Failing to load it is logged, not returned.
func NewCounter(ctx context.Context) *Counter {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		logger.Warn(ctx, "token encoding unavailable, using length heuristic",
			"encoding", encodingName,
			"error", err)
		return &Counter{}
	}
	return &Counter{enc: enc}
}

func (c *Counter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if c.enc == nil {
		return Estimate(text)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.enc.Encode(text, nil, nil))
}

// Estimate is the heuristic used without an encoding: ceil(len/4).
func Estimate(text string) int {
	return (len(text) + 3) / 4
}
