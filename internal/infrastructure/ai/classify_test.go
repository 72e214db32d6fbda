package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{408, true},
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{401, false},
		{403, false},
		{404, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := ClassifyStatus("gpt-4o", tt.status, errors.New("boom"))
			assert.Equal(t, tt.transient, apperrors.IsTransient(err))
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	assert.True(t, apperrors.IsTransient(ClassifyTransport("m", context.DeadlineExceeded)))
	assert.True(t, apperrors.IsTransient(ClassifyTransport("m", io.ErrUnexpectedEOF)))
	assert.True(t, apperrors.IsTransient(ClassifyTransport("m", &net.OpError{Op: "dial", Err: errors.New("refused")})))
	assert.False(t, apperrors.IsTransient(ClassifyTransport("m", errors.New("unsupported model"))))

	err := ClassifyTransport("m", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	var mErr *apperrors.ModelError
	assert.False(t, errors.As(err, &mErr))
}
