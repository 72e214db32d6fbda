package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
)

// ClassifyStatus wraps err according to the HTTP status returned by a backend.
// Timeouts, throttling and server errors are worth retrying.
func ClassifyStatus(model string, status int, err error) error {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return apperrors.NewTransientError(model, status, err)
	}
	return apperrors.NewPermanentError(model, status, err)
}

// ClassifyTransport wraps an error that carries no status code. Cancellation
// is returned untouched so callers can tell it apart from model failures.
func ClassifyTransport(model string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return apperrors.NewTransientError(model, 0, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperrors.NewTransientError(model, 0, err)
	}
	return apperrors.NewPermanentError(model, 0, err)
}
