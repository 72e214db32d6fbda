package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveAttempt("gemini-2.5-pro", OutcomeTransient)
	m.ObserveAttempt("gemini-2.5-pro", OutcomeTransient)
	m.ObserveAttempt("gemini-2.5-flash", OutcomeSuccess)
	m.ObserveRun("completed", 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.modelAttempts.WithLabelValues("gemini-2.5-pro", OutcomeTransient)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelAttempts.WithLabelValues("gemini-2.5-flash", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pipelineRuns.WithLabelValues("completed")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAttempt("x", OutcomeSuccess)
		m.ObserveRun("completed", time.Second)
		m.ObserveDiffTokens(10)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveAttempt("gpt-4o", OutcomePermanent)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `model_attempts_total{model="gpt-4o",outcome="permanent"} 1`)
}
