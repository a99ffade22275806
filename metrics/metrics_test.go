package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetsAreIndependent(t *testing.T) {
	t.Parallel()

	// Two sets must not collide on registration.
	a := New()
	b := New()
	a.FetchAttempts.Inc()
	b.FetchAttempts.Inc()
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	s := New()
	s.FetchAttempts.Inc()
	s.FetchFailures.WithLabelValues("read").Inc()
	s.Decisions.WithLabelValues("buy").Inc()
	s.KillSwitch.Set(1)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "quantctl_fetch_attempts_total 1")
	assert.Contains(t, string(body), `quantctl_fetch_failures_total{stage="read"} 1`)
	assert.Contains(t, string(body), `quantctl_decisions_total{action="buy"} 1`)
	assert.Contains(t, string(body), "quantctl_kill_switch 1")
}
