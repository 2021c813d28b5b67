package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, c *Collectors) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	return rec.Body.String()
}

func TestCollectors_SinkLifecycle(t *testing.T) {
	t.Parallel()
	c := NewCollectors()

	c.SinkCreated()
	c.SinkCreated()
	c.SinkDestroyed()
	c.SinkRejected()

	body := scrape(t, c)
	for _, want := range []string{
		"winsatrun_live_sinks 1",
		"winsatrun_sinks_created_total 2",
		"winsatrun_sinks_rejected_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}
}

func TestCollectors_Events(t *testing.T) {
	t.Parallel()
	c := NewCollectors()

	c.ProgressDelivered()
	c.ProgressDelivered()
	c.CompletionDelivered("success")
	c.EventDropped("progress")
	c.RunFinished(0, 2*time.Second)

	body := scrape(t, c)
	for _, want := range []string{
		"winsatrun_progress_events_total 2",
		`winsatrun_completion_events_total{outcome="success"} 1`,
		`winsatrun_dropped_events_total{kind="progress"} 1`,
		`winsatrun_runs_total{exit_code="0"} 1`,
		"winsatrun_run_duration_seconds_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}
}

func TestCollectors_RuntimeMetrics(t *testing.T) {
	t.Parallel()
	body := scrape(t, NewCollectors())
	if !strings.Contains(body, "go_goroutines") {
		t.Error("metrics output should contain Go runtime metrics")
	}
}

func TestNop(t *testing.T) {
	t.Parallel()
	r := Nop()
	r.SinkCreated()
	r.SinkDestroyed()
	r.SinkRejected()
	r.ProgressDelivered()
	r.CompletionDelivered("failure")
	r.EventDropped("completion")
	r.RunFinished(5, time.Second)
}
