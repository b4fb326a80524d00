package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.IncPipelineRun("ok", "greeting")
	m.ObservePipelineStep("retrieve_context", "ok", time.Millisecond)
	m.ObserveWorker("cart", "ok", time.Millisecond, 0.9)
	m.ObserveLLMRequest("m", "/v1/chat/completions", "200", time.Millisecond, 1, 2)
	m.IncCacheLookup("customer", "hit")
	m.IncEventPublished("turn.completed", nil)
}

func TestMetricsCountAndExpose(t *testing.T) {
	m := New()
	m.IncPipelineRun("ok", "checkout")
	m.IncPipelineRun("ok", "checkout")
	m.IncEventPublished("turn.completed", errors.New("down"))

	if got := testutil.ToFloat64(m.pipelineRuns.WithLabelValues("ok", "checkout")); got != 2 {
		t.Fatalf("pipeline runs: want=2 got=%v", got)
	}
	if got := testutil.ToFloat64(m.eventsPub.WithLabelValues("turn.completed", "error")); got != 1 {
		t.Fatalf("events published: want=1 got=%v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "sa_pipeline_runs_total") {
		t.Fatalf("metrics body missing sa_pipeline_runs_total")
	}
}
