package observability

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/salesagent-backend/internal/platform/envutil"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

// Metrics holds every collector the service exports. All methods are nil-safe so
// callers never need to check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	pipelineRuns  *prometheus.CounterVec
	stepLatency   *prometheus.HistogramVec
	workerLatency *prometheus.HistogramVec
	workerConf    *prometheus.HistogramVec

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	cacheLookups *prometheus.CounterVec
	eventsPub    *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics set when METRICS_ENABLED is on.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

// New builds a metrics set on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	latencyBuckets := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sa_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sa_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: latencyBuckets,
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "sa_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		pipelineRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sa_pipeline_runs_total",
			Help: "Conversation pipeline runs by outcome and intent.",
		}, []string{"outcome", "intent"}),
		stepLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sa_pipeline_step_duration_seconds",
			Help:    "Pipeline step latency in seconds.",
			Buckets: latencyBuckets,
		}, []string{"step", "status"}),
		workerLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sa_worker_duration_seconds",
			Help:    "Worker execution latency in seconds.",
			Buckets: latencyBuckets,
		}, []string{"worker", "status"}),
		workerConf: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sa_worker_confidence",
			Help:    "Confidence reported by workers.",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}, []string{"worker"}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sa_llm_requests_total",
			Help: "LLM requests by model/endpoint/status.",
		}, []string{"model", "endpoint", "status"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sa_llm_request_duration_seconds",
			Help:    "LLM request latency in seconds.",
			Buckets: latencyBuckets,
		}, []string{"model", "endpoint", "status"}),
		llmTokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sa_llm_tokens_total",
			Help: "LLM tokens by model and kind (input/output).",
		}, []string{"model", "kind"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sa_cache_lookups_total",
			Help: "Cache lookups by cache and result (hit/miss/error).",
		}, []string{"cache", "result"}),
		eventsPub: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sa_events_published_total",
			Help: "Events published on the bus by type and status.",
		}, []string{"event", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orDefault(method, "UNKNOWN")
	route = orDefault(route, "unknown")
	status = orDefault(status, "0")
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncPipelineRun(outcome, intent string) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(orDefault(outcome, "unknown"), orDefault(intent, "none")).Inc()
}

func (m *Metrics) ObservePipelineStep(step, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stepLatency.WithLabelValues(orDefault(step, "unknown"), orDefault(status, "ok")).Observe(dur.Seconds())
}

func (m *Metrics) ObserveWorker(worker, status string, dur time.Duration, confidence float64) {
	if m == nil {
		return
	}
	worker = orDefault(worker, "unknown")
	m.workerLatency.WithLabelValues(worker, orDefault(status, "ok")).Observe(dur.Seconds())
	m.workerConf.WithLabelValues(worker).Observe(confidence)
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orDefault(model, "unknown")
	endpoint = orDefault(endpoint, "unknown")
	status = orDefault(status, "0")
	m.llmRequests.WithLabelValues(model, endpoint, status).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(model, endpoint, status).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) IncCacheLookup(cache, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(orDefault(cache, "unknown"), orDefault(result, "unknown")).Inc()
}

func (m *Metrics) IncEventPublished(event string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.eventsPub.WithLabelValues(orDefault(event, "unknown"), status).Inc()
}

func StatusLabel(code int) string {
	return strconv.Itoa(code)
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
