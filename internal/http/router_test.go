package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/salesagent-backend/internal/data/repos/testutil"
	"github.com/yungbote/salesagent-backend/internal/http/handlers"
	"github.com/yungbote/salesagent-backend/internal/observability"
)

func TestRouterServesHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.New()
	r := NewRouter(RouterConfig{
		Log:           testutil.Logger(t),
		Metrics:       m,
		HealthHandler: handlers.NewHealthHandler(testutil.DB(t)),
	})

	req := httptest.NewRequest(nethttp.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("health: want=%d got=%d", nethttp.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "req-1" {
		t.Fatalf("request id: want=req-1 got=%q", got)
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("trace id header missing")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("metrics: want=%d got=%d", nethttp.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `sa_api_requests_total{method="GET",route="/healthcheck",status="200"} 1`) {
		t.Fatalf("metrics body missing health request:\n%s", rec.Body.String())
	}
}

func TestRouterWithoutMetricsHasNoEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("metrics: want=%d got=%d", nethttp.StatusNotFound, rec.Code)
	}
}
