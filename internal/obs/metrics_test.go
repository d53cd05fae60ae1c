package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrument_LabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Instrument())
	r.GET("/certificates/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/certificates/:id", "204"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/certificates/abc", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/certificates/:id", "204"))
	if after-before != 1 {
		t.Fatalf("expected counter +1, got %v -> %v", before, after)
	}
	if got := testutil.ToFloat64(httpInFlight); got != 0 {
		t.Fatalf("expected no in-flight requests, got %v", got)
	}
}

func TestObserveRPC(t *testing.T) {
	c := rpcRequestsTotal.WithLabelValues("svc", "M", "ok")
	before := testutil.ToFloat64(c)
	ObserveRPC("svc", "M", "ok", 10*time.Millisecond)
	if got := testutil.ToFloat64(c); got-before != 1 {
		t.Fatalf("expected counter +1, got %v -> %v", before, got)
	}
}

func TestInit_Idempotent(t *testing.T) {
	Init()
	Init()
}
