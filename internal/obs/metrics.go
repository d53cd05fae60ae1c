package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_http_in_flight_requests",
		Help: "In-flight console HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Total number of console HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "Console HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	rpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_rpc_requests_total",
			Help: "Calls dispatched to the remote service.",
		},
		[]string{"service", "method", "outcome"},
	)

	rpcRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_rpc_request_duration_seconds",
			Help:    "Latency of calls dispatched to the remote service.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "outcome"},
	)

	authTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_auth_transitions_total",
			Help: "Session store state changes by resulting status.",
		},
		[]string{"status"},
	)
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			rpcRequestsTotal, rpcRequestDuration,
			authTransitionsTotal,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument measures every request, labelled by route template rather than raw path.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpInFlight.Dec()
	}
}

// ObserveRPC records one dispatched call. outcome is "ok", "error" or "canceled".
func ObserveRPC(service, method, outcome string, d time.Duration) {
	rpcRequestsTotal.WithLabelValues(service, method, outcome).Inc()
	rpcRequestDuration.WithLabelValues(service, method, outcome).Observe(d.Seconds())
}

func ObserveAuthTransition(status string) {
	authTransitionsTotal.WithLabelValues(status).Inc()
}
