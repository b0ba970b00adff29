package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// requestCount and requestLatency mirror the service's two operational
// questions: how many requests per endpoint/status, and how slow.
var (
	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_request_count",
		Help: "Total API requests",
	}, []string{"endpoint", "method", "status"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "app_request_latency_seconds",
		Help: "Request latency (s)",
	}, []string{"endpoint"})
)

// metricsHandler serves the prometheus exposition format.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder captures the response status for metrics labels.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records count and latency per endpoint.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		requestCount.WithLabelValues(endpoint, r.Method, strconv.Itoa(rec.status)).Inc()
		requestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	})
}
