package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	applogger "SqueezeScan/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method", "status", "class"},
	)

	inFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		},
		[]string{"route", "method"},
	)

	responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{200, 500, 1_000, 2_000, 5_000, 10_000, 50_000, 100_000, 500_000, 1_000_000},
		},
		[]string{"route", "method", "status", "class"},
	)

	registerOnce sync.Once
)

// Metrics records per-request counters, latency and size histograms, and logs
// failed or slow requests. Routes should be templated paths to keep label
// cardinality bounded.
func Metrics(l *applogger.Logger, slowThreshold time.Duration) func(http.Handler) http.Handler {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestsTotal, requestDuration, inFlight, responseSize)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeLabel(r)
			method := r.Method

			inFlight.WithLabelValues(route, method).Inc()
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			status := strconv.Itoa(rec.status)
			class := statusClass(rec.status)

			requestsTotal.WithLabelValues(route, method, status).Inc()
			requestDuration.WithLabelValues(route, method, status, class).Observe(elapsed.Seconds())
			responseSize.WithLabelValues(route, method, status, class).Observe(float64(rec.written))
			inFlight.WithLabelValues(route, method).Dec()

			if l == nil {
				return
			}
			if rec.status >= 500 {
				logRequest(l.Error, "http request failed", route, method, status, elapsed, rec.written)
			} else if slowThreshold > 0 && elapsed >= slowThreshold {
				logRequest(l.Warn, "http request slow", route, method, status, elapsed, rec.written)
			}
		})
	}
}

func logRequest(emit func(string, ...applogger.Field), msg, route, method, status string, elapsed time.Duration, bytes int) {
	emit(msg,
		applogger.String("route", route),
		applogger.String("method", method),
		applogger.String("status", status),
		applogger.Duration("duration_ms", elapsed),
		applogger.Int("bytes", bytes),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// routeLabel prefers a route template placed in the request context by the
// router; it falls back to the raw URL path.
func routeLabel(r *http.Request) string {
	if v := r.Context().Value("route"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return r.URL.Path
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
