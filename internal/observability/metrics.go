package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	JobsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_jobs_created_total",
			Help: "Total number of jobs posted",
		},
	)
	JobTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_job_transitions_total",
			Help: "Total number of job lifecycle transitions",
		},
		[]string{"to"},
	)
	ApplicationsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_applications_submitted_total",
			Help: "Total number of applications submitted",
		},
	)
	RatingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_ratings_total",
			Help: "Total number of rating operations",
		},
		[]string{"op"},
	)
	NotifyPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_notify_publish_failures_total",
			Help: "Notification events that could not be published",
		},
	)
)

// InitMetrics registers all Prometheus collectors once per process.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(JobsCreatedTotal)
	prometheus.MustRegister(JobTransitionsTotal)
	prometheus.MustRegister(ApplicationsSubmittedTotal)
	prometheus.MustRegister(RatingsTotal)
	prometheus.MustRegister(NotifyPublishFailures)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside the chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}
