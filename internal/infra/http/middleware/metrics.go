package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	subscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_total",
			Help: "Subscription requests by result (created, updated, invalid, error)",
		},
		[]string{"result"},
	)

	surveySubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_submissions_total",
			Help: "Survey requests by result (found, not_found, submitted, invalid, error)",
		},
		[]string{"result"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps label cardinality bounded: the catch-all route would
// otherwise create one series per requested path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordSubscription(result string) {
	subscriptionsTotal.WithLabelValues(result).Inc()
}

func RecordSurvey(result string) {
	surveySubmissionsTotal.WithLabelValues(result).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

// FailureReporter matches usecase.FailureReporter.
type FailureReporter interface {
	ReportFailure(ctx context.Context, f entity.SideEffectFailure) error
}

type countingReporter struct {
	next FailureReporter
}

// CountFailures increments integration_errors_total for every reported
// side-effect failure before handing it to next. next may be nil.
func CountFailures(next FailureReporter) FailureReporter {
	return &countingReporter{next: next}
}

func (c *countingReporter) ReportFailure(ctx context.Context, f entity.SideEffectFailure) error {
	RecordIntegrationError(serviceFor(f.Kind))
	if c.next == nil {
		return nil
	}
	return c.next.ReportFailure(ctx, f)
}

func serviceFor(kind entity.FailureKind) string {
	switch kind {
	case entity.FailureListMirror:
		return "emailoctopus"
	case entity.FailureOptInEmail, entity.FailureAlertEmail:
		return "mailer"
	default:
		return string(kind)
	}
}
