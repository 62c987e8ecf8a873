// Package metrics provides Prometheus instrumentation for the lending engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuotesTotal counts loan quotes computed, partitioned by risk tier.
	QuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nearmint_quotes_total",
		Help: "Total number of loan quotes computed",
	}, []string{"risk_tier"})

	// LoansOriginatedTotal counts loans approved and disbursed.
	LoansOriginatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearmint_loans_originated_total",
		Help: "Total number of loans originated",
	})

	// LoansRejectedTotal counts loan requests rejected by the approval policy.
	LoansRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearmint_loans_rejected_total",
		Help: "Loan requests rejected by the approval policy",
	})

	// RepaymentsTotal counts repayment events recorded.
	RepaymentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearmint_repayments_total",
		Help: "Total number of repayment events recorded",
	})

	// LiquidationsTotal counts loans liquidated by the sweep.
	LiquidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearmint_liquidations_total",
		Help: "Total number of loans liquidated",
	})

	// RiskAssessmentsTotal counts risk assessments, partitioned by tier.
	RiskAssessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nearmint_risk_assessments_total",
		Help: "Total number of liquidation risk assessments",
	}, []string{"risk_tier"})

	// ActiveLoans tracks the number of currently active loans.
	ActiveLoans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nearmint_active_loans",
		Help: "Number of currently active loans",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nearmint_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nearmint_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nearmint_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})

	// UploadsRejectedTotal counts uploads rejected by content validation.
	UploadsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearmint_uploads_rejected_total",
		Help: "Uploads rejected by content-type or size validation",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
