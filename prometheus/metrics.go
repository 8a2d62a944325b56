package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cariella_register_total",
			Help: "Total number of registration attempts",
		},
	)

	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cariella_login_total",
			Help: "Total number of login attempts",
		},
	)

	PhoneVerificationCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cariella_phone_verification_total",
			Help: "Total number of phone verification attempts",
		},
	)

	PasswordResetCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cariella_password_reset_total",
			Help: "Total number of password reset attempts",
		},
	)

	ListingFeedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cariella_listing_feed_total",
			Help: "Total number of marketplace feed requests",
		},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cariella_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "invalid_credentials", "code_expired", "db_error" etc.
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cariella_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cariella_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cariella_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	ActiveSessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cariella_active_sessions",
			Help: "Number of currently active login sessions",
		},
	)

	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cariella_info",
			Help: "Information about the Cariella service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(PhoneVerificationCounter)
	prometheus.MustRegister(PasswordResetCounter)
	prometheus.MustRegister(ListingFeedCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(ActiveSessionsGauge)
	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordAuthError increments the auth error counter for a given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// IncreaseActiveSessions increments the active sessions gauge
func IncreaseActiveSessions() {
	ActiveSessionsGauge.Inc()
}

// DecreaseActiveSessions decrements the active sessions gauge
func DecreaseActiveSessions() {
	ActiveSessionsGauge.Dec()
}
