package middleware

import (
	"strconv"
	"time"

	"github.com/HSouheill/skillnera_mlm/security"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// HTTPMetrics holds Prometheus metrics for the HTTP surface
type HTTPMetrics struct {
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// NewHTTPMetrics registers the HTTP collectors on reg
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mlm",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mlm",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mlm",
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
	}
}

// RequestLogger tags every request with an id, logs it when done and records
// HTTP metrics. metrics may be nil.
func RequestLogger(log logrus.FieldLogger, metrics *HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			rid := req.Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Response().Header().Set(RequestIDHeader, rid)

			reqLog := log.WithField("request_id", rid)
			c.Set("logger", reqLog)

			if metrics != nil {
				metrics.RequestsInFlight.Inc()
				defer metrics.RequestsInFlight.Dec()
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error response so the status is known
				c.Error(err)
			}
			latency := time.Since(start)

			status := c.Response().Status
			route := c.Path()

			if metrics != nil {
				metrics.RequestCounter.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
				metrics.RequestDuration.WithLabelValues(req.Method, route).Observe(latency.Seconds())
			}

			entry := reqLog.WithFields(logrus.Fields{
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     status,
				"latency_ms": latency.Milliseconds(),
				"ip":         c.RealIP(),
			})
			switch {
			case status >= 500:
				entry.WithField("headers", security.SanitizeHeaders(req.Header.Clone())).Error("request failed")
			case status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Debug("request")
			}

			return nil
		}
	}
}

// LoggerFrom returns the request-scoped logger set by RequestLogger, or fallback
func LoggerFrom(c echo.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if l, ok := c.Get("logger").(logrus.FieldLogger); ok {
		return l
	}
	return fallback
}
