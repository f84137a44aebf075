// Package metrics collects and exposes Prometheus metrics for the admin
// panel: request throughput/latency, authorization denials and the live
// editing-presence count.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and updates the application metrics.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	authDenials     *prometheus.CounterVec
	presenceEntries prometheus.Gauge
}

// NewCollector builds a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_http_requests_total",
			Help: "HTTP responses by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		authDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_auth_denials_total",
			Help: "Requests denied by the route guard or the authorizer.",
		}, []string{"kind"}), // "unauthenticated" or "forbidden"
		presenceEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newsdesk_editing_presence_entries",
			Help: "Live editing-presence entries across all posts.",
		}),
	}
	reg.MustRegister(c.requests, c.requestDuration, c.authDenials, c.presenceEntries)
	return c
}

// RecordDenial counts a guard or authorizer denial.
func (c *Collector) RecordDenial(kind string) { c.authDenials.WithLabelValues(kind).Inc() }

// SetPresenceEntries updates the presence gauge; wired to Tracker.OnCount.
func (c *Collector) SetPresenceEntries(n int) { c.presenceEntries.Set(float64(n)) }

// Middleware instruments every request with the counter and histogram.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			start := time.Now()
			err := next(ec)
			status := ec.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			c.requests.WithLabelValues(ec.Request().Method, ec.Path(), strconv.Itoa(status)).Inc()
			c.requestDuration.Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler returns the /metrics endpoint for the given registry.
func Handler(reg *prometheus.Registry) echo.HandlerFunc {
	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}
