package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of one server. Each server owns a
// registry so tests and embedded servers never collide on registration.
//
// Metrics:
//   - primus_http_requests_total{method,endpoint,status}
//   - primus_http_request_duration_seconds{method,endpoint,status}
//   - primus_http_active_requests
//   - primus_scans_total
//   - primus_scan_blocks_total
//   - primus_tasks_extracted_total
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal  *prometheus.CounterVec
	requestDur     *prometheus.HistogramVec
	activeRequests prometheus.Gauge

	scansTotal     prometheus.Counter
	blocksTotal    prometheus.Counter
	tasksExtracted prometheus.Counter
}

// NewMetrics creates and registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "primus_http_requests_total",
				Help: "Total HTTP requests by method, endpoint and status code",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDur: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "primus_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint", "status"},
		),
		activeRequests: f.NewGauge(prometheus.GaugeOpts{
			Name: "primus_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		}),
		scansTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "primus_scans_total",
			Help: "Total scan runs",
		}),
		blocksTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "primus_scan_blocks_total",
			Help: "Total text blocks read by scans",
		}),
		tasksExtracted: f.NewCounter(prometheus.CounterOpts{
			Name: "primus_tasks_extracted_total",
			Help: "Total task descriptions returned by scan and extract",
		}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveScan records one scan run.
func (m *Metrics) ObserveScan(blocks, tasks int) {
	m.scansTotal.Inc()
	m.blocksTotal.Add(float64(blocks))
	m.tasksExtracted.Add(float64(tasks))
}

// ObserveExtract records tasks returned by a direct extraction.
func (m *Metrics) ObserveExtract(tasks int) {
	m.tasksExtracted.Add(float64(tasks))
}

// Middleware returns an Echo middleware that records request metrics.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			m.activeRequests.Inc()
			defer m.activeRequests.Dec()

			err := next(c)
			if err != nil {
				// Let the error handler write the status before we read it.
				c.Error(err)
			}

			labels := prometheus.Labels{
				"method":   c.Request().Method,
				"endpoint": normalizePath(c.Path()),
				"status":   strconv.Itoa(c.Response().Status),
			}
			m.requestsTotal.With(labels).Inc()
			m.requestDur.With(labels).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// normalizePath keeps label cardinality bounded. Routes are fixed, so the
// matched route path is used as is; unmatched requests share one label.
func normalizePath(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}
