package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/iwac-chat/pkg/observability/metrics"
	mwopts "github.com/kart-io/iwac-chat/pkg/options/middleware"
)

// HTTPMetrics 记录请求数、耗时和进行中的请求数。
type HTTPMetrics struct {
	requests metrics.CounterVec
	duration metrics.HistogramVec
	inflight metrics.Gauge
}

// NewHTTPMetrics creates HTTP metrics and registers them in r.
func NewHTTPMetrics(opts mwopts.MetricsOptions, r *metrics.Registry) *HTTPMetrics {
	p := opts.Namespace + "_"
	if opts.Subsystem != "" {
		p += opts.Subsystem + "_"
	}
	m := &HTTPMetrics{
		requests: metrics.NewCounterVec(p+"requests_total", "HTTP requests, by method, route and status."),
		duration: metrics.NewHistogramVec(p+"request_duration_seconds", "HTTP request duration in seconds.", nil),
		inflight: metrics.NewGauge(p+"requests_in_flight", "HTTP requests currently being served."),
	}
	r.Register(m.requests, m.duration, m.inflight)
	return m
}

// Middleware returns the gin middleware recording the metrics.
// Unmatched routes are recorded under the route "unmatched".
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.With(map[string]string{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}).Inc()
		m.duration.With(map[string]string{"route": route}).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in Prometheus text format.
func Handler(r *metrics.Registry, extra ...func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := r.Export()
		for _, fn := range extra {
			body += fn()
		}
		c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(body))
	}
}
