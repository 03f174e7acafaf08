package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/prometheus"
)

// Metrics returns middleware that records request counts, latencies, and
// in-flight gauges. The route template (c.FullPath) is used as the path label
// so that cardinality stays bounded; unmatched routes are collapsed into a
// single "unmatched" label.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		m.HTTPActiveRequests.WithLabelValues(method).Inc()
		defer m.HTTPActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(method, path, c.Writer.Status(), time.Since(start))
	}
}
