package handlers

import (
	"strconv"
	"time"

	"github.com/arnavshah/club-teams-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestLogger logs HTTP requests with method, path, status and duration
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("requestID", reqID)
		c.Header(RequestIDHeader, reqID)

		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0).
			Str("request_id", reqID).
			Msg("http")
	}
}

// RequestMetrics counts requests by method, matched route and status
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}
