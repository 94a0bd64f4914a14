package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/njchilds90/geosymbol/internal/logging"
	"github.com/njchilds90/geosymbol/internal/telemetry"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID propagates X-Request-ID, generating one when absent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		telemetry.ObserveRequest(route, strconv.Itoa(status))

		ev := s.logger.Info()
		if status >= http.StatusInternalServerError {
			ev = s.logger.Error()
		}
		logging.NewEvent(ev).
			Add(logging.RequestID(getRequestID(c))).
			Add(logging.Str("method", c.Request.Method)).
			Add(logging.Str("route", route)).
			Add(logging.Count("status", status)).
			Add(logging.Duration(time.Since(start))).
			Msg("request")
	}
}

// rateLimit applies the token bucket per client IP.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}
		if !s.limiter.Allow(c.Request.Context(), c.ClientIP()) {
			telemetry.ObserveRateLimited()
			logging.NewEvent(s.logger.Warn()).
				Add(logging.RequestID(getRequestID(c))).
				Add(logging.Str("client", c.ClientIP())).
				Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:     "rate limit exceeded",
				Code:      "RATE_LIMITED",
				RequestID: getRequestID(c),
			})
			return
		}
		c.Next()
	}
}

func bodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
