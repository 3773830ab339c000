// internal/api/middleware.go
package api

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Corphon/ScriptBreakdown/internal/utils"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a new one
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// ZapLoggerMiddleware logs each request with zap; /health and /metrics are skipped
func ZapLoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		c.Next()

		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = path + "?" + rawQuery
		}

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", c.GetString(requestIDKey)),
		}

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors.ByType(gin.ErrorTypeAny) {
				log.Error("Request error", append(fields, zap.Error(ginErr.Err))...)
			}
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Server error", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}

// RecoveryMiddleware turns panics into a 500 envelope and logs the value
func RecoveryMiddleware(log *zap.Logger, rh *ResponseHelper) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
		rh.InternalError(c, ErrorInternalError, "An internal error occurred")
		c.Abort()
	})
}

// MetricsMiddleware records request counts and latency by route
func MetricsMiddleware(m *utils.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.RecordAPIRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// corsMiddleware allows cross-origin API calls
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RateLimiter hands out one token bucket per client key. Idle buckets
// expire from the cache.
type RateLimiter struct {
	visitors *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per key with a burst of the
// same size. A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		visitors: cache.New(10*time.Minute, 5*time.Minute),
		limit:    rate.Inf,
		burst:    1,
	}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = perMinute
	}
	return rl
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := rl.visitors.Get(key); ok {
		l := v.(*rate.Limiter)
		rl.visitors.SetDefault(key, l)
		return l
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.visitors.Add(key, l, cache.DefaultExpiration); err != nil {
		// lost a race with another request for the same key
		if v, ok := rl.visitors.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// Allow reports whether key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// RetryAfter estimates how long key must wait for its next token
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	r := rl.limiter(key).Reserve()
	defer r.Cancel()
	return r.Delay()
}

// Middleware limits requests by client IP
func (rl *RateLimiter) Middleware(rh *ResponseHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if rl.Allow(key) {
			c.Next()
			return
		}

		wait := rl.RetryAfter(key)
		c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(wait.Seconds()))))
		rh.Error(c, http.StatusTooManyRequests, &APIError{
			Code:    ErrorRateLimited,
			Message: "Too many submissions. Please wait a moment and try again.",
		}, nil)
		c.Abort()
	}
}
