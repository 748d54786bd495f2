package http

import (
	"context"
	"fmt"
	"math"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/router-for-me/DynamicUIGenerator/internal/ratelimit"
	log "github.com/sirupsen/logrus"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// RateLimiter admits or rejects requests per client key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
	Policy() ratelimit.Policy
}

// RateLimitMiddleware rejects requests over the client's quota with 429.
func RateLimitMiddleware(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := ratelimit.ResolveClientKey(c.Request.Header, c.Request.RemoteAddr)
		if limiter.Allow(c.Request.Context(), key) {
			c.Next()
			return
		}
		policy := limiter.Policy()
		windowSeconds := int(math.Ceil(policy.Window.Seconds()))
		log.WithFields(log.Fields{
			"client":     key,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(requestIDKey),
		}).Info("rate limit: request rejected")
		c.Header("Retry-After", strconv.Itoa(windowSeconds))
		c.AbortWithStatusJSON(nethttp.StatusTooManyRequests, gin.H{
			"detail": fmt.Sprintf("Rate limit exceeded. Maximum %d requests per %d seconds.", policy.Requests, windowSeconds),
		})
	}
}

// RequestLogger assigns a request id and logs each completed request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"client":     c.ClientIP(),
		})
		switch {
		case status >= nethttp.StatusInternalServerError:
			entry.Warn("request failed")
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Info("request completed with errors")
		default:
			entry.Debug("request completed")
		}
	}
}
