package handlers

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/DynamicUIGenerator/internal/history"
	"github.com/router-for-me/DynamicUIGenerator/internal/ratelimit"
)

// StatusSource reports limiter state.
type StatusSource interface {
	Status(ctx context.Context) ratelimit.Status
	Policy() ratelimit.Policy
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	status           StatusSource
	history          *history.Store
	apiKeyConfigured bool
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(status StatusSource, store *history.Store, apiKeyConfigured bool) *HealthHandler {
	return &HealthHandler{status: status, history: store, apiKeyConfigured: apiKeyConfigured}
}

// Health reports service and rate limiting state. Store reachability is
// probed live; storage_type is the store currently serving requests.
func (h *HealthHandler) Health(c *gin.Context) {
	totalGenerated := 0
	if h.history != nil {
		totalGenerated = h.history.Total()
	}
	rateLimiting := gin.H{
		"redis_status":        ratelimit.ProbeNotAvailable.String(),
		"database_status":     ratelimit.ProbeNotAvailable.String(),
		"requests_per_window": 0,
		"window_seconds":      0,
		"storage_type":        ratelimit.BackendMemory.String(),
	}
	if h.status != nil {
		status := h.status.Status(c.Request.Context())
		policy := h.status.Policy()
		rateLimiting = gin.H{
			"redis_status":        status.Redis.String(),
			"database_status":     status.Database.String(),
			"requests_per_window": policy.Requests,
			"window_seconds":      int(math.Ceil(policy.Window.Seconds())),
			"storage_type":        status.Selected.String(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"api_key_configured": h.apiKeyConfigured,
		"total_generated":    totalGenerated,
		"rate_limiting":      rateLimiting,
	})
}
