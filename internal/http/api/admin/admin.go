package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/router-for-me/DynamicUIGenerator/internal/history"
	"github.com/router-for-me/DynamicUIGenerator/internal/http/api/admin/handlers"
)

// RegisterAdminRoutes registers the admin page and the health endpoint.
// Neither route is rate limited.
func RegisterAdminRoutes(r *gin.Engine, status handlers.StatusSource, store *history.Store, apiKeyConfigured bool, adminHTML []byte) {
	if r == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(status, store, apiKeyConfigured)
	r.GET("/health", healthHandler.Health)

	pageHandler := handlers.NewPageHandler(adminHTML)
	r.GET("/admin", pageHandler.Admin)
}
