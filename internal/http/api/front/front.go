package front

import (
	"github.com/gin-gonic/gin"
	"github.com/router-for-me/DynamicUIGenerator/internal/completion"
	"github.com/router-for-me/DynamicUIGenerator/internal/history"
	relayhttp "github.com/router-for-me/DynamicUIGenerator/internal/http"
	"github.com/router-for-me/DynamicUIGenerator/internal/http/api/front/handlers"
)

// RegisterFrontRoutes registers the rate-limited generation and catalogue routes.
func RegisterFrontRoutes(r *gin.Engine, limiter relayhttp.RateLimiter, generator completion.Generator, store *history.Store, fallbackHTML []byte) {
	if r == nil || generator == nil || store == nil {
		return
	}

	limited := r.Group("")
	limited.Use(relayhttp.RateLimitMiddleware(limiter))

	generateHandler := handlers.NewGenerateHandler(generator, store, fallbackHTML)
	limited.GET("/", generateHandler.Random)
	limited.POST("/api/generate", generateHandler.Custom)

	catalogHandler := handlers.NewCatalogHandler(store)
	limited.GET("/api/history", catalogHandler.History)
	limited.GET("/api/models", catalogHandler.Models)
	limited.GET("/api/random-prompt", catalogHandler.RandomPrompt)
}
