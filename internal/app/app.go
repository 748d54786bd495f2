package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/DynamicUIGenerator/internal/completion"
	"github.com/router-for-me/DynamicUIGenerator/internal/config"
	"github.com/router-for-me/DynamicUIGenerator/internal/history"
	relayhttp "github.com/router-for-me/DynamicUIGenerator/internal/http"
	"github.com/router-for-me/DynamicUIGenerator/internal/http/api/admin"
	adminhandlers "github.com/router-for-me/DynamicUIGenerator/internal/http/api/admin/handlers"
	"github.com/router-for-me/DynamicUIGenerator/internal/http/api/front"
	"github.com/router-for-me/DynamicUIGenerator/internal/ratelimit"
	"github.com/router-for-me/DynamicUIGenerator/internal/webui"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Dependencies are the components the HTTP engine serves.
type Dependencies struct {
	Limiter          *ratelimit.Manager
	Generator        completion.Generator
	History          *history.Store
	APIKeyConfigured bool
	Web              webui.Bundle
}

// NewEngine builds the gin engine with every route registered.
func NewEngine(deps Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(relayhttp.RequestLogger())

	var limiter relayhttp.RateLimiter
	var status adminhandlers.StatusSource
	if deps.Limiter != nil {
		limiter = deps.Limiter
		status = deps.Limiter
	}
	front.RegisterFrontRoutes(engine, limiter, deps.Generator, deps.History, deps.Web.FallbackHTML)
	admin.RegisterAdminRoutes(engine, status, deps.History, deps.APIKeyConfigured, deps.Web.AdminHTML)
	return engine
}

// RateLimitSettings maps configuration onto limiter settings.
func RateLimitSettings(cfg config.Config) ratelimit.Settings {
	return ratelimit.Settings{
		Requests:            cfg.RateLimit.Requests,
		Window:              cfg.RateLimit.Window(),
		BackendTimeout:      cfg.RateLimit.BackendTimeout,
		RedisURL:            cfg.RedisURL,
		RedisPrefix:         cfg.RateLimit.RedisPrefix,
		DatabaseURL:         cfg.DatabaseURL,
		DatabaseConcurrency: cfg.RateLimit.DBConcurrency,
		RepromoteInterval:   cfg.RateLimit.RepromoteInterval,
	}
}

// RunServer boots the generator server and blocks until ctx is done.
func RunServer(ctx context.Context, cfg config.Config) error {
	webBundle, errLoad := webui.Load()
	if errLoad != nil {
		return errLoad
	}

	generator := completion.NewClient(cfg.Completion.BaseURL, cfg.Completion.APIKey, cfg.Completion.Timeout)
	if !generator.Configured() {
		log.Warn("CEREBRAS_API_KEY not found in environment variables")
	}

	limiter, closeBackends := ratelimit.Build(ctx, RateLimitSettings(cfg))
	defer func() {
		if errClose := closeBackends(); errClose != nil {
			log.WithError(errClose).Warn("rate limit: close backends failed")
		}
	}()
	limiter.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	engine := NewEngine(Dependencies{
		Limiter:          limiter,
		Generator:        generator,
		History:          history.NewStore(history.DefaultCapacity),
		APIKeyConfigured: generator.Configured(),
		Web:              webBundle,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.WithFields(log.Fields{
		"addr":    srv.Addr,
		"limit":   cfg.RateLimit.Requests,
		"window":  cfg.RateLimit.Window().String(),
		"backend": limiter.Selected().String(),
		"config":  cfg.ConfigPath,
	}).Info("starting generator server")
	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return errListen
	}
	log.Info("server stopped")
	return nil
}
