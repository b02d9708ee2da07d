// Package router assembles the Gin engine from the composition root's App.
package router

import (
	"fmt"
	"net/http"

	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// New wires shared middleware, the catch-all error handlers and every
// module's routes onto a fresh engine.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()

	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		app.Logger.Error("panic recovered", "panic", fmt.Sprint(recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
		})
	}))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app.Config))
	engine.Use(httpkit.NewGlobalRateLimiter(app.Config.GetGlobalRatePerHour(), app.Logger).RateLimit())

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Endpoint not found",
		})
	})

	ctx := &apphttp.RouterContext{
		Engine:         engine,
		WebhookLimiter: httpkit.NewWebhookRateLimiter(app.Config.GetWebhookRatePerMinute(), app.Logger),
	}

	for _, m := range app.Modules {
		m.RegisterRoutes(ctx)
		app.Logger.Info("module routes registered", "module", m.Name())
	}

	return engine
}

// corsMiddleware maps the CORS settings onto gin-contrib defaults. The
// allow-all and allow-credentials flags are mutually exclusive upstream,
// so credentials only apply to an explicit origin list.
func corsMiddleware(cfg config.HTTPConfig) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.GetCORSOrigins()
		corsCfg.AllowCredentials = cfg.GetCORSAllowCreds()
	}
	return cors.New(corsCfg)
}
