package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pos-backend/internal/shared/middleware"
	"pos-backend/pkg/container"
)

// Roles allowed to ring up sales.
var registerRoles = []string{"cashier", "admin"}

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.ClientIPMiddleware(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		c.UserHandler.RegisterRoutes(v1, c.JWTManager)

		register := v1.Group("",
			middleware.AuthMiddleware(c.JWTManager),
			middleware.RequireRole(registerRoles...),
		)
		c.PromotionHandler.RegisterRoutes(register)
		c.SaleHandler.RegisterRoutes(register)

		admin := v1.Group("",
			middleware.AuthMiddleware(c.JWTManager),
			middleware.RequireRole("admin"),
		)
		c.ReportHandler.RegisterRoutes(admin)
	}

	return router
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
		} else if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = "error: " + err.Error()
		}

		// Redis, only degrades the service
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = "error: " + err.Error()
		}

		services := gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}
		if appCtx.DB != nil {
			if stats, err := appCtx.DB.Stats(); err == nil {
				services["pool"] = stats
			}
		}
		health["services"] = services

		statusCode := http.StatusOK
		switch {
		case dbStatus != "ok":
			health["status"] = "unavailable"
			statusCode = http.StatusServiceUnavailable
		case redisStatus != "ok":
			health["status"] = "degraded"
		}

		c.JSON(statusCode, health)
	}
}
