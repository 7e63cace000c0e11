package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesdesk/server/internal/metrics"
)

func SetupRoutes(router *gin.Engine, handler *Handler, corsOrigins []string) {
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(corsOrigins)))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/sync/status", handler.GetSyncStatus)
		api.GET("/availability", handler.GetAvailability)
		api.GET("/availability/:unitId", handler.GetUnit)
		api.POST("/availability/:unitId/pricing", handler.ComputeUnitPricing)
		api.GET("/rate", handler.GetRate)
		api.GET("/unit-types", handler.GetUnitTypes)
		api.GET("/pricing/defaults", handler.GetPricingDefaults)
		api.PUT("/pricing/defaults", handler.UpdatePricingDefaults)
		api.POST("/pricing", handler.ComputePricing)
		api.POST("/pricing/schedule", handler.ComputeSchedule)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
