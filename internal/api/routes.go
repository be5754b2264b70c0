package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"compstone/server/internal/database"
)

func SetupRoutes(router *gin.Engine, db *database.Database, manager *Manager, logger *logrus.Logger) {
	handler := NewHandler(db, manager, logger)

	api := router.Group("/api")
	{
		api.GET("/comps", handler.GetComps)
		api.GET("/estimate", handler.GetEstimate)
		api.GET("/stats", handler.GetStats)
		api.GET("/strategies", handler.GetStrategies)
		api.GET("/heatmap", handler.GetHeatmap)
		api.GET("/market-area", handler.GetMarketArea)
		api.GET("/sessions", handler.ListSessions)
		api.POST("/sessions", handler.CreateSession)
		api.POST("/comps/:id/toggle", handler.ToggleComp)
		api.POST("/comps/:id/direct", handler.ToggleDirectComp)
		api.PUT("/strategy", handler.SetStrategy)
		api.PUT("/rate", handler.SetRate)
		api.PUT("/target", handler.UpdateTarget)
		api.POST("/update-coordinates", handler.UpdateCoordinates)
	}
}
