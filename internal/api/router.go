package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(h.log))

	api := r.Group(h.cfg.API.BasePath)
	{
		// Entity screens
		api.GET("/entities/:entity", h.ListEntity)
		api.POST("/entities/:entity", h.CreateEntity)
		api.PUT("/entities/:entity/:id", h.UpdateEntity)
		api.DELETE("/entities/:entity/:id", h.DeleteEntity)

		// Batch flows
		api.POST("/import/:entity", h.ImportEntity)
		api.POST("/export/:entity", h.ExportEntity)

		// Alerts
		api.GET("/alerts", h.ListAlerts)
		api.POST("/alerts", h.CreateAlert)
		api.PUT("/alerts/:id", h.UpdateAlert)
		api.GET("/alerts/:id/edit", h.EditAlert)
		api.DELETE("/alerts/:id", h.DeleteAlert)
		api.GET("/alert-history", h.ListAlertHistory)

		// Alert channels
		api.GET("/alert-channels", h.ListAlertChannels)
		api.POST("/alert-channels", h.CreateAlertChannel)
		api.DELETE("/alert-channels/:id", h.DeleteAlertChannel)

		// Message feed
		api.GET("/messages", h.ListMessages)
		api.GET("/messages/preferences", h.GetMessagePreferences)
		api.PUT("/messages/preferences", h.UpdateMessagePreferences)

		// Session
		api.PUT("/session/token", h.SetToken)
	}

	r.GET("/ws/events", h.Events)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
