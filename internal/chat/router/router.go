// Package router registers the chat service routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/iwac-chat/internal/chat/handler"
)

// Register registers the chat HTTP routes on r.
// metrics is served at metricsPath when both are set.
func Register(r gin.IRouter, h *handler.ChatHandler, metricsPath string, metrics gin.HandlerFunc) {
	logger.Info("Registering chat routes...")

	api := r.Group("/api")
	{
		api.POST("/chat", h.Chat)
		api.GET("/documents/:id", h.Document)
		api.GET("/stats", h.Stats)
		api.POST("/corpus/reload", h.Reload)
	}

	r.GET("/healthz", h.Healthz)
	if metricsPath != "" && metrics != nil {
		r.GET(metricsPath, metrics)
	}

	logger.Info("HTTP routes registered")
}
