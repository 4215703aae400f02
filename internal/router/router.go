package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"psenrich/internal/handler/api"
	"psenrich/internal/middleware"
)

// Setup configures all routes for the Echo server.
func Setup(e *echo.Echo, commandHandler *api.CommandHandler, apiKey string) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	commands := e.Group("/api/commands")
	commands.Use(middleware.APIAuth(apiKey))
	commands.Use(middleware.NoStore())

	commands.POST("/enrich", commandHandler.StartEnrichment)
	commands.GET("/enrich/:jobId", commandHandler.GetJob)
	commands.POST("/enrich/:jobId/cancel", commandHandler.CancelJob)
	commands.GET("", commandHandler.ListCommands)
	commands.POST("", commandHandler.RegisterCommand)
	commands.GET("/:cmdlet", commandHandler.GetCard)
}
