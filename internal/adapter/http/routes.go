package http

import (
	"taskmanager/internal/adapter/http/handlers"
	"taskmanager/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, verifier middleware.TokenVerifier, healthHandler *handlers.HealthHandler, taskHandler *handlers.TaskHandler) {
	api := r.Group("/api")
	api.Use(middleware.LanguageMiddleware())
	{
		api.GET("/health", healthHandler.CheckHealth)
		api.GET("/health/report", healthHandler.CheckHealthReport)
	}

	tasks := api.Group("/tasks")
	tasks.Use(middleware.Auth(verifier))
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/stats", taskHandler.TaskStats)
		tasks.GET("/stats/overview", taskHandler.TaskStats)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
		tasks.POST("/:id/complete", taskHandler.CompleteTask)
	}
}
