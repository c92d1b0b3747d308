package routes

import (
	"github.com/gin-gonic/gin"

	"podscribe/internal/api/v1/handlers"
	"podscribe/internal/api/v1/services"
)

// ServiceContainer holds the services the route handlers depend on.
type ServiceContainer struct {
	JobService services.JobService
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	jobHandler := handlers.NewJobHandler(container.JobService)
	jobs := router.Group("/jobs")
	{
		jobs.POST("", jobHandler.Submit)
		jobs.GET("/:id", jobHandler.Get)
		jobs.GET("/:id/progress", jobHandler.Progress)
		jobs.GET("/:id/events", jobHandler.Events)
		jobs.GET("/:id/result", jobHandler.Result)
		jobs.DELETE("/:id", jobHandler.Delete)
	}
}
