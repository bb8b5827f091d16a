package main

import (
	"github.com/consultplan/consultplan/internal/handlers"
	"github.com/consultplan/consultplan/internal/middleware"
	"github.com/consultplan/consultplan/internal/models"
	"github.com/consultplan/consultplan/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter shared by all API routes
	apiLimiter := middleware.NewRateLimiter(50, 100)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "consultplan"})
	})

	// API routes
	api := r.Group("/api", apiLimiter.Middleware())
	{
		// Consultants
		consultantHandler := handlers.NewConsultantHandler(models.GetDB())
		api.GET("/consultants", consultantHandler.List)
		api.GET("/consultants/:id", consultantHandler.GetByID)
		api.POST("/consultants", consultantHandler.Create)
		api.PATCH("/consultants/:id", consultantHandler.Update)
		api.DELETE("/consultants/:id", consultantHandler.Delete)

		// Projects
		projectHandler := handlers.NewProjectHandler(models.GetDB())
		api.GET("/projects", projectHandler.List)
		api.GET("/projects/:id", projectHandler.GetByID)
		api.POST("/projects", projectHandler.Create)
		api.PATCH("/projects/:id", projectHandler.Update)
		api.DELETE("/projects/:id", projectHandler.Delete)

		// Assignments (conflict-checked scheduling)
		assignmentHandler := handlers.NewAssignmentHandler(models.GetDB(), svc.store, svc.taskQueue)
		api.GET("/assignments", assignmentHandler.List)
		api.GET("/assignments/:id", assignmentHandler.GetByID)
		api.POST("/assignments", assignmentHandler.Create)
		api.PATCH("/assignments/:id", assignmentHandler.Update)
		api.DELETE("/assignments/:id", assignmentHandler.Delete)

		// Dashboard
		dashboardHandler := handlers.NewDashboardHandler(models.GetDB(), svc.calendar)
		api.GET("/dashboard/stats", dashboardHandler.GetStats)
	}
}
