package main

import (
	"github.com/gin-gonic/gin"
	"github.com/worknote/backend/internal/middleware"
	"github.com/worknote/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the bulk import surface
	importLimiter := middleware.NewRateLimiter(2, 5)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "worknote"})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Week navigation
			protected.GET("/weeks", svc.weekHandler.Index)
			protected.GET("/weeks/:token", svc.weekHandler.Window)

			// Reports
			protected.GET("/reports", svc.reportHandler.List)
			protected.GET("/reports/carry-forward", svc.reportHandler.CarryForward)
			protected.GET("/reports/:id", svc.reportHandler.GetByID)
			protected.POST("/reports", svc.reportHandler.Submit)
			protected.DELETE("/reports/:id", svc.reportHandler.Delete)

			// Standing issues
			protected.GET("/troubles", svc.reportHandler.Troubles)

			// Reference lookups
			protected.GET("/clients", svc.referenceHandler.SearchClients)
			protected.GET("/projects", svc.referenceHandler.SearchProjects)
			protected.GET("/missions", svc.referenceHandler.SearchMissions)
			protected.GET("/appeal-categories", svc.referenceHandler.ListAppealCategories)
			protected.GET("/trouble-categories", svc.referenceHandler.ListTroubleCategories)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Reference management
			admin.POST("/clients", svc.referenceHandler.CreateClient)
			admin.POST("/projects", svc.referenceHandler.CreateProject)
			admin.POST("/missions", svc.referenceHandler.CreateMission)
			admin.DELETE("/missions/:id", svc.referenceHandler.DeleteMission)
			admin.POST("/appeal-categories", svc.referenceHandler.CreateAppealCategory)
			admin.POST("/trouble-categories", svc.referenceHandler.CreateTroubleCategory)

			// Bulk import
			admin.GET("/import/kinds", svc.importHandler.Kinds)
			admin.POST("/import/:kind", importLimiter.Middleware(), svc.importHandler.Import)

			// System logs
			admin.GET("/system-logs", svc.systemLogHandler.List)
			admin.POST("/system-logs/cleanup", svc.systemLogHandler.Cleanup)
		}
	}
}
