package main

import (
	"github.com/robfig/cron/v3"
	"github.com/worknote/backend/internal/config"
	"github.com/worknote/backend/internal/handlers"
	"github.com/worknote/backend/internal/models"
	"github.com/worknote/backend/internal/services"
	"github.com/worknote/backend/internal/timeperiod"
	"github.com/worknote/backend/internal/utils"
	"github.com/worknote/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	calendar         *timeperiod.Calendar
	business         *timeperiod.BusinessCalendar
	invalidator      services.Invalidator
	worker           *services.InvalidationWorker
	logCleanup       *cron.Cron
	authHandler      *handlers.AuthHandler
	reportHandler    *handlers.ReportHandler
	weekHandler      *handlers.WeekHandler
	importHandler    *handlers.ImportHandler
	referenceHandler *handlers.ReferenceHandler
	systemLogHandler *handlers.SystemLogHandler
}

// bootstrap initializes all application dependencies: database, calendars,
// services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	logCleanup := services.StartLogCleanupScheduler(models.GetDB())

	// All calendar dates are interpreted in the configured civil timezone.
	calendar, err := timeperiod.NewCalendar(cfg.App.Timezone)
	if err != nil {
		logger.Fatalf("Failed to load timezone %q: %v", cfg.App.Timezone, err)
	}
	business := timeperiod.NewBusinessCalendar(cfg.App.Country)

	// Initialize cache invalidation (uses Redis if enabled, otherwise local)
	invalidator := services.InitInvalidator(cfg)

	// Start async invalidation worker if Redis is enabled
	var worker *services.InvalidationWorker
	if cfg.Redis.Enabled {
		worker = services.NewInvalidationWorker(&cfg.Redis)
		if worker != nil {
			worker.SetHandler(func(topic string) {
				logger.Infof("[Invalidation] topic consumed: %s", topic)
			})
			worker.Start()
		}
	}

	db := models.GetDB()
	authService := services.NewAuthService(db, &cfg.JWT)
	reportService := services.NewReportService(db, calendar)
	importService := services.NewImportService(db)
	referenceService := services.NewReferenceService(db)

	// Create default admin user
	authHandler := handlers.NewAuthHandler(db, authService)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		calendar:         calendar,
		business:         business,
		invalidator:      invalidator,
		worker:           worker,
		logCleanup:       logCleanup,
		authHandler:      authHandler,
		reportHandler:    handlers.NewReportHandler(reportService, invalidator),
		weekHandler:      handlers.NewWeekHandler(calendar, business),
		importHandler:    handlers.NewImportHandler(importService),
		referenceHandler: handlers.NewReferenceHandler(referenceService, invalidator),
		systemLogHandler: handlers.NewSystemLogHandler(db),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.logCleanup != nil {
		s.logCleanup.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.invalidator != nil {
		s.invalidator.Close()
	}
	logger.Info().Msg("All services stopped")
}
