package main

import (
	"github.com/consultplan/consultplan/internal/config"
	"github.com/consultplan/consultplan/internal/models"
	"github.com/consultplan/consultplan/internal/services"
	"github.com/consultplan/consultplan/internal/store"
	"github.com/consultplan/consultplan/pkg/logger"
)

// appServices holds all initialized services needed by the application.
type appServices struct {
	store       store.AssignmentStore
	taskQueue   services.TaskQueue
	worker      *services.Worker
	lifecycle   *services.LifecycleService
	calendar    *services.CalendarService
	lifecycleOn bool
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed sample consultants and projects on an empty database
	if cfg.Seed {
		if err := models.SeedSampleData(); err != nil {
			logger.Warn().Err(err).Msg("Failed to seed sample data")
		}
	}

	assignmentStore := store.NewGormStore(models.GetDB())
	availability := services.NewAvailabilityService(models.GetDB())

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(availability.ProcessTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(availability.ProcessTask)
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start availability worker")
			}
		}
	}

	// Lifecycle roller moves assignments through scheduled/active/completed
	lifecycle := services.NewLifecycleService(models.GetDB(), availability)
	if cfg.Scheduler.LifecycleEnabled {
		if err := lifecycle.StartScheduler(cfg.Scheduler.LifecycleSpec); err != nil {
			logger.Warn().Err(err).Msg("Failed to start lifecycle scheduler")
		}
	}

	return &appServices{
		store:       assignmentStore,
		taskQueue:   taskQueue,
		worker:      worker,
		lifecycle:   lifecycle,
		calendar:    services.NewCalendarService(cfg.Calendar.Country),
		lifecycleOn: cfg.Scheduler.LifecycleEnabled,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.lifecycleOn {
		s.lifecycle.StopScheduler()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("All services stopped")
}
