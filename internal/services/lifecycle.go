package services

import (
	"context"
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"github.com/consultplan/consultplan/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// LifecycleService rolls assignment statuses forward with the clock:
// scheduled assignments become active once their window opens, active ones
// become completed once it closes. These are status-only transitions, so
// they never need a conflict check, and completing an assignment frees the
// consultant's window for re-booking.
type LifecycleService struct {
	db            *gorm.DB
	availability  *AvailabilityService
	cronScheduler *cron.Cron
	entryID       cron.EntryID
}

func NewLifecycleService(db *gorm.DB, availability *AvailabilityService) *LifecycleService {
	return &LifecycleService{
		db:           db,
		availability: availability,
	}
}

// StartScheduler begins the periodic roll with the given cron spec.
func (s *LifecycleService) StartScheduler(spec string) error {
	s.cronScheduler = cron.New()

	id, err := s.cronScheduler.AddFunc(spec, func() {
		if err := s.Roll(context.Background()); err != nil {
			logger.Errorf("[Lifecycle] roll failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.entryID = id

	s.cronScheduler.Start()
	logger.Infof("[Lifecycle] scheduler started, spec: %s", spec)
	return nil
}

// StopScheduler stops the periodic roll.
func (s *LifecycleService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// Roll performs one pass of status transitions and refreshes availability
// flags afterwards.
func (s *LifecycleService) Roll(ctx context.Context) error {
	now := time.Now()

	activated := s.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("status = ?", models.StatusScheduled).
		Where("start_time <= ? AND end_time > ?", now, now).
		Update("status", models.StatusActive)
	if activated.Error != nil {
		return activated.Error
	}

	completed := s.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("status IN ?", []string{models.StatusScheduled, models.StatusActive}).
		Where("end_time <= ?", now).
		Update("status", models.StatusCompleted)
	if completed.Error != nil {
		return completed.Error
	}

	if activated.RowsAffected > 0 || completed.RowsAffected > 0 {
		logger.Info().
			Int64("activated", activated.RowsAffected).
			Int64("completed", completed.RowsAffected).
			Msg("assignment lifecycle roll")

		if s.availability != nil {
			if err := s.availability.RefreshAll(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
