package services

import (
	"context"
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"github.com/consultplan/consultplan/pkg/logger"
	"gorm.io/gorm"
)

// AvailabilityService keeps the consultant's availability flag in sync with
// their schedule. It runs outside the conflict-checked write path: the flag
// is a denormalized convenience for list views, never an input to conflict
// decisions.
type AvailabilityService struct {
	db *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// ProcessTask is the queue processor for availability refresh tasks.
func (s *AvailabilityService) ProcessTask(ctx context.Context, task *AvailabilityTask) error {
	return s.Refresh(ctx, task.ConsultantID)
}

// Refresh recomputes one consultant's availability from their current
// assignments: busy while a non-terminal assignment covers the present
// moment, available otherwise. Consultants marked unavailable by hand are
// left alone.
func (s *AvailabilityService) Refresh(ctx context.Context, consultantID string) error {
	var consultant models.Consultant
	if err := s.db.WithContext(ctx).First(&consultant, "id = ?", consultantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Consultant was deleted after the task was queued; nothing to do.
			return nil
		}
		return err
	}

	if consultant.Availability == models.AvailabilityUnavailable {
		return nil
	}

	now := time.Now()
	var busyCount int64
	err := s.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("consultant_id = ?", consultantID).
		Where("status NOT IN ?", models.TerminalStatuses).
		Where("start_time <= ? AND end_time > ?", now, now).
		Count(&busyCount).Error
	if err != nil {
		return err
	}

	want := models.AvailabilityAvailable
	if busyCount > 0 {
		want = models.AvailabilityBusy
	}
	if consultant.Availability == want {
		return nil
	}

	if err := s.db.WithContext(ctx).Model(&consultant).Update("availability", want).Error; err != nil {
		return err
	}

	logger.Debug().
		Str("consultant_id", consultantID).
		Str("availability", want).
		Msg("availability refreshed")
	return nil
}

// RefreshAll recomputes availability for every consultant. Used by the
// lifecycle roller after status transitions.
func (s *AvailabilityService) RefreshAll(ctx context.Context) error {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Consultant{}).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.Refresh(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
