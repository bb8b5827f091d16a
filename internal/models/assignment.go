package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment status values. Cancelled and completed assignments no longer
// occupy the consultant's time and are ignored by conflict checks.
const (
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// TerminalStatuses are excluded from the double-booking invariant.
var TerminalStatuses = []string{StatusCancelled, StatusCompleted}

// ValidStatus reports whether s is a known assignment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Assignment books one consultant onto one project for a half-open time
// window [StartTime, EndTime).
type Assignment struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	ConsultantID string      `gorm:"type:uuid;not null;index:idx_assignments_window,priority:1" json:"consultant_id"`
	Consultant   *Consultant `gorm:"foreignKey:ConsultantID;constraint:OnDelete:CASCADE" json:"consultant,omitempty"`
	ProjectID    string      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project      *Project    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	StartTime    time.Time   `gorm:"not null;index:idx_assignments_window,priority:2" json:"start_time"`
	EndTime      time.Time   `gorm:"not null;index:idx_assignments_window,priority:3" json:"end_time"`
	Hours        float64     `json:"hours"` // derived from the window, never set directly
	Status       string      `gorm:"size:20;default:scheduled;index" json:"status"`
	Notes        string      `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (Assignment) TableName() string { return "assignments" }

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Terminal reports whether the assignment's status removes it from
// conflict checking.
func (a *Assignment) Terminal() bool {
	return a.Status == StatusCancelled || a.Status == StatusCompleted
}

// DurationHours computes the derived hours value for a window.
func DurationHours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}
