package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Consultant availability states
const (
	AvailabilityAvailable   = "available"
	AvailabilityBusy        = "busy"
	AvailabilityUnavailable = "unavailable"
)

// Consultant represents a bookable consultant
type Consultant struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Skills       string    `gorm:"type:text" json:"skills"` // comma-separated, e.g. "Go,PostgreSQL"
	HourlyRate   float64   `gorm:"default:0" json:"hourly_rate"`
	Availability string    `gorm:"size:20;default:available" json:"availability"` // available, busy, unavailable
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Consultant) TableName() string { return "consultants" }

func (c *Consultant) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
