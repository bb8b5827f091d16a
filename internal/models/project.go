package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project lifecycle states
const (
	ProjectPlanning  = "planning"
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
)

// Project represents a client engagement consultants are assigned to
type Project struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Client      string    `gorm:"size:200;not null" json:"client"`
	Description string    `gorm:"type:text" json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `gorm:"size:20;default:planning" json:"status"` // planning, active, completed, cancelled
	Budget      float64   `gorm:"default:0" json:"budget"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
