package services

import (
	"errors"

	"github.com/consultplan/consultplan/internal/models"
	"gorm.io/gorm"
)

type ConsultantService struct {
	db *gorm.DB
}

func NewConsultantService(db *gorm.DB) *ConsultantService {
	return &ConsultantService{db: db}
}

type ConsultantListRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type ConsultantListResponse struct {
	Data       []models.Consultant `json:"data"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
}

type CreateConsultantRequest struct {
	Name         string  `json:"name" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	Skills       string  `json:"skills"`
	HourlyRate   float64 `json:"hourlyRate"`
	Availability string  `json:"availability" binding:"omitempty,oneof=available busy unavailable"`
}

type UpdateConsultantRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email" binding:"omitempty,email"`
	Skills       *string  `json:"skills"`
	HourlyRate   *float64 `json:"hourlyRate"`
	Availability string   `json:"availability" binding:"omitempty,oneof=available busy unavailable"`
}

// List returns paginated consultants, newest first
func (s *ConsultantService) List(req *ConsultantListRequest) (*ConsultantListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	var consultants []models.Consultant
	var total int64

	query := s.db.Model(&models.Consultant{})
	query.Count(&total)

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Order("created_at DESC").Find(&consultants).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ConsultantListResponse{
		Data:       consultants,
		Total:      total,
		Page:       req.Page,
		TotalPages: totalPages,
	}, nil
}

// GetByID returns a consultant by ID
func (s *ConsultantService) GetByID(id string) (*models.Consultant, error) {
	var consultant models.Consultant
	if err := s.db.First(&consultant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &consultant, nil
}

// Create creates a new consultant
func (s *ConsultantService) Create(req *CreateConsultantRequest) (*models.Consultant, error) {
	if req.Availability == "" {
		req.Availability = models.AvailabilityAvailable
	}

	consultant := models.Consultant{
		Name:         req.Name,
		Email:        req.Email,
		Skills:       req.Skills,
		HourlyRate:   req.HourlyRate,
		Availability: req.Availability,
	}

	if err := s.db.Create(&consultant).Error; err != nil {
		return nil, err
	}

	return &consultant, nil
}

// Update updates a consultant
func (s *ConsultantService) Update(id string, req *UpdateConsultantRequest) (*models.Consultant, error) {
	var consultant models.Consultant
	if err := s.db.First(&consultant, "id = ?", id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Skills != nil {
		updates["skills"] = *req.Skills
	}
	if req.HourlyRate != nil {
		updates["hourly_rate"] = *req.HourlyRate
	}
	if req.Availability != "" {
		updates["availability"] = req.Availability
	}

	if err := s.db.Model(&consultant).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &consultant, nil
}

// Delete deletes a consultant; their assignments go with them (FK cascade)
func (s *ConsultantService) Delete(id string) error {
	result := s.db.Delete(&models.Consultant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("consultant not found")
	}
	return nil
}
