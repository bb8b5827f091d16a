package services

import (
	"errors"
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectListRequest struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=planning active completed cancelled"`
	Client string `form:"client"`
}

type ProjectListResponse struct {
	Data       []models.Project `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

type CreateProjectRequest struct {
	Name        string    `json:"name" binding:"required"`
	Client      string    `json:"client" binding:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      string    `json:"status" binding:"omitempty,oneof=planning active completed cancelled"`
	Budget      float64   `json:"budget"`
}

type UpdateProjectRequest struct {
	Name        string     `json:"name"`
	Client      string     `json:"client"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Status      string     `json:"status" binding:"omitempty,oneof=planning active completed cancelled"`
	Budget      *float64   `json:"budget"`
}

// List returns paginated projects, newest first
func (s *ProjectService) List(req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	var projects []models.Project
	var total int64

	query := s.db.Model(&models.Project{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Client != "" {
		query = query.Where("client LIKE ?", "%"+req.Client+"%")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProjectListResponse{
		Data:       projects,
		Total:      total,
		Page:       req.Page,
		TotalPages: totalPages,
	}, nil
}

// GetByID returns a project by ID
func (s *ProjectService) GetByID(id string) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Create creates a new project
func (s *ProjectService) Create(req *CreateProjectRequest) (*models.Project, error) {
	if req.Status == "" {
		req.Status = models.ProjectPlanning
	}

	project := models.Project{
		Name:        req.Name,
		Client:      req.Client,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      req.Status,
		Budget:      req.Budget,
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// Update updates a project
func (s *ProjectService) Update(id string, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Client != "" {
		updates["client"] = req.Client
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}

	if err := s.db.Model(&project).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// Delete deletes a project; its assignments go with it (FK cascade)
func (s *ProjectService) Delete(id string) error {
	result := s.db.Delete(&models.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("project not found")
	}
	return nil
}
