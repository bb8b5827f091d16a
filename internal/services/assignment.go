package services

import (
	"context"
	"time"

	"github.com/consultplan/consultplan/internal/models"
	"github.com/consultplan/consultplan/internal/scheduling"
	"github.com/consultplan/consultplan/internal/store"
	"gorm.io/gorm"
)

// AssignmentService is the inbound boundary for assignment operations. All
// schedule-affecting writes go through the conflict validator; reads and
// deletes hit the store directly.
type AssignmentService struct {
	db        *gorm.DB
	store     store.AssignmentStore
	validator *scheduling.Validator
	queue     TaskQueue
}

func NewAssignmentService(db *gorm.DB, s store.AssignmentStore, queue TaskQueue) *AssignmentService {
	return &AssignmentService{
		db:        db,
		store:     s,
		validator: scheduling.NewValidator(s),
		queue:     queue,
	}
}

type AssignmentListRequest struct {
	Page         int    `form:"page" binding:"omitempty,min=1"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=100"`
	ConsultantID string `form:"consultantId"`
	ProjectID    string `form:"projectId"`
}

type AssignmentListResponse struct {
	Data       []models.Assignment `json:"data"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
}

type CreateAssignmentRequest struct {
	ConsultantID string    `json:"consultantId" binding:"required,uuid"`
	ProjectID    string    `json:"projectId" binding:"required,uuid"`
	StartTime    time.Time `json:"startTime" binding:"required"`
	EndTime      time.Time `json:"endTime" binding:"required"`
	Notes        string    `json:"notes"`
}

type UpdateAssignmentRequest struct {
	ConsultantID *string    `json:"consultantId" binding:"omitempty,uuid"`
	ProjectID    *string    `json:"projectId" binding:"omitempty,uuid"`
	StartTime    *time.Time `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	Status       *string    `json:"status" binding:"omitempty,oneof=scheduled active completed cancelled"`
	Notes        *string    `json:"notes"`
}

// Create books a consultant onto a project if the window is free. Consultant
// and project existence is checked up front; the store's foreign keys remain
// the backstop for races with deletes.
func (s *AssignmentService) Create(ctx context.Context, req *CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.checkConsultantExists(req.ConsultantID); err != nil {
		return nil, err
	}
	if err := s.checkProjectExists(req.ProjectID); err != nil {
		return nil, err
	}

	a, err := s.validator.ProposeCreate(ctx, scheduling.CreateProposal{
		ConsultantID: req.ConsultantID,
		ProjectID:    req.ProjectID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.enqueueAvailabilityRefresh(a.ConsultantID)
	return a, nil
}

// Update applies a partial change. The validator re-runs the overlap check
// whenever the patch touches the consultant or either time bound.
func (s *AssignmentService) Update(ctx context.Context, id string, req *UpdateAssignmentRequest) (*models.Assignment, error) {
	if req.ConsultantID != nil {
		if err := s.checkConsultantExists(*req.ConsultantID); err != nil {
			return nil, err
		}
	}
	if req.ProjectID != nil {
		if err := s.checkProjectExists(*req.ProjectID); err != nil {
			return nil, err
		}
	}

	var previousConsultant string
	if req.ConsultantID != nil {
		if current, err := s.store.Get(ctx, id); err == nil {
			previousConsultant = current.ConsultantID
		}
	}

	a, err := s.validator.ProposeUpdate(ctx, id, scheduling.Patch{
		ConsultantID: req.ConsultantID,
		ProjectID:    req.ProjectID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.enqueueAvailabilityRefresh(a.ConsultantID)
	if previousConsultant != "" && previousConsultant != a.ConsultantID {
		s.enqueueAvailabilityRefresh(previousConsultant)
	}
	return a, nil
}

// GetByID returns the assignment or a scheduling.NotFoundError.
func (s *AssignmentService) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, &scheduling.NotFoundError{Resource: "assignment", ID: id}
		}
		return nil, err
	}
	return a, nil
}

// List returns a page of assignments, newest window first.
func (s *AssignmentService) List(ctx context.Context, req *AssignmentListRequest) (*AssignmentListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	items, total, err := s.store.List(ctx, store.ListFilter{
		ConsultantID: req.ConsultantID,
		ProjectID:    req.ProjectID,
	}, req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &AssignmentListResponse{
		Data:       items,
		Total:      total,
		Page:       req.Page,
		TotalPages: totalPages,
	}, nil
}

// Delete hard-deletes an assignment. Removal can only relax the invariant,
// so no conflict check runs.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return &scheduling.NotFoundError{Resource: "assignment", ID: id}
		}
		return err
	}

	if err := s.store.Remove(ctx, id); err != nil {
		if err == store.ErrNotFound {
			return &scheduling.NotFoundError{Resource: "assignment", ID: id}
		}
		return err
	}

	s.enqueueAvailabilityRefresh(a.ConsultantID)
	return nil
}

func (s *AssignmentService) checkConsultantExists(id string) error {
	var count int64
	if err := s.db.Model(&models.Consultant{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &scheduling.NotFoundError{Resource: "consultant", ID: id}
	}
	return nil
}

func (s *AssignmentService) checkProjectExists(id string) error {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &scheduling.NotFoundError{Resource: "project", ID: id}
	}
	return nil
}

func (s *AssignmentService) enqueueAvailabilityRefresh(consultantID string) {
	if s.queue == nil {
		return
	}
	s.queue.Enqueue(&AvailabilityTask{ConsultantID: consultantID})
}
