package handlers

import (
	"errors"

	"github.com/consultplan/consultplan/internal/scheduling"
	"github.com/consultplan/consultplan/internal/services"
	"github.com/consultplan/consultplan/internal/store"
	"github.com/consultplan/consultplan/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

func NewAssignmentHandler(db *gorm.DB, s store.AssignmentStore, queue services.TaskQueue) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: services.NewAssignmentService(db, s, queue),
	}
}

// List returns paginated assignments
// GET /api/assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	var req services.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.assignmentService.List(c.Request.Context(), &req)
	if err != nil {
		writeSchedulingError(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns an assignment by ID
// GET /api/assignments/:id
func (h *AssignmentHandler) GetByID(c *gin.Context) {
	a, err := h.assignmentService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeSchedulingError(c, err)
		return
	}

	response.Success(c, a)
}

// Create books a consultant onto a project
// POST /api/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.assignmentService.Create(c.Request.Context(), &req)
	if err != nil {
		writeSchedulingError(c, err)
		return
	}

	response.Created(c, a)
}

// Update applies a partial change to an assignment
// PATCH /api/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req services.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.assignmentService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeSchedulingError(c, err)
		return
	}

	response.Success(c, a)
}

// Delete removes an assignment
// DELETE /api/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignmentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeSchedulingError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "assignment deleted successfully"})
}

// writeSchedulingError maps the scheduling error taxonomy onto the HTTP
// contract: conflicts are 400 SCHEDULE_CONFLICT, validation failures 400,
// missing records 404, exhausted transient failures 503.
func writeSchedulingError(c *gin.Context, err error) {
	var conflictErr *scheduling.ConflictError
	var validationErr *scheduling.ValidationError
	var notFoundErr *scheduling.NotFoundError
	var transientErr *scheduling.TransientError

	switch {
	case errors.As(err, &conflictErr):
		response.Error(c, response.NewScheduleConflict(
			"consultant already assigned to a project during this time period",
			gin.H{"conflicting_assignment_id": conflictErr.BlockingID},
		))
	case errors.As(err, &validationErr):
		response.BadRequest(c, validationErr.Error())
	case errors.As(err, &notFoundErr):
		response.NotFound(c, notFoundErr.Error())
	case errors.As(err, &transientErr):
		response.Unavailable(c, "schedule store busy, please retry")
	default:
		response.ServerError(c, err.Error())
	}
}
