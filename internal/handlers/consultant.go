package handlers

import (
	"errors"
	"strings"

	"github.com/consultplan/consultplan/internal/services"
	"github.com/consultplan/consultplan/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ConsultantHandler struct {
	consultantService *services.ConsultantService
}

func NewConsultantHandler(db *gorm.DB) *ConsultantHandler {
	return &ConsultantHandler{
		consultantService: services.NewConsultantService(db),
	}
}

// List returns paginated consultants
// GET /api/consultants
func (h *ConsultantHandler) List(c *gin.Context) {
	var req services.ConsultantListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.consultantService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetByID returns a consultant by ID
// GET /api/consultants/:id
func (h *ConsultantHandler) GetByID(c *gin.Context) {
	consultant, err := h.consultantService.GetByID(c.Param("id"))
	if err != nil {
		response.NotFound(c, "consultant not found")
		return
	}

	response.Success(c, consultant)
}

// Create creates a new consultant
// POST /api/consultants
func (h *ConsultantHandler) Create(c *gin.Context) {
	var req services.CreateConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	consultant, err := h.consultantService.Create(&req)
	if err != nil {
		if isUniqueViolation(err) {
			response.BadRequest(c, "a consultant with this email already exists")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, consultant)
}

// Update updates a consultant
// PATCH /api/consultants/:id
func (h *ConsultantHandler) Update(c *gin.Context) {
	var req services.UpdateConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	consultant, err := h.consultantService.Update(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "consultant not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, consultant)
}

// Delete deletes a consultant
// DELETE /api/consultants/:id
func (h *ConsultantHandler) Delete(c *gin.Context) {
	if err := h.consultantService.Delete(c.Param("id")); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "consultant deleted successfully"})
}

// isUniqueViolation matches unique-constraint error text across the three
// supported drivers.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
