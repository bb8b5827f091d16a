package handlers

import (
	"errors"

	"github.com/consultplan/consultplan/internal/services"
	"github.com/consultplan/consultplan/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
	}
}

// List returns paginated projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.projectService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetByID returns a project by ID
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	project, err := h.projectService.GetByID(c.Param("id"))
	if err != nil {
		response.NotFound(c, "project not found")
		return
	}

	response.Success(c, project)
}

// Create creates a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, project)
}

// Update updates a project
// PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, project)
}

// Delete deletes a project
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projectService.Delete(c.Param("id")); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "project deleted successfully"})
}
