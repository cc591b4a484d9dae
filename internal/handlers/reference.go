package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/worknote/backend/internal/services"
	"github.com/worknote/backend/pkg/response"
)

// ReferenceHandler serves the client/project/mission hierarchy and the
// entry categories. Search endpoints back the report form's pickers.
type ReferenceHandler struct {
	referenceService *services.ReferenceService
	invalidator      services.Invalidator
}

func NewReferenceHandler(referenceService *services.ReferenceService, invalidator services.Invalidator) *ReferenceHandler {
	return &ReferenceHandler{
		referenceService: referenceService,
		invalidator:      invalidator,
	}
}

// SearchClients matches clients by name or keyword
// GET /api/clients?q=
func (h *ReferenceHandler) SearchClients(c *gin.Context) {
	clients, err := h.referenceService.SearchClients(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, clients)
}

// SearchProjects matches projects by their own or their client's keywords
// GET /api/projects?q=
func (h *ReferenceHandler) SearchProjects(c *gin.Context) {
	projects, err := h.referenceService.SearchProjects(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, projects)
}

// SearchMissions matches active missions across the full hierarchy
// GET /api/missions?q=
func (h *ReferenceHandler) SearchMissions(c *gin.Context) {
	missions, err := h.referenceService.SearchMissions(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, missions)
}

// CreateClient creates a client
// POST /api/clients
func (h *ReferenceHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	client, err := h.referenceService.CreateClient(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidator.Invalidate("clients")
	response.Created(c, client)
}

// CreateProject creates a project under an existing client
// POST /api/projects
func (h *ReferenceHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.referenceService.CreateProject(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidator.Invalidate("projects")
	response.Created(c, project)
}

// CreateMission creates a mission under an existing project
// POST /api/missions
func (h *ReferenceHandler) CreateMission(c *gin.Context) {
	var req services.CreateMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	mission, err := h.referenceService.CreateMission(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidator.Invalidate("missions")
	response.Created(c, mission)
}

// DeleteMission removes a mission, archiving it instead when referenced
// DELETE /api/missions/:id
func (h *ReferenceHandler) DeleteMission(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid mission id")
		return
	}

	if err := h.referenceService.DeleteMission(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	h.invalidator.Invalidate("missions")
	response.Success(c, gin.H{"deleted": true})
}

// ListAppealCategories lists the appeal categories
// GET /api/appeal-categories
func (h *ReferenceHandler) ListAppealCategories(c *gin.Context) {
	categories, err := h.referenceService.ListAppealCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, categories)
}

// ListTroubleCategories lists the standing-issue categories
// GET /api/trouble-categories
func (h *ReferenceHandler) ListTroubleCategories(c *gin.Context) {
	categories, err := h.referenceService.ListTroubleCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, categories)
}

// CreateAppealCategory creates an appeal category
// POST /api/appeal-categories
func (h *ReferenceHandler) CreateAppealCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.referenceService.CreateAppealCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidator.Invalidate("appeal_categories")
	response.Created(c, category)
}

// CreateTroubleCategory creates a standing-issue category
// POST /api/trouble-categories
func (h *ReferenceHandler) CreateTroubleCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.referenceService.CreateTroubleCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidator.Invalidate("trouble_categories")
	response.Created(c, category)
}
