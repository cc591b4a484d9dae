package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/worknote/backend/internal/middleware"
	"github.com/worknote/backend/internal/services"
	"github.com/worknote/backend/pkg/response"
)

type ImportHandler struct {
	importService *services.ImportService
}

func NewImportHandler(importService *services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Import loads a CSV batch for one reference-entity kind. The whole batch
// commits or the whole batch is rejected.
// POST /api/import/:kind  (CSV request body)
func (h *ImportHandler) Import(c *gin.Context) {
	kind := c.Param("kind")

	result, err := h.importService.Import(c.Request.Context(), kind, c.Request.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("Import", "Bulk", "reference import applied", &userID,
		c.ClientIP(), c.Request.UserAgent(), result)

	response.Success(c, result)
}

// Kinds lists the accepted import kinds
// GET /api/import/kinds
func (h *ImportHandler) Kinds(c *gin.Context) {
	response.Success(c, services.ImportKinds())
}
