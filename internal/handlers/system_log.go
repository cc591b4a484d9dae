package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/worknote/backend/internal/services"
	"github.com/worknote/backend/pkg/response"
	"gorm.io/gorm"
)

type SystemLogHandler struct {
	logService *services.SystemLogService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{logService: services.NewSystemLogService(db)}
}

// List returns paginated system logs
// GET /api/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.logService.List(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

type cleanupRequest struct {
	RetentionDays int `json:"retention_days"`
}

// Cleanup removes logs older than the retention window
// POST /api/system-logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	var req cleanupRequest
	_ = c.ShouldBindJSON(&req)

	removed, err := h.logService.Cleanup(req.RetentionDays)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{"removed": removed})
}
