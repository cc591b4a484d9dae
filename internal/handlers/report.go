package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/worknote/backend/internal/middleware"
	"github.com/worknote/backend/internal/models"
	"github.com/worknote/backend/internal/services"
	"github.com/worknote/backend/internal/timeperiod"
	"github.com/worknote/backend/pkg/response"
)

type ReportHandler struct {
	reportService *services.ReportService
	invalidator   services.Invalidator
}

func NewReportHandler(reportService *services.ReportService, invalidator services.Invalidator) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		invalidator:   invalidator,
	}
}

// List returns the caller's reports
// GET /api/reports
func (h *ReportHandler) List(c *gin.Context) {
	var req services.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.reportService.List(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns one report with its entries
// GET /api/reports/:id
func (h *ReportHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid report id")
		return
	}

	report, err := h.reportService.Get(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, report)
}

// Submit creates or updates a report with all its entry sets
// POST /api/reports
func (h *ReportHandler) Submit(c *gin.Context) {
	var req services.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.reportService.Submit(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, topic := range result.InvalidationTopics {
		h.invalidator.Invalidate(topic)
	}

	if result.Created {
		response.Created(c, result)
		return
	}
	response.Success(c, result)
}

// Delete removes a report and its owned entries
// DELETE /api/reports/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid report id")
		return
	}

	topics, err := h.reportService.Delete(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	for _, topic := range topics {
		h.invalidator.Invalidate(topic)
	}

	response.Success(c, gin.H{"deleted": true})
}

// CarryForward drafts work items from a prior period
// GET /api/reports/carry-forward?date=YYYY-MM-DD or ?year=&week=
func (h *ReportHandler) CarryForward(c *gin.Context) {
	period, err := periodFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.reportService.CarryForward(c.Request.Context(), middleware.GetUserID(c), period)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// Troubles lists the caller's unresolved standing issues
// GET /api/troubles
func (h *ReportHandler) Troubles(c *gin.Context) {
	troubles, err := h.reportService.UnresolvedTroubles(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, troubles)
}

func periodFromQuery(c *gin.Context) (models.Period, error) {
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := timeperiod.ParseDate(dateStr)
		if err != nil {
			return models.Period{}, err
		}
		return models.DailyPeriod(date), nil
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		return models.Period{}, &services.ValidationError{Field: "year", Msg: "must be an integer"}
	}
	week, err := strconv.Atoi(c.Query("week"))
	if err != nil {
		return models.Period{}, &services.ValidationError{Field: "week", Msg: "must be an integer"}
	}
	if _, _, err := timeperiod.ISOWeekRange(year, week); err != nil {
		return models.Period{}, err
	}
	return models.WeeklyPeriod(year, week), nil
}
