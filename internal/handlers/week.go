package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/worknote/backend/internal/timeperiod"
	"github.com/worknote/backend/pkg/response"
)

// WeekHandler serves the week navigation surface: month-bucketed week
// indexes and date-pair path tokens.
type WeekHandler struct {
	cal      *timeperiod.Calendar
	business *timeperiod.BusinessCalendar
}

func NewWeekHandler(cal *timeperiod.Calendar, business *timeperiod.BusinessCalendar) *WeekHandler {
	return &WeekHandler{cal: cal, business: business}
}

// Index returns the reference year's ISO weeks grouped by month
// GET /api/weeks?year=2025
func (h *WeekHandler) Index(c *gin.Context) {
	year := h.cal.Today().Year()
	if yearStr := c.Query("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(c, "invalid year")
			return
		}
		year = y
	}

	response.Success(c, gin.H{
		"year":    year,
		"buckets": timeperiod.MonthBuckets(year, h.cal.Today()),
	})
}

// Window decodes a date-pair token into its civil window
// GET /api/weeks/:token
func (h *WeekHandler) Window(c *gin.Context) {
	start, end, err := timeperiod.DecodeDatePair(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	startUTC, _ := h.cal.DayWindow(start)
	_, endUTC := h.cal.DayWindow(end)
	year, week := timeperiod.YearAndWeek(start)

	response.Success(c, gin.H{
		"start":     start.Format("2006-01-02"),
		"end":       end.Format("2006-01-02"),
		"start_utc": startUTC.Format(time.RFC3339),
		"end_utc":   endUTC.Format(time.RFC3339),
		"year":      year,
		"week":      week,
		"workdays":  h.business.WorkdaysIn(start, end),
	})
}
