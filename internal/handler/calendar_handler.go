package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusops/schedule-api/internal/service"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
	"github.com/campusops/schedule-api/pkg/response"
)

// CalendarHandler serves the rendered calendar views.
type CalendarHandler struct {
	service *service.CalendarViewService
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(svc *service.CalendarViewService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Week godoc
// @Summary Weekly recurring schedule grid
// @Tags Calendar
// @Produce json
// @Param sectionId query string false "Scope to section"
// @Success 200 {object} response.Envelope
// @Router /calendar/week [get]
func (h *CalendarHandler) Week(c *gin.Context) {
	view, err := h.service.Week(c.Request.Context(), c.Query("sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Day godoc
// @Summary Schedule blocks for one calendar date
// @Tags Calendar
// @Produce json
// @Param sectionId query string false "Scope to section"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/day [get]
func (h *CalendarHandler) Day(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}
	view, err := h.service.Day(c.Request.Context(), c.Query("sectionId"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Month godoc
// @Summary Month grid with per-date entry counts
// @Tags Calendar
// @Produce json
// @Param sectionId query string false "Scope to section"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} response.Envelope
// @Router /calendar/month [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a positive integer"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12"))
		return
	}
	view, err := h.service.Month(c.Request.Context(), c.Query("sectionId"), year, time.Month(month))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
