package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusops/schedule-api/internal/models"
	"github.com/campusops/schedule-api/internal/service"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
	"github.com/campusops/schedule-api/pkg/response"
)

// ScheduleHandler manages schedule entry endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedule entries
// @Tags Schedules
// @Produce json
// @Param sectionId query string false "Filter by section"
// @Param subjectId query string false "Filter by subject"
// @Param roomId query string false "Filter by room"
// @Param instructorId query string false "Filter by instructor"
// @Param day query string false "Filter by weekday"
// @Param kind query string false "Filter by kind (LECTURE or LABORATORY)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var filter models.ScheduleEntryFilter
	filter.SectionID = c.Query("sectionId")
	filter.SubjectID = c.Query("subjectId")
	filter.RoomID = c.Query("roomId")
	filter.InstructorID = c.Query("instructorId")
	filter.Day = strings.ToLower(c.Query("day"))
	filter.Kind = strings.ToUpper(c.Query("kind"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	entries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Get godoc
// @Summary Get schedule entry
// @Tags Schedules
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	entry, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Create godoc
// @Summary Create schedule entry
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Conflict report in data"
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Update schedule entry
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body service.UpdateScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Conflict report in data"
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Delete godoc
// @Summary Delete schedule entry
// @Tags Schedules
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CheckConflicts godoc
// @Summary Check a schedule submission for conflicts without saving
// @Tags Schedules
// @Accept json
// @Produce json
// @Param excludeId query string false "Entry IDs to exclude, comma separated"
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/check-conflicts [post]
func (h *ScheduleHandler) CheckConflicts(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	var exclude []string
	if raw := c.Query("excludeId"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				exclude = append(exclude, id)
			}
		}
	}

	report, err := h.service.CheckConflicts(c.Request.Context(), req, exclude...)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// respondScheduleError surfaces the conflict report alongside the error
// so the client can render the blocked dimensions.
func respondScheduleError(c *gin.Context, err error) {
	var conflictErr *models.ScheduleConflictError
	if errors.As(err, &conflictErr) {
		response.ErrorWithDetails(c, err, conflictErr.Report)
		return
	}
	response.Error(c, err)
}
