package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/schedule-api/internal/middleware"
	"github.com/campusops/schedule-api/internal/service"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
	"github.com/campusops/schedule-api/pkg/response"
)

// AvailabilityHandler answers room availability queries.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Query godoc
// @Summary Query free rooms for a day and time selection
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body service.AvailabilityRequest true "Availability query"
// @Success 200 {object} response.Envelope
// @Router /rooms/availability [post]
func (h *AvailabilityHandler) Query(c *gin.Context) {
	var req service.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Query(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.FromCache)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}
