package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusops/schedule-api/internal/service"
	appErrors "github.com/campusops/schedule-api/pkg/errors"
	"github.com/campusops/schedule-api/pkg/response"
)

// ExportHandler manages schedule export generation and download.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Generate godoc
// @Summary Generate a schedule export file
// @Tags Exports
// @Produce json
// @Param format query string true "Export format (csv or pdf)"
// @Param sectionId query string false "Scope to section"
// @Success 201 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.Query("format")))
	result, err := h.service.Generate(c.Request.Context(), format, c.Query("sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a generated export by signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, err := h.service.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	name := filepath.Base(file.Name())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	contentType := "application/octet-stream"
	switch filepath.Ext(name) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
