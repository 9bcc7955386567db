package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TianyiLi/trip-schedule/internal/service"
)

// ExportHandler handles HTTP requests for one-way data exports.
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportJSON handles GET /v1/export/json
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	data, err := h.exportService.ExportJSON(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="trips.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ExportCSV handles GET /v1/export/csv?by=trip|location
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	target := service.CSVTarget(c.DefaultQuery("by", string(service.CSVByTrip)))

	data, err := h.exportService.ExportCSV(c.Request.Context(), target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="trips.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
