package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phishwise/phishwise-api/internal/service"
	"github.com/phishwise/phishwise-api/pkg/response"
)

// ReportHandler streams exported school reports.
type ReportHandler struct {
	service *service.ExportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ExportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// SchoolReport godoc
// @Summary Export school risk report
// @Description Download the member performance table as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /schools/report [get]
func (h *ReportHandler) SchoolReport(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))

	report, err := h.service.SchoolReport(c.Request.Context(), currentPrincipal(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
