package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phishwise/phishwise-api/internal/service"
	"github.com/phishwise/phishwise-api/pkg/response"
)

// DashboardHandler wires HTTP endpoints to the dashboard service.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// SchoolOverview godoc
// @Summary School dashboard
// @Description Return the school rollup with per-member performance, cached for a short TTL
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.SchoolOverview
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /dashboard/school [get]
func (h *DashboardHandler) SchoolOverview(c *gin.Context) {
	overview, fromCache, err := h.service.Overview(c.Request.Context(), currentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if fromCache {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	response.JSON(c, http.StatusOK, overview)
}
