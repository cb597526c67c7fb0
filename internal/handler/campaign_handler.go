package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phishwise/phishwise-api/internal/service"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
	"github.com/phishwise/phishwise-api/pkg/response"
)

// CampaignHandler wires HTTP endpoints to the campaign service.
type CampaignHandler struct {
	service *service.CampaignService
}

// NewCampaignHandler creates a new handler.
func NewCampaignHandler(svc *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{service: svc}
}

// ListTemplates godoc
// @Summary List phishing templates
// @Tags Campaigns
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /templates [get]
func (h *CampaignHandler) ListTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context(), currentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"templates": templates})
}

// Dispatch godoc
// @Summary Dispatch a campaign
// @Description Send a phishing simulation to every school member and append ledger rows
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param payload body service.DispatchRequest true "Dispatch payload"
// @Success 201 {object} service.DispatchResult
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /campaigns [post]
func (h *CampaignHandler) Dispatch(c *gin.Context) {
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dispatch payload"))
		return
	}

	result, err := h.service.Dispatch(c.Request.Context(), currentPrincipal(c), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
