package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/phishwise/phishwise-api/internal/service"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
	"github.com/phishwise/phishwise-api/pkg/response"
)

// SimulationHandler wires HTTP endpoints to the simulation ledger service.
type SimulationHandler struct {
	service *service.SimulationService
}

// NewSimulationHandler creates a new handler.
func NewSimulationHandler(svc *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{service: svc}
}

// List godoc
// @Summary List own simulations
// @Description Return the caller's simulations newest first
// @Tags Simulations
// @Produce json
// @Param limit query int false "Page size, max 50" default(10)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /simulations [get]
func (h *SimulationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	sims, total, err := h.service.List(c.Request.Context(), currentPrincipal(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"simulations": sims, "total": total})
}

// RecordClick godoc
// @Summary Record a simulation click
// @Description Mark a simulation clicked; called from the landing page of the email link
// @Tags Simulations
// @Accept json
// @Produce json
// @Param payload body object{simulationId=string} true "Click payload"
// @Success 200 {object} service.ClickResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /simulations [post]
func (h *SimulationHandler) RecordClick(c *gin.Context) {
	var payload struct {
		SimulationID string `json:"simulationId"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid click payload"))
		return
	}

	result, err := h.service.RecordClick(c.Request.Context(), payload.SimulationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// Complete godoc
// @Summary Complete training
// @Description Record that the caller finished the training module for a clicked simulation
// @Tags Simulations
// @Produce json
// @Param id path string true "Simulation ID"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /simulations/{id}/complete [post]
func (h *SimulationHandler) Complete(c *gin.Context) {
	if err := h.service.Complete(c.Request.Context(), currentPrincipal(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"completed": true})
}
