package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phishwise/phishwise-api/internal/service"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
	"github.com/phishwise/phishwise-api/pkg/response"
)

// SchoolHandler wires HTTP endpoints to the school service.
type SchoolHandler struct {
	service *service.SchoolService
}

// NewSchoolHandler creates a new handler.
func NewSchoolHandler(svc *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{service: svc}
}

// Get godoc
// @Summary Get own school
// @Description Return the caller's school, null when they have none
// @Tags Schools
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /schools [get]
func (h *SchoolHandler) Get(c *gin.Context) {
	school, err := h.service.GetOwn(c.Request.Context(), currentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if school == nil {
		response.JSON(c, http.StatusOK, gin.H{"school": nil})
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"school": school})
}

// Create godoc
// @Summary Create school
// @Description Create a school and promote the caller to manager
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body service.CreateSchoolRequest true "School payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /schools [post]
func (h *SchoolHandler) Create(c *gin.Context) {
	var req service.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school payload"))
		return
	}

	school, err := h.service.Create(c.Request.Context(), currentPrincipal(c), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"school": school})
}

// Join godoc
// @Summary Join school
// @Description Redeem an invite code and join the school
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body service.JoinSchoolRequest true "Invite payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /schools/join [post]
func (h *SchoolHandler) Join(c *gin.Context) {
	var req service.JoinSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invite payload"))
		return
	}

	school, err := h.service.Join(c.Request.Context(), currentPrincipal(c), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"school": school})
}
