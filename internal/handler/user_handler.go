package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phishwise/phishwise-api/internal/service"
	"github.com/phishwise/phishwise-api/pkg/response"
)

// UserHandler wires HTTP endpoints to the user profile service.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// Profile godoc
// @Summary Get profile
// @Description Return the caller's profile, metrics and school; managers also get per-member rows
// @Tags Users
// @Produce json
// @Success 200 {object} service.ProfileResponse
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), currentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}
