package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/phishwise/phishwise-api/internal/middleware"
	"github.com/phishwise/phishwise-api/internal/models"
)

func currentPrincipal(c *gin.Context) *models.Principal {
	return middleware.Principal(c)
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}
