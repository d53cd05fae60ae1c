package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/api"
)

// HealthHandler reports liveness and, separately, whether the remote service answers.
type HealthHandler struct {
	API *api.Client
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *HealthHandler) Upstream(c *gin.Context) {
	status, err := h.API.Health.Check(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status.Status, "version": status.Version})
}
