package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openclaw/core/internal/presence"
)

func (s *Server) handlePresenceList(c *gin.Context) {
	entityType := c.Query("entity_type")
	if entityType == "" {
		c.JSON(http.StatusOK, gin.H{"presences": s.presence.GetAllPresences()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"presences": s.presence.GetByType(presence.EntityType(entityType))})
}

type heartbeatRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (s *Server) handlePresenceHeartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.presence.BatchHeartbeat(req.IDs)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
