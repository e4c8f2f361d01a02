package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openclaw/core/internal/types"
)

// ragRequest is the POST /rag/query wire body.
type ragRequest struct {
	Query   string          `json:"query" binding:"required"`
	History []types.Message `json:"history,omitempty"`
}

func (s *Server) handleRAGQuery(c *gin.Context) {
	var req ragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := s.withTimeout(c)
	defer cancel()

	resp, err := s.ragLoop.Run(ctx, req.Query, req.History, s.plannerCfg, s.reflectorCfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
