package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openclaw/core/internal/providers"
)

// chatRequest is the POST /chat wire body: {messages, stream?, model?,
// options}. "options" folds provider selection and generation knobs.
type chatRequest struct {
	Messages    []providers.ChatMessage `json:"messages" binding:"required"`
	Stream      bool                    `json:"stream"`
	Model       string                  `json:"model"`
	Provider    string                  `json:"provider"`
	Temperature float64                 `json:"temperature"`
	MaxTokens   int                     `json:"max_tokens"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	providerName := req.Provider
	if providerName == "" {
		providerName = s.defaultProvider
	}
	provider, ok := s.providers.Get(providerName)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown provider %q", providerName)})
		return
	}

	chatReq := providers.ChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
	}

	ctx, cancel := s.withTimeout(c)
	defer cancel()

	if !req.Stream {
		resp, err := provider.Chat(ctx, chatReq)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	s.streamChat(c, provider, chatReq)
}

// streamChat relays provider stream chunks as SSE `data: <json>\n\n`
// events, matching the wire format the provider adapters themselves
// parse on the way in.
func (s *Server) streamChat(c *gin.Context, provider providers.Provider, req providers.ChatRequest) {
	chunks, err := provider.ChatStream(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w gin.ResponseWriter) bool {
		chunk, ok := <-chunks
		if !ok {
			return false
		}
		if chunk.Err != nil {
			c.SSEvent("error", gin.H{"error": chunk.Err.Error()})
			return true
		}
		c.SSEvent("message", chunk)
		if chunk.Finished {
			fmt.Fprint(w, "data: [DONE]\n\n")
			return false
		}
		return true
	})
}
