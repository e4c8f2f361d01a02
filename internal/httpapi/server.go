// Package httpapi exposes the Core API surface (§6) over HTTP/JSON using
// gin, the transport the teacher repo's own API servers are built on.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/openclaw/core/internal/agents"
	"github.com/openclaw/core/internal/orchestrator"
	"github.com/openclaw/core/internal/presence"
	"github.com/openclaw/core/internal/providers"
	"github.com/openclaw/core/internal/rag"
)

// Server wires the four Core API routes onto a gin engine.
type Server struct {
	engine       *gin.Engine
	orchestrator *orchestrator.Orchestrator
	team         *agents.Team
	ragLoop      *rag.Loop
	presence     *presence.Manager
	providers    *providers.Registry
	log          logrus.FieldLogger

	defaultProvider string
	plannerCfg      rag.PlannerConfig
	reflectorCfg    rag.ReflectorConfig
	requestTimeout  time.Duration
}

// Deps bundles everything a Server needs. Optional fields fall back to
// defaults: Log to the standard logrus logger, DefaultProvider to "openai",
// RequestTimeout to 30s; an empty Mode leaves gin's mode unchanged.
type Deps struct {
	Orchestrator    *orchestrator.Orchestrator
	Team            *agents.Team
	RAGLoop         *rag.Loop
	Presence        *presence.Manager
	Providers       *providers.Registry
	Log             logrus.FieldLogger
	DefaultProvider string
	PlannerConfig   rag.PlannerConfig
	ReflectorConfig rag.ReflectorConfig
	RequestTimeout  time.Duration
	Mode            string // gin.DebugMode / gin.ReleaseMode
}

func NewServer(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.DefaultProvider == "" {
		deps.DefaultProvider = "openai"
	}
	if deps.RequestTimeout == 0 {
		deps.RequestTimeout = 30 * time.Second
	}
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}

	s := &Server{
		engine:          gin.New(),
		orchestrator:    deps.Orchestrator,
		team:            deps.Team,
		ragLoop:         deps.RAGLoop,
		presence:        deps.Presence,
		providers:       deps.Providers,
		log:             deps.Log,
		defaultProvider: deps.DefaultProvider,
		plannerCfg:      deps.PlannerConfig,
		reflectorCfg:    deps.ReflectorConfig,
		requestTimeout:  deps.RequestTimeout,
	}

	s.engine.Use(gin.Recovery(), s.requestLogger(), s.cors())
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.POST("/chat", s.handleChat)
	s.engine.POST("/agents/:id/process", s.handleAgentProcess)
	s.engine.POST("/rag/query", s.handleRAGQuery)
	s.engine.GET("/presence", s.handlePresenceList)
	s.engine.POST("/presence/heartbeat", s.handlePresenceHeartbeat)
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Info("http request")
	}
}

// withTimeout returns a context bounded by the server's RequestTimeout,
// and the cancel func the caller must defer.
func (s *Server) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.requestTimeout)
}
