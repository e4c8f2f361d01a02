// Command openclaw-server runs the OpenClaw HTTP API: it wires config,
// providers, storage, memory, agents, orchestration, retrieval and
// presence into a single gin server.
//
// Exit codes: 0 normal shutdown, 1 invalid configuration, 2 startup
// failure (a dependency could not be reached), 64 usage error.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"

	"github.com/openclaw/core/internal/agents"
	"github.com/openclaw/core/internal/config"
	"github.com/openclaw/core/internal/httpapi"
	"github.com/openclaw/core/internal/memory"
	"github.com/openclaw/core/internal/orchestrator"
	"github.com/openclaw/core/internal/presence"
	"github.com/openclaw/core/internal/providers"
	"github.com/openclaw/core/internal/rag"
	"github.com/openclaw/core/internal/search"
	"github.com/openclaw/core/internal/telemetry"
	"github.com/openclaw/core/internal/types"
	"github.com/openclaw/core/internal/vectorstore"
)

const (
	exitOK      = 0
	exitConfig  = 1
	exitStartup = 2
	exitUsage   = 64
)

func main() {
	var printVersion bool
	flag.BoolVar(&printVersion, "version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-version]\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(exitUsage)
	}
	if printVersion {
		fmt.Println("openclaw-server (dev build)")
		os.Exit(exitOK)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Error("invalid configuration")
		os.Exit(exitConfig)
	}

	log := logrus.StandardLogger()
	if lvl, err := logrus.ParseLevel(cfg.Monitoring.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server failed to start")
		os.Exit(exitStartup)
	}
	os.Exit(exitOK)
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.TracingConfig{
		Enabled:     cfg.Monitoring.Enabled,
		ServiceName: "openclaw-core",
	})
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer shutdownTracing(context.Background())

	// Registering the collectors against the default registerer is enough
	// to serve them from /metrics; per-call increments are added as each
	// subsystem grows an instrumentation hook.
	telemetry.NewMetrics(prometheus.DefaultRegisterer)

	registry, defaultProvider, err := buildProviders(cfg, log)
	if err != nil {
		return fmt.Errorf("providers: %w", err)
	}

	store, err := buildVectorStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("vector store: %w", err)
	}

	var embedder search.Embedder
	if p, ok := registry.Get(defaultProvider); ok {
		embedder = providerEmbedder{provider: p, model: cfg.Memory.LongTerm.EmbeddingModel}
	}

	var graphBooster search.GraphBooster
	hybrid := search.NewHybridSearchManager(store, search.NewBM25Index(), embedder, graphBooster)

	summarizer := summarizerAdapter{provider: firstProvider(registry, defaultProvider)}
	compressor := memory.NewCompressor(cfg.Memory.ShortTerm, summarizer, log)
	memMgr := memory.NewMemoryManager(cfg.Memory, memory.NewDefaultImportanceScorer(), compressor, store, hybrid, embedder, log)

	team := buildTeam(registry, memMgr)
	orch := orchestrator.New(team, cfg.Orchestrator, log)

	reflectorProvider := firstProvider(registry, defaultProvider)
	executor := rag.NewHybridExecutor(hybrid, cfg.Hybrid)
	reflector := rag.NewDefaultResultReflector(reflectorProvider, cfg.Providers[defaultProvider].Model)
	ragLoop := rag.NewLoop(rag.NewDefaultQueryPlanner(), executor, reflector, nil)

	presenceMgr := presence.NewManager(cfg.Presence)

	srv := httpapi.NewServer(httpapi.Deps{
		Orchestrator:    orch,
		Team:            team,
		RAGLoop:         ragLoop,
		Presence:        presenceMgr,
		Providers:       registry,
		Log:             log,
		DefaultProvider: defaultProvider,
		PlannerConfig:   cfg.RAG.Planner,
		ReflectorConfig: cfg.RAG.Reflector,
		RequestTimeout:  cfg.Server.RequestTimeout,
		Mode:            cfg.Server.Mode,
	})

	if cfg.Monitoring.Enabled {
		srv.Engine().GET(cfg.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("starting openclaw-server")
		errCh <- srv.Run(addr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}

// buildProviders registers every provider enabled in cfg.Providers, and
// reports the first enabled name as the default for routes that don't
// specify one explicitly.
func buildProviders(cfg *config.Config, log *logrus.Logger) (*providers.Registry, string, error) {
	registry := providers.NewRegistry()
	defaultProvider := ""

	for name, pcfg := range cfg.Providers {
		if !pcfg.Enabled {
			continue
		}

		var p providers.Provider
		switch name {
		case "anthropic":
			p = providers.NewAnthropicProvider(pcfg.APIKey, log)
		case "gemini":
			p = providers.NewGeminiProvider(pcfg.APIKey, log)
		default:
			p = providers.NewOpenAICompatibleProvider(providers.OpenAICompatibleConfig{
				DisplayName: name,
				BaseURL:     pcfg.BaseURL,
				APIKey:      pcfg.APIKey,
			}, log)
		}

		registry.RegisterInstance(name, p)
		if defaultProvider == "" {
			defaultProvider = name
		}
	}

	if defaultProvider == "" {
		return nil, "", fmt.Errorf("no provider enabled")
	}
	return registry, defaultProvider, nil
}

func firstProvider(registry *providers.Registry, name string) providers.Provider {
	p, _ := registry.Get(name)
	return p
}

func buildVectorStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.VectorStore.Backend {
	case "memory":
		return vectorstore.NewMemoryStore(), nil
	case "pgvector":
		pool, err := pgxpool.New(ctx, cfg.VectorStore.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("pgvector connect: %w", err)
		}
		return vectorstore.NewPgVectorStore(pool, cfg.VectorStore.PgTable, cfg.VectorStore.Dimension), nil
	case "qdrant":
		client, err := qdrant.NewClient(&qdrant.Config{
			Host:   cfg.VectorStore.QdrantHost,
			Port:   cfg.VectorStore.QdrantPort,
			APIKey: cfg.VectorStore.QdrantAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant connect: %w", err)
		}
		return vectorstore.NewQdrantStore(client, cfg.VectorStore.Collection), nil
	default:
		return nil, fmt.Errorf("unknown vector store backend %q", cfg.VectorStore.Backend)
	}
}

// buildTeam registers one agent per enabled provider, each a general
// conversationalist sharing the same memory manager; a deployment wanting
// specialized agents (coder, researcher, ...) registers them the same way
// with narrower Capabilities.
func buildTeam(registry *providers.Registry, mem *memory.MemoryManager) *agents.Team {
	team := agents.NewTeam(agents.DefaultTeamConfig("openclaw", "OpenClaw Team"))
	for i, name := range registry.Names() {
		p, ok := registry.Get(name)
		if !ok {
			continue
		}
		agent := agents.NewBaseAgent(types.AgentDescriptor{
			ID:                 name,
			Name:               name,
			Type:               types.AgentConversationalist,
			Capabilities:       []types.Capability{types.CapConversation},
			Priority:           50 - i,
			MaxConcurrentTasks: 10,
			Enabled:            true,
		})
		agent.SetProvider(p)
		agent.SetMemory(mem)
		team.AddAgent(agent)
	}
	return team
}

// providerEmbedder adapts a providers.Provider's batch Embed call to
// search.Embedder's single-text contract.
type providerEmbedder struct {
	provider providers.Provider
	model    string
}

func (e providerEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.provider.Embed(ctx, providers.EmbeddingRequest{Model: e.model, Input: []string{text}})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("provider returned no embeddings")
	}
	return resp.Embeddings[0], nil
}

// summarizerAdapter turns a chat-capable Provider into a memory.Summarizer
// by issuing a one-shot summarization prompt.
type summarizerAdapter struct {
	provider providers.Provider
}

func (s summarizerAdapter) Summarize(ctx context.Context, text string, maxTokens int) (string, error) {
	if s.provider == nil {
		return text, nil
	}
	resp, err := s.provider.Chat(ctx, providers.ChatRequest{
		Messages: []providers.ChatMessage{
			{Role: "system", Content: "Summarize the following conversation concisely."},
			{Role: "user", Content: text},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}
