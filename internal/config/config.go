// Package config loads OpenClaw's runtime configuration from the
// environment (with an optional .env file), following the teacher's
// getEnv/getIntEnv/... accessor style.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/openclaw/core/internal/memory"
	"github.com/openclaw/core/internal/orchestrator"
	"github.com/openclaw/core/internal/presence"
	"github.com/openclaw/core/internal/rag"
	"github.com/openclaw/core/internal/search"
)

type Config struct {
	Server       ServerConfig
	Providers    map[string]ProviderConfig
	VectorStore  VectorStoreConfig
	Memory       memory.Config
	Hybrid       search.HybridSearchConfig
	Orchestrator orchestrator.Config
	RAG          RAGConfig
	Presence     presence.Config
	Monitoring   MonitoringConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	Mode           string // "debug" or "release", passed through to gin
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

// ProviderConfig is the per-provider section. APIKey is passed to every
// adapter; BaseURL is used only by the OpenAI-compatible template (the
// Anthropic and Gemini adapters use their fixed endpoints); the default
// provider's Model names the model the RAG reflector uses.
type ProviderConfig struct {
	Enabled bool
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type VectorStoreConfig struct {
	Backend    string // "memory", "pgvector", "qdrant"
	Dimension  int
	Collection string

	PostgresDSN string
	PgTable     string

	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
}

type RAGConfig struct {
	Planner   rag.PlannerConfig
	Reflector rag.ReflectorConfig
}

type MonitoringConfig struct {
	Enabled     bool
	LogLevel    string
	MetricsPath string
	MetricsPort string
}

// Load reads environment variables (loading a .env file first if one is
// present; a missing .env is not an error) into a fully-populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Debug("config: could not load .env file")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("OPENCLAW_HOST", "0.0.0.0"),
			Port:           getEnv("OPENCLAW_PORT", "8080"),
			Mode:           getEnv("GIN_MODE", "release"),
			ReadTimeout:    getDurationEnv("OPENCLAW_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDurationEnv("OPENCLAW_WRITE_TIMEOUT", 30*time.Second),
			RequestTimeout: getDurationEnv("OPENCLAW_REQUEST_TIMEOUT", 30*time.Second),
		},
		Providers: loadProviders(),
		VectorStore: VectorStoreConfig{
			Backend:      getEnv("VECTOR_STORE_BACKEND", "memory"),
			Dimension:    getIntEnv("VECTOR_STORE_DIM", 1536),
			Collection:   getEnv("VECTOR_STORE_COLLECTION", "openclaw_memory"),
			PostgresDSN:  getEnv("POSTGRES_DSN", ""),
			PgTable:      getEnv("PGVECTOR_TABLE", "vector_items"),
			QdrantHost:   getEnv("QDRANT_HOST", "localhost"),
			QdrantPort:   getIntEnv("QDRANT_PORT", 6334),
			QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),
		},
		Memory: memory.Config{
			Working: memory.WorkingMemoryConfig{
				MaxMessages: getIntEnv("MEMORY_WORKING_MAX_MESSAGES", 50),
				MaxTokens:   getIntEnv("MEMORY_WORKING_MAX_TOKENS", 8000),
			},
			ShortTerm: memory.ShortTermMemoryConfig{
				CompressAfter:    getIntEnv("MEMORY_SHORT_TERM_COMPRESS_AFTER", 3),
				MaxSummaries:     getIntEnv("MEMORY_SHORT_TERM_MAX_SUMMARIES", 20),
				CompressionRatio: getFloatEnv("MEMORY_COMPRESSION_RATIO", 0.3),
			},
			LongTerm: memory.LongTermMemoryConfig{
				Enabled:        getBoolEnv("MEMORY_LONG_TERM_ENABLED", false),
				Backend:        getEnv("MEMORY_LONG_TERM_BACKEND", "memory"),
				Collection:     getEnv("MEMORY_LONG_TERM_COLLECTION", "memory"),
				EmbeddingModel: getEnv("MEMORY_EMBEDDING_MODEL", "text-embedding-3-small"),
			},
		},
		Hybrid: search.DefaultHybridSearchConfig(),
		Orchestrator: orchestrator.Config{
			DefaultTimeout:          getDurationEnv("ORCHESTRATOR_DEFAULT_TIMEOUT", 300*time.Second),
			MaxParallelTasks:        getIntEnv("ORCHESTRATOR_MAX_PARALLEL_TASKS", 10),
			EnableTaskDecomposition: getBoolEnv("ORCHESTRATOR_ENABLE_DECOMPOSITION", true),
			EnableResultAggregation: getBoolEnv("ORCHESTRATOR_ENABLE_AGGREGATION", true),
		},
		RAG: RAGConfig{
			Planner: rag.PlannerConfig{
				DefaultSources: getEnvSlice("RAG_DEFAULT_SOURCES", []string{"memory", "vector_db"}),
				MaxSubQueries:  getIntEnv("RAG_MAX_SUB_QUERIES", 3),
			},
			Reflector: rag.ReflectorConfig{
				MinConfidence:   getFloatEnv("RAG_MIN_CONFIDENCE", 0.7),
				MaxIterations:   getIntEnv("RAG_MAX_ITERATIONS", 3),
				EnableLLMVerify: getBoolEnv("RAG_ENABLE_LLM_VERIFY", false),
			},
		},
		Presence: presence.Config{
			OnlineTimeout: getDurationEnv("PRESENCE_ONLINE_TIMEOUT", 5*time.Minute),
			AwayTimeout:   getDurationEnv("PRESENCE_AWAY_TIMEOUT", 30*time.Minute),
			AutoUpdate:    getBoolEnv("PRESENCE_AUTO_UPDATE", true),
			Broadcast:     getBoolEnv("PRESENCE_BROADCAST", true),
		},
		Monitoring: MonitoringConfig{
			Enabled:     getBoolEnv("METRICS_ENABLED", true),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			MetricsPath: getEnv("METRICS_PATH", "/metrics"),
			MetricsPort: getEnv("METRICS_PORT", "9090"),
		},
	}

	return cfg
}

// loadProviders populates one ProviderConfig per built-in provider name
// recognized by the gateway registry, reading OPENCLAW_<NAME>_* variables.
func loadProviders() map[string]ProviderConfig {
	names := []string{
		"openai", "anthropic", "gemini", "deepseek", "qwen",
		"doubao", "glm", "minimax", "kimi", "openrouter", "ollama",
	}
	providers := make(map[string]ProviderConfig, len(names))
	for _, name := range names {
		prefix := "OPENCLAW_" + strings.ToUpper(name)
		providers[name] = ProviderConfig{
			Enabled: getBoolEnv(prefix+"_ENABLED", false),
			APIKey:  getEnv(prefix+"_API_KEY", ""),
			BaseURL: getEnv(prefix+"_BASE_URL", ""),
			Model:   getEnv(prefix+"_MODEL", ""),
			Timeout: getDurationEnv(prefix+"_TIMEOUT", 30*time.Second),
		}
	}
	return providers
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
