package config

import (
	"github.com/openclaw/core/internal/clawerr"
)

// Validate rejects configuration states that would otherwise surface as a
// confusing failure later at startup: an unusable vector store backend
// selection, or a server with no provider enabled at all.
func (c *Config) Validate() error {
	switch c.VectorStore.Backend {
	case "memory", "pgvector", "qdrant":
	default:
		return &clawerr.ConfigError{Field: "VectorStore.Backend", Message: "must be one of memory, pgvector, qdrant"}
	}

	if c.VectorStore.Backend == "pgvector" && c.VectorStore.PostgresDSN == "" {
		return &clawerr.ConfigError{Field: "VectorStore.PostgresDSN", Message: "required when VECTOR_STORE_BACKEND=pgvector"}
	}

	anyEnabled := false
	for _, p := range c.Providers {
		if p.Enabled {
			anyEnabled = true
			break
		}
	}
	if !anyEnabled {
		return &clawerr.ConfigError{Field: "Providers", Message: "at least one provider must be enabled"}
	}

	return nil
}
