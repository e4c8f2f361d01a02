package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the runtime exposes, grouped
// by the subsystem it instruments.
type Metrics struct {
	// Provider Gateway
	ProviderCallsTotal   *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec
	ProviderTokensUsed   *prometheus.CounterVec

	// Memory Manager
	MemoryWorkingItems   prometheus.Gauge
	MemoryWorkingTokens  prometheus.Gauge
	MemoryShortTermItems prometheus.Gauge
	MemoryLongTermItems  prometheus.Gauge
	MemoryCompressions   prometheus.Counter

	// Orchestrator
	OrchestratorTasksTotal    *prometheus.CounterVec
	OrchestratorTaskDuration  *prometheus.HistogramVec
	OrchestratorActiveTasks   prometheus.Gauge
	OrchestratorSubTasksTotal *prometheus.CounterVec

	// RAG loop
	RAGIterations prometheus.Histogram
	RAGConfidence prometheus.Histogram

	// Presence
	PresenceEntitiesOnline *prometheus.GaugeVec
}

// NewMetrics registers every collector against reg and returns the
// handle. Pass prometheus.NewRegistry() in tests to avoid colliding with
// the global default registerer across test runs.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ProviderCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openclaw",
			Subsystem: "provider",
			Name:      "calls_total",
			Help:      "Total number of provider calls by provider name and outcome.",
		}, []string{"provider", "outcome"}),

		ProviderCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "openclaw",
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "Provider call latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider"}),

		ProviderTokensUsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openclaw",
			Subsystem: "provider",
			Name:      "tokens_used_total",
			Help:      "Total tokens consumed by provider calls.",
		}, []string{"provider", "kind"}), // kind: prompt, completion

		MemoryWorkingItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "openclaw",
			Subsystem: "memory",
			Name:      "working_items",
			Help:      "Number of items currently held in working memory.",
		}),

		MemoryWorkingTokens: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "openclaw",
			Subsystem: "memory",
			Name:      "working_tokens",
			Help:      "Total token count currently held in working memory.",
		}),

		MemoryShortTermItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "openclaw",
			Subsystem: "memory",
			Name:      "short_term_items",
			Help:      "Number of summaries currently held in short-term memory.",
		}),

		MemoryLongTermItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "openclaw",
			Subsystem: "memory",
			Name:      "long_term_items",
			Help:      "Number of vectors currently held in long-term memory.",
		}),

		MemoryCompressions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "openclaw",
			Subsystem: "memory",
			Name:      "compressions_total",
			Help:      "Total number of working-memory overflow compressions.",
		}),

		OrchestratorTasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openclaw",
			Subsystem: "orchestrator",
			Name:      "tasks_total",
			Help:      "Total number of orchestrator requests by final status.",
		}, []string{"status"}),

		OrchestratorTaskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "openclaw",
			Subsystem: "orchestrator",
			Name:      "task_duration_seconds",
			Help:      "Orchestrator request duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"task_type"}),

		OrchestratorActiveTasks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "openclaw",
			Subsystem: "orchestrator",
			Name:      "active_tasks",
			Help:      "Number of orchestrator requests currently in flight.",
		}),

		OrchestratorSubTasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openclaw",
			Subsystem: "orchestrator",
			Name:      "sub_tasks_total",
			Help:      "Total number of sub-tasks executed, by outcome.",
		}, []string{"outcome"}),

		RAGIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "openclaw",
			Subsystem: "rag",
			Name:      "loop_iterations",
			Help:      "Number of Plan/Retrieve/Reflect rounds per RAG query.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		}),

		RAGConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "openclaw",
			Subsystem: "rag",
			Name:      "final_confidence",
			Help:      "Reflector confidence at the end of a RAG query.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),

		PresenceEntitiesOnline: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "openclaw",
			Subsystem: "presence",
			Name:      "entities_online",
			Help:      "Number of entities currently marked online, by entity type.",
		}, []string{"entity_type"}),
	}
}
