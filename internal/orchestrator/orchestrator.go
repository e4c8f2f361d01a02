package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/openclaw/core/internal/agents"
	"github.com/openclaw/core/internal/types"
)

// Config tunes orchestration behavior.
type Config struct {
	DefaultTimeout           time.Duration
	MaxParallelTasks         int
	EnableTaskDecomposition  bool
	EnableResultAggregation  bool
}

func DefaultConfig() Config {
	return Config{
		DefaultTimeout:          300 * time.Second,
		MaxParallelTasks:        10,
		EnableTaskDecomposition: true,
		EnableResultAggregation: true,
	}
}

// Orchestrator routes incoming TaskRequests to the right agent(s) in a
// Team, optionally decomposing and re-aggregating multi-part work.
type Orchestrator struct {
	team     *agents.Team
	analyzer *TaskAnalyzer
	config   Config
	log      logrus.FieldLogger

	mu     sync.Mutex
	active map[string]types.TaskRequest
}

func New(team *agents.Team, config Config, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{
		team:     team,
		analyzer: NewTaskAnalyzer(),
		config:   config,
		log:      log,
		active:   make(map[string]types.TaskRequest),
	}
}

func (o *Orchestrator) Team() *agents.Team { return o.team }

func (o *Orchestrator) ActiveTaskCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.active)
}

// Process runs the full pipeline: record-active -> analyze -> optionally
// decompose -> assign via Team.SelectAgent -> execute (bounded parallel for
// multiple sub-tasks) -> aggregate -> clear-active.
func (o *Orchestrator) Process(ctx context.Context, request types.TaskRequest) (types.TaskResult, error) {
	o.log.WithFields(logrus.Fields{"task_id": request.ID, "task_type": request.TaskType}).Info("processing task")

	o.mu.Lock()
	o.active[request.ID] = request
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.active, request.ID)
		o.mu.Unlock()
	}()

	analysis := o.analyzer.Analyze(request)

	subTasks := []types.TaskRequest{request}
	if o.config.EnableTaskDecomposition && analysis.NeedsDecomposition {
		subTasks = o.decompose(request, analysis)
	}
	for i := range subTasks {
		if len(subTasks[i].ToolHints) == 0 {
			subTasks[i].ToolHints = analysis.SuggestedTools
		}
	}

	results := o.executeAll(ctx, subTasks)

	if o.config.EnableResultAggregation && len(results) > 1 {
		return o.aggregate(request.ID, results), nil
	}
	if len(results) == 0 {
		return types.FailureResult(request.ID, "orchestrator", "no results produced"), nil
	}
	return results[0], nil
}

// decompose currently recognizes one pattern, matching the source:
// Documentation tasks split into a WebSearch pass followed by the
// Documentation write itself. Every other task type is left whole —
// decomposition never recurses past this single level.
func (o *Orchestrator) decompose(request types.TaskRequest, _ TaskAnalysis) []types.TaskRequest {
	if request.TaskType != types.TaskDocumentation {
		return []types.TaskRequest{request}
	}
	research := request
	research.TaskType = types.TaskWebSearch
	return []types.TaskRequest{research, request}
}

// executeAll assigns and runs every sub-task, bounded to MaxParallelTasks
// concurrent executions via errgroup + a semaphore channel. Order of
// results matches order of subTasks.
func (o *Orchestrator) executeAll(ctx context.Context, subTasks []types.TaskRequest) []types.TaskResult {
	results := make([]types.TaskResult, len(subTasks))

	limit := o.config.MaxParallelTasks
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range subTasks {
		i, task := i, task
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = o.assignAndExecute(gctx, task)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *Orchestrator) assignAndExecute(ctx context.Context, task types.TaskRequest) types.TaskResult {
	agentID, ok := o.team.SelectAgent(task.RequiredCapabilities, task.PreferredAgent)
	if !ok {
		o.log.WithField("task_id", task.ID).Warn("no available agent for task")
		return types.FailureResult(task.ID, "orchestrator", "no available agent with required capabilities")
	}

	o.log.WithFields(logrus.Fields{"task_id": task.ID, "agent_id": agentID}).Info("assigning task")

	agent, ok := o.team.GetAgent(agentID)
	if !ok {
		return types.FailureResult(task.ID, "orchestrator", fmt.Sprintf("agent %s vanished before execution", agentID))
	}

	result, err := agent.Process(ctx, task)
	if err != nil {
		return types.FailureResult(task.ID, agentID, err.Error())
	}
	return result
}

// aggregate implements the "at least one sub-task succeeded" policy: the
// combined result is Completed as long as one sub-task completed, carrying
// every successful output as an OutputMultiple and every sub-result
// (success and failure alike) in SubTasks. Only when every sub-task failed
// does the aggregate itself report Failed, with Error set to the first
// sub-task's actual failure reason rather than a generic message.
func (o *Orchestrator) aggregate(taskID string, results []types.TaskResult) types.TaskResult {
	var outputs []types.TaskOutput
	for _, r := range results {
		if r.Status == types.TaskCompleted && r.Output != nil {
			outputs = append(outputs, *r.Output)
		}
	}

	if len(outputs) == 0 {
		reason := "all sub-tasks failed"
		for _, r := range results {
			if r.Status == types.TaskFailed && r.Error != "" {
				reason = r.Error
				break
			}
		}
		return types.TaskResult{
			TaskID:      taskID,
			AgentID:     "orchestrator",
			Status:      types.TaskFailed,
			Error:       reason,
			StartedAt:   time.Now().UTC(),
			CompletedAt: timePtr(time.Now().UTC()),
			SubTasks:    results,
		}
	}

	now := time.Now().UTC()
	output := types.TaskOutput{Kind: types.OutputMultiple, Outputs: outputs}
	return types.TaskResult{
		TaskID:      taskID,
		AgentID:     "orchestrator",
		Status:      types.TaskCompleted,
		Output:      &output,
		StartedAt:   now,
		CompletedAt: &now,
		SubTasks:    results,
	}
}

func timePtr(t time.Time) *time.Time { return &t }
