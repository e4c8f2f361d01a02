package rag

import (
	"context"
	"fmt"

	"github.com/openclaw/core/internal/types"
)

// LoopController decides whether the loop should run another full
// Plan->Retrieve->Reflect round.
//
// This runtime implements the literal bounded-loop semantics: every round
// that is not yet sufficient and has not hit MaxIterations runs a complete
// fresh planning pass (not just one extra refinement query set layered on
// the first plan). For max_iterations=3 an insufficient reflection after
// every round means exactly three full retrieval rounds execute.
type LoopController interface {
	ShouldContinue(state *types.RAGLoopState, reflection types.Reflection) bool
}

type DefaultLoopController struct{}

func (DefaultLoopController) ShouldContinue(state *types.RAGLoopState, reflection types.Reflection) bool {
	return !reflection.IsSufficient && state.Iteration < state.MaxIterations
}

// Loop drives the Think -> Plan -> Retrieve -> Execute -> Observe ->
// Reflect -> (repeat or Answer) -> Done state machine.
type Loop struct {
	planner    QueryPlanner
	executor   RetrievalExecutor
	reflector  ResultReflector
	controller LoopController
}

func NewLoop(planner QueryPlanner, executor RetrievalExecutor, reflector ResultReflector, controller LoopController) *Loop {
	if controller == nil {
		controller = DefaultLoopController{}
	}
	return &Loop{planner: planner, executor: executor, reflector: reflector, controller: controller}
}

// Run executes the full loop for query, bounded by reflectorCfg's
// MaxIterations, and returns the final answer plus its full trace.
func (l *Loop) Run(ctx context.Context, query string, history []types.Message, plannerCfg PlannerConfig, reflectorCfg ReflectorConfig) (types.RAGResponse, error) {
	state := types.NewRAGLoopState(reflectorCfg.MaxIterations)
	state.AddThought(types.PhaseThink, fmt.Sprintf("analyzing user query: %s", query))

	var reflection types.Reflection
	var hints []string

	for {
		state.Iteration++

		plan, err := l.planner.Plan(ctx, query, history, hints, plannerCfg)
		if err != nil {
			return types.RAGResponse{}, err
		}
		state.Plan = &plan
		state.AddThought(types.PhasePlan, fmt.Sprintf("created plan with %d sub-queries", len(plan.SubQueries)))

		for idx, sq := range plan.SubQueries {
			i := idx
			state.CurrentSubQueryIndex = &i
			state.AddThought(types.PhaseRetrieve, fmt.Sprintf("executing sub-query %d: %s", idx+1, sq.Query))

			results, err := l.executor.Execute(ctx, sq)
			if err != nil {
				return types.RAGResponse{}, err
			}
			state.Retrieved = append(state.Retrieved, results...)
			state.AddThought(types.PhaseObserve, fmt.Sprintf("retrieved %d results", len(state.Retrieved)))
		}

		reflection, err = l.reflector.Reflect(ctx, query, state.Retrieved, reflectorCfg)
		if err != nil {
			return types.RAGResponse{}, err
		}
		state.AddThought(types.PhaseReflect, fmt.Sprintf("confidence: %.2f", reflection.Confidence))

		if !l.controller.ShouldContinue(state, reflection) {
			break
		}
		hints = reflection.Suggestions
	}

	answer, err := l.reflector.GenerateAnswer(ctx, query, state.Retrieved, history)
	if err != nil {
		return types.RAGResponse{}, err
	}
	state.AddThought(types.PhaseAnswer, "generated final answer")
	state.AddThought(types.PhaseDone, "agent loop completed")

	return types.RAGResponse{
		Answer:     answer,
		Sources:    state.Retrieved,
		Iterations: state.Iteration,
		Confidence: reflection.Confidence,
		Trace:      state.ThoughtHistory,
	}, nil
}
