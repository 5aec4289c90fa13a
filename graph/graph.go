// Package graph wires the pipeline stages into a gated directed graph and
// executes one run through it. Steering between stages is driven entirely by
// predicates over the shared run state: gate booleans short-circuit the run,
// the chosen route decides whether retrieval happens, and the window size
// decides whether compaction happens.
package graph

import (
	"fmt"
	"time"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/logging"
)

// Stages collects the seven stage implementations the graph traverses. All
// fields are required.
type Stages struct {
	DataValidator   core.Stage
	SafetyGate      core.Stage
	Router          core.Stage
	ContextBuilder  core.Stage
	Retrieval       core.Stage
	Generation      core.Stage
	MemoryCompactor core.Stage
}

// Options configure graph traversal.
type Options struct {
	// CompactionThreshold is the window size above which the compactor
	// runs after generation.
	CompactionThreshold int
}

// Graph executes one pipeline run strictly sequentially, emitting lifecycle
// signals for every stage it enters and completes. It owns the run's state
// for the duration of Execute; nothing else may touch it.
type Graph struct {
	stages Stages
	opts   Options
}

// New creates a graph over the given stages (default compaction threshold 16).
func New(stages Stages, optFns ...func(o *Options)) (*Graph, error) {
	opts := Options{CompactionThreshold: 16}
	for _, fn := range optFns {
		fn(&opts)
	}
	for _, s := range []struct {
		name  core.StageName
		stage core.Stage
	}{
		{core.StageDataValidator, stages.DataValidator},
		{core.StageSafetyGate, stages.SafetyGate},
		{core.StageRouter, stages.Router},
		{core.StageContextBuilder, stages.ContextBuilder},
		{core.StageRetrieval, stages.Retrieval},
		{core.StageGeneration, stages.Generation},
		{core.StageMemoryCompactor, stages.MemoryCompactor},
	} {
		if s.stage == nil {
			return nil, fmt.Errorf("missing stage: %s", s.name)
		}
	}
	return &Graph{stages: stages, opts: opts}, nil
}

// CompactionThreshold returns the configured window bound.
func (g *Graph) CompactionThreshold() int { return g.opts.CompactionThreshold }

// Execute runs the pipeline to a terminal state. A nil error covers both
// normal completion and gate rejections; the translator reads the gate
// outcome from the completion signals. A non-nil error means the run failed
// and its state must not be persisted.
func (g *Graph) Execute(rc *core.RunContext, state *core.State) error {
	if err := g.runStage(rc, state, g.stages.DataValidator); err != nil {
		return err
	}
	if !state.IsDataValid {
		return nil
	}

	if err := g.runStage(rc, state, g.stages.SafetyGate); err != nil {
		return err
	}
	if !state.IsSafe {
		return nil
	}

	if err := g.runStage(rc, state, g.stages.Router); err != nil {
		return err
	}
	if !state.IsQueryValid {
		return nil
	}

	if err := g.runStage(rc, state, g.stages.ContextBuilder); err != nil {
		return err
	}

	if state.RouteIs(core.RouteRetrieval) {
		if err := g.runStage(rc, state, g.stages.Retrieval); err != nil {
			return err
		}
	}

	if err := g.runStage(rc, state, g.stages.Generation); err != nil {
		return err
	}

	if len(state.Messages) > g.opts.CompactionThreshold {
		if err := g.runStage(rc, state, g.stages.MemoryCompactor); err != nil {
			return err
		}
	}
	return nil
}

// runStage brackets one stage execution with lifecycle signals. The
// completion signal carries a value snapshot of the gate-relevant state so
// the translator never races a downstream stage.
func (g *Graph) runStage(rc *core.RunContext, state *core.State, s core.Stage) error {
	if err := rc.EmitSignal(core.StageEntered{Stage: s.Name()}); err != nil {
		return err
	}
	rc.LogDebug("stage entered", "stage", s.Name())

	start := time.Now()
	err := s.Run(rc, state)
	if pl, ok := rc.Logger().(logging.PipelineLogger); ok {
		pl.LogStageExecution(string(s.Name()), time.Since(start), err == nil, err)
	}
	if err != nil {
		return fmt.Errorf("stage %s: %w", s.Name(), err)
	}

	return rc.EmitSignal(core.StageCompleted{
		Stage:   s.Name(),
		Outcome: snapshot(state),
	})
}

func snapshot(state *core.State) core.Outcome {
	out := core.Outcome{
		DataValid:  state.IsDataValid,
		Safe:       state.IsSafe,
		QueryValid: state.IsQueryValid,
		Citations:  append([]string(nil), state.ChatStream.Citations...),
	}
	if state.RouterResult != nil {
		out.Route = state.RouterResult.Route
	}
	return out
}
