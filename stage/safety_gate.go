package stage

import (
	"fmt"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

// SafetyGateOptions tune the rejection threshold.
type SafetyGateOptions struct {
	// Threshold is the lowest unsafe-score that rejects the query.
	Threshold float64
}

// SafetyGate scores the query through the safety classifier and closes the
// IsSafe gate when the score reaches the threshold.
type SafetyGate struct {
	classifier model.SafetyClassifier
	opts       SafetyGateOptions
}

var _ core.Stage = (*SafetyGate)(nil)

// NewSafetyGate creates the gate with the default 0.8 threshold.
func NewSafetyGate(classifier model.SafetyClassifier, optFns ...func(o *SafetyGateOptions)) *SafetyGate {
	opts := SafetyGateOptions{Threshold: 0.8}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SafetyGate{classifier: classifier, opts: opts}
}

// Name implements core.Stage.
func (g *SafetyGate) Name() core.StageName { return core.StageSafetyGate }

// Run implements core.Stage.
func (g *SafetyGate) Run(rc *core.RunContext, state *core.State) error {
	ctx, cancel := rc.CallContext()
	defer cancel()

	score, err := g.classifier.Classify(ctx, state.UserQuery.Content)
	if err != nil {
		return fmt.Errorf("safety classification: %w", err)
	}
	state.IsSafe = score < g.opts.Threshold
	if !state.IsSafe {
		rc.LogInfo("query rejected as unsafe", "score", score, "threshold", g.opts.Threshold)
	}
	return nil
}
