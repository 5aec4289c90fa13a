package core

import (
	"context"
	"time"

	"github.com/sherlocklabs/sherlock/logging"
)

// RunContext carries the execution scope for one pipeline run. It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (ThreadID, RunID)
//   - The signal emission channel consumed by the stream translator
//   - A per-call timeout bound applied to every collaborator call
//
// A single RunContext is shared by all stages of one run; stages execute
// strictly sequentially, so no synchronization is needed beyond the emit
// channel itself.
type RunContext struct {
	Context         context.Context
	ThreadID, RunID string
	Emit            chan<- Signal
	CallTimeout     time.Duration

	*loggerAdapter
}

// NewRunContext constructs a RunContext bound to the given run identifiers.
func NewRunContext(
	ctx context.Context,
	threadID, runID string,
	emit chan<- Signal,
	callTimeout time.Duration,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:       ctx,
		ThreadID:      threadID,
		RunID:         runID,
		Emit:          emit,
		CallTimeout:   callTimeout,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// EmitSignal delivers a lifecycle signal to the translator, aborting if the
// run is cancelled before the signal can be buffered.
func (rc *RunContext) EmitSignal(sig Signal) error {
	if err := rc.Context.Err(); err != nil {
		return err
	}
	select {
	case <-rc.Context.Done():
		return rc.Context.Err()
	case rc.Emit <- sig:
		return nil
	}
}

// CallContext derives a context for one external-collaborator call, bounded
// by the configured timeout. A zero timeout disables the bound.
func (rc *RunContext) CallContext() (context.Context, context.CancelFunc) {
	if rc.CallTimeout <= 0 {
		return context.WithCancel(rc.Context)
	}
	return context.WithTimeout(rc.Context, rc.CallTimeout)
}
