package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/graph"
	"github.com/sherlocklabs/sherlock/history"
	"github.com/sherlocklabs/sherlock/logging"
	"github.com/sherlocklabs/sherlock/stream"
)

// DefaultThreadID scopes runs submitted without a thread identifier.
const DefaultThreadID = "default"

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// HistoryStore persists per-thread conversation fragments.
	HistoryStore core.HistoryStore
	// Logger receives run lifecycle and stage logs.
	Logger logging.Logger
	// SignalBufferSize sets channel buffering between graph and translator.
	SignalBufferSize int
	// CallTimeout bounds each external-collaborator call (0 = unbounded).
	CallTimeout time.Duration
}

// Runner executes pipeline runs. Public methods are safe for concurrent use;
// runs on distinct threads proceed in parallel while runs on the same thread
// are serialized so read-then-write on a fragment never races.
type Runner struct {
	graph *graph.Graph

	store            core.HistoryStore
	logger           logging.Logger
	signalBufferSize int
	callTimeout      time.Duration

	mu          sync.Mutex
	activeRuns  map[string]context.CancelFunc
	threadLocks map[string]*sync.Mutex
}

// New constructs a Runner with optional overrides.
func New(g *graph.Graph, optFns ...func(o *Options)) *Runner {
	opts := Options{
		HistoryStore:     history.NewInMemoryStore(),
		Logger:           logging.NoOpLogger{},
		SignalBufferSize: 64,
		CallTimeout:      60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		graph:            g,
		store:            opts.HistoryStore,
		logger:           opts.Logger,
		signalBufferSize: opts.SignalBufferSize,
		callTimeout:      opts.CallTimeout,
		activeRuns:       make(map[string]context.CancelFunc),
		threadLocks:      make(map[string]*sync.Mutex),
	}
}

// Run starts one pipeline run for the given thread and query. It returns the
// run id and a live record stream that terminates with exactly one done or
// error record. An empty threadID falls back to DefaultThreadID.
//
// Cancelling ctx aborts the run; records already delivered remain valid.
func (r *Runner) Run(ctx context.Context, threadID, query string) (string, <-chan stream.Record, error) {
	if query == "" {
		return "", nil, fmt.Errorf("query must not be empty")
	}
	if threadID == "" {
		threadID = DefaultThreadID
	}

	runID := uuid.NewString()

	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	signals := make(chan core.Signal, r.signalBufferSize)
	runErr := make(chan error, 1)
	// The translator lives on the caller's context, not the run-scoped one:
	// a cancelled run must still flush its buffered signals and deliver the
	// terminal record.
	records := stream.Translate(ctx, signals, runErr)

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
		}()

		err := r.execute(runCtx, threadID, runID, query, signals)
		close(signals)
		runErr <- err
		if err != nil {
			r.logger.Error("run failed", "run_id", runID, "thread_id", threadID, "error", err)
		}
	}()

	return runID, records, nil
}

// Cancel aborts a running run by id.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()
	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}
	cancel()
	return nil
}

// execute performs one serialized load-run-save cycle for a thread.
func (r *Runner) execute(ctx context.Context, threadID, runID, query string, signals chan<- core.Signal) error {
	lock := r.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	fragment, err := r.store.Load(ctx, threadID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	state := core.NewState(query)
	state.SeedFragment(fragment)

	logger := r.logger
	if pl, ok := logger.(logging.PipelineLogger); ok {
		logger = pl.WithRun(threadID, runID)
	}
	rc := core.NewRunContext(ctx, threadID, runID, signals, r.callTimeout, logger)
	if err := r.graph.Execute(rc, state); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.store.Save(ctx, threadID, state.Fragment()); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// threadLock returns the mutex serializing runs for a thread, creating it on
// first use. Locks are never reclaimed; thread cardinality is assumed small.
func (r *Runner) threadLock(threadID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.threadLocks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		r.threadLocks[threadID] = lock
	}
	return lock
}
