// Package sherlock provides a high-level façade over the pipeline graph,
// runner and history store, enabling rapid construction of retrieval-backed
// conversational services. Most applications interact with this package by:
//  1. Creating a Sherlock via New() (optionally overriding collaborators,
//     the retrieval engine and the history store)
//  2. Streaming answers with Chat, or collecting them with ChatSync
//
// The façade delegates orchestration to runner.Runner while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments supply real model collaborators, a
// vector-backed retrieval engine, a durable history store and a structured
// logger.
package sherlock

import (
	"context"
	"strings"
	"time"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/graph"
	"github.com/sherlocklabs/sherlock/history"
	"github.com/sherlocklabs/sherlock/logging"
	"github.com/sherlocklabs/sherlock/model"
	"github.com/sherlocklabs/sherlock/retrieval"
	"github.com/sherlocklabs/sherlock/runner"
	"github.com/sherlocklabs/sherlock/stage"
	"github.com/sherlocklabs/sherlock/stream"
)

// Options configures the Sherlock instance.
type Options struct {
	// Model collaborators (default to deterministic mocks if not provided).
	SafetyClassifier model.SafetyClassifier
	IntentRouter     model.IntentRouter
	QueryRewriter    model.QueryRewriter
	Generator        model.Generator
	Summarizer       model.Summarizer

	// RetrievalEngine serves document searches. Defaults to an empty
	// in-memory engine. The façade wraps it in a bounded pool.
	RetrievalEngine retrieval.Engine
	// MaxConcurrentSearches bounds in-flight retrieval calls.
	MaxConcurrentSearches int64
	// TopK is the number of documents fetched per retrieval.
	TopK int

	// SafetyThreshold is the lowest unsafe-score that rejects a query.
	SafetyThreshold float64
	// MaxQueryTokens is the estimated-token ceiling for incoming queries.
	MaxQueryTokens int
	// CompactionThreshold is the window size that triggers compaction.
	CompactionThreshold int

	// HistoryStore persists per-thread fragments (defaults to in-memory).
	HistoryStore core.HistoryStore

	// CallTimeout bounds each external-collaborator call.
	CallTimeout time.Duration

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Sherlock is the high-level façade aggregating the pipeline and services.
type Sherlock struct {
	opts   Options
	runner *runner.Runner
}

// New creates a Sherlock instance with optional overrides. Any unset
// collaborator is initialized with a mock or in-memory implementation.
func New(optFns ...func(o *Options)) (*Sherlock, error) {
	opts := Options{
		SafetyClassifier:      model.NewMockSafetyClassifier(),
		IntentRouter:          model.NewMockIntentRouter(core.RouterResult{Route: core.RouteNonRetrieval, Confidence: core.ConfidenceMedium}),
		QueryRewriter:         model.NewMockQueryRewriter(),
		Generator:             model.NewMockGenerator(),
		Summarizer:            model.NewMockSummarizer(),
		RetrievalEngine:       retrieval.NewInMemoryEngine(),
		MaxConcurrentSearches: 4,
		TopK:                  3,
		SafetyThreshold:       0.8,
		MaxQueryTokens:        4000,
		CompactionThreshold:   16,
		HistoryStore:          history.NewInMemoryStore(),
		CallTimeout:           60 * time.Second,
		Logger:                logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	pool := retrieval.NewPool(opts.RetrievalEngine, func(o *retrieval.PoolOptions) {
		o.MaxConcurrent = opts.MaxConcurrentSearches
	})

	g, err := graph.New(graph.Stages{
		DataValidator: stage.NewDataValidator(func(o *stage.DataValidatorOptions) {
			o.MaxTokens = opts.MaxQueryTokens
		}),
		SafetyGate: stage.NewSafetyGate(opts.SafetyClassifier, func(o *stage.SafetyGateOptions) {
			o.Threshold = opts.SafetyThreshold
		}),
		Router:         stage.NewRouter(opts.IntentRouter),
		ContextBuilder: stage.NewContextBuilder(opts.QueryRewriter),
		Retrieval: stage.NewRetrieval(pool, func(o *stage.RetrievalOptions) {
			o.TopK = opts.TopK
		}),
		Generation:      stage.NewGeneration(opts.Generator),
		MemoryCompactor: stage.NewMemoryCompactor(opts.Summarizer),
	}, func(o *graph.Options) {
		o.CompactionThreshold = opts.CompactionThreshold
	})
	if err != nil {
		return nil, err
	}

	r := runner.New(g, func(o *runner.Options) {
		o.HistoryStore = opts.HistoryStore
		o.Logger = opts.Logger
		o.CallTimeout = opts.CallTimeout
	})

	return &Sherlock{opts: opts, runner: r}, nil
}

// Chat starts an asynchronous run returning the run id and a live record
// stream terminated by exactly one done or error record. An empty threadID
// scopes the turn to the default thread.
func (s *Sherlock) Chat(ctx context.Context, threadID, query string) (string, <-chan stream.Record, error) {
	return s.runner.Run(ctx, threadID, query)
}

// Cancel aborts a running chat by run id.
func (s *Sherlock) Cancel(runID string) error {
	return s.runner.Cancel(runID)
}

// Answer is the collected outcome of one synchronous chat turn.
type Answer struct {
	RunID     string
	Text      string
	Citations []string
}

// ChatSync is a synchronous helper that drains the record stream and
// assembles the full answer text. A run that terminates with an error record
// returns the partial text alongside the error.
func (s *Sherlock) ChatSync(ctx context.Context, threadID, query string) (Answer, error) {
	runID, records, err := s.Chat(ctx, threadID, query)
	if err != nil {
		return Answer{}, err
	}

	answer := Answer{RunID: runID}
	var text strings.Builder
	for r := range records {
		text.WriteString(r.Token)
		if r.Done {
			answer.Citations = r.Citations
			if r.Error != "" {
				answer.Text = text.String()
				return answer, &RunError{RunID: runID, Message: r.Error}
			}
		}
	}
	answer.Text = text.String()
	if err := ctx.Err(); err != nil {
		return answer, err
	}
	return answer, nil
}

// RunError reports a run that terminated with an error record.
type RunError struct {
	RunID   string
	Message string
}

func (e *RunError) Error() string {
	return "run " + e.RunID + " failed: " + e.Message
}
