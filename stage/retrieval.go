package stage

import (
	"fmt"
	"time"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/logging"
	"github.com/sherlocklabs/sherlock/retrieval"
)

// RetrievalOptions tune how many documents are fetched.
type RetrievalOptions struct {
	// TopK is the number of documents requested per search.
	TopK int
}

// Retrieval searches the document corpus with the rewritten query. The
// engine is expected to be wrapped in a retrieval.Pool so a slow backend
// cannot stall concurrent runs. An empty result set is not fatal.
type Retrieval struct {
	engine retrieval.Engine
	opts   RetrievalOptions
}

var _ core.Stage = (*Retrieval)(nil)

// NewRetrieval creates the retrieval stage with the default k of 3.
func NewRetrieval(engine retrieval.Engine, optFns ...func(o *RetrievalOptions)) *Retrieval {
	opts := RetrievalOptions{TopK: 3}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Retrieval{engine: engine, opts: opts}
}

// Name implements core.Stage.
func (r *Retrieval) Name() core.StageName { return core.StageRetrieval }

// Run implements core.Stage.
func (r *Retrieval) Run(rc *core.RunContext, state *core.State) error {
	ctx, cancel := rc.CallContext()
	defer cancel()

	query := state.ImprovedQuery.Content
	if query == "" {
		query = state.UserQuery.Content
	}

	start := time.Now()
	docs, err := r.engine.Search(ctx, query, r.opts.TopK)
	if err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	state.RetrievalResult = docs

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	if pl, ok := rc.Logger().(logging.PipelineLogger); ok {
		pl.LogRetrieval(query, ids, time.Since(start))
	} else {
		rc.LogDebug("retrieval complete", "query", query, "retrieved_ids", ids)
	}
	return nil
}
