// Package retrieval fetches ranked documents for a search query. The Engine
// interface abstracts the vector store; Pool bounds how many searches run
// concurrently against a shared backend.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/sherlocklabs/sherlock/core"
)

// Engine searches a document corpus. Implementations must be safe for
// concurrent use. Results are ordered by descending relevance and contain at
// most k documents.
type Engine interface {
	Search(ctx context.Context, query string, k int) ([]core.Document, error)
}

// PoolOptions configure a Pool.
type PoolOptions struct {
	// MaxConcurrent bounds simultaneous in-flight searches.
	MaxConcurrent int64
}

// Pool wraps an Engine with a concurrency limit. Acquisition respects
// context cancellation, so a caller whose run is aborted never queues work.
type Pool struct {
	engine Engine
	sem    *semaphore.Weighted
}

var _ Engine = (*Pool)(nil)

// NewPool creates a bounded search pool (default 4 concurrent searches).
func NewPool(engine Engine, optFns ...func(o *PoolOptions)) *Pool {
	opts := PoolOptions{MaxConcurrent: 4}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	return &Pool{engine: engine, sem: semaphore.NewWeighted(opts.MaxConcurrent)}
}

// Search implements Engine, blocking while the pool is saturated.
func (p *Pool) Search(ctx context.Context, query string, k int) ([]core.Document, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("retrieval pool: %w", err)
	}
	defer p.sem.Release(1)
	return p.engine.Search(ctx, query, k)
}

// InMemoryEngine is a naive lexical Engine for tests, examples and
// air-gapped development. Documents are ranked by term overlap with the
// query; scores land in (0, 1].
type InMemoryEngine struct {
	mu   sync.RWMutex
	docs []core.Document

	// Err, when set, is returned from every search.
	Err error
}

var _ Engine = (*InMemoryEngine)(nil)

// NewInMemoryEngine creates an empty in-memory engine.
func NewInMemoryEngine() *InMemoryEngine {
	return &InMemoryEngine{}
}

// Add indexes documents. Empty IDs are assigned positional ones.
func (e *InMemoryEngine) Add(docs ...core.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range docs {
		if d.ID == "" {
			d.ID = fmt.Sprintf("doc-%d", len(e.docs)+1)
		}
		e.docs = append(e.docs, d)
	}
}

// Search implements Engine.
func (e *InMemoryEngine) Search(ctx context.Context, query string, k int) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.Err != nil {
		return nil, e.Err
	}
	if k <= 0 {
		return nil, nil
	}

	terms := tokenize(query)
	scored := make([]core.Document, 0, len(e.docs))
	for _, d := range e.docs {
		s := overlapScore(terms, tokenize(d.Text))
		if s <= 0 {
			continue
		}
		d.Score = s
		scored = append(scored, d)
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(s)) {
		t = strings.Trim(t, ".,;:!?\"'()[]{}")
		if t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}

// overlapScore is |query ∩ doc| / |query|.
func overlapScore(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	var hits int
	for t := range query {
		if _, ok := doc[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}
