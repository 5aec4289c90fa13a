package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherlocklabs/sherlock/core"
)

func newCorpus() *InMemoryEngine {
	e := NewInMemoryEngine()
	e.Add(
		core.Document{ID: "slices", Text: "A slice is a view into an underlying array"},
		core.Document{ID: "maps", Text: "A dict maps keys to values"},
		core.Document{ID: "decorators", Text: "A decorator wraps a function to extend its behavior"},
	)
	return e
}

func TestInMemoryEngineRanksByOverlap(t *testing.T) {
	e := newCorpus()

	docs, err := e.Search(context.Background(), "what is a slice", 2)
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Equal(t, "slices", docs[0].ID)
	assert.LessOrEqual(t, len(docs), 2)
	for _, d := range docs {
		assert.Greater(t, d.Score, 0.0)
		assert.LessOrEqual(t, d.Score, 1.0)
	}
}

func TestInMemoryEngineNoMatch(t *testing.T) {
	e := newCorpus()

	docs, err := e.Search(context.Background(), "zzzz qqqq", 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestInMemoryEngineZeroK(t *testing.T) {
	e := newCorpus()

	docs, err := e.Search(context.Background(), "slice", 0)
	require.NoError(t, err)
	assert.Nil(t, docs)
}

// blockingEngine parks searches until released, to observe pool saturation.
type blockingEngine struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingEngine) Search(ctx context.Context, _ string, _ int) ([]core.Document, error) {
	b.started <- struct{}{}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.release:
		return nil, nil
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	be := &blockingEngine{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	pool := NewPool(be, func(o *PoolOptions) { o.MaxConcurrent = 2 })

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = pool.Search(context.Background(), "q", 1)
		}()
	}

	// Exactly two searches reach the engine while the pool is saturated.
	<-be.started
	<-be.started
	select {
	case <-be.started:
		t.Fatal("third search entered a pool of size 2")
	case <-time.After(50 * time.Millisecond):
	}

	close(be.release)
	<-be.started
	<-be.started
	wg.Wait()
}

func TestPoolAcquireRespectsCancellation(t *testing.T) {
	be := &blockingEngine{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	pool := NewPool(be, func(o *PoolOptions) { o.MaxConcurrent = 1 })

	go func() { _, _ = pool.Search(context.Background(), "q", 1) }()
	<-be.started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.Search(ctx, "q", 1)
	require.ErrorIs(t, err, context.Canceled)

	close(be.release)
}

func TestPoolPropagatesEngineError(t *testing.T) {
	e := newCorpus()
	e.Err = errors.New("index offline")
	pool := NewPool(e)

	_, err := pool.Search(context.Background(), "slice", 3)
	require.EqualError(t, err, "index offline")
}
