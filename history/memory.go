// Package history provides HistoryStore implementations: a process-local
// in-memory store and a Badger-backed durable store.
package history

import (
	"context"
	"sort"
	"sync"

	"github.com/sherlocklabs/sherlock/core"
)

// InMemoryStore keeps fragments in a mutex-guarded map. Fragments are cloned
// on the way in and out so callers can mutate their copies freely.
type InMemoryStore struct {
	mu        sync.RWMutex
	fragments map[string]core.Fragment
}

var _ core.HistoryStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{fragments: make(map[string]core.Fragment)}
}

// Load implements core.HistoryStore.
func (s *InMemoryStore) Load(ctx context.Context, threadID string) (core.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return core.Fragment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fragments[threadID].Clone(), nil
}

// Save implements core.HistoryStore.
func (s *InMemoryStore) Save(ctx context.Context, threadID string, fragment core.Fragment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments[threadID] = fragment.Clone()
	return nil
}

// Delete removes a thread's fragment. Deleting an unseen thread is a no-op.
func (s *InMemoryStore) Delete(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fragments, threadID)
}

// Threads returns the known thread ids in sorted order.
func (s *InMemoryStore) Threads() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.fragments))
	for id := range s.fragments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
