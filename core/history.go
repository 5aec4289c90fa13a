package core

import "context"

// Fragment is the persisted slice of a conversation thread: the current
// uncompacted message window, the archived full history and the compaction
// count. It is the unit of exchange with a HistoryStore.
type Fragment struct {
	Messages        []Message `json:"messages"`
	FullHistory     []Message `json:"full_history"`
	NumCompressions int       `json:"num_compressions"`
}

// Clone returns a deep copy safe for independent mutation.
func (f Fragment) Clone() Fragment {
	return Fragment{
		Messages:        append([]Message(nil), f.Messages...),
		FullHistory:     append([]Message(nil), f.FullHistory...),
		NumCompressions: f.NumCompressions,
	}
}

// HistoryStore persists per-thread conversation fragments.
//
// Contract:
//   - Load returns the zero Fragment (no error) for an unseen thread.
//   - Save fully replaces the previous fragment (last-writer-wins per thread).
//   - Implementations serialize read-then-write per thread id so a load
//     never observes a half-written fragment.
type HistoryStore interface {
	Load(ctx context.Context, threadID string) (Fragment, error)
	Save(ctx context.Context, threadID string, fragment Fragment) error
}
