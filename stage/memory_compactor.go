package stage

import (
	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

// MemoryCompactor condenses the conversation window into a single summary
// message, archiving the pre-compaction window into the full history. The
// graph only steers here once the window exceeds its threshold.
//
// A failed summarization is logged and swallowed: the turn's answer has
// already been delivered, so the thread simply persists uncompacted and the
// next oversized turn triggers another attempt.
type MemoryCompactor struct {
	summarizer model.Summarizer
}

var _ core.Stage = (*MemoryCompactor)(nil)

// NewMemoryCompactor creates the compaction stage.
func NewMemoryCompactor(summarizer model.Summarizer) *MemoryCompactor {
	return &MemoryCompactor{summarizer: summarizer}
}

// Name implements core.Stage.
func (c *MemoryCompactor) Name() core.StageName { return core.StageMemoryCompactor }

// Run implements core.Stage.
func (c *MemoryCompactor) Run(rc *core.RunContext, state *core.State) error {
	ctx, cancel := rc.CallContext()
	defer cancel()

	history := core.SerializeHistory(state.Messages)
	summary, err := c.summarizer.Summarize(ctx, history)
	if err != nil {
		rc.LogWarn("memory compaction failed, keeping window uncompacted",
			"messages", len(state.Messages), "error", err)
		return nil
	}

	state.FullHistory = append(state.FullHistory, state.Messages...)
	state.Messages = []core.Message{core.SystemMessage(summary)}
	state.NumCompressions++
	rc.LogInfo("conversation window compacted",
		"archived", len(state.FullHistory), "compressions", state.NumCompressions)
	return nil
}
