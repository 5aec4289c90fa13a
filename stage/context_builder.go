package stage

import (
	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

// ContextBuilder rewrites the query into a self-contained form using the
// conversation history. A failed rewrite never fails the run: the stage
// degrades to the original query so retrieval and generation still proceed.
type ContextBuilder struct {
	rewriter model.QueryRewriter
}

var _ core.Stage = (*ContextBuilder)(nil)

// NewContextBuilder creates the rewriting stage.
func NewContextBuilder(rewriter model.QueryRewriter) *ContextBuilder {
	return &ContextBuilder{rewriter: rewriter}
}

// Name implements core.Stage.
func (b *ContextBuilder) Name() core.StageName { return core.StageContextBuilder }

// Run implements core.Stage.
func (b *ContextBuilder) Run(rc *core.RunContext, state *core.State) error {
	ctx, cancel := rc.CallContext()
	defer cancel()

	history := core.SerializeHistory(state.Messages)
	rewritten, err := b.rewriter.Rewrite(ctx, history, state.UserQuery.Content)
	if err != nil || rewritten == "" {
		rc.LogWarn("query rewrite failed, using original query", "error", err)
		state.ImprovedQuery = state.UserQuery
		return nil
	}
	state.ImprovedQuery = core.HumanMessage(rewritten)
	return nil
}
