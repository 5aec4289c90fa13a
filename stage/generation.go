package stage

import (
	"fmt"
	"strings"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

// Generation streams the answer from the generation collaborator. Each
// received chunk updates the state's chat stream record and is forwarded to
// the translator as a TokenProduced signal, in arrival order. When the
// underlying stream ends cleanly the stage appends the user turn and the
// assembled assistant response to the conversation window.
type Generation struct {
	generator model.Generator
}

var _ core.Stage = (*Generation)(nil)

// NewGeneration creates the generation stage.
func NewGeneration(generator model.Generator) *Generation {
	return &Generation{generator: generator}
}

// Name implements core.Stage.
func (g *Generation) Name() core.StageName { return core.StageGeneration }

// Run implements core.Stage.
func (g *Generation) Run(rc *core.RunContext, state *core.State) error {
	ctx, cancel := rc.CallContext()
	defer cancel()

	query := state.ImprovedQuery.Content
	if query == "" {
		query = state.UserQuery.Content
	}
	contextText, citations := buildContext(state)
	state.ChatStream.Citations = citations

	tokenCh, errCh := g.generator.GenerateStream(ctx, contextText, query)

	var full strings.Builder
	for token := range tokenCh {
		full.WriteString(token)
		state.ChatStream.Token = token
		state.ChatStream.Status = core.StreamStatusStreaming
		if err := rc.EmitSignal(core.TokenProduced{Text: token}); err != nil {
			return err
		}
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("generation: %w", err)
	}

	state.ChatStream.Status = core.StreamStatusCompleted
	state.Messages = append(state.Messages,
		state.UserQuery,
		core.AssistantMessage(full.String()),
	)
	return nil
}

// buildContext assembles the retrieved documents numbered in rank order with
// 1-based indices; it is empty off the retrieval route. Conversation history
// is deliberately absent: multi-turn coherence is folded into the rewritten
// query by the context builder, and history text must never be citable
// context. Citations are the document ids in block order.
func buildContext(state *core.State) (string, []string) {
	citations := []string{}
	if !state.RouteIs(core.RouteRetrieval) || len(state.RetrievalResult) == 0 {
		return "", citations
	}

	var b strings.Builder
	for i, doc := range state.RetrievalResult {
		fmt.Fprintf(&b, "%d. %s\n", i+1, doc.Text)
		citations = append(citations, doc.ID)
	}
	return b.String(), citations
}
