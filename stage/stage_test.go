package stage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

func newRunContext(t *testing.T) *core.RunContext {
	t.Helper()
	return core.NewRunContext(context.Background(), "t1", "run-1", make(chan core.Signal, 256), 0, nil)
}

func TestDataValidatorEstimate(t *testing.T) {
	v := NewDataValidator()

	// "hello world" = 11 chars, 2 words: (11*0.25 + 2*1.3) / 2 = 2.675 -> 2.
	assert.Equal(t, 2, v.Estimate("hello world"))
	assert.Equal(t, 0, v.Estimate(""))

	// Repeating a 6-char word with separator: n words, 7n-1 chars.
	long := strings.TrimSpace(strings.Repeat("pythok ", 2000))
	est := v.Estimate(long)
	assert.Greater(t, est, 2000)
}

func TestDataValidatorGate(t *testing.T) {
	v := NewDataValidator(func(o *DataValidatorOptions) { o.MaxTokens = 10 })

	state := core.NewState("short")
	require.NoError(t, v.Run(newRunContext(t), state))
	assert.True(t, state.IsDataValid)

	state = core.NewState(strings.Repeat("rather long query ", 20))
	require.NoError(t, v.Run(newRunContext(t), state))
	assert.False(t, state.IsDataValid)
}

func TestDataValidatorCountsRunesNotBytes(t *testing.T) {
	v := NewDataValidator()
	// Multibyte characters must not inflate the character estimate.
	assert.Equal(t, v.Estimate("ααααα"), v.Estimate("aaaaa"))
}

func TestRouterRecordsResultOnce(t *testing.T) {
	router := NewRouter(model.NewMockIntentRouter(core.RouterResult{
		Route:      core.RouteNonRetrieval,
		Confidence: core.ConfidenceLow,
	}))

	state := core.NewState("q")
	require.NoError(t, router.Run(newRunContext(t), state))
	require.NotNil(t, state.RouterResult)
	assert.True(t, state.IsQueryValid)

	// A second routing pass over the same state is a programming error.
	require.Error(t, router.Run(newRunContext(t), state))
}

func TestGenerationBuildContextNumbering(t *testing.T) {
	state := core.NewState("what is a slice")
	require.NoError(t, state.SetRouterResult(core.RouterResult{
		Route: core.RouteRetrieval, Confidence: core.ConfidenceHigh,
	}))
	state.RetrievalResult = []core.Document{
		{ID: "d1", Text: "first passage", Score: 0.9},
		{ID: "d2", Text: "second passage", Score: 0.8},
		{ID: "d3", Text: "third passage", Score: 0.7},
	}

	contextText, citations := buildContext(state)
	assert.Contains(t, contextText, "1. first passage")
	assert.Contains(t, contextText, "2. second passage")
	assert.Contains(t, contextText, "3. third passage")
	assert.Equal(t, []string{"d1", "d2", "d3"}, citations)
}

func TestGenerationBuildContextExcludesHistory(t *testing.T) {
	state := core.NewState("and negative indices?")
	state.Messages = []core.Message{
		core.HumanMessage("what is a slice"),
		core.AssistantMessage("a view into a sequence"),
	}

	// Off the retrieval route the context is empty even mid-conversation.
	contextText, citations := buildContext(state)
	assert.Empty(t, contextText)
	assert.Empty(t, citations, "citations stay empty off the retrieval route")

	// On the retrieval route the context is only the numbered documents;
	// history never leaks in as citable passages.
	require.NoError(t, state.SetRouterResult(core.RouterResult{
		Route: core.RouteRetrieval, Confidence: core.ConfidenceHigh,
	}))
	state.RetrievalResult = []core.Document{{ID: "d1", Text: "a passage", Score: 0.9}}
	contextText, citations = buildContext(state)
	assert.Equal(t, "1. a passage\n", contextText)
	assert.NotContains(t, contextText, "<human>")
	assert.Equal(t, []string{"d1"}, citations)
}

func TestGenerationUsesImprovedQuery(t *testing.T) {
	gen := model.NewMockGenerator()
	gen.AddResponse("expanded standalone query", "answer via rewrite")
	g := NewGeneration(gen)

	state := core.NewState("original")
	state.ImprovedQuery = core.HumanMessage("expanded standalone query")

	require.NoError(t, g.Run(newRunContext(t), state))
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "answer via rewrite", state.Messages[1].Content)
	// The persisted user turn is the original query, not the rewrite.
	assert.Equal(t, "original", state.Messages[0].Content)
}

func TestMemoryCompactorArchivesWindow(t *testing.T) {
	summ := model.NewMockSummarizer()
	summ.Summary = "summary of the chat"
	c := NewMemoryCompactor(summ)

	state := core.NewState("q")
	state.Messages = []core.Message{
		core.HumanMessage("a"),
		core.AssistantMessage("b"),
	}
	state.FullHistory = []core.Message{core.HumanMessage("old")}

	require.NoError(t, c.Run(newRunContext(t), state))
	require.Len(t, state.Messages, 1)
	assert.Equal(t, core.SystemMessage("summary of the chat"), state.Messages[0])
	assert.Len(t, state.FullHistory, 3)
	assert.Equal(t, 1, state.NumCompressions)
	assert.Contains(t, summ.LastHistory, "<human>a</human>")
}
