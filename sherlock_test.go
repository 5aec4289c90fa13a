package sherlock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
	"github.com/sherlocklabs/sherlock/retrieval"
	"github.com/sherlocklabs/sherlock/stream"
)

func TestChatSyncWithDefaults(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	answer, err := s.ChatSync(context.Background(), "", "hello there")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.RunID)
	assert.NotEmpty(t, answer.Text)
	assert.Empty(t, answer.Citations)
}

func TestChatSyncRetrievalCitations(t *testing.T) {
	engine := retrieval.NewInMemoryEngine()
	engine.Add(
		core.Document{ID: "d1", Text: "A slice selects a range of items from a sequence"},
		core.Document{ID: "d2", Text: "A slice supports negative indices"},
	)
	gen := model.NewMockGenerator()
	gen.AddResponse("what is a slice", "A slice selects items.")

	s, err := New(func(o *Options) {
		o.IntentRouter = model.NewMockIntentRouter(core.RouterResult{
			Route:      core.RouteRetrieval,
			Confidence: core.ConfidenceHigh,
		})
		o.RetrievalEngine = engine
		o.Generator = gen
	})
	require.NoError(t, err)

	answer, err := s.ChatSync(context.Background(), "t1", "what is a slice")
	require.NoError(t, err)
	assert.Equal(t, "A slice selects items.", answer.Text)
	assert.Equal(t, []string{"d1", "d2"}, answer.Citations)
}

func TestChatSyncGateRejection(t *testing.T) {
	classifier := model.NewMockSafetyClassifier()
	classifier.Score = 1.0

	s, err := New(func(o *Options) { o.SafetyClassifier = classifier })
	require.NoError(t, err)

	answer, err := s.ChatSync(context.Background(), "t1", "something harmful")
	require.NoError(t, err, "gate rejection is a normal outcome, not an error")
	assert.Equal(t, stream.MsgQueryUnsafe, answer.Text)
	assert.Empty(t, answer.Citations)
}

func TestChatSyncRunError(t *testing.T) {
	gen := model.NewMockGenerator()
	gen.Err = errors.New("backend gone")

	s, err := New(func(o *Options) { o.Generator = gen })
	require.NoError(t, err)

	_, err = s.ChatSync(context.Background(), "t1", "hello")
	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Contains(t, runErr.Message, "backend gone")
}

func TestChatStreamsTokens(t *testing.T) {
	gen := model.NewMockGenerator()
	gen.AddResponse("hi", "one two three")

	s, err := New(func(o *Options) { o.Generator = gen })
	require.NoError(t, err)

	_, records, err := s.Chat(context.Background(), "t1", "hi")
	require.NoError(t, err)

	var tokens []string
	var terminals int
	for r := range records {
		if r.Done {
			terminals++
			continue
		}
		tokens = append(tokens, r.Token)
	}
	assert.Equal(t, 1, terminals)
	assert.Equal(t, []string{"one ", "two ", "three"}, tokens)
}
