package model

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherlocklabs/sherlock/core"
)

func TestMockSafetyClassifier(t *testing.T) {
	c := NewMockSafetyClassifier()
	c.AddScore("bad query", 0.95)

	score, err := c.Classify(context.Background(), "bad query")
	require.NoError(t, err)
	assert.InDelta(t, 0.95, score, 1e-9)

	score, err = c.Classify(context.Background(), "fine query")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-9)
	assert.Equal(t, 2, c.Calls)
}

func TestMockIntentRouterFailTimes(t *testing.T) {
	r := NewMockIntentRouter(core.RouterResult{
		Route:      core.RouteRetrieval,
		Confidence: core.ConfidenceHigh,
	})
	r.FailTimes = 2

	_, err := r.Route(context.Background(), "", "q")
	require.ErrorIs(t, err, ErrMalformedOutput)
	_, err = r.Route(context.Background(), "", "q")
	require.ErrorIs(t, err, ErrMalformedOutput)

	res, err := r.Route(context.Background(), "", "q")
	require.NoError(t, err)
	assert.Equal(t, core.RouteRetrieval, res.Route)
	assert.Equal(t, 3, r.Calls)
}

func TestMockGeneratorStreams(t *testing.T) {
	g := NewMockGenerator()
	g.AddResponse("q", "a slice is a view")

	tokenCh, errCh := g.GenerateStream(context.Background(), "", "q")
	var sb strings.Builder
	for tok := range tokenCh {
		sb.WriteString(tok)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "a slice is a view", sb.String())
}

func TestMockGeneratorMidStreamError(t *testing.T) {
	g := NewMockGenerator()
	g.AddResponse("q", "one two three four")
	g.Err = errors.New("backend gone")
	g.ErrAfter = 2

	tokenCh, errCh := g.GenerateStream(context.Background(), "", "q")
	var tokens []string
	for tok := range tokenCh {
		tokens = append(tokens, tok)
	}
	assert.Len(t, tokens, 2)
	require.EqualError(t, <-errCh, "backend gone")
}

func TestMockSummarizer(t *testing.T) {
	s := NewMockSummarizer()
	s.Summary = "summary"

	out, err := s.Summarize(context.Background(), "<human>hi</human>\n")
	require.NoError(t, err)
	assert.Equal(t, "summary", out)
	assert.Equal(t, "<human>hi</human>\n", s.LastHistory)
}
