package model

import (
	"context"
	"errors"

	"github.com/sherlocklabs/sherlock/core"
)

// ErrMalformedOutput indicates the model responded, but the response could
// not be parsed into the expected shape (bad JSON, non-numeric score, unknown
// enum value). Callers may retry; transport failures are never wrapped in it.
var ErrMalformedOutput = errors.New("malformed model output")

// SafetyClassifier scores a query for harmful intent. Scores are in [0, 1];
// higher means more likely harmful.
type SafetyClassifier interface {
	Classify(ctx context.Context, query string) (float64, error)
}

// IntentRouter classifies a query (with serialized conversation history) into
// one of the supported routes with a coarse confidence grade.
type IntentRouter interface {
	Route(ctx context.Context, history, query string) (core.RouterResult, error)
}

// QueryRewriter reformulates a query into a self-contained retrieval query
// using the conversation history to resolve pronouns and ellipses.
type QueryRewriter interface {
	Rewrite(ctx context.Context, history, query string) (string, error)
}

// Generator produces the final answer as a token stream. contextText carries
// the numbered retrieval block plus serialized history; it may be empty for
// conversational routes. Both channels are closed when generation ends; at
// most one error is sent.
type Generator interface {
	GenerateStream(ctx context.Context, contextText, query string) (<-chan string, <-chan error)
}

// Summarizer condenses a serialized conversation into a compact summary used
// by memory compaction.
type Summarizer interface {
	Summarize(ctx context.Context, history string) (string, error)
}
