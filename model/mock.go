package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sherlocklabs/sherlock/core"
)

// MockSafetyClassifier is a deterministic in-memory SafetyClassifier for
// tests and examples. Per-query scores override the default.
type MockSafetyClassifier struct {
	mu     sync.Mutex
	scores map[string]float64

	// Score is returned for queries without a canned entry.
	Score float64
	// Err, when set, is returned from every call.
	Err error

	Calls int
}

// NewMockSafetyClassifier constructs a classifier that scores everything 0.0.
func NewMockSafetyClassifier() *MockSafetyClassifier {
	return &MockSafetyClassifier{scores: make(map[string]float64)}
}

// AddScore registers a canned score for a query.
func (m *MockSafetyClassifier) AddScore(query string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[query] = score
}

// Classify implements SafetyClassifier.
func (m *MockSafetyClassifier) Classify(_ context.Context, query string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return 0, m.Err
	}
	if s, ok := m.scores[query]; ok {
		return s, nil
	}
	return m.Score, nil
}

// MockIntentRouter is a deterministic IntentRouter. FailTimes can simulate a
// model that emits malformed output before recovering.
type MockIntentRouter struct {
	mu sync.Mutex

	// Result is the answer returned once failures are exhausted.
	Result core.RouterResult
	// FailTimes makes the first N calls return ErrMalformedOutput.
	FailTimes int
	// Err, when set, is returned from every call.
	Err error

	Calls int
}

// NewMockIntentRouter constructs a router answering with the given result.
func NewMockIntentRouter(result core.RouterResult) *MockIntentRouter {
	return &MockIntentRouter{Result: result}
}

// Route implements IntentRouter.
func (m *MockIntentRouter) Route(_ context.Context, _, _ string) (core.RouterResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return core.RouterResult{}, m.Err
	}
	if m.Calls <= m.FailTimes {
		return core.RouterResult{}, fmt.Errorf("mock router call %d: %w", m.Calls, ErrMalformedOutput)
	}
	return m.Result, nil
}

// MockQueryRewriter echoes the query with an optional prefix, or a canned
// rewrite when one is registered.
type MockQueryRewriter struct {
	mu       sync.Mutex
	rewrites map[string]string

	// Err, when set, is returned from every call.
	Err error

	Calls int
}

// NewMockQueryRewriter constructs a rewriter that echoes queries unchanged.
func NewMockQueryRewriter() *MockQueryRewriter {
	return &MockQueryRewriter{rewrites: make(map[string]string)}
}

// AddRewrite registers a canned rewrite for a query.
func (m *MockQueryRewriter) AddRewrite(query, rewritten string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewrites[query] = rewritten
}

// Rewrite implements QueryRewriter.
func (m *MockQueryRewriter) Rewrite(_ context.Context, _, query string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if r, ok := m.rewrites[query]; ok {
		return r, nil
	}
	return query, nil
}

// MockGenerator streams a canned completion word by word.
type MockGenerator struct {
	mu        sync.Mutex
	responses map[string]string

	// Response is streamed for queries without a canned entry.
	Response string
	// Err, when set, is sent on the error channel after any streamed tokens.
	Err error
	// ErrAfter limits how many tokens stream before Err is sent (0 = none).
	ErrAfter int
}

// NewMockGenerator constructs a generator with a generic fallback response.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		responses: make(map[string]string),
		Response:  "Mock answer.",
	}
}

// AddResponse registers a canned completion for a query.
func (m *MockGenerator) AddResponse(query, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[query] = response
}

// GenerateStream implements Generator; emits whitespace-delimited chunks.
func (m *MockGenerator) GenerateStream(ctx context.Context, _, query string) (<-chan string, <-chan error) {
	m.mu.Lock()
	full, ok := m.responses[query]
	if !ok {
		full = m.Response
	}
	failErr := m.Err
	errAfter := m.ErrAfter
	m.mu.Unlock()

	tokenCh := make(chan string, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(tokenCh)
		defer close(errCh)
		words := strings.SplitAfter(full, " ")
		for i, w := range words {
			if failErr != nil && i >= errAfter {
				errCh <- failErr
				return
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case tokenCh <- w:
			}
		}
		if failErr != nil {
			errCh <- failErr
		}
	}()

	return tokenCh, errCh
}

// MockSummarizer returns a fixed summary.
type MockSummarizer struct {
	mu sync.Mutex

	// Summary is returned from every successful call.
	Summary string
	// Err, when set, is returned from every call.
	Err error

	Calls int
	// LastHistory records the most recent input for assertions.
	LastHistory string
}

// NewMockSummarizer constructs a summarizer with a generic summary.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{Summary: "Mock summary of the conversation."}
}

// Summarize implements Summarizer.
func (m *MockSummarizer) Summarize(_ context.Context, history string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastHistory = history
	if m.Err != nil {
		return "", m.Err
	}
	return m.Summary, nil
}
