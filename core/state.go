package core

import "fmt"

// Route is the closed set of destinations the intent router may choose.
type Route string

const (
	// RouteRetrieval sends the query through vector retrieval before generation.
	RouteRetrieval Route = "retrieval"
	// RouteNonRetrieval answers directly from the model without retrieval.
	RouteNonRetrieval Route = "non_retrieval"
	// RouteOffTopic rejects the query as outside the assistant's domain.
	RouteOffTopic Route = "off_topic"
)

// Valid reports whether r is one of the three known routes.
func (r Route) Valid() bool {
	switch r {
	case RouteRetrieval, RouteNonRetrieval, RouteOffTopic:
		return true
	}
	return false
}

// Confidence is the router's self-reported certainty about its route choice.
type Confidence string

const (
	// ConfidenceLow indicates an uncertain routing decision.
	ConfidenceLow Confidence = "low"
	// ConfidenceMedium indicates a moderately certain routing decision.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceHigh indicates a near-certain routing decision.
	ConfidenceHigh Confidence = "high"
)

// Valid reports whether c is one of the three known confidence levels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// RouterResult is the structured outcome of the router stage.
type RouterResult struct {
	Route      Route      `json:"route"`
	Confidence Confidence `json:"confidence"`
}

// Document is one ranked retrieval hit.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
}

// StreamStatus tracks whether a generation is still producing tokens.
type StreamStatus string

const (
	// StreamStatusStreaming means the generation stage is mid-stream.
	StreamStatusStreaming StreamStatus = "streaming"
	// StreamStatusCompleted means the generation stream has ended.
	StreamStatusCompleted StreamStatus = "completed"
)

// ChatStream is the incremental generation record mutated by the generation
// stage: the latest token chunk, the citation id list (rank order) and the
// streaming/completed status. Status transitions streaming -> completed
// exactly once per run.
type ChatStream struct {
	Status    StreamStatus `json:"status"`
	Token     string       `json:"token"`
	Citations []string     `json:"citations"`
}

// State is the single mutable record threaded through every stage of one
// pipeline run. It is owned exclusively by the graph for the run's duration;
// stages mutate it in traversal order and never concurrently. At run end the
// Messages / FullHistory / NumCompressions fields are folded into the
// HistoryStore fragment for the thread; everything else is discarded.
type State struct {
	// UserQuery is the incoming human message for this turn.
	UserQuery Message

	// Gate booleans. Each defaults to true until its owning stage runs;
	// once any is false no downstream stage executes.
	IsDataValid  bool
	IsSafe       bool
	IsQueryValid bool

	// RouterResult is set exactly once by the router stage.
	RouterResult *RouterResult

	// ImprovedQuery is the rewritten form of UserQuery produced by the
	// context builder and consumed by retrieval and generation.
	ImprovedQuery Message

	// RetrievalResult holds ranked documents; empty unless route=retrieval.
	RetrievalResult []Document

	// Messages is the current uncompacted conversation window.
	Messages []Message

	// FullHistory archives messages compacted out of Messages. It is never
	// replayed into prompts.
	FullHistory []Message

	// ChatStream is the incremental generation record for this run.
	ChatStream ChatStream

	// NumCompressions counts memory compaction events for the thread.
	NumCompressions int
}

// NewState creates a fresh run state for the given user query with all gates
// open. Prior-turn history is seeded separately from the thread's fragment.
func NewState(query string) *State {
	return &State{
		UserQuery:    HumanMessage(query),
		IsDataValid:  true,
		IsSafe:       true,
		IsQueryValid: true,
	}
}

// SeedFragment loads a prior-turn history fragment into the state.
func (s *State) SeedFragment(f Fragment) {
	s.Messages = append([]Message(nil), f.Messages...)
	s.FullHistory = append([]Message(nil), f.FullHistory...)
	s.NumCompressions = f.NumCompressions
}

// Fragment extracts the persistable slice of the state.
func (s *State) Fragment() Fragment {
	return Fragment{
		Messages:        append([]Message(nil), s.Messages...),
		FullHistory:     append([]Message(nil), s.FullHistory...),
		NumCompressions: s.NumCompressions,
	}
}

// SetRouterResult records the router outcome. The result is immutable once
// set within a run; a second call is a programming error surfaced as error.
func (s *State) SetRouterResult(r RouterResult) error {
	if s.RouterResult != nil {
		return fmt.Errorf("router result already set to %q", s.RouterResult.Route)
	}
	s.RouterResult = &r
	return nil
}

// RouteIs reports whether the router has run and chose the given route.
func (s *State) RouteIs(r Route) bool {
	return s.RouterResult != nil && s.RouterResult.Route == r
}
