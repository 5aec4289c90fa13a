package core

// StageName identifies a pipeline stage in lifecycle signals and logs.
type StageName string

const (
	// StageDataValidator estimates the query's token count.
	StageDataValidator StageName = "data_validator"
	// StageSafetyGate classifies the query for unsafe content.
	StageSafetyGate StageName = "safety_gate"
	// StageRouter decides retrieval / non_retrieval / off_topic.
	StageRouter StageName = "router"
	// StageContextBuilder rewrites the query using conversation history.
	StageContextBuilder StageName = "context_builder"
	// StageRetrieval fetches ranked documents for the rewritten query.
	StageRetrieval StageName = "retrieval"
	// StageGeneration streams the answer tokens.
	StageGeneration StageName = "generation"
	// StageMemoryCompactor summarizes the window when it grows too large.
	StageMemoryCompactor StageName = "memory_compactor"
)

// Signal is a closed union of stage lifecycle records emitted by the graph
// during one run and consumed by the stream translator. Concrete signal
// types implement the unexported isSignal marker.
type Signal interface{ isSignal() }

// StageEntered marks the start of a stage's execution.
type StageEntered struct {
	Stage StageName
}

func (StageEntered) isSignal() {}

// StageCompleted marks the successful end of a stage's execution. Outcome is
// a value snapshot taken at completion time so the translator never reads
// the shared state concurrently with a downstream stage.
type StageCompleted struct {
	Stage   StageName
	Outcome Outcome
}

func (StageCompleted) isSignal() {}

// TokenProduced carries one generation token chunk, in producer order.
type TokenProduced struct {
	Text string
}

func (TokenProduced) isSignal() {}

// Outcome is the gate-relevant snapshot attached to a StageCompleted signal.
type Outcome struct {
	// DataValid / Safe / QueryValid mirror the state's gate booleans at the
	// moment the owning stage completed.
	DataValid  bool
	Safe       bool
	QueryValid bool

	// Route is the chosen route, set by the router stage onward.
	Route Route

	// Citations lists retrieved document ids in rank order; set by the
	// generation stage.
	Citations []string
}
