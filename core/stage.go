package core

// Stage is a single unit of pipeline work: consume the shared run state,
// mutate it, or fail. Stages never emit terminal decisions themselves; the
// graph inspects the mutated state through its steering predicates.
//
// Implementations must:
//   - Respect context cancellation via the RunContext
//   - Bound external-collaborator calls with RunContext.CallContext
//   - Mutate only the state fields they own
type Stage interface {
	Name() StageName
	Run(rc *RunContext, state *State) error
}
