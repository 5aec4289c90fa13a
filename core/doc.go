// Package core provides the foundational domain types and contracts used by
// Sherlock. It defines the core abstractions for:
//
//   - Messages (role-tagged conversation turns and their wire serialization)
//   - State (the mutable record threaded through one pipeline run)
//   - Signals (immutable stage lifecycle records consumed by the translator)
//   - Stage / RunContext (units of pipeline work and their execution scope)
//   - HistoryStore (pluggable per-thread conversation persistence)
//
// The package intentionally keeps implementation concerns (persistence,
// graph traversal, concrete stages, model backends) out of scope, exposing
// small interfaces so other packages can depend on core without cycles.
package core
