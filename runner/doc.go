// Package runner coordinates pipeline execution: it loads the thread's
// conversation fragment, drives one graph run over it, streams translated
// records back to the caller and persists the mutated fragment on success.
//
// # Responsibilities (abridged)
//   - Per-run channel plumbing between graph, translator and caller
//   - Per-thread serialization of load-run-save cycles
//   - Run lifecycle management & cancellation
//
// Failed runs are never persisted; the thread keeps its pre-run fragment.
package runner
