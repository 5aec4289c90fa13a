// Package model defines the provider-agnostic collaborator contracts the
// pipeline stages depend on: safety classification, intent routing, query
// rewriting, streaming answer generation and history summarization.
//
// Core goals:
//   - Keep stage logic decoupled from vendor SDKs
//   - Normalize "the model returned garbage" into ErrMalformedOutput so
//     callers can retry transient formatting failures
//   - Facilitate lightweight mocking for tests (Mock* types)
//
// Providers (e.g. OpenAI-compatible endpoints, Anthropic) implement these
// interfaces in subpackages so higher layers remain transport independent.
package model
