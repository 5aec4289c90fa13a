// Package stage implements the pipeline stages: data validation, safety
// gating, intent routing, query rewriting, retrieval, streaming generation
// and memory compaction. Each stage mutates only the state fields it owns
// and leaves routing decisions to the graph's steering predicates.
package stage
