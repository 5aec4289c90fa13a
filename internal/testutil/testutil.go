// Package testutil builds fully wired mock pipelines for package tests.
package testutil

import (
	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/graph"
	"github.com/sherlocklabs/sherlock/model"
	"github.com/sherlocklabs/sherlock/retrieval"
	"github.com/sherlocklabs/sherlock/stage"
)

// Pipeline bundles a graph with the mock collaborators behind it, so tests
// can steer gate outcomes and inspect call counts.
type Pipeline struct {
	Classifier *model.MockSafetyClassifier
	Router     *model.MockIntentRouter
	Rewriter   *model.MockQueryRewriter
	Engine     *retrieval.InMemoryEngine
	Generator  *model.MockGenerator
	Summarizer *model.MockSummarizer

	Graph *graph.Graph
}

// NewPipeline assembles a graph over fresh mocks. Defaults: every query is
// safe, routed to retrieval with high confidence, rewritten verbatim and
// answered with the generator's fallback response.
func NewPipeline(optFns ...func(o *graph.Options)) *Pipeline {
	p := &Pipeline{
		Classifier: model.NewMockSafetyClassifier(),
		Router: model.NewMockIntentRouter(core.RouterResult{
			Route:      core.RouteRetrieval,
			Confidence: core.ConfidenceHigh,
		}),
		Rewriter:   model.NewMockQueryRewriter(),
		Engine:     retrieval.NewInMemoryEngine(),
		Generator:  model.NewMockGenerator(),
		Summarizer: model.NewMockSummarizer(),
	}

	g, err := graph.New(graph.Stages{
		DataValidator:   stage.NewDataValidator(),
		SafetyGate:      stage.NewSafetyGate(p.Classifier),
		Router:          stage.NewRouter(p.Router),
		ContextBuilder:  stage.NewContextBuilder(p.Rewriter),
		Retrieval:       stage.NewRetrieval(retrieval.NewPool(p.Engine)),
		Generation:      stage.NewGeneration(p.Generator),
		MemoryCompactor: stage.NewMemoryCompactor(p.Summarizer),
	}, optFns...)
	if err != nil {
		panic(err)
	}
	p.Graph = g
	return p
}

// SeedDocs indexes a small Python-flavored corpus into the engine.
func (p *Pipeline) SeedDocs() {
	p.Engine.Add(
		core.Document{ID: "doc-slices", Text: "A slice selects a range of items from a sequence"},
		core.Document{ID: "doc-dicts", Text: "A dict maps hashable keys to arbitrary values"},
		core.Document{ID: "doc-decorators", Text: "A decorator wraps a function to extend its behavior"},
	)
}
