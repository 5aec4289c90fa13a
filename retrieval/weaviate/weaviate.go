// Package weaviate adapts a Weaviate class to the retrieval.Engine interface
// using nearText semantic search.
package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/retrieval"
)

// Options configure the Weaviate engine.
type Options struct {
	// ClassName is the Weaviate class holding the corpus.
	ClassName string
	// ContentField is the text property returned as Document.Text.
	ContentField string
	// SourceField, when non-empty, is copied into Document.Metadata["source"].
	SourceField string
}

// Engine implements retrieval.Engine against a Weaviate instance whose class
// has a text2vec vectorizer (nearText requires server-side vectorization).
type Engine struct {
	client *weaviate.Client
	opts   Options
}

var _ retrieval.Engine = (*Engine)(nil)

// NewEngine creates an engine over an existing Weaviate client.
func NewEngine(client *weaviate.Client, optFns ...func(o *Options)) *Engine {
	opts := Options{
		ClassName:    "Document",
		ContentField: "content",
		SourceField:  "source",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{client: client, opts: opts}
}

// Search implements retrieval.Engine.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]core.Document, error) {
	if k <= 0 {
		return nil, nil
	}

	nearText := e.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	fields := []graphql.Field{
		{Name: e.opts.ContentField},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "certainty"},
		}},
	}
	if e.opts.SourceField != "" {
		fields = append(fields, graphql.Field{Name: e.opts.SourceField})
	}

	result, err := e.client.GraphQL().Get().
		WithClassName(e.opts.ClassName).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search error: %s", result.Errors[0].Message)
	}

	return e.parseResults(result)
}

func (e *Engine) parseResults(resp *models.GraphQLResponse) ([]core.Document, error) {
	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil, nil
	}
	objects, ok := get[e.opts.ClassName].([]any)
	if !ok {
		return nil, nil
	}

	docs := make([]core.Document, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		doc := core.Document{}
		if text, ok := m[e.opts.ContentField].(string); ok {
			doc.Text = text
		}
		if add, ok := m["_additional"].(map[string]any); ok {
			if id, ok := add["id"].(string); ok {
				doc.ID = id
			}
			if certainty, ok := add["certainty"].(float64); ok {
				doc.Score = certainty
			}
		}
		if e.opts.SourceField != "" {
			if src, ok := m[e.opts.SourceField].(string); ok && src != "" {
				doc.Metadata = map[string]string{"source": src}
			}
		}
		if doc.Text == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
