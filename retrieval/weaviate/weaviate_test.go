package weaviate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

func TestParseResults(t *testing.T) {
	e := NewEngine(nil)

	resp := &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]any{
				"Document": []any{
					map[string]any{
						"content": "A slice selects a range",
						"source":  "docs/sequences",
						"_additional": map[string]any{
							"id":        "uuid-1",
							"certainty": 0.91,
						},
					},
					map[string]any{
						"content": "Slices support negative indices",
						"_additional": map[string]any{
							"id":        "uuid-2",
							"certainty": 0.84,
						},
					},
					// Malformed object, skipped.
					"not a map",
					// No content, skipped.
					map[string]any{"_additional": map[string]any{"id": "uuid-3"}},
				},
			},
		},
	}

	docs, err := e.parseResults(resp)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "uuid-1", docs[0].ID)
	assert.Equal(t, "A slice selects a range", docs[0].Text)
	assert.InDelta(t, 0.91, docs[0].Score, 1e-9)
	assert.Equal(t, map[string]string{"source": "docs/sequences"}, docs[0].Metadata)

	assert.Equal(t, "uuid-2", docs[1].ID)
	assert.Nil(t, docs[1].Metadata)
}

func TestParseResultsEmpty(t *testing.T) {
	e := NewEngine(nil)

	docs, err := e.parseResults(&models.GraphQLResponse{Data: map[string]models.JSONObject{}})
	require.NoError(t, err)
	assert.Empty(t, docs)
}
