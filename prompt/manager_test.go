package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
stages:
  router:
    system_prompt: "Classify the query."
    user_prompt_template: "History: {{.history}} Query: {{.user_query}}"
    config:
      model_id: gemma2-9b-it
      temperature: 0.2
      max_tokens: 512
  generation:
    system_prompt: "Answer using only the provided context."
`

func TestManagerFromBytes(t *testing.T) {
	m, err := NewManagerFromBytes([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "Classify the query.", m.SystemPrompt("router"))
	assert.Equal(t, "Answer using only the provided context.", m.SystemPrompt("generation"))
	assert.Equal(t, "", m.SystemPrompt("unknown"))
}

func TestManagerRenderUserPrompt(t *testing.T) {
	m, err := NewManagerFromBytes([]byte(sampleYAML))
	require.NoError(t, err)

	out, err := m.RenderUserPrompt("router", map[string]any{
		"history":    "<human>hi</human>",
		"user_query": "what is a slice?",
	})
	require.NoError(t, err)
	assert.Equal(t, "History: <human>hi</human> Query: what is a slice?", out)

	// Absent template renders to empty string without error.
	out, err = m.RenderUserPrompt("generation", nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestManagerModelConfig(t *testing.T) {
	m, err := NewManagerFromBytes([]byte(sampleYAML))
	require.NoError(t, err)

	cfg := m.ModelConfig("router")
	assert.Equal(t, "gemma2-9b-it", cfg.String("model_id", "fallback"))
	assert.InDelta(t, 0.2, cfg.Float("temperature", 1.0), 1e-9)
	assert.Equal(t, 512, cfg.Int("max_tokens", 128))

	// Fallbacks on missing stage / keys.
	cfg = m.ModelConfig("unknown")
	assert.Equal(t, "fallback", cfg.String("model_id", "fallback"))
	assert.InDelta(t, 1.0, cfg.Float("temperature", 1.0), 1e-9)
}

func TestManagerEnvironment(t *testing.T) {
	m, err := NewManagerFromBytes([]byte(sampleYAML), func(o *Options) {
		o.Environment = "staging"
	})
	require.NoError(t, err)
	assert.Equal(t, "staging", m.Environment())

	assert.Equal(t, "test", Empty().Environment())
}

func TestManagerInvalidYAML(t *testing.T) {
	_, err := NewManagerFromBytes([]byte("stages: [not a map"))
	require.Error(t, err)
}
