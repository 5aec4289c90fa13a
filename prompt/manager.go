// Package prompt loads per-stage prompt templates and model configuration
// from a YAML file. The file groups entries under a top-level "stages" key;
// each stage may carry a system prompt, a user prompt template (Go
// text/template syntax) and a free-form config block:
//
//	stages:
//	  router:
//	    system_prompt: |
//	      You classify queries...
//	    user_prompt_template: |
//	      History:\n{{.history}}\nQuery: {{.user_query}}
//	    config:
//	      model_id: gemma2-9b-it
//	      temperature: 0
//
// Missing stages or keys fall back to zero values; stage constructors apply
// their own defaults on top.
package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sherlocklabs/sherlock/internal/util"
)

// Config is the free-form per-stage model configuration block with typed
// accessors that fall back to a caller-provided default.
type Config map[string]any

// Float returns the named value as float64 or def when absent / untyped.
func (c Config) Float(key string, def float64) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Int returns the named value as int or def when absent / untyped.
func (c Config) Int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// String returns the named value as string or def when absent / untyped.
func (c Config) String(key string, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}

type stageEntry struct {
	SystemPrompt       string `yaml:"system_prompt"`
	UserPromptTemplate string `yaml:"user_prompt_template"`
	Config             Config `yaml:"config"`
}

type promptFile struct {
	Stages map[string]stageEntry `yaml:"stages"`
}

// Options configure a Manager.
type Options struct {
	// Environment tags the loaded prompt set (e.g. "production", "staging").
	Environment string
}

// Manager holds the parsed per-stage prompt set.
type Manager struct {
	stages      map[string]stageEntry
	environment string
}

// NewManager loads prompts from a YAML file on disk.
func NewManager(path string, optFns ...func(o *Options)) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	return NewManagerFromBytes(data, optFns...)
}

// NewManagerFromBytes parses prompts from an in-memory YAML document.
func NewManagerFromBytes(data []byte, optFns ...func(o *Options)) (*Manager, error) {
	opts := Options{Environment: "production"}
	for _, fn := range optFns {
		fn(&opts)
	}

	var pf promptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file: %w", err)
	}
	if pf.Stages == nil {
		pf.Stages = map[string]stageEntry{}
	}
	return &Manager{stages: pf.Stages, environment: opts.Environment}, nil
}

// Empty returns a Manager with no stage entries; every lookup falls back to
// the caller's defaults. Useful for tests and mock-backed wiring.
func Empty() *Manager {
	return &Manager{stages: map[string]stageEntry{}, environment: "test"}
}

// Environment returns the environment tag this prompt set was loaded for.
func (m *Manager) Environment() string { return m.environment }

// SystemPrompt returns the system prompt for a stage ("" if absent).
func (m *Manager) SystemPrompt(stage string) string {
	return m.stages[stage].SystemPrompt
}

// UserPromptTemplate returns the raw user prompt template for a stage.
func (m *Manager) UserPromptTemplate(stage string) string {
	return m.stages[stage].UserPromptTemplate
}

// RenderUserPrompt renders the stage's user prompt template with the given
// data. An absent template renders to "".
func (m *Manager) RenderUserPrompt(stage string, data map[string]any) (string, error) {
	tmpl := m.stages[stage].UserPromptTemplate
	if tmpl == "" {
		return "", nil
	}
	out, err := util.RenderTemplate(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("failed to render %s user prompt: %w", stage, err)
	}
	return out, nil
}

// ModelConfig returns the stage's config block (nil-safe).
func (m *Manager) ModelConfig(stage string) Config {
	cfg := m.stages[stage].Config
	if cfg == nil {
		return Config{}
	}
	return cfg
}
