// Package openai implements the model collaborator contracts on top of the
// OpenAI Chat Completions API. Any OpenAI-compatible endpoint (Groq, local
// inference servers) works via the BaseURL option.
//
// Each adapter resolves its system prompt from an optional prompt.Manager,
// falling back to a built-in default, and maps "the model answered but not in
// the expected shape" to model.ErrMalformedOutput.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/prompt"
)

// Options configure an adapter. Fields mirror a subset of Chat Completion
// parameters intentionally kept minimal; extend via functional options
// without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// BaseURL points the client at an OpenAI-compatible endpoint
	// (e.g. https://api.groq.com/openai/v1). Empty uses the default.
	BaseURL string
	APIKey  string
	// Prompts overrides built-in system prompts per stage.
	Prompts *prompt.Manager
}

// resolveOptions applies functional overrides to the defaults, then overlays
// the stage's config block from the prompt manager. Values present in the
// prompt file (model_id, temperature, max_completion_tokens) take precedence.
func resolveOptions(stage core.StageName, defaults Options, optFns []func(o *Options)) Options {
	opts := defaults
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.Empty()
	}
	cfg := opts.Prompts.ModelConfig(string(stage))
	opts.Model = cfg.String("model_id", opts.Model)
	opts.Temperature = cfg.Float("temperature", opts.Temperature)
	opts.MaxCompletionTokens = int64(cfg.Int("max_completion_tokens", int(opts.MaxCompletionTokens)))
	return opts
}

func newClient(opts Options) *openai.Client {
	var clientOpts []option.RequestOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)
	return &client
}

func (o Options) params(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               o.Model,
		Temperature:         openai.Float(o.Temperature),
		MaxCompletionTokens: openai.Int(o.MaxCompletionTokens),
	}
}

// systemPrompt returns the configured prompt for a stage or the fallback.
func (o Options) systemPrompt(stage, fallback string) string {
	if p := o.Prompts.SystemPrompt(stage); p != "" {
		return p
	}
	return fallback
}

// userPrompt renders the stage's user prompt template with data, falling
// back to the given layout when no template is configured. A template that
// fails to render is a configuration error, not a model error.
func (o Options) userPrompt(stage core.StageName, data map[string]any, fallback string) (string, error) {
	rendered, err := o.Prompts.RenderUserPrompt(string(stage), data)
	if err != nil {
		return "", err
	}
	if rendered == "" {
		return fallback, nil
	}
	return rendered, nil
}

// complete runs a non-streaming completion and returns the first choice text.
func complete(ctx context.Context, client *openai.Client, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or without a
// language tag, from model output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop a language tag like "json" on the fence line.
		first := strings.TrimSpace(s[:idx])
		if first != "" && !strings.ContainsAny(first, "{}") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
