// Package anthropic implements the generation and summarization contracts on
// the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
	"github.com/sherlocklabs/sherlock/prompt"
)

const (
	defaultGeneratorPrompt = `You are a helpful Python programming assistant.
Answer the user's question using the numbered context passages when they are
provided; cite nothing outside them. When no context is given, answer from
general Python knowledge. Be concise and include code examples where they
help.`

	defaultSummarizerPrompt = `Summarize the following conversation between a
user and a Python programming assistant. Preserve the topics discussed, any
decisions made and unresolved questions, in at most one paragraph. Respond
with the summary only.`
)

// Options configure the Anthropic adapters (model id, temperature, max
// tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// Prompts overrides built-in system prompts per stage.
	Prompts *prompt.Manager
}

func resolveOptions(defaults Options, optFns []func(o *Options)) Options {
	opts := defaults
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.Empty()
	}
	return opts
}

func newClient(opts Options) *anthropic.Client {
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &client
}

func (o Options) params(system, user string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:       o.Model,
		MaxTokens:   o.MaxTokens,
		Temperature: anthropic.Float(o.Temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
}

func (o Options) systemPrompt(stage, fallback string) string {
	if p := o.Prompts.SystemPrompt(stage); p != "" {
		return p
	}
	return fallback
}

// userPrompt renders the stage's user prompt template with data, falling
// back to the given layout when no template is configured.
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

// Generator implements model.Generator via the streaming Messages API.
type Generator struct {
	client *anthropic.Client
	opts   Options
}

var _ model.Generator = (*Generator)(nil)

// NewGenerator creates a generator with its own client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := resolveOptions(Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}, optFns)
	return &Generator{client: newClient(opts), opts: opts}
}

// NewGeneratorFromClient creates a generator from an existing client.
func NewGeneratorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Generator {
	opts := resolveOptions(Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}, optFns)
	return &Generator{client: client, opts: opts}
}

// GenerateStream implements model.Generator; forwards text deltas as tokens.
func (g *Generator) GenerateStream(ctx context.Context, contextText, query string) (<-chan string, <-chan error) {
	tokenCh := make(chan string, 32)
	errCh := make(chan error, 1)

	sys := g.opts.systemPrompt(string(core.StageGeneration), defaultGeneratorPrompt)
	fallback := query
	if contextText != "" {
		fallback = fmt.Sprintf("Context:\n%s\nQuestion: %s", contextText, query)
	}
	user, err := g.opts.userPrompt(core.StageGeneration, map[string]any{
		"context":    contextText,
		"user_query": query,
	}, fallback)
	if err != nil {
		close(tokenCh)
		errCh <- err
		close(errCh)
		return tokenCh, errCh
	}

	go func() {
		defer close(tokenCh)
		defer close(errCh)
		stream := g.client.Messages.NewStreaming(ctx, g.opts.params(sys, user))
		defer stream.Close()
		for stream.Next() {
			event := stream.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch d := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if d.Text == "" {
						continue
					}
					select {
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					case tokenCh <- d.Text:
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("anthropic streaming error: %w", err)
		}
	}()

	return tokenCh, errCh
}

// Summarizer implements model.Summarizer via a non-streaming completion.
type Summarizer struct {
	client *anthropic.Client
	opts   Options
}

var _ model.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates a summarizer with its own client.
func NewSummarizer(optFns ...func(o *Options)) *Summarizer {
	opts := resolveOptions(Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.3,
		MaxTokens:   1024,
	}, optFns)
	return &Summarizer{client: newClient(opts), opts: opts}
}

// NewSummarizerFromClient creates a summarizer from an existing client.
func NewSummarizerFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Summarizer {
	opts := resolveOptions(Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.3,
		MaxTokens:   1024,
	}, optFns)
	return &Summarizer{client: client, opts: opts}
}

// Summarize implements model.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, history string) (string, error) {
	sys := s.opts.systemPrompt(string(core.StageMemoryCompactor), defaultSummarizerPrompt)
	user, err := s.opts.userPrompt(core.StageMemoryCompactor, map[string]any{"history": history}, history)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Messages.New(ctx, s.opts.params(sys, user))
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", fmt.Errorf("empty summary: %w", model.ErrMalformedOutput)
	}
	return summary, nil
}
