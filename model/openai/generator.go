package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

const defaultGeneratorPrompt = `You are a helpful Python programming
assistant. Answer the user's question using the numbered context passages
when they are provided; cite nothing outside them. When no context is given,
answer from general Python knowledge. Be concise and include code examples
where they help.`

// Generator implements model.Generator via streaming chat completions.
type Generator struct {
	client *openai.Client
	opts   Options
}

var _ model.Generator = (*Generator)(nil)

// NewGenerator creates a generator with its own client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := resolveOptions(core.StageGeneration, Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}, optFns)
	return &Generator{client: newClient(opts), opts: opts}
}

// NewGeneratorFromClient creates a generator from an existing client.
func NewGeneratorFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := resolveOptions(core.StageGeneration, Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
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
	params := g.opts.params([]openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(sys),
		openai.UserMessage(user),
	})

	go func() {
		defer close(tokenCh)
		defer close(errCh)
		stream := g.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()
		for stream.Next() {
			ck := stream.Current()
			for _, ch := range ck.Choices {
				if ch.Delta.Content == "" {
					continue
				}
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case tokenCh <- ch.Delta.Content:
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("openai streaming error: %w", err)
		}
	}()

	return tokenCh, errCh
}
