package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

const defaultRewriterPrompt = `You rewrite user queries for document
retrieval. Using the conversation history, expand the latest query into a
single self-contained search query: resolve pronouns, fill in elided subjects
and keep all technical terms. Respond with the rewritten query only.`

// Rewriter implements model.QueryRewriter.
type Rewriter struct {
	client *openai.Client
	opts   Options
}

var _ model.QueryRewriter = (*Rewriter)(nil)

// NewRewriter creates a rewriter with its own client.
func NewRewriter(optFns ...func(o *Options)) *Rewriter {
	opts := resolveOptions(core.StageContextBuilder, Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.3,
		MaxCompletionTokens: 256,
	}, optFns)
	return &Rewriter{client: newClient(opts), opts: opts}
}

// NewRewriterFromClient creates a rewriter from an existing client.
func NewRewriterFromClient(client *openai.Client, optFns ...func(o *Options)) *Rewriter {
	opts := resolveOptions(core.StageContextBuilder, Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.3,
		MaxCompletionTokens: 256,
	}, optFns)
	return &Rewriter{client: client, opts: opts}
}

// Rewrite implements model.QueryRewriter.
func (r *Rewriter) Rewrite(ctx context.Context, history, query string) (string, error) {
	sys := r.opts.systemPrompt(string(core.StageContextBuilder), defaultRewriterPrompt)
	fallback := query
	if history != "" {
		fallback = fmt.Sprintf("Conversation so far:\n%s\nLatest query: %s", history, query)
	}
	user, err := r.opts.userPrompt(core.StageContextBuilder, map[string]any{
		"history":    history,
		"user_query": query,
	}, fallback)
	if err != nil {
		return "", err
	}
	text, err := complete(ctx, r.client, r.opts.params([]openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(sys),
		openai.UserMessage(user),
	}))
	if err != nil {
		return "", err
	}
	rewritten := strings.TrimSpace(text)
	if rewritten == "" {
		return "", fmt.Errorf("empty rewrite: %w", model.ErrMalformedOutput)
	}
	return rewritten, nil
}
