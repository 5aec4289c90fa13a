package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

const defaultSummarizerPrompt = `Summarize the following conversation between
a user and a Python programming assistant. Preserve the topics discussed, any
decisions made and unresolved questions, in at most one paragraph. Respond
with the summary only.`

// Summarizer implements model.Summarizer.
type Summarizer struct {
	client *openai.Client
	opts   Options
}

var _ model.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates a summarizer with its own client.
func NewSummarizer(optFns ...func(o *Options)) *Summarizer {
	opts := resolveOptions(core.StageMemoryCompactor, Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.3,
		MaxCompletionTokens: 1024,
	}, optFns)
	return &Summarizer{client: newClient(opts), opts: opts}
}

// NewSummarizerFromClient creates a summarizer from an existing client.
func NewSummarizerFromClient(client *openai.Client, optFns ...func(o *Options)) *Summarizer {
	opts := resolveOptions(core.StageMemoryCompactor, Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.3,
		MaxCompletionTokens: 1024,
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
	text, err := complete(ctx, s.client, s.opts.params([]openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(sys),
		openai.UserMessage(user),
	}))
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(text)
	if summary == "" {
		return "", fmt.Errorf("empty summary: %w", model.ErrMalformedOutput)
	}
	return summary, nil
}
