package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

const defaultRouterPrompt = `You are a query router for a Python programming
assistant. Given the conversation history and the latest user query, classify
the query into exactly one route:

  "retrieval":     a Python question that benefits from documentation lookup
  "non_retrieval": a Python or conversational query answerable directly
  "off_topic":     anything unrelated to Python programming

Respond with a JSON object and nothing else:
{"route": "<route>", "confidence": "low" | "medium" | "high"}`

// Router implements model.IntentRouter via a JSON-mode style completion.
// Unparseable or out-of-enum responses wrap model.ErrMalformedOutput so the
// calling stage can retry.
type Router struct {
	client *openai.Client
	opts   Options
}

var _ model.IntentRouter = (*Router)(nil)

// NewRouter creates a router with its own client.
func NewRouter(optFns ...func(o *Options)) *Router {
	opts := resolveOptions(core.StageRouter, Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.0,
		MaxCompletionTokens: 64,
	}, optFns)
	return &Router{client: newClient(opts), opts: opts}
}

// NewRouterFromClient creates a router from an existing client.
func NewRouterFromClient(client *openai.Client, optFns ...func(o *Options)) *Router {
	opts := resolveOptions(core.StageRouter, Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.0,
		MaxCompletionTokens: 64,
	}, optFns)
	return &Router{client: client, opts: opts}
}

// Route implements model.IntentRouter.
func (r *Router) Route(ctx context.Context, history, query string) (core.RouterResult, error) {
	sys := r.opts.systemPrompt(string(core.StageRouter), defaultRouterPrompt)
	fallback := query
	if history != "" {
		fallback = fmt.Sprintf("Conversation so far:\n%s\nLatest query: %s", history, query)
	}
	user, err := r.opts.userPrompt(core.StageRouter, map[string]any{
		"history":    history,
		"user_query": query,
	}, fallback)
	if err != nil {
		return core.RouterResult{}, err
	}
	text, err := complete(ctx, r.client, r.opts.params([]openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(sys),
		openai.UserMessage(user),
	}))
	if err != nil {
		return core.RouterResult{}, err
	}
	return parseRouterResult(text)
}

// parseRouterResult decodes the model's JSON verdict, tolerating a markdown
// code fence around it.
func parseRouterResult(text string) (core.RouterResult, error) {
	var res core.RouterResult
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &res); err != nil {
		return core.RouterResult{}, fmt.Errorf("parse router output %q: %w", text, model.ErrMalformedOutput)
	}
	if !res.Route.Valid() {
		return core.RouterResult{}, fmt.Errorf("unknown route %q: %w", res.Route, model.ErrMalformedOutput)
	}
	if !res.Confidence.Valid() {
		return core.RouterResult{}, fmt.Errorf("unknown confidence %q: %w", res.Confidence, model.ErrMalformedOutput)
	}
	return res, nil
}
