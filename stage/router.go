package stage

import (
	"errors"
	"fmt"

	"github.com/sherlocklabs/sherlock/core"
	"github.com/sherlocklabs/sherlock/model"
)

// RouterOptions tune the retry bound for malformed router output.
type RouterOptions struct {
	// MaxAttempts bounds calls to the intent router when it returns
	// output that fails to parse. Transport errors are never retried.
	MaxAttempts int
}

// Router classifies the query into a route using the conversation history,
// and closes the IsQueryValid gate for off-topic queries.
type Router struct {
	router model.IntentRouter
	opts   RouterOptions
}

var _ core.Stage = (*Router)(nil)

// NewRouter creates the routing stage with the default 3 attempts.
func NewRouter(router model.IntentRouter, optFns ...func(o *RouterOptions)) *Router {
	opts := RouterOptions{MaxAttempts: 3}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Router{router: router, opts: opts}
}

// Name implements core.Stage.
func (r *Router) Name() core.StageName { return core.StageRouter }

// Run implements core.Stage.
func (r *Router) Run(rc *core.RunContext, state *core.State) error {
	history := core.SerializeHistory(state.Messages)

	var (
		result core.RouterResult
		err    error
	)
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		result, err = r.route(rc, history, state.UserQuery.Content)
		if err == nil {
			break
		}
		if !errors.Is(err, model.ErrMalformedOutput) {
			return fmt.Errorf("intent routing: %w", err)
		}
		rc.LogWarn("router output malformed, retrying", "attempt", attempt, "error", err)
	}
	if err != nil {
		return fmt.Errorf("intent routing failed after %d attempts: %w", r.opts.MaxAttempts, err)
	}

	if err := state.SetRouterResult(result); err != nil {
		return err
	}
	state.IsQueryValid = result.Route != core.RouteOffTopic
	if !state.IsQueryValid {
		rc.LogInfo("query rejected as off-topic", "confidence", result.Confidence)
	}
	return nil
}

func (r *Router) route(rc *core.RunContext, history, query string) (core.RouterResult, error) {
	ctx, cancel := rc.CallContext()
	defer cancel()
	return r.router.Route(ctx, history, query)
}
