package agent

import (
	"time"

	"github.com/seralind/toolloop/stream"
)

// DefaultMaxRounds caps tool-execution rounds per request when WithMaxRounds
// is not given.
const DefaultMaxRounds = 10

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithMaxRounds caps tool-execution rounds per request. Non-positive values
// keep the default.
func WithMaxRounds(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxRounds = n
		}
	}
}

// WithModelTimeout bounds each model call. <= 0 leaves model calls bounded
// only by the request context.
func WithModelTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.modelTimeout = d }
}

// WithToolTimeout bounds each tool call; expiry is contained as a failed
// result, not a request failure. <= 0 disables the bound.
func WithToolTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.toolTimeout = d }
}

// WithStreamSink forwards model text deltas to s as they arrive.
func WithStreamSink(s stream.Sink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithHooks attaches request observers.
func WithHooks(h Hooks) Option {
	return func(o *Orchestrator) { o.hooks = h }
}

// WithTokenBudget windows the transcript sent to the model to an estimated
// token budget. <= 0 sends the whole transcript.
func WithTokenBudget(n int) Option {
	return func(o *Orchestrator) { o.tokenBudget = n }
}
