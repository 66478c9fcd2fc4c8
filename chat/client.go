package chat

import (
	"context"

	"github.com/seralind/toolloop/stream"
)

// CompleteOptions carries per-call options for Client.Complete.
type CompleteOptions struct {
	// Sink receives text deltas as the model emits them. Nil disables
	// streaming; the response text is then delivered whole.
	Sink stream.Sink
}

type CompleteOption func(*CompleteOptions)

// WithStreamSink streams text deltas to s during the call.
func WithStreamSink(s stream.Sink) CompleteOption {
	return func(o *CompleteOptions) { o.Sink = s }
}

// Client is a chat-completion model. Complete sends the transcript and the
// available tools and returns the parsed response. Errors are transport or
// protocol level; tool-call responses are not errors.
type Client interface {
	Complete(ctx context.Context, msgs []Message, tools []Descriptor, opts ...CompleteOption) (*Response, error)
}
