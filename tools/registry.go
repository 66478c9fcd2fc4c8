package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/seralind/toolloop/chat"
)

// ErrNotFound reports a tool name the registry cannot resolve.
var ErrNotFound = errors.New("tool not found")

// Output is what a tool hands back. Failed marks a domain failure the model
// should read about; infrastructure failures are returned as errors instead.
type Output struct {
	Content string
	Failed  bool
}

// Handle is one resolved tool, ready to call.
type Handle interface {
	Name() string
	Call(ctx context.Context, args json.RawMessage) (Output, error)
}

// Registry advertises tools to the model and resolves call names to handles.
type Registry interface {
	// List returns descriptors for every advertised tool, in a stable order.
	List(ctx context.Context) ([]chat.Descriptor, error)
	// Resolve returns the handle for name. Unknown names yield an error
	// wrapping ErrNotFound.
	Resolve(ctx context.Context, name string) (Handle, error)
}
