package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seralind/toolloop/chat"
)

// Invoker executes single tool calls against a registry. It bounds each call
// with its own timeout and converts tool-level failures into error-flagged
// results, so the model gets to read about them instead of the request dying.
type Invoker struct {
	reg     Registry
	timeout time.Duration
}

// NewInvoker wraps reg. timeout bounds each call; <= 0 disables the bound.
func NewInvoker(reg Registry, timeout time.Duration) *Invoker {
	return &Invoker{reg: reg, timeout: timeout}
}

// Invoke runs one call. The returned result always pairs with call.ID.
//
// Contained failures (nil error, IsError result):
//   - unknown tool name
//   - the handle returning an error, including its per-call timeout expiring
//   - the handle reporting a failed Output
//
// A non-nil error means infrastructure trouble: the request context ended,
// or the registry itself failed to resolve.
func (inv *Invoker) Invoke(ctx context.Context, call chat.ToolCall) (chat.ToolResult, error) {
	handle, err := inv.reg.Resolve(ctx, call.Name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return errorResult(call, fmt.Sprintf("Tool %s does not exist", call.Name)), nil
		}
		if ctx.Err() != nil {
			return chat.ToolResult{}, ctx.Err()
		}
		return chat.ToolResult{}, fmt.Errorf("resolve tool %s: %w", call.Name, err)
	}

	cctx := ctx
	if inv.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	out, err := handle.Call(cctx, call.Args)
	if err != nil {
		if ctx.Err() != nil {
			return chat.ToolResult{}, ctx.Err()
		}
		return errorResult(call, fmt.Sprintf("Encountered error in tool call: %v", err)), nil
	}
	if out.Failed {
		return errorResult(call, out.Content), nil
	}
	return chat.ToolResult{CallID: call.ID, Name: call.Name, Content: out.Content}, nil
}

func errorResult(call chat.ToolCall, msg string) chat.ToolResult {
	return chat.ToolResult{CallID: call.ID, Name: call.Name, Content: msg, IsError: true}
}
