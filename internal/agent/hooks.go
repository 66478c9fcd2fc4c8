package agent

import "github.com/seralind/toolloop/chat"

// Hooks observe a request as it runs. Every field is optional. Hooks fire
// on the request goroutine, so call and result notifications arrive in
// call-emission order even when the batch itself ran concurrently. A hook
// must not call back into the orchestrator.
type Hooks struct {
	// OnState fires on every state transition.
	OnState func(from, to State)
	// OnToolCall fires once per tool call, before the batch executes.
	OnToolCall func(call chat.ToolCall)
	// OnToolResult fires once per result after its whole batch completed,
	// in the order the calls were emitted.
	OnToolResult func(res chat.ToolResult)
}

func (h Hooks) state(from, to State) {
	if h.OnState != nil {
		h.OnState(from, to)
	}
}

func (h Hooks) toolCall(call chat.ToolCall) {
	if h.OnToolCall != nil {
		h.OnToolCall(call)
	}
}

func (h Hooks) toolResult(res chat.ToolResult) {
	if h.OnToolResult != nil {
		h.OnToolResult(res)
	}
}
