package repl

import (
	"fmt"
	"io"

	"github.com/seralind/toolloop/chat"
	"github.com/seralind/toolloop/internal/agent"
)

// VerboseHooks prints one status line per tool call and one per result,
// in call-emission order.
func VerboseHooks(w io.Writer) agent.Hooks {
	return agent.Hooks{
		OnToolCall: func(call chat.ToolCall) {
			fmt.Fprintf(w, "Calling tool %s with args %s\n", call.Name, string(call.Args))
		},
		OnToolResult: func(res chat.ToolResult) {
			fmt.Fprintf(w, "Tool %s returned %s\n", res.Name, res.Content)
		},
	}
}
