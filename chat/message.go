// Package chat defines the provider-neutral conversation types: messages,
// tool calls and results, tool descriptors, and the model client contract.
// Provider adapters in internal/provider translate these to and from their
// wire shapes.
package chat

import "encoding/json"

// Role labels who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// ToolCall is one tool invocation requested by the model. Args stay opaque
// JSON until the executing tool decodes them.
type ToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// ToolResult is the outcome of one tool call. IsError marks failures that
// are reported back to the model as content rather than raised.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Message is one transcript entry.
//
// Assistant messages may carry ToolCalls beside (possibly empty) text. Tool
// messages answer exactly one call and carry its CallID, the tool name, and
// the error flag of the result they record.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	CallID    string     `json:"call_id,omitempty"`
	Name      string     `json:"name,omitempty"`
	IsError   bool       `json:"is_error,omitempty"`
}

// Descriptor advertises one callable tool to the model. InputSchema is a
// JSON Schema object with top-level properties and required fields.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// SystemMessage carries standing instructions. Providers hoist it into
// whatever slot their API reserves for system prompts.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// AssistantToolCalls records an assistant turn that requested tools,
// optionally with preamble text.
func AssistantToolCalls(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolMessage records one tool result in the transcript.
func ToolMessage(res ToolResult) Message {
	return Message{
		Role:    RoleTool,
		Content: res.Content,
		CallID:  res.CallID,
		Name:    res.Name,
		IsError: res.IsError,
	}
}
