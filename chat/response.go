package chat

// ResponseKind tags the two shapes a model turn can take.
type ResponseKind int

const (
	// KindFinalText is a terminal answer for the user.
	KindFinalText ResponseKind = iota
	// KindToolCalls is a request to execute tools before answering.
	KindToolCalls
)

func (k ResponseKind) String() string {
	switch k {
	case KindFinalText:
		return "final_text"
	case KindToolCalls:
		return "tool_calls"
	default:
		return "unknown"
	}
}

// Response is the parsed outcome of one model call: either a final text
// answer or a batch of tool calls. Calls is non-empty exactly when Kind is
// KindToolCalls; Text may accompany either kind.
type Response struct {
	Kind  ResponseKind
	Text  string
	Calls []ToolCall
}

func NewFinalText(text string) *Response {
	return &Response{Kind: KindFinalText, Text: text}
}

// NewToolCalls builds a tool-call response; an empty batch degenerates to
// final text so the Kind/Calls invariant cannot be violated.
func NewToolCalls(text string, calls []ToolCall) *Response {
	if len(calls) == 0 {
		return NewFinalText(text)
	}
	return &Response{Kind: KindToolCalls, Text: text, Calls: calls}
}
