package chat

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ProtocolError reports a model response that could not be mapped onto
// Response. It is fatal for the request that triggered it.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "model protocol error: " + e.Reason
}

// SuspectToolPayload reports whether final text looks like a serialized
// tool-call payload that should have arrived as structured calls. Such a
// reply is malformed model output; callers reject it rather than parse it.
//
// Two independent tells: the text embeds the literal `{"tool_calls"` marker,
// or the whole text parses as a JSON object carrying a tool_calls array.
func SuspectToolPayload(text string) bool {
	if strings.Contains(text, `{"tool_calls"`) {
		return true
	}
	trimmed := strings.TrimSpace(text)
	if !gjson.Valid(trimmed) {
		return false
	}
	return gjson.Get(trimmed, "tool_calls").IsArray()
}
