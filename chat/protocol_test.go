package chat_test

import (
	"testing"

	"github.com/seralind/toolloop/chat"
)

func TestSuspectToolPayload(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "serialized batch",
			text: `{"tool_calls": [{"name": "get_alerts", "arguments": {"state": "NY"}}]}`,
			want: true,
		},
		{
			name: "batch with surrounding whitespace",
			text: "\n  {\"tool_calls\": []}\n",
			want: true,
		},
		{
			name: "plain answer",
			text: "The forecast for tonight is clear.",
			want: false,
		},
		{
			name: "answer mentioning tool calls",
			text: `I used "tool_calls" to look that up for you.`,
			want: false,
		},
		{
			name: "marker embedded in prose",
			text: `Sure, here you go: {"tool_calls": [{"name": "get_time"}]}`,
			want: true,
		},
		{
			name: "json without the field",
			text: `{"answer": 42}`,
			want: false,
		},
		{
			name: "tool_calls holding a non-array",
			text: `{ "tool_calls": "none" }`,
			want: false,
		},
		{
			name: "empty",
			text: "",
			want: false,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := chat.SuspectToolPayload(tc.text); got != tc.want {
				t.Fatalf("SuspectToolPayload(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
