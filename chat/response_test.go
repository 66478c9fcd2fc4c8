package chat_test

import (
	"encoding/json"
	"testing"

	"github.com/seralind/toolloop/chat"
)

func TestNewFinalText(t *testing.T) {
	resp := chat.NewFinalText("All done.")
	if resp.Kind != chat.KindFinalText {
		t.Fatalf("kind = %v, want final_text", resp.Kind)
	}
	if len(resp.Calls) != 0 {
		t.Fatalf("final text carries %d calls", len(resp.Calls))
	}
}

func TestNewToolCalls(t *testing.T) {
	calls := []chat.ToolCall{{ID: "c1", Name: "get_time", Args: json.RawMessage(`{}`)}}
	resp := chat.NewToolCalls("let me check", calls)
	if resp.Kind != chat.KindToolCalls {
		t.Fatalf("kind = %v, want tool_calls", resp.Kind)
	}
	if resp.Text != "let me check" {
		t.Fatalf("text = %q", resp.Text)
	}
	if len(resp.Calls) != 1 || resp.Calls[0].Name != "get_time" {
		t.Fatalf("calls = %+v", resp.Calls)
	}
}

func TestNewToolCallsEmptyBatchIsFinalText(t *testing.T) {
	resp := chat.NewToolCalls("nothing to run", nil)
	if resp.Kind != chat.KindFinalText {
		t.Fatalf("kind = %v, want final_text", resp.Kind)
	}
}

func TestToolMessageCarriesResult(t *testing.T) {
	msg := chat.ToolMessage(chat.ToolResult{
		CallID:  "c7",
		Name:    "get_alerts",
		Content: "No active alerts for this state.",
		IsError: false,
	})
	if msg.Role != chat.RoleTool || msg.CallID != "c7" || msg.Name != "get_alerts" {
		t.Fatalf("msg = %+v", msg)
	}
}
