package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/seralind/toolloop/chat"
	"github.com/seralind/toolloop/internal/provider"
	"github.com/seralind/toolloop/stream"
)

type capture struct {
	method string
	url    string
	body   []byte
}

type fakeTransport struct {
	respStatus  int
	respBody    []byte
	contentType string
	captured    *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.body = b
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
	}
	ct := f.contentType
	if ct == "" {
		ct = "application/json"
	}
	resp.Header.Set("Content-Type", ct)
	return resp, nil
}

func newAnthropic(rt http.RoundTripper) *provider.Anthropic {
	return provider.NewAnthropic("claude-3-7-sonnet-latest", 4096,
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithAPIKey("test-key"),
	)
}

const finalTextBody = `{"role":"assistant","content":[{"type":"text","text":"All clear."}],"stop_reason":"end_turn"}`

func TestAnthropic_RendersTranscript(t *testing.T) {
	capReq := &capture{}
	p := newAnthropic(&fakeTransport{respStatus: 200, respBody: []byte(finalTextBody), captured: capReq})

	msgs := []chat.Message{
		chat.SystemMessage("Answer briefly."),
		chat.UserMessage("Any alerts in NY?"),
		chat.AssistantToolCalls("Checking now.", []chat.ToolCall{
			{ID: "t1", Name: "get_alerts", Args: json.RawMessage(`{"state":"NY"}`)},
			{ID: "t2", Name: "get_time", Args: json.RawMessage(`{}`)},
		}),
		chat.ToolMessage(chat.ToolResult{CallID: "t1", Name: "get_alerts", Content: "No active alerts for this state."}),
		chat.ToolMessage(chat.ToolResult{CallID: "t2", Name: "get_time", Content: "kaput", IsError: true}),
	}
	descs := []chat.Descriptor{{
		Name:        "get_alerts",
		Description: "Get weather alerts for a US state.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"state":{"type":"string"}},"required":["state"],"additionalProperties":false}`),
	}}

	if _, err := p.Complete(context.Background(), msgs, descs); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if capReq.body == nil {
		t.Fatal("no request captured")
	}

	type contentItem struct {
		Type      string          `json:"type"`
		Text      string          `json:"text,omitempty"`
		ID        string          `json:"id,omitempty"`
		Name      string          `json:"name,omitempty"`
		Input     json.RawMessage `json:"input,omitempty"`
		ToolUseID string          `json:"tool_use_id,omitempty"`
		IsError   bool            `json:"is_error,omitempty"`
		Content   []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content,omitempty"`
	}
	var rb struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string        `json:"role"`
			Content []contentItem `json:"content"`
		} `json:"messages"`
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema struct {
				Type       string                     `json:"type"`
				Properties map[string]json.RawMessage `json:"properties"`
				Required   []string                   `json:"required"`
			} `json:"input_schema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(capReq.body, &rb); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(capReq.body))
	}

	if rb.Model != "claude-3-7-sonnet-latest" || rb.MaxTokens != 4096 {
		t.Fatalf("model/max_tokens = %q/%d", rb.Model, rb.MaxTokens)
	}
	if len(rb.System) != 1 || rb.System[0].Text != "Answer briefly." {
		t.Fatalf("system not hoisted: %+v", rb.System)
	}

	if len(rb.Messages) != 3 {
		t.Fatalf("expected 3 rendered messages, got %d: %s", len(rb.Messages), string(capReq.body))
	}
	// user text
	if rb.Messages[0].Role != "user" || rb.Messages[0].Content[0].Text != "Any alerts in NY?" {
		t.Fatalf("unexpected first message: %+v", rb.Messages[0])
	}
	// assistant preamble text + both tool_use blocks, in call order
	asst := rb.Messages[1]
	if asst.Role != "assistant" || len(asst.Content) != 3 {
		t.Fatalf("unexpected assistant message: %+v", asst)
	}
	if asst.Content[0].Type != "text" || asst.Content[0].Text != "Checking now." {
		t.Fatalf("missing preamble text: %+v", asst.Content[0])
	}
	if asst.Content[1].Type != "tool_use" || asst.Content[1].ID != "t1" || asst.Content[1].Name != "get_alerts" {
		t.Fatalf("unexpected first tool_use: %+v", asst.Content[1])
	}
	if string(asst.Content[1].Input) != `{"state":"NY"}` {
		t.Fatalf("tool_use input not passed through raw: %s", asst.Content[1].Input)
	}
	if asst.Content[2].Type != "tool_use" || asst.Content[2].ID != "t2" {
		t.Fatalf("unexpected second tool_use: %+v", asst.Content[2])
	}
	// one user message carrying both tool_results, in result order
	results := rb.Messages[2]
	if results.Role != "user" || len(results.Content) != 2 {
		t.Fatalf("tool results not batched into one user message: %+v", results)
	}
	if results.Content[0].Type != "tool_result" || results.Content[0].ToolUseID != "t1" || results.Content[0].IsError {
		t.Fatalf("unexpected first tool_result: %+v", results.Content[0])
	}
	if results.Content[0].Content[0].Text != "No active alerts for this state." {
		t.Fatalf("unexpected first tool_result text: %+v", results.Content[0].Content)
	}
	if results.Content[1].ToolUseID != "t2" || !results.Content[1].IsError {
		t.Fatalf("error flag lost on second tool_result: %+v", results.Content[1])
	}

	// tool declaration with lifted properties and required
	if len(rb.Tools) != 1 || rb.Tools[0].Name != "get_alerts" {
		t.Fatalf("unexpected tools: %+v", rb.Tools)
	}
	schema := rb.Tools[0].InputSchema
	if schema.Type != "object" {
		t.Fatalf("input_schema type = %q", schema.Type)
	}
	if _, ok := schema.Properties["state"]; !ok {
		t.Fatalf("input_schema lost properties: %+v", schema.Properties)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "state" {
		t.Fatalf("input_schema lost required: %+v", schema.Required)
	}
}

func TestAnthropic_ParsesFinalText(t *testing.T) {
	body := `{"role":"assistant","content":[{"type":"text","text":"First."},{"type":"text","text":"Second."}],"stop_reason":"end_turn"}`
	p := newAnthropic(&fakeTransport{respStatus: 200, respBody: []byte(body)})

	resp, err := p.Complete(context.Background(), []chat.Message{chat.UserMessage("hi")}, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Kind != chat.KindFinalText {
		t.Fatalf("kind = %v, want final text", resp.Kind)
	}
	if resp.Text != "First.\nSecond." {
		t.Fatalf("text = %q", resp.Text)
	}
}

func TestAnthropic_ParsesToolCalls(t *testing.T) {
	body := `{
		"role": "assistant",
		"content": [
			{"type": "text", "text": "Let me check."},
			{"type": "tool_use", "id": "t1", "name": "get_forecast", "input": {"latitude": 40.7, "longitude": -74.0}},
			{"type": "tool_use", "id": "t2", "name": "get_alerts", "input": {"state": "NY"}}
		],
		"stop_reason": "tool_use"
	}`
	p := newAnthropic(&fakeTransport{respStatus: 200, respBody: []byte(body)})

	resp, err := p.Complete(context.Background(), []chat.Message{chat.UserMessage("weather?")}, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Kind != chat.KindToolCalls {
		t.Fatalf("kind = %v, want tool calls", resp.Kind)
	}
	if resp.Text != "Let me check." {
		t.Fatalf("preamble = %q", resp.Text)
	}
	if len(resp.Calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(resp.Calls))
	}
	if resp.Calls[0].ID != "t1" || resp.Calls[0].Name != "get_forecast" {
		t.Fatalf("first call = %+v", resp.Calls[0])
	}
	var args struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.Unmarshal(resp.Calls[0].Args, &args); err != nil {
		t.Fatalf("args not raw JSON: %v", err)
	}
	if args.Latitude != 40.7 || args.Longitude != -74.0 {
		t.Fatalf("args = %+v", args)
	}
	if resp.Calls[1].ID != "t2" || resp.Calls[1].Name != "get_alerts" {
		t.Fatalf("second call = %+v", resp.Calls[1])
	}
}

func TestAnthropic_ProtocolErrorOnEmptyToolUse(t *testing.T) {
	body := `{"role":"assistant","content":[],"stop_reason":"tool_use"}`
	p := newAnthropic(&fakeTransport{respStatus: 200, respBody: []byte(body)})

	_, err := p.Complete(context.Background(), []chat.Message{chat.UserMessage("hi")}, nil)
	var perr *chat.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want ProtocolError", err)
	}
}

func TestAnthropic_TransportError(t *testing.T) {
	body := `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`
	p := newAnthropic(&fakeTransport{respStatus: 529, respBody: []byte(body)})

	_, err := p.Complete(context.Background(), []chat.Message{chat.UserMessage("hi")}, nil)
	if err == nil {
		t.Fatal("expected error for failing API call")
	}
	var perr *chat.ProtocolError
	if errors.As(err, &perr) {
		t.Fatalf("transport failure misclassified as protocol error: %v", err)
	}
}

func TestAnthropic_StreamsTextDeltas(t *testing.T) {
	sse := strings.Join([]string{
		`event: message_start`,
		`data: {"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-7-sonnet-latest","content":[],"stop_reason":null,"usage":{"input_tokens":3,"output_tokens":1}}}`,
		``,
		`event: content_block_start`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" world"}}`,
		``,
		`event: content_block_stop`,
		`data: {"type":"content_block_stop","index":0}`,
		``,
		`event: message_delta`,
		`data: {"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":2}}`,
		``,
		`event: message_stop`,
		`data: {"type":"message_stop"}`,
		``,
		``,
	}, "\n")
	p := newAnthropic(&fakeTransport{respStatus: 200, respBody: []byte(sse), contentType: "text/event-stream"})

	var deltas []string
	sink := stream.SinkFunc(func(delta string) { deltas = append(deltas, delta) })

	resp, err := p.Complete(context.Background(), []chat.Message{chat.UserMessage("hi")}, nil, chat.WithStreamSink(sink))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Kind != chat.KindFinalText || resp.Text != "Hello world" {
		t.Fatalf("resp = %+v", resp)
	}
	want := []string{"Hello", " world"}
	if len(deltas) != len(want) {
		t.Fatalf("deltas = %q, want %q", deltas, want)
	}
	for i := range want {
		if deltas[i] != want[i] {
			t.Fatalf("deltas[%d] = %q, want %q", i, deltas[i], want[i])
		}
	}
}
