package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/seralind/toolloop/chat"
	"github.com/seralind/toolloop/stream"
)

// Anthropic adapts the Anthropic Messages API to the chat.Client contract.
type Anthropic struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic builds the adapter. The API key comes from the environment
// (ANTHROPIC_API_KEY); extra request options are applied on top, which is
// how tests inject their transport.
func NewAnthropic(model string, maxTokens int, opts ...option.RequestOption) *Anthropic {
	c := anthropic.NewClient(opts...)
	return &Anthropic{client: &c, model: anthropic.Model(model), maxTokens: int64(maxTokens)}
}

func (p *Anthropic) Complete(ctx context.Context, msgs []chat.Message, tools []chat.Descriptor, opts ...chat.CompleteOption) (*chat.Response, error) {
	var options chat.CompleteOptions
	for _, opt := range opts {
		opt(&options)
	}

	system, messages := messageParams(msgs)
	toolUnions, err := toolParams(tools)
	if err != nil {
		return nil, err
	}
	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  messages,
		System:    system,
		Tools:     toolUnions,
	}

	if options.Sink != nil {
		return p.streamMessage(ctx, params, options.Sink)
	}
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseMessage(msg)
}

func (p *Anthropic) streamMessage(ctx context.Context, params anthropic.MessageNewParams, sink stream.Sink) (*chat.Response, error) {
	s := p.client.Messages.NewStreaming(ctx, params)
	message := anthropic.Message{}
	for s.Next() {
		event := s.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, &chat.ProtocolError{Reason: fmt.Sprintf("accumulate stream event: %v", err)}
		}
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				sink.Push(deltaVariant.Text)
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return parseMessage(&message)
}

// messageParams renders the neutral transcript into Messages API params.
// System messages are hoisted into the dedicated system slot, and each run
// of tool results becomes a single user message of tool_result blocks, in
// result order.
func messageParams(msgs []chat.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var out []anthropic.MessageParam
	for i := 0; i < len(msgs); i++ {
		m := msgs[i]
		switch m.Role {
		case chat.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case chat.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case chat.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, call := range m.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						Type:  "tool_use",
						ID:    call.ID,
						Name:  call.Name,
						Input: call.Args,
					},
				})
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case chat.RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for ; i < len(msgs) && msgs[i].Role == chat.RoleTool; i++ {
				r := msgs[i]
				blocks = append(blocks, anthropic.NewToolResultBlock(r.CallID, r.Content, r.IsError))
			}
			i--
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return system, out
}

func toolParams(descs []chat.Descriptor) ([]anthropic.ToolUnionParam, error) {
	if len(descs) == 0 {
		return nil, nil
	}
	out := make([]anthropic.ToolUnionParam, 0, len(descs))
	for _, d := range descs {
		schema, err := inputSchema(d.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", d.Name, err)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: schema,
		}})
	}
	return out, nil
}

// inputSchema lifts the top-level properties and required list out of a raw
// JSON Schema document, which is all the Messages API wants.
func inputSchema(raw json.RawMessage) (anthropic.ToolInputSchemaParam, error) {
	if len(raw) == 0 {
		return anthropic.ToolInputSchemaParam{}, nil
	}
	var doc struct {
		Properties json.RawMessage `json:"properties"`
		Required   []string        `json:"required"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return anthropic.ToolInputSchemaParam{}, fmt.Errorf("parse input schema: %w", err)
	}
	schema := anthropic.ToolInputSchemaParam{Required: doc.Required}
	if len(doc.Properties) > 0 {
		schema.Properties = doc.Properties
	}
	return schema, nil
}

// parseMessage maps a completed API message onto a Response. Text blocks
// join with newlines; unknown block kinds are skipped.
func parseMessage(msg *anthropic.Message) (*chat.Response, error) {
	var texts []string
	var calls []chat.ToolCall
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			texts = append(texts, v.Text)
		case anthropic.ToolUseBlock:
			calls = append(calls, chat.ToolCall{
				ID:   v.ID,
				Name: v.Name,
				Args: json.RawMessage(v.JSON.Input.Raw()),
			})
		}
	}
	text := strings.Join(texts, "\n")
	if len(calls) > 0 {
		return chat.NewToolCalls(text, calls), nil
	}
	if msg.StopReason == anthropic.StopReasonToolUse {
		return nil, &chat.ProtocolError{Reason: "stop_reason tool_use carried no tool_use blocks"}
	}
	return chat.NewFinalText(text), nil
}
