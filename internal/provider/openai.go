package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/seralind/toolloop/chat"
	"github.com/seralind/toolloop/stream"
)

// OpenAI adapts the OpenAI chat-completions API, including compatible
// gateways (Ollama, LiteLLM) reached through a base URL override.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAI builds the adapter. baseURL overrides the default endpoint when
// non-empty; apiKey may be empty for local gateways that skip auth.
func NewOpenAI(apiKey, baseURL, model string, maxTokens int) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model, maxTokens: maxTokens}
}

func (p *OpenAI) Complete(ctx context.Context, msgs []chat.Message, tools []chat.Descriptor, opts ...chat.CompleteOption) (*chat.Response, error) {
	var options chat.CompleteOptions
	for _, opt := range opts {
		opt(&options)
	}

	req := openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  chatMessages(msgs),
		Tools:     chatTools(tools),
	}

	if options.Sink != nil {
		return p.streamCompletion(ctx, req, options.Sink)
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, &chat.ProtocolError{Reason: "response carried no choices"}
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonToolCalls && len(choice.Message.ToolCalls) == 0 {
		return nil, &chat.ProtocolError{Reason: "finish_reason tool_calls carried no tool calls"}
	}
	return parseChoice(choice.Message), nil
}

func (p *OpenAI) streamCompletion(ctx context.Context, req openai.ChatCompletionRequest, sink stream.Sink) (*chat.Response, error) {
	s, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var text strings.Builder
	var pending []*pendingToolCall
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			text.WriteString(delta.Content)
			sink.Push(delta.Content)
		}
		pending = accumulateToolCalls(pending, delta.ToolCalls)
	}

	calls := finishToolCalls(pending)
	if len(calls) > 0 {
		return chat.NewToolCalls(text.String(), calls), nil
	}
	return chat.NewFinalText(text.String()), nil
}

// pendingToolCall collects one tool call from indexed stream fragments. The
// ID and name arrive on the first fragment; argument JSON dribbles in across
// the rest.
type pendingToolCall struct {
	id   string
	name string
	args strings.Builder
}

func accumulateToolCalls(pending []*pendingToolCall, frags []openai.ToolCall) []*pendingToolCall {
	for _, frag := range frags {
		idx := len(pending) - 1
		if frag.Index != nil {
			idx = *frag.Index
		}
		if idx < 0 {
			idx = 0
		}
		for len(pending) <= idx {
			pending = append(pending, &pendingToolCall{})
		}
		pc := pending[idx]
		if frag.ID != "" {
			pc.id = frag.ID
		}
		if frag.Function.Name != "" {
			pc.name = frag.Function.Name
		}
		pc.args.WriteString(frag.Function.Arguments)
	}
	return pending
}

func finishToolCalls(pending []*pendingToolCall) []chat.ToolCall {
	if len(pending) == 0 {
		return nil
	}
	calls := make([]chat.ToolCall, 0, len(pending))
	for i, pc := range pending {
		calls = append(calls, chat.ToolCall{
			ID:   fallbackCallID(pc.id, i),
			Name: pc.name,
			Args: json.RawMessage(pc.args.String()),
		})
	}
	return calls
}

// chatMessages renders the neutral transcript into chat-completions form.
// Tool messages stay one-per-result, keyed by tool_call_id.
func chatMessages(msgs []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case chat.RoleSystem:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: m.Content})
		case chat.RoleUser:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content})
		case chat.RoleAssistant:
			cm := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content}
			for _, call := range m.ToolCalls {
				cm.ToolCalls = append(cm.ToolCalls, openai.ToolCall{
					ID:       call.ID,
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: call.Name, Arguments: string(call.Args)},
				})
			}
			out = append(out, cm)
		case chat.RoleTool:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    m.Content,
				Name:       m.Name,
				ToolCallID: m.CallID,
			})
		}
	}
	return out
}

func chatTools(descs []chat.Descriptor) []openai.Tool {
	if len(descs) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(descs))
	for _, d := range descs {
		fn := &openai.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
		}
		if len(d.InputSchema) > 0 {
			fn.Parameters = d.InputSchema
		}
		out = append(out, openai.Tool{Type: openai.ToolTypeFunction, Function: fn})
	}
	return out
}

func parseChoice(msg openai.ChatCompletionMessage) *chat.Response {
	if len(msg.ToolCalls) == 0 {
		return chat.NewFinalText(msg.Content)
	}
	calls := make([]chat.ToolCall, 0, len(msg.ToolCalls))
	for i, tc := range msg.ToolCalls {
		calls = append(calls, chat.ToolCall{
			ID:   fallbackCallID(tc.ID, i),
			Name: tc.Function.Name,
			Args: json.RawMessage(tc.Function.Arguments),
		})
	}
	return chat.NewToolCalls(msg.Content, calls)
}

// fallbackCallID keeps call/result pairing intact when a gateway omits IDs.
func fallbackCallID(id string, i int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("call_%d", i)
}
