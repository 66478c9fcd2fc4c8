package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/seralind/toolloop/chat"
	"github.com/seralind/toolloop/internal/logx"
	"github.com/seralind/toolloop/tools"
)

const (
	clientName    = "toolloop"
	clientVersion = "1.0.0"
)

// Session is a live connection to one MCP server, exposed as a tool
// registry. The tool list is fetched once and cached: the servers this
// client targets advertise a fixed set for the lifetime of the session.
type Session struct {
	session *mcpsdk.ClientSession

	mu    sync.Mutex
	cache []chat.Descriptor
	names map[string]struct{}
}

// Dial parses spec, connects, and performs the MCP handshake.
func Dial(ctx context.Context, spec string) (*Session, error) {
	transport, err := buildTransport(ctx, spec)
	if err != nil {
		return nil, err
	}
	return DialTransport(ctx, transport)
}

// DialTransport connects over an already-built transport.
func DialTransport(ctx context.Context, transport mcpsdk.Transport) (*Session, error) {
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: clientName, Version: clientVersion}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp connect: %w", err)
	}
	return &Session{session: session}, nil
}

// List returns the server's tools as model-facing descriptors.
func (s *Session) List(ctx context.Context) ([]chat.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(ctx)
}

func (s *Session) listLocked(ctx context.Context) ([]chat.Descriptor, error) {
	if s.cache != nil {
		return s.cache, nil
	}
	var descs []chat.Descriptor
	names := make(map[string]struct{})
	for tool, err := range s.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		descs = append(descs, toDescriptor(tool))
		names[tool.Name] = struct{}{}
	}
	s.cache = descs
	s.names = names
	logx.Debug().Int("tools", len(descs)).Msg("fetched MCP tool list")
	return descs, nil
}

// Resolve returns a handle for name if the server advertises it.
func (s *Session) Resolve(ctx context.Context, name string) (tools.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.listLocked(ctx); err != nil {
		return nil, err
	}
	if _, ok := s.names[name]; !ok {
		return nil, fmt.Errorf("%w: %s", tools.ErrNotFound, name)
	}
	return remoteHandle{session: s.session, name: name}, nil
}

// Close shuts down the underlying session.
func (s *Session) Close() error {
	if s == nil || s.session == nil {
		return nil
	}
	return s.session.Close()
}

type remoteHandle struct {
	session *mcpsdk.ClientSession
	name    string
}

func (h remoteHandle) Name() string { return h.name }

// Call forwards one invocation. A server-side IsError result surfaces as a
// failed Output so the invoker contains it instead of failing the request.
func (h remoteHandle) Call(ctx context.Context, args json.RawMessage) (tools.Output, error) {
	params := &mcpsdk.CallToolParams{Name: h.name}
	if len(args) > 0 {
		params.Arguments = args
	}
	res, err := h.session.CallTool(ctx, params)
	if err != nil {
		return tools.Output{}, err
	}
	return tools.Output{Content: textContent(res), Failed: res != nil && res.IsError}, nil
}

func toDescriptor(tool *mcpsdk.Tool) chat.Descriptor {
	if tool == nil {
		return chat.Descriptor{}
	}
	d := chat.Descriptor{Name: tool.Name, Description: tool.Description}
	if tool.InputSchema != nil {
		if b, err := json.Marshal(tool.InputSchema); err == nil {
			d.InputSchema = b
		}
	}
	return d
}

// textContent joins the text blocks of a result; non-text blocks are skipped.
func textContent(res *mcpsdk.CallToolResult) string {
	if res == nil {
		return ""
	}
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
