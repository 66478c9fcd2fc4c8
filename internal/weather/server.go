package weather

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/seralind/toolloop/internal/logx"
)

const (
	serverName    = "weather"
	serverVersion = "1.0.0"
)

// AlertsInput selects the state to query.
type AlertsInput struct {
	State string `json:"state" jsonschema:"two-letter US state code, e.g. CA or NY"`
}

// ForecastInput pins the coordinate to forecast.
type ForecastInput struct {
	Latitude  float64 `json:"latitude" jsonschema:"latitude of the location"`
	Longitude float64 `json:"longitude" jsonschema:"longitude of the location"`
}

// NewServer assembles the MCP server with both weather tools registered.
// Input schemas are inferred from the input structs.
func NewServer(client *Client) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_alerts",
		Description: "Get weather alerts for a US state.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input AlertsInput) (*mcp.CallToolResult, any, error) {
		return textResult(client.Alerts(ctx, input.State)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_forecast",
		Description: "Get weather forecast for a location.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input ForecastInput) (*mcp.CallToolResult, any, error) {
		return textResult(client.Forecast(ctx, input.Latitude, input.Longitude)), nil, nil
	})

	return server
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// Serve runs the server over the named transport until ctx ends. addr is
// only used by the HTTP-based transports.
func Serve(ctx context.Context, server *mcp.Server, transport, addr string) error {
	switch transport {
	case "", "stdio":
		logx.Info().Msg("weather server on stdio")
		return server.Run(ctx, &mcp.StdioTransport{})
	case "sse":
		handler := mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return server }, nil)
		return serveHTTP(ctx, addr, handler)
	case "http", "streamable":
		handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
		return serveHTTP(ctx, addr, handler)
	default:
		return fmt.Errorf("unknown transport %q (want stdio, sse, or http)", transport)
	}
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logx.Info().Str("addr", addr).Msg("weather server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
