// Package mcptools connects the loop to remote MCP tool servers.
//
// A transport spec selects how the server is reached:
//   - "stdio://<command args>" or a bare command line: spawn a subprocess
//   - "sse://host/path", "http+sse://...", or a plain http(s) URL: SSE
//   - "http+stream://", "http+streamable://", "http+json://": streamable HTTP
//
// Session implements the tools.Registry contract over the connection, so the
// orchestrator cannot tell remote tools from local ones.
package mcptools
