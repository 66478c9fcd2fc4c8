// Package weather implements the demo tool server: two tools backed by the
// National Weather Service API, served over MCP.
//
// Includes:
//   - Client: NWS HTTP client with gjson payload extraction.
//   - get_alerts / get_forecast formatting with stable fallback texts.
//   - Server assembly over stdio, SSE, or streamable HTTP transports.
//
// Fetch and shape failures never error tool calls; the tools answer with
// fixed fallback sentences the model can relay.
package weather
