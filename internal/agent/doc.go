// Package agent runs the tool-calling loop: a per-request state machine
// that mediates between a chat model and a tool registry, appends to
// conversation memory, and decides when a request is finished.
//
// Invariants:
//   - an assistant message carrying tool calls and the tool messages
//     answering it land in memory together, in call-emission order, after
//     the whole batch completes; an interrupted batch appends nothing.
//   - tool-level failures are contained as error-flagged results the model
//     gets to read; only model, transport, cancellation, and round-cap
//     failures end a request.
//
// Flow:
//
//	user(text) -> assistant(tool_calls) -> tool(result)... -> assistant(text)
package agent
