// Package memory holds conversation state for a chat session.
//
// Layers:
//   - Conversation: in-RAM, append-only message log with snapshot reads.
//   - Store: optional transcript persistence (JSON file or Redis).
//   - Window: whole-group token-budget windowing over a snapshot.
//
// A Conversation is owned by one request loop at a time and is not safe
// for concurrent use.
package memory
