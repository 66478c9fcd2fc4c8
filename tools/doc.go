// Package tools defines tool contracts and implementations.
//
// Includes:
//   - Registry / Handle: lookup and invocation contracts shared by local
//     built-ins and remote sessions.
//   - Invoker: runs one call with a per-call timeout and contains tool
//     failures as error-flagged results.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Built-in tools: get_time.
//
// Invariants:
//   - every result carries the ID of the call that produced it.
//   - only infrastructure failures (context ended, registry transport)
//     escape Invoke as errors; everything else is result content.
package tools
