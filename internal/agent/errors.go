package agent

import "fmt"

// FailureKind classifies request-fatal errors. Contained tool failures
// never appear here; those travel back to the model as error-flagged
// results.
type FailureKind int

const (
	// FailureModelProtocol marks a model response that could not be used:
	// an undecodable payload, a tool-call stop with no calls, or final text
	// resembling a serialized tool-call payload.
	FailureModelProtocol FailureKind = iota
	// FailureModelTimeout marks a model call that ran out of its budget
	// while the rest of the request was still live.
	FailureModelTimeout
	// FailureIterationLimit marks a model that requested more tools after
	// the round cap was reached.
	FailureIterationLimit
	// FailureTransport marks connection-level trouble with the model or
	// the tool session.
	FailureTransport
	// FailureCancelled marks a parent-context cancellation mid-request.
	FailureCancelled
)

func (k FailureKind) String() string {
	switch k {
	case FailureModelProtocol:
		return "model_protocol"
	case FailureModelTimeout:
		return "model_timeout"
	case FailureIterationLimit:
		return "iteration_limit"
	case FailureTransport:
		return "transport"
	case FailureCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RequestError ends one request. The session survives it: the caller
// reports the error and goes back to awaiting input.
type RequestError struct {
	Kind FailureKind
	Err  error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
