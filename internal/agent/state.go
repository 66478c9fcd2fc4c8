package agent

// State identifies where in the request lifecycle the orchestrator is.
type State int

const (
	// StateAwaitingUserInput is the idle position between requests.
	StateAwaitingUserInput State = iota
	// StatePreparingContext covers appending the user message, fetching
	// tool descriptors, and windowing the transcript.
	StatePreparingContext
	// StateAwaitingModel covers an in-flight model call.
	StateAwaitingModel
	// StateExecutingTools covers an in-flight tool batch.
	StateExecutingTools
	// StateTerminated marks the end of a request, success or failure. The
	// next request starts over from StateAwaitingUserInput.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingUserInput:
		return "awaiting_user_input"
	case StatePreparingContext:
		return "preparing_context"
	case StateAwaitingModel:
		return "awaiting_model"
	case StateExecutingTools:
		return "executing_tools"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
