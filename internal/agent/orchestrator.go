package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seralind/toolloop/chat"
	"github.com/seralind/toolloop/internal/logx"
	"github.com/seralind/toolloop/memory"
	"github.com/seralind/toolloop/stream"
	"github.com/seralind/toolloop/tools"
)

// Orchestrator drives requests for one chat session. Construct with New;
// the zero value is not usable.
//
// One Respond call runs at a time per instance, and the conversation it
// mutates must not be shared with concurrent requests.
type Orchestrator struct {
	client   chat.Client
	registry tools.Registry
	invoker  *tools.Invoker

	maxRounds    int
	modelTimeout time.Duration
	toolTimeout  time.Duration
	tokenBudget  int
	sink         stream.Sink
	hooks        Hooks

	state State
}

// New wires the orchestrator to its model and tool registry. Both are
// explicit dependencies; there are no process-wide defaults.
func New(client chat.Client, registry tools.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:    client,
		registry:  registry,
		maxRounds: DefaultMaxRounds,
		state:     StateAwaitingUserInput,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.invoker = tools.NewInvoker(registry, o.toolTimeout)
	return o
}

// Result is the outcome of one request. On failure it still carries the
// sources and rounds completed before the failure.
type Result struct {
	// Reply is the model's final text. Empty when the request failed.
	Reply string
	// Sources are the successful tool results of this request, in the
	// order their calls were emitted. Error-flagged results are excluded.
	Sources []chat.ToolResult
	// Rounds counts completed tool-execution rounds.
	Rounds int
}

// Respond runs one user request to termination: append the input, call the
// model, execute any tool batches it asks for, and return its final text.
// Failures come back as *RequestError with the partial Result retained.
func (o *Orchestrator) Respond(ctx context.Context, conv *memory.Conversation, input string) (*Result, error) {
	res := &Result{}
	reqID := uuid.NewString()
	defer o.transition(StateAwaitingUserInput)

	o.transition(StatePreparingContext)
	conv.Append(chat.UserMessage(input))

	descs, err := o.registry.List(ctx)
	if err != nil {
		return res, o.fail(reqID, FailureTransport, fmt.Errorf("list tools: %w", err))
	}
	logx.Debug().Str("request_id", reqID).Int("tools", len(descs)).Msg("request started")

	for {
		msgs := conv.Snapshot()
		if o.tokenBudget > 0 {
			var stats memory.Stats
			msgs, stats = memory.Window(msgs, o.tokenBudget, memory.HeuristicCounter{})
			logx.Debug().Str("request_id", reqID).
				Int("budget", stats.Budget).
				Int("estimated", stats.Total).
				Int("included_groups", stats.IncludedGroups).
				Int("skipped_groups", stats.SkippedGroups).
				Msg("window prepared")
		}

		o.transition(StateAwaitingModel)
		resp, err := o.complete(ctx, msgs, descs)
		if err != nil {
			return res, o.fail(reqID, classifyModelError(ctx, err), err)
		}

		switch resp.Kind {
		case chat.KindFinalText:
			if chat.SuspectToolPayload(resp.Text) {
				return res, o.fail(reqID, FailureModelProtocol, errors.New("final text resembles a tool-call payload"))
			}
			conv.Append(chat.AssistantMessage(resp.Text))
			res.Reply = resp.Text
			o.transition(StateTerminated)
			logx.Debug().Str("request_id", reqID).Int("rounds", res.Rounds).Msg("request completed")
			return res, nil

		case chat.KindToolCalls:
			if res.Rounds >= o.maxRounds {
				return res, o.fail(reqID, FailureIterationLimit,
					fmt.Errorf("model requested tools after %d completed rounds", res.Rounds))
			}
			o.transition(StateExecutingTools)
			for _, call := range resp.Calls {
				o.hooks.toolCall(call)
			}
			results, err := o.executeBatch(ctx, resp.Calls)
			if err != nil {
				kind := FailureTransport
				if ctx.Err() != nil {
					kind = FailureCancelled
				}
				return res, o.fail(reqID, kind, err)
			}

			// The assistant turn and its batch land together, so a failed
			// batch leaves no orphaned tool calls in the transcript.
			turn := make([]chat.Message, 0, len(results)+1)
			turn = append(turn, chat.AssistantToolCalls(resp.Text, resp.Calls))
			for _, r := range results {
				turn = append(turn, chat.ToolMessage(r))
			}
			conv.Append(turn...)

			for _, r := range results {
				o.hooks.toolResult(r)
				if !r.IsError {
					res.Sources = append(res.Sources, r)
				}
			}
			res.Rounds++
			logx.Debug().Str("request_id", reqID).
				Int("round", res.Rounds).
				Int("calls", len(resp.Calls)).
				Msg("tool round completed")

		default:
			return res, o.fail(reqID, FailureModelProtocol, fmt.Errorf("unrecognized response kind %v", resp.Kind))
		}
	}
}

// complete issues one model call under the configured timeout, streaming to
// the sink when one is attached.
func (o *Orchestrator) complete(ctx context.Context, msgs []chat.Message, descs []chat.Descriptor) (*chat.Response, error) {
	cctx := ctx
	if o.modelTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, o.modelTimeout)
		defer cancel()
	}
	var opts []chat.CompleteOption
	if o.sink != nil {
		opts = append(opts, chat.WithStreamSink(o.sink))
	}
	return o.client.Complete(cctx, msgs, descs, opts...)
}

// executeBatch fans the calls out and joins before returning. Results come
// back indexed by call position regardless of completion order. A non-nil
// error is infrastructure trouble; per-call failures are already contained
// inside the results.
func (o *Orchestrator) executeBatch(ctx context.Context, calls []chat.ToolCall) ([]chat.ToolResult, error) {
	results := make([]chat.ToolResult, len(calls))
	errs := make([]error, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call chat.ToolCall) {
			defer wg.Done()
			results[i], errs[i] = o.invoker.Invoke(ctx, call)
		}(i, call)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) transition(to State) {
	from := o.state
	if from == to {
		return
	}
	o.state = to
	logx.Debug().Stringer("from", from).Stringer("to", to).Msg("state")
	o.hooks.state(from, to)
}

func (o *Orchestrator) fail(reqID string, kind FailureKind, err error) error {
	o.transition(StateTerminated)
	logx.Warn().Str("request_id", reqID).Stringer("failure", kind).Err(err).Msg("request failed")
	return &RequestError{Kind: kind, Err: err}
}

// classifyModelError separates a dead parent context from a model call that
// ran out of its own budget, then protocol from transport trouble.
func classifyModelError(ctx context.Context, err error) FailureKind {
	if ctx.Err() != nil {
		return FailureCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureModelTimeout
	}
	var perr *chat.ProtocolError
	if errors.As(err, &perr) {
		return FailureModelProtocol
	}
	return FailureTransport
}
