// Package repl drives the line-oriented chat session: one line of input is
// one request, "exit"/"quit"/EOF end the session, and request errors are
// printed without leaving the loop.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seralind/toolloop/internal/agent"
	"github.com/seralind/toolloop/internal/logx"
	"github.com/seralind/toolloop/memory"
)

const (
	userPrompt = "[94mYou[0m: "
	replyLabel = "[93mAssistant[0m: "
)

// Responder runs one user request against the session conversation.
// *agent.Orchestrator satisfies it.
type Responder interface {
	Respond(ctx context.Context, conv *memory.Conversation, input string) (*agent.Result, error)
}

// Options configure one session's I/O and persistence. Zero values fall
// back to the standard streams and no persistence.
type Options struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// Store persists the transcript after each completed request; nil
	// disables persistence. SessionID keys the transcript.
	Store     memory.Store
	SessionID string

	// Banner prints once before the first prompt when non-empty.
	Banner string

	// Streaming marks that replies arrive through a sink writing to Out;
	// the final reply is then not printed a second time.
	Streaming bool
}

// Run loops over input lines until exit/quit, EOF, or context cancellation.
// A reader goroutine feeds lines through a channel so a signal interrupts
// the session even while it is blocked on stdin.
func Run(ctx context.Context, r Responder, conv *memory.Conversation, opts Options) error {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}

	if opts.Banner != "" {
		fmt.Fprintln(out, opts.Banner)
	}

	scanner := bufio.NewScanner(in)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, userPrompt)

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok = <-lines:
			if !ok {
				fmt.Fprintln(out)
				return scanner.Err()
			}
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if isExitCommand(input) {
			return nil
		}

		if opts.Streaming {
			fmt.Fprint(out, replyLabel)
		}
		res, err := r.Respond(ctx, conv, input)
		if err != nil {
			if opts.Streaming {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		if opts.Streaming {
			fmt.Fprintln(out)
		} else {
			fmt.Fprintf(out, "%s%s\n", replyLabel, res.Reply)
		}

		if opts.Store != nil {
			if err := opts.Store.Save(ctx, opts.SessionID, conv.Snapshot()); err != nil {
				logx.Warn().Err(err).Str("session_id", opts.SessionID).Msg("save transcript")
				fmt.Fprintf(errOut, "warning: failed to save conversation: %v\n", err)
			}
		}
	}
}

func isExitCommand(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit":
		return true
	}
	return false
}
