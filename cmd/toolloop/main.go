// Command toolloop is the chat client: a line-oriented REPL that connects a
// model to a tool server and drives the tool-calling loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seralind/toolloop/chat"
	"github.com/seralind/toolloop/internal/agent"
	"github.com/seralind/toolloop/internal/config"
	"github.com/seralind/toolloop/internal/logx"
	"github.com/seralind/toolloop/internal/mcptools"
	"github.com/seralind/toolloop/internal/provider"
	"github.com/seralind/toolloop/internal/repl"
	"github.com/seralind/toolloop/memory"
	"github.com/seralind/toolloop/stream"
	"github.com/seralind/toolloop/tools"
)

type flags struct {
	verbose bool
	stream  bool
	local   bool
	server  string
	session string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "toolloop",
		Short: "Chat with a model that can call remote tools",
		Long: "toolloop connects a chat model to an MCP tool server and drives\n" +
			"the tool-calling loop from a line-oriented REPL.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "print one line per tool call and result")
	cmd.Flags().BoolVar(&f.stream, "stream", false, "stream the reply as it is generated")
	cmd.Flags().BoolVar(&f.local, "local", false, "use the built-in tools instead of a tool server")
	cmd.Flags().StringVar(&f.server, "server", "", "tool server spec (overrides MCP_SERVER_URL)")
	cmd.Flags().StringVar(&f.session, "session", "", "session id for transcript persistence (overrides SESSION_ID)")
	return cmd
}

func run(cmd *cobra.Command, f flags) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if f.verbose {
		cfg.Verbose = true
	}
	if f.server != "" {
		cfg.ServerURL = f.server
	}
	if f.session != "" {
		cfg.SessionID = f.session
	}
	logx.Init(cfg.LogLevel)

	// The SDK reads the key itself; checking here gives a clear message
	// instead of a failed first request.
	if cfg.Provider == "anthropic" && os.Getenv("ANTHROPIC_API_KEY") == "" {
		return errors.New("missing ANTHROPIC_API_KEY; export it before running")
	}

	client, err := provider.FromConfig(cfg)
	if err != nil {
		return err
	}

	var registry tools.Registry
	if f.local || cfg.ServerURL == "" {
		registry = tools.Builtin()
	} else {
		session, err := mcptools.Dial(ctx, cfg.ServerURL)
		if err != nil {
			return fmt.Errorf("connect tool server: %w", err)
		}
		defer session.Close()
		registry = session
	}

	store, err := openStore(cfg.SessionStore)
	if err != nil {
		return err
	}
	var seed []chat.Message
	if store != nil {
		if seed, err = store.Load(ctx, cfg.SessionID); err != nil {
			return fmt.Errorf("load transcript: %w", err)
		}
	}
	conv := memory.NewConversation(seed...)

	out := cmd.OutOrStdout()
	opts := []agent.Option{
		agent.WithMaxRounds(cfg.MaxToolRounds),
		agent.WithModelTimeout(cfg.RequestTimeout()),
		agent.WithToolTimeout(cfg.ToolTimeout()),
		agent.WithTokenBudget(cfg.ContextTokenBudget),
	}
	if cfg.Verbose {
		opts = append(opts, agent.WithHooks(repl.VerboseHooks(out)))
	}
	if f.stream {
		opts = append(opts, agent.WithStreamSink(stream.NewWriterSink(out)))
	}
	orch := agent.New(client, registry, opts...)

	return repl.Run(ctx, orch, conv, repl.Options{
		In:        cmd.InOrStdin(),
		Out:       out,
		ErrOut:    cmd.ErrOrStderr(),
		Store:     store,
		SessionID: cfg.SessionID,
		Banner:    "Chat session started. Type 'exit' or 'quit' to leave.",
		Streaming: f.stream,
	})
}

// openStore maps the session-store setting onto a transcript store: empty
// disables persistence, redis:// URLs pick Redis, anything else is taken
// as a directory for JSON transcripts.
func openStore(spec string) (memory.Store, error) {
	switch {
	case spec == "":
		return nil, nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		db, err := memory.DialRedis(spec)
		if err != nil {
			return nil, err
		}
		return memory.NewRedisStore(db, 0), nil
	default:
		return memory.NewFileStore(spec), nil
	}
}
