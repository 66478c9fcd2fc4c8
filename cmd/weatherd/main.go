// Command weatherd serves the weather tools over MCP. It speaks stdio by
// default so a client can spawn it as a subprocess, or listens on HTTP for
// the sse and http transports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seralind/toolloop/internal/logx"
	"github.com/seralind/toolloop/internal/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		transport string
		addr      string
		logLevel  string
	)
	cmd := &cobra.Command{
		Use:           "weatherd",
		Short:         "MCP weather server backed by the National Weather Service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logx.Init(logLevel)
			server := weather.NewServer(weather.NewClient())
			return weather.Serve(cmd.Context(), server, transport, addr)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "transport to serve: stdio, sse, or http")
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address for sse and http transports")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}
