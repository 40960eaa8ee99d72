package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-voiceform/internal/logging"
	"github.com/goliatone/go-voiceform/internal/mcptools"
)

func newMCPCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Expose the interview tools to a voice agent over MCP stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol; logs must stay on stderr.
			a, err := bootstrap(flags, logging.WithOutput(os.Stderr), logging.WithoutColors())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := mcptools.NewServer(mcptools.NewToolset(a.engine.Registry(), a.logger), version)
			a.logger.Info("serving MCP tools on stdio")
			return mcptools.ServeStdio(ctx, server)
		},
	}
}
