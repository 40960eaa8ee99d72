package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-voiceform/internal/httpserver"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interview sessions over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(flags)
			if err != nil {
				return err
			}
			if port != "" {
				a.cfg.Port = port
			}

			srv, err := httpserver.NewServer(
				httpserver.WithLogger(a.logger),
				httpserver.WithRegistry(a.engine.Registry()),
				httpserver.WithGatherer(a.gatherer),
				httpserver.WithRateLimit(a.cfg.RateLimit, a.cfg.RateBurst),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.WithField("addr", a.cfg.Addr()).Info("starting voiceform server")
			return srv.Run(ctx, a.cfg.Addr())
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides APP_PORT)")
	return cmd
}
