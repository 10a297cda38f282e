package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-incomeform/pkg/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr     string
		renderer string
		grace    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form as a web page",
		Long: `Serves the income form over HTTP. Submitting the form posts the record to the
prediction endpoint once and shows the outcome under the form. The JSON API at
/api/predict accepts the same fields as a JSON object.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			if cmd.Flags().Changed("renderer") {
				a.cfg.Renderer = renderer
			}

			orch, err := a.orchestrator()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(orch,
				server.WithAddr(a.cfg.Addr),
				server.WithRenderer(a.cfg.Renderer),
				server.WithShutdownGrace(grace),
				server.WithLogger(a.logger),
			)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+server.DefaultAddr+")")
	cmd.Flags().StringVar(&renderer, "renderer", "", "renderer for the page (default vanilla)")
	cmd.Flags().DurationVar(&grace, "grace", 5*time.Second, "shutdown grace period")
	return cmd
}

// commandContext returns the command context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
