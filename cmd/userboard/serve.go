package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/userboard/internal/mockapi"
	"github.com/vango-dev/userboard/pkg/api"
)

func serveCmd(rt *cli) *cobra.Command {
	var (
		addr    string
		latency time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the in-memory mock API",
		Long: `Run an in-memory users API seeded with ten users.

With --simulate the API fails at random: connections are dropped,
and some requests are answered with 404 or 422 problem documents.

Examples:
  userboard serve
  userboard serve --addr :9000 --latency 500ms
  userboard serve --simulate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = rt.cfg.Listen
			}

			opts := []mockapi.Option{
				mockapi.WithLogger(rt.app.Logger.With("component", "mockapi")),
				mockapi.WithLatency(latency),
				mockapi.WithTracing(rt.cfg.Tracing),
			}
			if rt.cfg.Simulate {
				sim := api.DefaultSimulationConfig()
				sim.Delay = rt.cfg.SimulateDelay
				opts = append(opts, mockapi.WithSimulation(sim))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  Serving users API on %s (metrics at /metrics)\n", addr)
			return mockapi.New(opts...).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().DurationVar(&latency, "latency", 0, "delay every response")
	return cmd
}
