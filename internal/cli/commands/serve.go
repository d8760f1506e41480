package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/storesight-labs/storesight/internal/loader"
	"github.com/storesight-labs/storesight/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyses as a JSON HTTP API",
		Long: `Load the dataset once, hold it in memory, and expose every analysis as
a JSON endpoint under /api. The server shuts down cleanly on SIGINT or
SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutStore(cmd)
			cfg := cmdCtx.Cfg

			ds, err := loader.Load(cfg.DataDir, cmdCtx.Logger)
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}

			evalDate, err := cfg.EvalTime()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("port") {
				port = cfg.Port
			}

			srv := ui.NewServer(ui.Config{
				Dataset:           ds,
				Port:              port,
				EvalDate:          evalDate,
				LowStockThreshold: cfg.LowStockThreshold,
				Seed:              cfg.Seed,
				Trees:             cfg.Trees,
				Logger:            cmdCtx.Logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Serve(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to serve on")

	return cmd
}
