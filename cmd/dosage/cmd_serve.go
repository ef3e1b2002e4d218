package main

import (
	"context"

	"github.com/snow-ghost/dosage/worker"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve optimization runs over HTTP",
		Long: `Starts the HTTP service. Settings come from the environment
(DOSAGE_PORT, DOSAGE_DB, DOSAGE_WORKERS, RATE_LIMIT_PER_MINUTE, JAEGER_ENDPOINT, ...);
flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := worker.LoadConfig()
			if port != "" {
				cfg.Port = port
			}
			if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
				cfg.DBPath = f.Value.String()
			}
			if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
				cfg.LogLevel = f.Value.String()
			}

			svc, err := worker.NewService(cfg)
			if err != nil {
				return err
			}
			defer svc.Close(context.Background())

			return svc.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default $DOSAGE_PORT or 8080)")
	return cmd
}
