package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dosage",
		Short: "Search for a three-drug dosage that balances effectiveness against side effects",
		Long: `dosage runs a genetic algorithm over (dose A, dose B, dose C) in milligrams,
maximizing effectiveness minus side effects. Runs are reproducible for a seed.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("db", "dosage.db", `run history database ("memory" to disable persistence)`)

	root.AddCommand(newRunCmd(), newServeCmd(), newRunsCmd())
	return root
}
