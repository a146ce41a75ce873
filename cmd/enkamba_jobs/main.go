package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:           "enkamba_jobs",
		Short:         "Batch jobs for the eNkamba payments core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(contributionsCmd(logger))
	rootCmd.AddCommand(archiveCmd(logger))
	rootCmd.AddCommand(migrateCmd(logger))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
