package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the build output directory",
		RunE:  runClean,
	}
}

func runClean(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := os.RemoveAll(cfg.BuildDir); err != nil {
		return fmt.Errorf("removing %s: %w", cfg.BuildDir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cfg.BuildDir)
	return nil
}
