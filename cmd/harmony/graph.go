package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harmonybuild/harmony/internal/manifest"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the flattened target import graph",
		RunE:  runGraph,
	}
}

func runGraph(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	targets, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return err
	}
	if err := manifest.FlattenImports(targets); err != nil {
		return err
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })

	out := cmd.OutOrStdout()
	for _, t := range targets {
		fmt.Fprintf(out, "%s\n", t.Name)
		for _, dep := range t.FlattenedNames() {
			fmt.Fprintf(out, "  -> %s\n", dep)
		}
	}
	return nil
}
