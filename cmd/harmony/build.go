package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harmonybuild/harmony/internal/backend"
	backendexec "github.com/harmonybuild/harmony/internal/backend/exec"
	"github.com/harmonybuild/harmony/internal/backend/stub"
	"github.com/harmonybuild/harmony/internal/config"
	"github.com/harmonybuild/harmony/internal/engine"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Scan, resolve, and compile a project's targets",
		RunE:  runBuild,
	}
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	be, err := selectBackend(cfg)
	if err != nil {
		return err
	}

	report, err := engine.Build(context.Background(), be, engine.Options{
		ManifestPath: cfg.Manifest,
		BuildDir:     cfg.BuildDir,
		MaxWorkers:   cfg.Jobs,
	})
	if err != nil {
		return err
	}

	printBuildReport(cmd, report)

	if len(report.Failed) > 0 || len(report.Blocked) > 0 || len(report.LinkFailed) > 0 {
		os.Exit(1)
	}
	return nil
}

func selectBackend(cfg *config.Config) (backend.Backend, error) {
	switch cfg.Backend {
	case "stub":
		return stub.New(cfg.BuildDir), nil
	case "exec", "":
		return backendexec.New(cfg.BuildDir, cfg.CompilerCmd, cfg.LinkerCmd)
	default:
		return nil, fmt.Errorf("unknown backend %q (want \"exec\" or \"stub\")", cfg.Backend)
	}
}

func printBuildReport(cmd *cobra.Command, report *engine.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s tasks total, %s skipped (up to date)\n",
		bold(fmt.Sprint(report.TasksTotal)), bold(fmt.Sprint(report.TasksSkipped)))

	if len(report.Failed) > 0 {
		fmt.Fprintf(out, "%s %d compile failure(s): %v\n", red("FAILED"), len(report.Failed), report.Failed)
	}
	if len(report.Blocked) > 0 {
		fmt.Fprintf(out, "%s blocked after %d failed compilation(s):\n", yellow("BLOCKED"), len(report.Failed))
		for _, b := range report.Blocked {
			fmt.Fprintf(out, "  task[%s] blocked on %v\n", b.Task, b.Blockers)
		}
	}
	if len(report.LinkFailed) > 0 {
		fmt.Fprintf(out, "%s link failed for target(s): %v\n", red("FAILED"), report.LinkFailed)
	}
	if len(report.Failed) == 0 && len(report.Blocked) == 0 && len(report.LinkFailed) == 0 {
		fmt.Fprintln(out, green("build succeeded"))
	}
}
