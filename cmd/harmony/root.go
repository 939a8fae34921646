package main

import (
	"github.com/spf13/cobra"

	"github.com/harmonybuild/harmony/internal/logging"
)

var (
	flagBackend     string
	flagJobs        int64
	flagBuildDir    string
	flagVerbose     bool
	flagManifest    string
	flagConfig      string
	flagCompilerCmd string
	flagLinkerCmd   string
)

var rootCmd = &cobra.Command{
	Use:   "harmony",
	Short: "A build driver for C++20 named-module projects",
	Long: `harmony scans C++20 module/import statements, resolves them into a
dependency graph, skips up-to-date work, and compiles what remains
concurrently against a pluggable backend.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Verbose may also come from HARMONY_VERBOSE or harmony.yaml; fall
		// back to the flag alone if the configuration cannot be loaded
		// (the subcommand reports that error itself).
		if cfg, err := loadConfig(cmd); err == nil {
			logging.Setup(cfg.Verbose)
		} else {
			logging.Setup(flagVerbose)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "backend to use: exec or stub (default: exec)")
	rootCmd.PersistentFlags().Int64Var(&flagJobs, "jobs", 0, "max concurrent compiles (0 = unbounded, default: unbounded)")
	rootCmd.PersistentFlags().StringVar(&flagBuildDir, "build-dir", "", "build output directory (default: build)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&flagManifest, "manifest", "m", "", "path to the target manifest (default: harmony.json)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to harmony.yaml (default: searched in the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagCompilerCmd, "compiler-cmd", "", "compiler binary for the exec backend (default: clang-cl)")
	rootCmd.PersistentFlags().StringVar(&flagLinkerCmd, "linker-cmd", "", "linker binary for the exec backend (default: lld-link)")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newCleanCmd())
}
