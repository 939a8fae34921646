package main

import (
	"github.com/spf13/cobra"

	"github.com/harmonybuild/harmony/internal/config"
)

// loadConfig builds a config.Config from the persistent flags actually set
// on cmd, layered over harmony.yaml / HARMONY_* env vars / defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var overrides config.FlagOverrides

	flags := cmd.Flags()
	if flags.Changed("backend") {
		overrides.Backend = &flagBackend
	}
	if flags.Changed("jobs") {
		overrides.Jobs = &flagJobs
	}
	if flags.Changed("build-dir") {
		overrides.BuildDir = &flagBuildDir
	}
	if flags.Changed("verbose") {
		overrides.Verbose = &flagVerbose
	}
	if flags.Changed("manifest") {
		overrides.Manifest = &flagManifest
	}
	if flags.Changed("compiler-cmd") {
		overrides.CompilerCmd = &flagCompilerCmd
	}
	if flags.Changed("linker-cmd") {
		overrides.LinkerCmd = &flagLinkerCmd
	}

	return config.Load(flagConfig, overrides)
}
