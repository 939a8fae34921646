// Package config implements Harmony's layered configuration, grounded on
// _examples/open-platform-model-cli's flag/env precedence in cmd/opm/root.go
// (flag, then HARMONY_* env var, then default) but using spf13/viper to
// manage the precedence and an optional harmony.yaml project file instead
// of hand-rolled os.Getenv calls, since SPEC_FULL.md §2.1 wires viper
// specifically for this concern.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved, fully layered build configuration.
type Config struct {
	// Backend selects the concrete Backend implementation ("exec" or
	// "stub"); "exec" talks to a real toolchain, "stub" is for dry runs.
	Backend string
	// Jobs bounds concurrent compiles; zero means unbounded (spec.md §5).
	Jobs int64
	// BuildDir is the root directory for artifacts, response files, and
	// dependency-scan output.
	BuildDir string
	// Verbose raises logging to debug level and enables caller reporting.
	Verbose bool
	// Manifest is the path to the project's target manifest JSON.
	Manifest string
	// CompilerCmd and LinkerCmd override the exec backend's toolchain
	// binaries.
	CompilerCmd string
	LinkerCmd   string
}

// Load builds a Config from defaults, an optional harmony.yaml (the file
// at configPath, or searched for in the working directory if configPath
// is empty), HARMONY_*-prefixed environment variables, and finally the
// explicit overrides in flags — in increasing precedence order, the same
// order viper's own Get resolves by construction.
func Load(configPath string, flags FlagOverrides) (*Config, error) {
	v := viper.New()

	v.SetDefault("backend", "exec")
	v.SetDefault("jobs", 0)
	v.SetDefault("build-dir", "build")
	v.SetDefault("verbose", false)
	v.SetDefault("manifest", "harmony.json")
	v.SetDefault("compiler-cmd", "clang-cl")
	v.SetDefault("linker-cmd", "lld-link")

	v.SetEnvPrefix("harmony")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("harmony")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
	}

	flags.apply(v)

	return &Config{
		Backend:     v.GetString("backend"),
		Jobs:        v.GetInt64("jobs"),
		BuildDir:    v.GetString("build-dir"),
		Verbose:     v.GetBool("verbose"),
		Manifest:    v.GetString("manifest"),
		CompilerCmd: v.GetString("compiler-cmd"),
		LinkerCmd:   v.GetString("linker-cmd"),
	}, nil
}

// FlagOverrides carries the CLI's explicitly-set flag values; a nil
// pointer field means "flag not set, defer to env/file/default".
type FlagOverrides struct {
	Backend     *string
	Jobs        *int64
	BuildDir    *string
	Verbose     *bool
	Manifest    *string
	CompilerCmd *string
	LinkerCmd   *string
}

func (f FlagOverrides) apply(v *viper.Viper) {
	if f.Backend != nil {
		v.Set("backend", *f.Backend)
	}
	if f.Jobs != nil {
		v.Set("jobs", *f.Jobs)
	}
	if f.BuildDir != nil {
		v.Set("build-dir", *f.BuildDir)
	}
	if f.Verbose != nil {
		v.Set("verbose", *f.Verbose)
	}
	if f.Manifest != nil {
		v.Set("manifest", *f.Manifest)
	}
	if f.CompilerCmd != nil {
		v.Set("compiler-cmd", *f.CompilerCmd)
	}
	if f.LinkerCmd != nil {
		v.Set("linker-cmd", *f.LinkerCmd)
	}
}
