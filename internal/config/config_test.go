package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(dir)

	cfg, err := Load("", FlagOverrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "exec" {
		t.Errorf("Backend = %q, want exec", cfg.Backend)
	}
	if cfg.BuildDir != "build" {
		t.Errorf("BuildDir = %q, want build", cfg.BuildDir)
	}
	if cfg.Jobs != 0 {
		t.Errorf("Jobs = %d, want 0", cfg.Jobs)
	}
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(dir)

	os.Setenv("HARMONY_BACKEND", "stub")
	defer os.Unsetenv("HARMONY_BACKEND")

	cfg, err := Load("", FlagOverrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "stub" {
		t.Errorf("Backend = %q, want stub", cfg.Backend)
	}
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(dir)

	os.Setenv("HARMONY_BACKEND", "stub")
	defer os.Unsetenv("HARMONY_BACKEND")

	backend := "exec"
	cfg, err := Load("", FlagOverrides{Backend: &backend})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "exec" {
		t.Errorf("Backend = %q, want exec (flag should win over env)", cfg.Backend)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harmony.yaml")
	if err := os.WriteFile(path, []byte("backend: stub\nbuild-dir: out\njobs: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, FlagOverrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "stub" {
		t.Errorf("Backend = %q, want stub", cfg.Backend)
	}
	if cfg.BuildDir != "out" {
		t.Errorf("BuildDir = %q, want out", cfg.BuildDir)
	}
	if cfg.Jobs != 4 {
		t.Errorf("Jobs = %d, want 4", cfg.Jobs)
	}
}
