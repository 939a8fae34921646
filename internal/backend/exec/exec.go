// Package exec is a minimal os/exec-based Backend: a repository implementing
// spec.md needs at least one concrete, runnable-end-to-end backend (the
// ambient-stack rationale in SPEC_FULL.md §5), even though the property
// tests in DESIGN.md exercise backend/stub instead. It shells out to a
// configurable compiler/linker pair (clang-cl by default) and is
// deliberately unopinionated about flags beyond what spec.md requires.
package exec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/harmonybuild/harmony/internal/backend"
	"github.com/harmonybuild/harmony/internal/backend/respfile"
	"github.com/harmonybuild/harmony/internal/model"
)

// Backend drives a clang-cl-compatible toolchain via child processes.
type Backend struct {
	BuildDir    string
	CompilerCmd string // e.g. "clang-cl"
	LinkerCmd   string // e.g. "lld-link"
	StdModule   string // path to the toolchain's std.ixx, if known
	StdCompat   string // path to the toolchain's std.compat.ixx, if known

	Resp *respfile.Writer
}

// New constructs a Backend rooted at buildDir, creating its response-file
// directory.
func New(buildDir, compilerCmd, linkerCmd string) (*Backend, error) {
	resp, err := respfile.New(buildDir)
	if err != nil {
		return nil, err
	}
	return &Backend{BuildDir: buildDir, CompilerCmd: compilerCmd, LinkerCmd: linkerCmd, Resp: resp}, nil
}

// GenerateStdModuleTasks assigns the configured std/std.compat interface
// paths to the requested handles; fatal if a handle is requested but no
// path is configured (spec.md §4.5: "fatal if the toolchain cannot supply
// them").
func (b *Backend) GenerateStdModuleTasks(_ context.Context, std, stdCompat *model.Task) error {
	if std != nil {
		if b.StdModule == "" {
			return fmt.Errorf("backend/exec: std module requested but no toolchain std.ixx is configured")
		}
		std.Source = model.Source{Path: b.StdModule, Effective: model.SourceCppInterface}
		std.External = true
	}
	if stdCompat != nil {
		if b.StdCompat == "" {
			return fmt.Errorf("backend/exec: std.compat module requested but no toolchain std.compat.ixx is configured")
		}
		stdCompat.Source = model.Source{Path: b.StdCompat, Effective: model.SourceCppInterface}
		stdCompat.External = true
	}
	return nil
}

// AddTaskInfo assigns clang-cl's .obj/.pcm naming convention.
func (b *Backend) AddTaskInfo(tasks []*model.Task) error {
	for _, t := range tasks {
		t.Obj = filepath.Join(b.BuildDir, t.UniqueName+".obj")
		if t.Source.Effective == model.SourceCppInterface || t.IsHeaderUnit {
			t.BMI = filepath.Join(b.BuildDir, t.UniqueName+".pcm")
		}
	}
	return nil
}

// CompileTask assembles and runs one compile invocation, spilling to a
// response file via b.Resp when the argument list would overflow (spec.md
// §9).
func (b *Backend) CompileTask(ctx context.Context, t *model.Task) bool {
	if t.External {
		return true
	}

	args := []string{"-std=c++20", "-c", t.Source.Path, "-o", t.Obj}
	for _, dir := range t.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	for _, def := range t.Defines {
		args = append(args, "-D"+def)
	}
	for _, dep := range t.Requires {
		if dep.Task != nil && dep.Task.BMI != "" {
			args = append(args, "-fmodule-file="+dep.Task.BMI)
		}
	}
	if t.BMI != "" {
		args = append(args, "-fmodule-output="+t.BMI)
	}

	if respfile.Overflows(args) {
		ref, err := b.Resp.Write(args)
		if err != nil {
			log.Error("response file write failed", "task", t.UniqueName, "err", err)
			return false
		}
		args = []string{ref}
	}

	cmd := exec.CommandContext(ctx, b.CompilerCmd, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		log.Error("compile failed", "task", t.UniqueName, "err", err)
		return false
	}
	return true
}

// LinkStep assembles and runs one link invocation for target.
func (b *Backend) LinkStep(ctx context.Context, target *model.Target, tasks []*model.Task) bool {
	if target.Executable == nil {
		return true
	}

	args := []string{"/out:" + target.Executable.Path}
	for _, t := range tasks {
		if t.Target == target && !t.IsHeaderUnit {
			args = append(args, t.Obj)
		}
	}
	for _, lib := range target.Libs {
		args = append(args, lib)
	}

	if respfile.Overflows(args) {
		ref, err := b.Resp.Write(args)
		if err != nil {
			log.Error("response file write failed", "target", target.Name, "err", err)
			return false
		}
		args = []string{ref}
	}

	cmd := exec.CommandContext(ctx, b.LinkerCmd, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		log.Error("link failed", "target", target.Name, "err", err)
		return false
	}
	return true
}

// AddSystemIncludeDirs reads HARMONY_SYSTEM_INCLUDE (a PATH-list-separated
// string) as a stand-in for a real toolchain-environment capture (e.g. the
// Visual Studio developer-shell variables spec.md §1 marks out of scope).
func (b *Backend) AddSystemIncludeDirs(state *backend.BuildState) error {
	if v := os.Getenv("HARMONY_SYSTEM_INCLUDE"); v != "" {
		state.SystemIncludeDirs = append(state.SystemIncludeDirs, filepath.SplitList(v)...)
	}
	return nil
}

// Backend deliberately does not implement backend.DependencyScanner: a
// real P1689 scan needs a separate clang-scan-deps invocation this minimal
// driver doesn't shell out to. engine.Build's cross-check step is skipped
// for it, same as for any other backend without that optional capability.

var _ backend.Backend = (*Backend)(nil)
