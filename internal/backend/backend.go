// Package backend defines the abstract contract the scheduler uses to
// reach an actual C++ toolchain (spec.md §4.5). The package itself invokes
// no compiler: it only specifies the interface and the P1689 parsing and
// response-file helpers every concrete backend shares. Concrete backends
// live in subpackages: backend/exec (a minimal os/exec-based driver) and
// backend/stub (an in-memory backend for tests).
package backend

import (
	"context"

	"github.com/harmonybuild/harmony/internal/model"
)

// Backend is the single contract between the scheduler and a toolchain,
// specified abstractly per spec.md §4.5's table.
type Backend interface {
	// GenerateStdModuleTasks materializes the toolchain's std and
	// std.compat synthetic tasks, writing their backend-chosen source
	// paths directly onto the provided handles. A nil handle means that
	// standard module was not requested by any scanned task and should be
	// left untouched.
	GenerateStdModuleTasks(ctx context.Context, std, stdCompat *model.Task) error

	// AddTaskInfo populates Obj and BMI on every task using the
	// toolchain's artifact-naming convention.
	AddTaskInfo(tasks []*model.Task) error

	// CompileTask compiles one task, producing its Obj and (if an
	// interface or header unit) its BMI at the paths AddTaskInfo already
	// assigned. Returns whether compilation succeeded.
	CompileTask(ctx context.Context, t *model.Task) bool

	// LinkStep links target's executable from the full task slice.
	// Returns whether the link succeeded.
	LinkStep(ctx context.Context, target *model.Target, tasks []*model.Task) bool

	// AddSystemIncludeDirs appends system include directories inferred
	// from the toolchain environment onto state.
	AddSystemIncludeDirs(state *BuildState) error
}

// DependencyScanner is an optional capability: a backend that can also
// produce a P1689 dependency scan for cross-checking against the in-house
// scanner (spec.md §4.5, last paragraph).
type DependencyScanner interface {
	// FindDependencies returns one P1689 JSON document per task, indexed
	// the same as the input slice.
	FindDependencies(ctx context.Context, tasks []*model.Task) ([][]byte, error)
}

// BuildState is the mutable build-wide state AddSystemIncludeDirs appends
// to: include directories that apply to every task regardless of target,
// discovered from the toolchain environment (e.g. an MSVC developer-shell
// capture).
type BuildState struct {
	BuildDir           string
	SystemIncludeDirs  []string
	ToolchainEnv       map[string]string
}
