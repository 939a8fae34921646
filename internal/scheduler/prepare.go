package scheduler

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/harmonybuild/harmony/internal/backend"
	"github.com/harmonybuild/harmony/internal/model"
)

// Prepare runs the pre-dispatch passes spec.md §4.4 describes before
// resolution: standard-module synthetic task insertion, then header-unit
// promotion and pruning. Grounded on original_source/src/build.cpp's
// "Defining std modules" / "Marking header units" / "Generating external
// header unit tasks" / "Trimming normal header tasks" passes, recast from
// that function's single straight-line sequence into named steps.
//
// markedHeaderUnits maps an absolute source path to the logical name some
// other task required it as (populated by backend.ParseP1689 while
// scanning/cross-checking dependencies).
func Prepare(ctx context.Context, be backend.Backend, tasks []*model.Task, markedHeaderUnits map[string]string, wantsStd, wantsStdCompat bool) ([]*model.Task, error) {
	tasks, err := insertStdModules(ctx, be, tasks, wantsStd, wantsStdCompat)
	if err != nil {
		return nil, err
	}
	tasks = promoteHeaderUnits(tasks, markedHeaderUnits)
	return tasks, nil
}

// insertStdModules asks the backend for std/std.compat synthetic tasks
// whenever any scanned task required them, per spec.md §4.4 "Standard-module
// insertion": these are appended to the task list as external tasks that
// participate normally in the DAG.
func insertStdModules(ctx context.Context, be backend.Backend, tasks []*model.Task, wantsStd, wantsStdCompat bool) ([]*model.Task, error) {
	var std, stdCompat *model.Task
	if wantsStd {
		std = &model.Task{UniqueName: "std", Produces: []string{"std"}, External: true}
	}
	if wantsStdCompat {
		stdCompat = &model.Task{UniqueName: "std.compat", Produces: []string{"std.compat"}, External: true}
	}
	if std == nil && stdCompat == nil {
		return tasks, nil
	}
	if err := be.GenerateStdModuleTasks(ctx, std, stdCompat); err != nil {
		return nil, err
	}
	if std != nil {
		tasks = append(tasks, std)
	}
	if stdCompat != nil {
		tasks = append(tasks, stdCompat)
	}
	return tasks, nil
}

// promoteHeaderUnits implements spec.md §4.4 "Header-unit promotion": any
// task whose source path is referenced by some other task as a
// source-path-carrying header-unit requirement is promoted (IsHeaderUnit =
// true, its matched logical name appended to Produces); a header task
// referenced by no one is dropped from the task list entirely, since it
// contributes neither BMI nor object. Matches
// original_source/src/build.cpp's two-pass "mark, then generate externals
// for anything left over, then trim" sequence.
func promoteHeaderUnits(tasks []*model.Task, markedHeaderUnits map[string]string) []*model.Task {
	remaining := make(map[string]string, len(markedHeaderUnits))
	for path, name := range markedHeaderUnits {
		remaining[path] = name
	}

	kept := tasks[:0:0]
	for _, t := range tasks {
		abs, err := filepath.Abs(t.Source.Path)
		if err != nil {
			abs = t.Source.Path
		}
		if name, ok := remaining[abs]; ok {
			t.IsHeaderUnit = true
			t.Produces = append(t.Produces, name)
			delete(remaining, abs)
			kept = append(kept, t)
			continue
		}
		if t.Source.Effective == model.SourceCppHeader && !t.IsHeaderUnit {
			// Un-promoted header task: contributes nothing, dropped.
			continue
		}
		kept = append(kept, t)
	}

	// Anything left in remaining was required as a header unit but never
	// scanned as its own source file (e.g. a system header): materialize
	// an external header-unit task for it. Sorted by path for a
	// deterministic task-list order across runs; map iteration order is
	// otherwise unspecified.
	paths := make([]string, 0, len(remaining))
	for path := range remaining {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		name := remaining[path]
		kept = append(kept, &model.Task{
			Source:       model.Source{Path: path, Effective: model.SourceCppHeader},
			UniqueName:   name,
			IsHeaderUnit: true,
			Produces:     []string{name},
			External:     true,
		})
	}

	return kept
}
