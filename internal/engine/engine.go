// Package engine wires the build engine's pieces together end to end:
// manifest load, scan, resolve, freshness filter, schedule, link. Grounded
// on original_source/src/build.cpp's Build() function, redesigned per
// spec.md §4.4 into discrete, testable stages instead of one straight-line
// procedure, the way the teacher's own internal/pipeline package
// decomposes its compile pipeline into named stages.
package engine

import (
	"context"
	"fmt"
	"os"

	clog "github.com/charmbracelet/log"

	"github.com/harmonybuild/harmony/internal/backend"
	"github.com/harmonybuild/harmony/internal/freshness"
	"github.com/harmonybuild/harmony/internal/harmonyerr"
	"github.com/harmonybuild/harmony/internal/logging"
	"github.com/harmonybuild/harmony/internal/manifest"
	"github.com/harmonybuild/harmony/internal/model"
	"github.com/harmonybuild/harmony/internal/resolve"
	"github.com/harmonybuild/harmony/internal/scanner"
	"github.com/harmonybuild/harmony/internal/scheduler"
)

// Options configures one Build.
type Options struct {
	ManifestPath string
	BuildDir     string
	MaxWorkers   int64
}

// Report summarizes one completed build.
type Report struct {
	TasksTotal   int
	TasksSkipped int // up-to-date, not recompiled
	Failed       []string
	Blocked      []scheduler.BlockedTask
	LinkFailed   []string
}

// Build runs every stage and returns a Report, or an error for anything
// fatal before scheduling begins (manifest errors, scan overruns, resolver
// failures — see harmonyerr's CFG/SCN/RES codes).
func Build(ctx context.Context, be backend.Backend, opts Options) (*Report, error) {
	log := logging.Phase("build")

	targets, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	if err := manifest.FlattenImports(targets); err != nil {
		return nil, fmt.Errorf("flattening target imports: %w", err)
	}
	log.Info("manifest loaded", "targets", len(targets))

	tasks, wantsStd, wantsStdCompat, err := scanTargets(targets)
	if err != nil {
		return nil, fmt.Errorf("scanning sources: %w", err)
	}
	log.Info("scan complete", "tasks", len(tasks))

	markedHeaderUnits := map[string]string{}
	if ds, ok := be.(backend.DependencyScanner); ok {
		if err := crossCheckDependencies(ctx, ds, tasks, markedHeaderUnits); err != nil {
			return nil, err
		}
		log.Info("backend dependency scan cross-checked", "header-units", len(markedHeaderUnits))
	}

	tasks, err = scheduler.Prepare(ctx, be, tasks, markedHeaderUnits, wantsStd, wantsStdCompat)
	if err != nil {
		return nil, fmt.Errorf("preparing standard-module/header-unit tasks: %w", err)
	}

	if err := be.AddTaskInfo(tasks); err != nil {
		return nil, fmt.Errorf("assigning artifact paths: %w", err)
	}

	result, err := resolve.Resolve(tasks)
	if err != nil {
		return nil, fmt.Errorf("resolving dependencies: %w", err)
	}
	log.Info("resolved", "max-depth", result.MaxDepth)

	freshness.Filter(tasks, os.Stat)

	beforeSkip := 0
	for _, t := range tasks {
		if t.State() == model.Complete {
			beforeSkip++
		}
	}

	log.Info("dispatching", "total", len(tasks), "already-complete", beforeSkip)
	schedRes := scheduler.Run(ctx, be, tasks, scheduler.Options{MaxWorkers: opts.MaxWorkers})
	if len(schedRes.Blocked) > 0 {
		code := harmonyerr.SCH002
		if len(schedRes.Failed) == 0 {
			code = harmonyerr.SCH001
		}
		logReport(log, &harmonyerr.Report{
			Schema:  "harmony.error/v1",
			Code:    code,
			Phase:   "schedule",
			Message: scheduler.FormatBlockageReport(len(schedRes.Failed), schedRes.Blocked),
			Data:    map[string]any{"failed": schedRes.Failed, "blocked": schedRes.Blocked},
		})
	}

	linkFailed := scheduler.LinkTargets(ctx, be, targets, tasks)
	for _, name := range linkFailed {
		logReport(log, &harmonyerr.Report{
			Schema:  "harmony.error/v1",
			Code:    harmonyerr.LNK001,
			Phase:   "link",
			Message: fmt.Sprintf("link step failed for target %q", name),
			Data:    map[string]any{"target": name},
		})
	}

	return &Report{
		TasksTotal:   len(tasks),
		TasksSkipped: beforeSkip,
		Failed:       schedRes.Failed,
		Blocked:      schedRes.Blocked,
		LinkFailed:   linkFailed,
	}, nil
}

// scanTargets walks every target's source sets, scans each file, and
// builds the unresolved task list. wantsStd/wantsStdCompat report whether
// any scanned component imported the "std" or "std.compat" logical names.
func scanTargets(targets []*model.Target) (tasks []*model.Task, wantsStd, wantsStdCompat bool, err error) {
	for _, target := range targets {
		for _, ss := range target.SourceSets {
			for _, path := range ss.Paths {
				t, scanErr := scanOne(target, ss, path)
				if scanErr != nil {
					return nil, false, false, scanErr
				}
				for _, req := range t.Requires {
					switch req.LogicalName {
					case "std":
						wantsStd = true
					case "std.compat":
						wantsStdCompat = true
					}
				}
				tasks = append(tasks, t)
			}
		}
	}
	return tasks, wantsStd, wantsStdCompat, nil
}

func scanOne(target *model.Target, ss model.SourceSet, path string) (*model.Task, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	source := model.NewSource(path)
	if ss.KindOverride != model.SourceUnknown {
		source = source.WithOverride(ss.KindOverride)
	}

	t := &model.Task{
		Target:      target,
		Source:      source,
		IncludeDirs: append(append([]string{}, target.Dir), ss.IncludeDirs...),
		Defines:     ss.Defines,
	}

	var scanErr error
	result, errs := scanner.ScanFile(path, raw, func(c model.Component) {
		switch c.Kind {
		case model.InterfaceComponent:
			if c.Imported {
				t.Requires = append(t.Requires, model.Dependency{LogicalName: c.Name})
			} else {
				t.Produces = append(t.Produces, c.Name)
			}
		case model.HeaderUnitComponent:
			// The logical name a header-unit import resolves to is not
			// decidable from the spelling alone (it must be resolved
			// against the toolchain's include-search path); that pairing
			// comes from the backend's P1689 scan in crossCheckDependencies,
			// not here. c.Name is still the right Requires key: it is the
			// same spelling the backend's scan reports as requires[].logical-name
			// for this import.
			t.Requires = append(t.Requires, model.Dependency{LogicalName: c.Name})
		}
	})
	if len(errs) > 0 {
		scanErr = errs[0]
	}
	t.UniqueName = result.UniqueName

	return t, scanErr
}

// logReport emits a structured harmonyerr.Report as an error-level log
// line, its full JSON as the "report" field, so SCH002/LNK001 (reported
// per-task rather than as a single fatal error) show up as the same
// schema/code/phase shape every other harmonyerr.Report uses.
func logReport(log *clog.Logger, rep *harmonyerr.Report) {
	body, err := rep.ToJSON(true)
	if err != nil {
		body = rep.Message
	}
	log.Error(rep.Message, "code", rep.Code, "report", body)
}
