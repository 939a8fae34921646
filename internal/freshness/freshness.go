// Package freshness implements the up-to-date filter (spec.md §4.3): it
// decides which tasks may enter the scheduler already Complete, based on
// local artifact mtimes and then a memoized postorder propagation of
// staleness through the requires-DAG. Header include-graph staleness is
// explicitly not considered, per spec.md's documented limitation.
package freshness

import (
	"os"

	"github.com/harmonybuild/harmony/internal/model"
)

// StatFunc abstracts os.Stat so tests can simulate a build directory
// without touching the filesystem.
type StatFunc func(path string) (os.FileInfo, error)

// Filter runs both steps of the up-to-date filter over tasks and mutates
// their TaskState in place: Step A (LocalFreshness) marks each task
// Complete or leaves it Waiting by comparing source and artifact mtimes;
// Step B (propagate) forces any task whose transitive requires are stale
// back to Waiting.
func Filter(tasks []*model.Task, stat StatFunc) {
	for _, t := range tasks {
		if LocalFreshness(t, stat) {
			t.SetState(model.Complete)
		} else {
			t.SetState(model.Waiting)
		}
	}
	propagate(tasks)
}

// LocalFreshness implements spec.md §4.3 Step A: compare the source's
// mtime against bmi (header units) or obj (everything else). A missing or
// older artifact means the task is not locally fresh.
func LocalFreshness(t *model.Task, stat StatFunc) bool {
	srcInfo, err := stat(t.Source.Path)
	if err != nil {
		// Source itself is unreadable; let the backend surface that error
		// when it actually tries to compile. Treat as not fresh.
		return false
	}

	artifact := t.Obj
	if t.IsHeaderUnit {
		artifact = t.BMI
	}
	if artifact == "" {
		return false
	}

	artInfo, err := stat(artifact)
	if err != nil {
		return false
	}

	return !artInfo.ModTime().Before(srcInfo.ModTime())
}

// propagate implements spec.md §4.3 Step B: a memoized postorder walk
// where a task is stale if it is not locally Complete, or if any
// transitive requirement is stale. Any stale task found Complete is
// forced back to Waiting.
func propagate(tasks []*model.Task) {
	memo := make(map[*model.Task]bool)

	var stale func(t *model.Task) bool
	stale = func(t *model.Task) bool {
		if v, ok := memo[t]; ok {
			return v
		}
		// Guard against being re-entered on a cycle (should not happen
		// post-resolution, but the filter must not infinite-loop if it
		// does): assume fresh until proven otherwise so the recursion
		// terminates; the resolver is the sole authority on cycle
		// rejection.
		memo[t] = false

		isStale := t.State() != model.Complete
		if !isStale {
			for _, dep := range t.Requires {
				if dep.Task == nil {
					continue
				}
				if stale(dep.Task) {
					isStale = true
					break
				}
			}
		}
		memo[t] = isStale
		return isStale
	}

	for _, t := range tasks {
		if stale(t) && t.State() == model.Complete {
			t.SetState(model.Waiting)
		}
	}
}
