package model

import (
	"fmt"
	"sync/atomic"
)

// TaskState is the lifecycle a task moves through. Waiting -> Compiling is
// the only transition the scheduler's dispatcher performs; Compiling ->
// Complete/Failed is performed by whichever goroutine ran the backend call.
// Complete and Failed are terminal. The up-to-date filter (spec.md §4.3)
// is the one place allowed to move a task back from Complete to Waiting,
// and only before scheduling begins.
type TaskState int32

const (
	Waiting TaskState = iota
	Compiling
	Complete
	Failed
)

func (s TaskState) String() string {
	switch s {
	case Compiling:
		return "compiling"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "waiting"
	}
}

// Dependency is one resolved `requires` entry: a logical module name and a
// non-owning back-reference to the task that produces it. The back-reference
// is a *Task pointer rather than an index: task lists are []*Task, so the
// pointed-to Task stays valid even if the slice holding it is reallocated.
type Dependency struct {
	LogicalName string
	Task        *Task
}

// Task is one translation unit the backend must compile (or, for header
// units and synthetic standard-module tasks, materialize a BMI for without
// necessarily invoking a full compile).
type Task struct {
	Target *Target
	Source Source

	UniqueName string

	Obj string
	BMI string

	IncludeDirs []string
	Defines     []string

	Produces []string
	Requires []Dependency

	IsHeaderUnit bool
	External     bool

	state int32 // atomic TaskState; always access via State()/SetState()/CompareAndSwapState
}

// State loads the task's state with acquire semantics so that a caller
// observing Complete also observes every write (artifact paths, Produces)
// that happened before the producing goroutine set it, per spec.md §5's
// "Shared mutable state and discipline."
func (t *Task) State() TaskState {
	return TaskState(atomic.LoadInt32(&t.state))
}

// SetState stores a new state unconditionally (used by the up-to-date
// filter, which is the only caller allowed to move Complete back to
// Waiting, and only before scheduling begins).
func (t *Task) SetState(s TaskState) {
	atomic.StoreInt32(&t.state, int32(s))
}

// CompareAndSwapState performs the dispatcher's Waiting->Compiling
// transition, and the worker's Compiling->Complete/Failed transition,
// atomically so two goroutines can never both believe they dispatched the
// same task.
func (t *Task) CompareAndSwapState(old, new TaskState) bool {
	return atomic.CompareAndSwapInt32(&t.state, int32(old), int32(new))
}

// DependsOnComplete reports whether every requirement of t has a resolved
// task reference and that task is Complete. Requires invariant 1 (spec.md
// §3) to already hold: every Dependency.Task is non-nil by the time
// scheduling begins.
func (t *Task) DependsOnComplete() bool {
	for _, dep := range t.Requires {
		if dep.Task == nil || dep.Task.State() != Complete {
			return false
		}
	}
	return true
}

// String renders a task for logs/debug dumps.
func (t *Task) String() string {
	return fmt.Sprintf("%s[%s]", t.UniqueName, t.State())
}
