// Package scheduler implements the concurrent dispatcher of spec.md §4.4: a
// single-threaded dispatch loop that launches one worker per ready task,
// bounded by a weighted semaphore (the pooled variant spec.md §5 explicitly
// permits as an alternative to detached-thread-per-task), and that detects
// and reports deadlock from failed or cyclic-looking blockage.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/harmonybuild/harmony/internal/backend"
	"github.com/harmonybuild/harmony/internal/model"
)

// Options configures one Run.
type Options struct {
	// MaxWorkers bounds in-flight compiles. Zero means unbounded (one
	// worker per ready task, matching the original's detached-thread
	// model); work is I/O-bound so oversubscription is acceptable per
	// spec.md §5.
	MaxWorkers int64
}

// Result summarizes one dispatcher run.
type Result struct {
	Failed   []string // UniqueNames of tasks that ended Failed
	Blocked  []BlockedTask
	LinkOK   bool
	Executed int // number of CompileTask dispatches this run performed
}

// BlockedTask is one deadlock-report entry: a task that never left Waiting
// because some dependency never reached Complete.
type BlockedTask struct {
	Task     string
	Blockers []string // e.g. "libfoo (failed)" or "libfoo"
}

// coordinator holds the dispatcher's shared counters and completion signal,
// grounded on spec.md §5's "num_started, num_complete, and the 'new
// completion' signal form one producer-many-completer/one-consumer
// coordination" — realized here as a mutex-guarded condition variable
// rather than one channel per task, matching the "plain atomic word plus a
// single condition variable" guidance in spec.md §9.
type coordinator struct {
	mu          sync.Mutex
	cond        *sync.Cond
	numStarted  int
	numComplete int
}

func newCoordinator() *coordinator {
	c := &coordinator{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *coordinator) noteStart() {
	c.mu.Lock()
	c.numStarted++
	c.mu.Unlock()
}

func (c *coordinator) noteComplete() {
	c.mu.Lock()
	c.numComplete++
	c.mu.Unlock()
	c.cond.Broadcast()
}

func (c *coordinator) snapshot() (started, complete int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.numStarted, c.numComplete
}

// waitForCompletion blocks until numComplete has advanced past last.
func (c *coordinator) waitForCompletion(last int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.numComplete <= last {
		c.cond.Wait()
	}
}

// Run executes tasks to completion (or deadlock) against be, following the
// dispatch rule in spec.md §4.4. tasks must already have Obj/BMI assigned
// (backend.AddTaskInfo) and Requires resolved (resolve.Resolve).
func Run(ctx context.Context, be backend.Backend, tasks []*model.Task, opts Options) Result {
	coord := newCoordinator()

	var sem *semaphore.Weighted
	if opts.MaxWorkers > 0 {
		sem = semaphore.NewWeighted(opts.MaxWorkers)
	}

	var wg sync.WaitGroup
	var executed int
	lastComplete := 0

	for {
		_, completeBefore := coord.snapshot()

		inFlight := false
		for _, t := range tasks {
			if t.State() == model.Compiling {
				inFlight = true
				break
			}
		}
		if inFlight && completeBefore == lastComplete {
			coord.waitForCompletion(lastComplete)
		}
		lastComplete = completeBefore

		remaining := 0
		launched := 0

		for _, t := range tasks {
			switch t.State() {
			case model.Complete, model.Failed:
				continue
			}
			remaining++

			if t.State() != model.Waiting || !t.DependsOnComplete() {
				continue
			}
			if !t.CompareAndSwapState(model.Waiting, model.Compiling) {
				continue
			}

			launched++
			coord.noteStart()
			executed++

			wg.Add(1)
			dispatch(ctx, be, t, sem, coord, &wg)
		}

		if remaining == 0 {
			break
		}

		started, complete := coord.snapshot()
		if started == complete && launched == 0 {
			wg.Wait()
			return Result{Failed: failedNames(tasks), Blocked: blockageReport(tasks), Executed: executed}
		}
	}

	wg.Wait()
	return Result{Failed: failedNames(tasks), Executed: executed}
}

// dispatch launches one task's compile in its own goroutine, acquiring sem
// first if bounded. The goroutine is solely responsible for the
// Compiling -> Complete/Failed transition; the dispatcher never performs it.
func dispatch(ctx context.Context, be backend.Backend, t *model.Task, sem *semaphore.Weighted, coord *coordinator, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()
		if sem != nil {
			if err := sem.Acquire(ctx, 1); err != nil {
				t.CompareAndSwapState(model.Compiling, model.Failed)
				coord.noteComplete()
				return
			}
			defer sem.Release(1)
		}

		ok := be.CompileTask(ctx, t)
		if ok {
			t.CompareAndSwapState(model.Compiling, model.Complete)
		} else {
			t.CompareAndSwapState(model.Compiling, model.Failed)
		}
		coord.noteComplete()
	}()
}

func failedNames(tasks []*model.Task) []string {
	var out []string
	for _, t := range tasks {
		if t.State() == model.Failed {
			out = append(out, t.UniqueName)
		}
	}
	sort.Strings(out)
	return out
}

// blockageReport builds the per-task blockage listing spec.md §4.4 step 4
// requires: every still-non-Complete task paired with the still-non-Complete
// names it is waiting on, annotated "(failed)" where applicable.
func blockageReport(tasks []*model.Task) []BlockedTask {
	var out []BlockedTask
	for _, t := range tasks {
		if t.State() == model.Complete || t.State() == model.Failed {
			continue
		}
		bt := BlockedTask{Task: t.UniqueName}
		for _, dep := range t.Requires {
			if dep.Task == nil || dep.Task.State() == model.Complete {
				continue
			}
			name := dep.LogicalName
			if dep.Task.State() == model.Failed {
				name = fmt.Sprintf("%s (failed)", name)
			}
			bt.Blockers = append(bt.Blockers, name)
		}
		out = append(out, bt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Task < out[j].Task })
	return out
}

// FormatBlockageReport renders a blockage report the way spec.md's example
// trace (§7 case 5) shows it: one "blocked after N failed compilations"
// header, then one line per blocked task.
func FormatBlockageReport(failedCount int, blocked []BlockedTask) string {
	var out string
	if failedCount > 0 {
		out = fmt.Sprintf("blocked after %d failed compilation", failedCount)
		if failedCount != 1 {
			out += "s"
		}
		out += "\n"
	} else {
		out = "illegal dependency chain detected\n"
	}
	for _, b := range blocked {
		out += fmt.Sprintf("task[%s] blocked\n", b.Task)
		for _, blocker := range b.Blockers {
			out += fmt.Sprintf(" - %s\n", blocker)
		}
	}
	return out
}

// LinkTargets invokes LinkStep for every target carrying an executable
// descriptor once scheduling has finished, per spec.md §4.4's link step. A
// failed link is reported (returned in the failed-targets slice) but does
// not unwind previously linked targets, matching the original's behavior of
// never rolling back completed work.
func LinkTargets(ctx context.Context, be backend.Backend, targets []*model.Target, tasks []*model.Task) (failed []string) {
	for _, target := range targets {
		if target.Executable == nil {
			continue
		}
		if !be.LinkStep(ctx, target, tasks) {
			failed = append(failed, target.Name)
		}
	}
	return failed
}
