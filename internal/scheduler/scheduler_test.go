package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harmonybuild/harmony/internal/backend/stub"
	"github.com/harmonybuild/harmony/internal/model"
)

func task(name string, produces []string, deps ...*model.Task) *model.Task {
	t := &model.Task{UniqueName: name, Produces: produces}
	for _, d := range deps {
		t.Requires = append(t.Requires, model.Dependency{LogicalName: d.UniqueName, Task: d})
	}
	return t
}

func TestRunCompletesIndependentChain(t *testing.T) {
	a := task("a", []string{"a"})
	b := task("b", []string{"b"}, a)
	c := task("c", []string{"c"}, b)
	tasks := []*model.Task{a, b, c}

	be := stub.New(t.TempDir())
	require.NoError(t, be.AddTaskInfo(tasks))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := Run(ctx, be, tasks, Options{})

	for _, tk := range tasks {
		require.Equalf(t, model.Complete, tk.State(), "task %s", tk.UniqueName)
	}
	require.Empty(t, res.Failed)
	require.Equal(t, 3, res.Executed)
}

func TestRunRespectsOrdering(t *testing.T) {
	// b depends on a; by the time b's CompileTask runs, a must already be
	// Complete (spec.md §5 "Ordering guarantees").
	a := task("a", []string{"a"})
	b := task("b", []string{"b"}, a)
	tasks := []*model.Task{a, b}

	be := stub.New(t.TempDir())
	require.NoError(t, be.AddTaskInfo(tasks))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	Run(ctx, be, tasks, Options{})

	// a must be Complete before b appears in Calls.
	aIdx, bIdx := -1, -1
	for i, name := range be.Calls {
		if name == "a" {
			aIdx = i
		}
		if name == "b" {
			bIdx = i
		}
	}
	require.NotEqual(t, -1, aIdx, "Calls=%v", be.Calls)
	require.NotEqual(t, -1, bIdx, "Calls=%v", be.Calls)
	require.Less(t, aIdx, bIdx, "dispatch order violated dependency: Calls=%v", be.Calls)
}

func TestRunCompileFailureBlocksDependents(t *testing.T) {
	a := task("a", []string{"a"})
	b := task("b", []string{"b"}, a)
	c := task("c", []string{"c"}, b)
	tasks := []*model.Task{a, b, c}

	be := stub.New(t.TempDir())
	require.NoError(t, be.AddTaskInfo(tasks))
	be.Fail["a"] = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := Run(ctx, be, tasks, Options{})

	require.Equal(t, model.Failed, a.State())
	require.Equal(t, model.Waiting, b.State())
	require.Equal(t, model.Waiting, c.State())
	require.Equal(t, []string{"a"}, res.Failed)

	require.Len(t, res.Blocked, 2)
	byTask := map[string]BlockedTask{}
	for _, bt := range res.Blocked {
		byTask[bt.Task] = bt
	}
	require.Equal(t, []string{"a (failed)"}, byTask["b"].Blockers)
	require.Equal(t, []string{"b"}, byTask["c"].Blockers)
}

func TestRunBoundedWorkerPool(t *testing.T) {
	var tasks []*model.Task
	for i := 0; i < 8; i++ {
		name := string(rune('a' + i))
		tasks = append(tasks, task(name, []string{name}))
	}

	be := stub.New(t.TempDir())
	require.NoError(t, be.AddTaskInfo(tasks))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := Run(ctx, be, tasks, Options{MaxWorkers: 2})

	for _, tk := range tasks {
		require.Equalf(t, model.Complete, tk.State(), "task %s", tk.UniqueName)
	}
	require.Equal(t, 8, res.Executed)
}

func TestFormatBlockageReportSingleFailure(t *testing.T) {
	out := FormatBlockageReport(1, []BlockedTask{
		{Task: "b", Blockers: []string{"a (failed)"}},
		{Task: "c", Blockers: []string{"b"}},
	})
	want := "blocked after 1 failed compilation\ntask[b] blocked\n - a (failed)\ntask[c] blocked\n - b\n"
	require.Equal(t, want, out)
}

func TestLinkTargetsReportsFailureWithoutUnwinding(t *testing.T) {
	good := &model.Target{Name: "good", Executable: &model.Executable{Path: "good.exe"}}
	bad := &model.Target{Name: "bad", Executable: &model.Executable{Path: "bad.exe"}}
	be := stub.New(t.TempDir())
	be.Fail["link:bad"] = true

	failed := LinkTargets(context.Background(), be, []*model.Target{good, bad}, nil)
	require.Equal(t, []string{"bad"}, failed)
}
