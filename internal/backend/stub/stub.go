// Package stub provides an in-memory Backend for the core algorithmic
// packages' tests, per spec.md §8's "Let 'backend stub' write <obj> and
// <bmi> files atomically when called." It never shells out; Compile/Link
// results are driven entirely by test-supplied scripting.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harmonybuild/harmony/internal/backend"
	"github.com/harmonybuild/harmony/internal/model"
)

// Backend is a scriptable stub: Fail names tasks (by UniqueName) whose
// CompileTask should report failure instead of success, and targets (as
// "link:" followed by the target name) whose LinkStep should. Calls is
// a log of every CompileTask invocation in the order the scheduler issued
// them, useful for asserting ordering invariants in scheduler tests.
// P1689 optionally scripts FindDependencies's result per task (keyed by
// UniqueName), letting tests exercise engine.Build's backend dependency
// cross-check (in particular header-unit promotion) without a real
// compiler. A task absent from P1689 gets a document synthesized from its
// own scanner-derived Produces/Requires, which trivially agrees with
// itself and carries no source-path.
type Backend struct {
	BuildDir string
	Fail     map[string]bool
	P1689    map[string][]byte

	mu    sync.Mutex
	Calls []string
}

// New returns a stub rooted at buildDir (created if necessary).
func New(buildDir string) *Backend {
	return &Backend{BuildDir: buildDir, Fail: map[string]bool{}}
}

// GenerateStdModuleTasks assigns a synthetic, non-existent source path to
// any requested standard-module handle; CompileTask below treats every
// External task as trivially successful without touching the filesystem.
func (b *Backend) GenerateStdModuleTasks(_ context.Context, std, stdCompat *model.Task) error {
	if std != nil {
		std.Source = model.Source{Path: "<std>"}
		std.External = true
	}
	if stdCompat != nil {
		stdCompat.Source = model.Source{Path: "<std.compat>"}
		stdCompat.External = true
	}
	return nil
}

// AddTaskInfo assigns deterministic .obj/.ifc paths under BuildDir, keyed
// by UniqueName so repeated runs address the same artifact files.
func (b *Backend) AddTaskInfo(tasks []*model.Task) error {
	for _, t := range tasks {
		t.Obj = filepath.Join(b.BuildDir, t.UniqueName+".obj")
		if t.Source.Effective == model.SourceCppInterface || t.IsHeaderUnit {
			t.BMI = filepath.Join(b.BuildDir, t.UniqueName+".ifc")
		}
	}
	return nil
}

// CompileTask records the call and, absent a scripted failure, writes the
// task's obj (and bmi, if any) atomically via a temp-file-then-rename, the
// idiom the teacher's own artifact writers use to avoid readers observing
// a partially written file.
func (b *Backend) CompileTask(_ context.Context, t *model.Task) bool {
	b.mu.Lock()
	b.Calls = append(b.Calls, t.UniqueName)
	fail := b.Fail[t.UniqueName]
	b.mu.Unlock()

	if fail {
		return false
	}
	if t.External {
		return true
	}

	if t.Obj != "" {
		if err := writeAtomic(t.Obj, []byte("obj:"+t.UniqueName)); err != nil {
			return false
		}
	}
	if t.BMI != "" {
		if err := writeAtomic(t.BMI, []byte("bmi:"+t.UniqueName)); err != nil {
			return false
		}
	}
	return true
}

// LinkStep writes a trivial placeholder executable file unless
// "link:<target name>" is marked to fail.
func (b *Backend) LinkStep(_ context.Context, target *model.Target, _ []*model.Task) bool {
	b.mu.Lock()
	fail := b.Fail["link:"+target.Name]
	b.mu.Unlock()
	if fail {
		return false
	}
	if target.Executable == nil {
		return true
	}
	path := filepath.Join(b.BuildDir, target.Executable.Path)
	return writeAtomic(path, []byte("exe:"+target.Name)) == nil
}

// AddSystemIncludeDirs is a no-op for the stub: no real toolchain
// environment to inspect.
func (b *Backend) AddSystemIncludeDirs(state *backend.BuildState) error {
	return nil
}

// FindDependencies implements backend.DependencyScanner by returning each
// task's scripted P1689 document, or a self-agreeing synthesized one when
// nothing was scripted for it.
func (b *Backend) FindDependencies(_ context.Context, tasks []*model.Task) ([][]byte, error) {
	docs := make([][]byte, len(tasks))
	for i, t := range tasks {
		if data, ok := b.P1689[t.UniqueName]; ok {
			docs[i] = data
			continue
		}
		data, err := json.Marshal(selfAgreeingDocument(t))
		if err != nil {
			return nil, fmt.Errorf("synthesizing P1689 document for %s: %w", t.UniqueName, err)
		}
		docs[i] = data
	}
	return docs, nil
}

func selfAgreeingDocument(t *model.Task) backend.P1689Document {
	provides := make([]backend.P1689Provides, len(t.Produces))
	for i, p := range t.Produces {
		provides[i] = backend.P1689Provides{LogicalName: p}
	}
	requires := make([]backend.P1689Requires, len(t.Requires))
	for i, r := range t.Requires {
		requires[i] = backend.P1689Requires{LogicalName: r.LogicalName}
	}
	return backend.P1689Document{Rules: []backend.P1689Rule{{Provides: provides, Requires: requires}}}
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + fmt.Sprintf(".tmp-%d", os.Getpid())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

var _ backend.Backend = (*Backend)(nil)
var _ backend.DependencyScanner = (*Backend)(nil)
