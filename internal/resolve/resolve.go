// Package resolve implements the dependency resolver (spec.md §4.2): it
// turns the produces/requires sets scanned off each task into a DAG by
// populating every Dependency.Task back-reference, rejecting unresolved
// names, duplicate producers, and cycles. The cycle-detection DFS mirrors
// the teacher's visited/inPath idiom in internal/link/topo.go and
// internal/module/loader.go's checkCycle/loadStack.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harmonybuild/harmony/internal/harmonyerr"
	"github.com/harmonybuild/harmony/internal/model"
)

// Result carries the resolver's informational-only output alongside the
// mutated task list (spec.md §4.2 step 3: "used only for logging and do
// not gate compilation").
type Result struct {
	// MaxDepth is the longest chain length (in edges) found in the
	// requires-DAG, memoized via a postorder walk.
	MaxDepth int
	// LongestChain names the tasks along one path achieving MaxDepth,
	// root first.
	LongestChain []string
}

// Resolve populates every unresolved Dependency.Task in tasks and checks
// the invariants spec.md §3 requires before scheduling may begin. It does
// not mutate Produces/Requires beyond filling in Task back-references.
func Resolve(tasks []*model.Task) (Result, error) {
	producedBy, err := buildProducedBy(tasks)
	if err != nil {
		return Result{}, err
	}

	if err := resolveRequires(tasks, producedBy); err != nil {
		return Result{}, err
	}

	if err := checkCycles(tasks); err != nil {
		return Result{}, err
	}

	depth, chain := longestChain(tasks)
	return Result{MaxDepth: depth, LongestChain: chain}, nil
}

// buildProducedBy implements spec.md §4.2 step 1. Standard-module synthetic
// tasks (External==true) are the only permitted duplicate producers of the
// same logical name, per invariant 3 in spec.md §3; the first one seen
// wins and later external duplicates are silently ignored.
func buildProducedBy(tasks []*model.Task) (map[string]*model.Task, error) {
	producedBy := make(map[string]*model.Task)
	for _, t := range tasks {
		for _, name := range t.Produces {
			existing, ok := producedBy[name]
			if !ok {
				producedBy[name] = t
				continue
			}
			if existing.External && t.External {
				continue
			}
			return nil, harmonyerr.Wrap(&harmonyerr.Report{
				Schema:  "harmony.error/v1",
				Code:    harmonyerr.RES002,
				Phase:   "resolve",
				Message: fmt.Sprintf("module %q is produced by both %q and %q", name, existing.UniqueName, t.UniqueName),
				Data:    map[string]any{"name": name, "first": existing.UniqueName, "second": t.UniqueName},
			})
		}
	}
	return producedBy, nil
}

// resolveRequires implements spec.md §4.2 step 2. A Dependency that already
// carries a Task (one a caller filled in before resolution) is left
// untouched.
func resolveRequires(tasks []*model.Task, producedBy map[string]*model.Task) error {
	for _, t := range tasks {
		for i, dep := range t.Requires {
			if dep.Task != nil {
				continue
			}
			producer, ok := producedBy[dep.LogicalName]
			if !ok {
				return harmonyerr.Wrap(&harmonyerr.Report{
					Schema:  "harmony.error/v1",
					Code:    harmonyerr.RES001,
					Phase:   "resolve",
					Message: fmt.Sprintf("%s requires %q, but no task produces it", t.UniqueName, dep.LogicalName),
					Data:    map[string]any{"task": t.UniqueName, "missing": dep.LogicalName},
				})
			}
			t.Requires[i].Task = producer
		}
	}
	return nil
}

// checkCycles implements spec.md §4.2 step 4. Cycles in the requires-DAG
// are a fatal RES003 error.
func checkCycles(tasks []*model.Task) error {
	visited := make(map[*model.Task]bool)
	inPath := make(map[*model.Task]bool)
	var path []string

	var dfs func(t *model.Task) error
	dfs = func(t *model.Task) error {
		if visited[t] {
			return nil
		}
		if inPath[t] {
			cycle := append(append([]string{}, path...), t.UniqueName)
			return harmonyerr.Wrap(&harmonyerr.Report{
				Schema:  "harmony.error/v1",
				Code:    harmonyerr.RES003,
				Phase:   "resolve",
				Message: fmt.Sprintf("cycle in module requires graph: %s", strings.Join(cycle, " -> ")),
				Data:    map[string]any{"cycle": cycle},
			})
		}
		inPath[t] = true
		path = append(path, t.UniqueName)

		for _, dep := range t.Requires {
			if dep.Task == nil {
				continue
			}
			if err := dfs(dep.Task); err != nil {
				return err
			}
		}

		inPath[t] = false
		path = path[:len(path)-1]
		visited[t] = true
		return nil
	}

	for _, t := range tasks {
		if err := dfs(t); err != nil {
			return err
		}
	}
	return nil
}

// longestChain computes the requires-DAG's maximum depth via a memoized
// postorder walk, purely for logging (spec.md §4.2 step 3).
func longestChain(tasks []*model.Task) (int, []string) {
	memo := make(map[*model.Task]int)
	next := make(map[*model.Task]*model.Task)

	var depth func(t *model.Task) int
	depth = func(t *model.Task) int {
		if d, ok := memo[t]; ok {
			return d
		}
		best := 0
		var bestDep *model.Task
		for _, dep := range t.Requires {
			if dep.Task == nil {
				continue
			}
			d := depth(dep.Task) + 1
			if d > best {
				best = d
				bestDep = dep.Task
			}
		}
		memo[t] = best
		next[t] = bestDep
		return best
	}

	var roots []*model.Task
	for _, t := range tasks {
		depth(t)
		roots = append(roots, t)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].UniqueName < roots[j].UniqueName })

	var best *model.Task
	bestDepth := -1
	for _, t := range roots {
		if memo[t] > bestDepth {
			bestDepth = memo[t]
			best = t
		}
	}
	if best == nil {
		return 0, nil
	}

	var chain []string
	for t := best; t != nil; t = next[t] {
		chain = append(chain, t.UniqueName)
	}
	return bestDepth, chain
}
