package manifest

import (
	"fmt"
	"strings"

	"github.com/harmonybuild/harmony/internal/harmonyerr"
	"github.com/harmonybuild/harmony/internal/model"
)

// FlattenImports computes Target.Flattened for every target in targets, per
// spec.md §9 "Target graph flattening": from the owning target, follow
// every edge kind (Private, Public and Interface, since all are its own
// direct dependencies); from an indirectly reached target, follow only
// Public and Interface edges. The DFS here mirrors the
// teacher's visited/inPath cycle-detection idiom in
// internal/link/topo.go's TopoSortFromRoot, generalized from a single
// linear import chain to the tagged-edge reachability rule spec.md
// describes.
func FlattenImports(targets []*model.Target) error {
	byName := make(map[string]*model.Target, len(targets))
	for _, t := range targets {
		byName[t.Name] = t
	}

	for _, root := range targets {
		flattened := make(map[string]*model.Target)
		inPath := make(map[string]bool)
		var path []string

		var walk func(t *model.Target, indirect bool) error
		walk = func(t *model.Target, indirect bool) error {
			if inPath[t.Name] {
				cycle := append(append([]string{}, path...), t.Name)
				return harmonyerr.Wrap(&harmonyerr.Report{
					Schema:  "harmony.error/v1",
					Code:    harmonyerr.CFG007,
					Phase:   "config",
					Message: fmt.Sprintf("recursive target dependency: %s", strings.Join(cycle, " -> ")),
					Data:    map[string]any{"cycle": cycle},
				})
			}
			inPath[t.Name] = true
			path = append(path, t.Name)
			defer func() {
				inPath[t.Name] = false
				path = path[:len(path)-1]
			}()

			for _, edge := range t.Imports {
				if indirect && edge.Kind == model.Private {
					continue
				}
				dep, ok := byName[edge.TargetName]
				if !ok {
					return harmonyerr.Wrap(&harmonyerr.Report{
						Schema:  "harmony.error/v1",
						Code:    harmonyerr.CFG008,
						Phase:   "config",
						Message: fmt.Sprintf("target %q imports unknown target %q", t.Name, edge.TargetName),
					})
				}
				if dep.Name != root.Name {
					flattened[dep.Name] = dep
				}
				if err := walk(dep, true); err != nil {
					return err
				}
			}
			return nil
		}

		if err := walk(root, false); err != nil {
			return err
		}
		root.Flattened = flattened
	}

	return nil
}
