package engine

import (
	"context"
	"fmt"

	"github.com/harmonybuild/harmony/internal/backend"
	"github.com/harmonybuild/harmony/internal/harmonyerr"
	"github.com/harmonybuild/harmony/internal/model"
)

// crossCheckDependencies runs the optional backend dependency scan (spec.md
// §4.5, last paragraph) against every task's in-house scan result, and is
// the sole source of the header-unit source-path/logical-name pairings
// scheduler.Prepare's promotion pass needs (spec.md §4.4): the in-house
// scanner only ever sees a header-unit import's raw spelling, never the
// path the toolchain's include-search actually resolved it to. A backend
// that does not implement backend.DependencyScanner skips this step
// entirely, and header units it never reports in a P1689 source-path never
// get promoted — matching the fallback description in DESIGN.md.
func crossCheckDependencies(ctx context.Context, ds backend.DependencyScanner, tasks []*model.Task, markedHeaderUnits map[string]string) error {
	docs, err := ds.FindDependencies(ctx, tasks)
	if err != nil {
		return fmt.Errorf("running backend dependency scan: %w", err)
	}
	if len(docs) != len(tasks) {
		return harmonyerr.Wrap(&harmonyerr.Report{
			Schema:  "harmony.error/v1",
			Code:    harmonyerr.BKD001,
			Phase:   "backend-scan",
			Message: fmt.Sprintf("backend dependency scan returned %d documents for %d tasks", len(docs), len(tasks)),
		})
	}

	for i, t := range tasks {
		rule, ok, err := backend.ParseP1689(docs[i], t, markedHeaderUnits)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if d := backend.CrossCheck(t, rule); d != nil {
			return harmonyerr.Wrap(&harmonyerr.Report{
				Schema:  "harmony.error/v1",
				Code:    harmonyerr.BKD001,
				Phase:   "backend-scan",
				Message: fmt.Sprintf("backend dependency scan disagrees with in-house scan for %s", t.UniqueName),
				Data: map[string]any{
					"missing-produce": d.MissingProduce,
					"extra-produce":   d.ExtraProduce,
					"missing-require": d.MissingRequire,
					"extra-require":   d.ExtraRequire,
				},
			})
		}
	}
	return nil
}
