package backend

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/harmonybuild/harmony/internal/model"
)

// P1689Document is the subset of the [P1689R5] dependency-file format the
// core consumes, grounded on the field access pattern in
// _examples/original_source/src/build-p1689.cpp (there parsed with
// simdjson's on-demand API; here with encoding/json, since no ecosystem
// JSON-with-ranges parser appears anywhere in the retrieved pack — see
// DESIGN.md).
type P1689Document struct {
	Rules []P1689Rule `json:"rules"`
}

// P1689Rule is one translation unit's dependency record.
type P1689Rule struct {
	Provides []P1689Provides `json:"provides"`
	Requires []P1689Requires `json:"requires"`
}

// P1689Provides is one `rules[].provides[]` entry.
type P1689Provides struct {
	LogicalName string `json:"logical-name"`
}

// P1689Requires is one `rules[].requires[]` entry. SourcePath is present
// only for header-unit requirements.
type P1689Requires struct {
	LogicalName string `json:"logical-name"`
	SourcePath  string `json:"source-path,omitempty"`
}

// ParseP1689 parses one task's P1689 JSON document for the cross-check
// (spec.md §4.5, last paragraph): it does not touch t.Produces/t.Requires
// (those are already authoritative from the in-house scanner; duplicating
// them here would double every entry), but every requirement carrying a
// source-path is recorded in markedHeaderUnits, keyed by that path resolved
// to absolute, mirroring the original's `marked_header_units` map. This is
// the one place that drives header-unit promotion (prepare.go's
// promoteHeaderUnits): the backend's own dependency scan is what actually
// resolved the header spelling against the compiler's include-search path,
// something the in-house scanner cannot do on its own (spec.md §4.4). The
// returned rule and ok are for CrossCheck; ok is false (no error) when the
// document carried no rules at all.
func ParseP1689(data []byte, t *model.Task, markedHeaderUnits map[string]string) (P1689Rule, bool, error) {
	var doc P1689Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return P1689Rule{}, false, fmt.Errorf("parsing P1689 dependency info for %s: %w", t.UniqueName, err)
	}
	if len(doc.Rules) == 0 {
		return P1689Rule{}, false, nil
	}
	rule := doc.Rules[0]

	for _, r := range rule.Requires {
		if r.SourcePath == "" {
			continue
		}
		abs, err := filepath.Abs(r.SourcePath)
		if err != nil {
			abs = r.SourcePath
		}
		markedHeaderUnits[abs] = r.LogicalName
	}
	return rule, true, nil
}

// Discrepancy describes one difference between the in-house scanner's
// produces/requires for a task and the backend's own P1689 scan of the
// same file, used by the optional cross-check (spec.md §4.5, last
// paragraph; §9 "Duplicate scan results").
type Discrepancy struct {
	Task           string
	MissingProduce []string
	ExtraProduce   []string
	MissingRequire []string
	ExtraRequire   []string
}

// CrossCheck compares a task's in-house produces/requires against a
// parsed P1689 rule and reports any discrepancy. An empty, nil return
// means the two scans agree.
func CrossCheck(t *model.Task, rule P1689Rule) *Discrepancy {
	want := make(map[string]bool, len(rule.Provides))
	for _, p := range rule.Provides {
		want[p.LogicalName] = true
	}
	have := make(map[string]bool, len(t.Produces))
	for _, name := range t.Produces {
		have[name] = true
	}

	var d Discrepancy
	for name := range want {
		if !have[name] {
			d.MissingProduce = append(d.MissingProduce, name)
		}
	}
	for name := range have {
		if !want[name] {
			d.ExtraProduce = append(d.ExtraProduce, name)
		}
	}

	wantReq := make(map[string]bool, len(rule.Requires))
	for _, r := range rule.Requires {
		wantReq[r.LogicalName] = true
	}
	haveReq := make(map[string]bool, len(t.Requires))
	for _, r := range t.Requires {
		haveReq[r.LogicalName] = true
	}
	for name := range wantReq {
		if !haveReq[name] {
			d.MissingRequire = append(d.MissingRequire, name)
		}
	}
	for name := range haveReq {
		if !wantReq[name] {
			d.ExtraRequire = append(d.ExtraRequire, name)
		}
	}

	if len(d.MissingProduce)+len(d.ExtraProduce)+len(d.MissingRequire)+len(d.ExtraRequire) == 0 {
		return nil
	}
	d.Task = t.UniqueName
	return &d
}
