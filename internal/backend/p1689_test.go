package backend

import (
	"encoding/json"
	"testing"

	"github.com/harmonybuild/harmony/internal/model"
)

func TestParseP1689RecordsHeaderUnitSourcePath(t *testing.T) {
	t1 := &model.Task{UniqueName: "main.cpp.hash1", Requires: []model.Dependency{{LogicalName: "h.hpp"}}}
	doc := P1689Document{Rules: []P1689Rule{
		{Requires: []P1689Requires{{LogicalName: "h.hpp", SourcePath: "/abs/include/h.hpp"}}},
	}}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	marked := map[string]string{}
	rule, ok, err := ParseP1689(data, t1, marked)
	if err != nil {
		t.Fatalf("ParseP1689() error = %v", err)
	}
	if !ok {
		t.Fatal("expected ok = true for a document with rules")
	}
	if marked["/abs/include/h.hpp"] != "h.hpp" {
		t.Errorf("markedHeaderUnits[/abs/include/h.hpp] = %q, want h.hpp", marked["/abs/include/h.hpp"])
	}
	// t1's own Produces/Requires must be untouched (no duplication).
	if len(t1.Requires) != 1 {
		t.Errorf("t1.Requires = %v, want unchanged single entry", t1.Requires)
	}
	if len(rule.Requires) != 1 || rule.Requires[0].LogicalName != "h.hpp" {
		t.Errorf("returned rule mismatch: %+v", rule)
	}
}

func TestParseP1689EmptyDocumentIsNotOK(t *testing.T) {
	t1 := &model.Task{UniqueName: "x.cpp.hash1"}
	data, err := json.Marshal(P1689Document{})
	if err != nil {
		t.Fatal(err)
	}

	_, ok, err := ParseP1689(data, t1, map[string]string{})
	if err != nil {
		t.Fatalf("ParseP1689() error = %v", err)
	}
	if ok {
		t.Error("expected ok = false for a document with no rules")
	}
}

func TestCrossCheckAgreesOnIdenticalSets(t *testing.T) {
	t1 := &model.Task{UniqueName: "a.ixx.hash1", Produces: []string{"a"}, Requires: []model.Dependency{{LogicalName: "b"}}}
	rule := P1689Rule{
		Provides: []P1689Provides{{LogicalName: "a"}},
		Requires: []P1689Requires{{LogicalName: "b"}},
	}
	if d := CrossCheck(t1, rule); d != nil {
		t.Errorf("CrossCheck() = %+v, want nil", d)
	}
}

func TestCrossCheckReportsDiscrepancy(t *testing.T) {
	t1 := &model.Task{UniqueName: "a.ixx.hash1", Produces: []string{"a"}, Requires: []model.Dependency{{LogicalName: "b"}}}
	rule := P1689Rule{
		Provides: []P1689Provides{{LogicalName: "a"}, {LogicalName: "a:part"}},
		Requires: []P1689Requires{{LogicalName: "c"}},
	}
	d := CrossCheck(t1, rule)
	if d == nil {
		t.Fatal("expected a discrepancy")
	}
	if d.Task != "a.ixx.hash1" {
		t.Errorf("Task = %q, want a.ixx.hash1", d.Task)
	}
	if len(d.MissingProduce) != 1 || d.MissingProduce[0] != "a:part" {
		t.Errorf("MissingProduce = %v, want [a:part]", d.MissingProduce)
	}
	if len(d.MissingRequire) != 1 || d.MissingRequire[0] != "c" {
		t.Errorf("MissingRequire = %v, want [c]", d.MissingRequire)
	}
	if len(d.ExtraRequire) != 1 || d.ExtraRequire[0] != "b" {
		t.Errorf("ExtraRequire = %v, want [b]", d.ExtraRequire)
	}
}
