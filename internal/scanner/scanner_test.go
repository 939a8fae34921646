package scanner

import (
	"testing"

	"github.com/harmonybuild/harmony/internal/model"
)

func scanAll(t *testing.T, src string) ([]model.Component, model.ScanResult, []error) {
	t.Helper()
	var comps []model.Component
	res, errs := ScanFile("test.cpp", []byte(src), func(c model.Component) {
		comps = append(comps, c)
	})
	return comps, res, errs
}

func TestScanInterfaceUnit(t *testing.T) {
	comps, _, errs := scanAll(t, "export module a;\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d: %+v", len(comps), comps)
	}
	c := comps[0]
	if c.Name != "a" || c.Kind != model.InterfaceComponent || !c.Exported || c.Imported {
		t.Errorf("unexpected component: %+v", c)
	}
}

func TestScanImport(t *testing.T) {
	comps, _, errs := scanAll(t, "import a;\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(comps) != 1 || comps[0].Name != "a" || !comps[0].Imported || comps[0].Exported {
		t.Fatalf("unexpected components: %+v", comps)
	}
}

func TestScanExportImport(t *testing.T) {
	comps, _, _ := scanAll(t, "export import a;\n")
	if len(comps) != 1 || !comps[0].Exported || !comps[0].Imported {
		t.Fatalf("unexpected components: %+v", comps)
	}
}

func TestScanHeaderUnitImport(t *testing.T) {
	comps, _, _ := scanAll(t, `import "h.hpp";`+"\n")
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %+v", comps)
	}
	c := comps[0]
	if c.Kind != model.HeaderUnitComponent || c.Name != "h.hpp" || c.Angled {
		t.Errorf("unexpected component: %+v", c)
	}
}

func TestScanAngledHeaderUnitImport(t *testing.T) {
	comps, _, _ := scanAll(t, "import <vector>;\n")
	if len(comps) != 1 || !comps[0].Angled || comps[0].Name != "vector" {
		t.Fatalf("unexpected components: %+v", comps)
	}
}

func TestScanPartitionInheritsPrimary(t *testing.T) {
	comps, _, errs := scanAll(t, "module a;\nimport :p;\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %+v", comps)
	}
	if comps[1].Name != "a:p" {
		t.Errorf("partition import should inherit primary name, got %q", comps[1].Name)
	}
}

func TestScanPartitionWrongPrimaryIsReported(t *testing.T) {
	comps, _, errs := scanAll(t, "module a;\nimport b:p;\n")
	if len(errs) == 0 {
		t.Fatalf("expected an error for partition belonging to the wrong primary module")
	}
	// The component is still emitted — the original scanner logs and continues.
	if len(comps) != 2 {
		t.Fatalf("expected the mismatched partition import to still be emitted, got %+v", comps)
	}
}

func TestScanPrivateModuleFragmentIgnored(t *testing.T) {
	comps, _, _ := scanAll(t, "module a;\nmodule :private;\n")
	if len(comps) != 1 {
		t.Fatalf("private fragment opener should not emit a component, got %+v", comps)
	}
}

func TestScanGlobalModuleFragmentIgnored(t *testing.T) {
	comps, _, _ := scanAll(t, "module;\n#include <cstdio>\nexport module a;\n")
	if len(comps) != 1 || comps[0].Name != "a" {
		t.Fatalf("expected only the primary module declaration, got %+v", comps)
	}
}

func TestScanSkipsPreprocessorConditionals(t *testing.T) {
	comps, _, _ := scanAll(t, "#ifdef FOO\nimport guarded;\n#endif\nimport a;\n")
	if len(comps) != 2 {
		t.Fatalf("guarded imports are always seen as active per spec, expected 2 components, got %+v", comps)
	}
}

func TestScanBackslashNewlineContinuation(t *testing.T) {
	comps, _, _ := scanAll(t, "#define X \\\n    1\nimport a;\n")
	if len(comps) != 1 || comps[0].Name != "a" {
		t.Fatalf("expected the #define to be fully skipped across its continuation, got %+v", comps)
	}
}

func TestUniqueNameDeterministic(t *testing.T) {
	src := []byte("export module a;\n")
	_, r1, _ := scanAll(t, string(src))
	_, r2, _ := scanAll(t, string(src))
	if r1.UniqueName != r2.UniqueName {
		t.Errorf("ScanFile should be deterministic: %q != %q", r1.UniqueName, r2.UniqueName)
	}
	if r1.Hash != r2.Hash {
		t.Errorf("hash should be deterministic")
	}
}

func TestModuleKeywordRequiresWordBoundary(t *testing.T) {
	comps, _, _ := scanAll(t, "automodule a;\n")
	if len(comps) != 0 {
		t.Fatalf("'automodule' should not be recognized as a module keyword, got %+v", comps)
	}
}
