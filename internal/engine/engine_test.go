package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/harmonybuild/harmony/internal/backend"
	"github.com/harmonybuild/harmony/internal/backend/stub"
	"github.com/harmonybuild/harmony/internal/model"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildEndToEndSingleInterfaceAndConsumer(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "greeter.ixx"), "export module greeter;\nexport void greet();\n")
	writeFile(t, filepath.Join(dir, "main.cpp"), "import greeter;\nint main() { return 0; }\n")

	manifestDoc := map[string]interface{}{
		"targets": []map[string]interface{}{
			{
				"name": "app",
				"dir":  dir,
				"sources": []string{
					filepath.Join(dir, "greeter.ixx"),
					filepath.Join(dir, "main.cpp"),
				},
				"executable": map[string]interface{}{
					"name": "app",
				},
			},
		},
	}
	data, err := json.Marshal(manifestDoc)
	if err != nil {
		t.Fatal(err)
	}
	manifestPath := filepath.Join(dir, "harmony.json")
	writeFile(t, manifestPath, string(data))

	buildDir := filepath.Join(dir, "build")
	be := stub.New(buildDir)

	report, err := Build(context.Background(), be, Options{ManifestPath: manifestPath, BuildDir: buildDir})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if report.TasksTotal != 2 {
		t.Errorf("TasksTotal = %d, want 2", report.TasksTotal)
	}
	if len(report.Failed) != 0 {
		t.Errorf("Failed = %v, want none", report.Failed)
	}
	if len(report.Blocked) != 0 {
		t.Errorf("Blocked = %v, want none", report.Blocked)
	}
	if len(report.LinkFailed) != 0 {
		t.Errorf("LinkFailed = %v, want none", report.LinkFailed)
	}
}

func TestBuildReportsUnresolvedRequirement(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.cpp"), "import nonexistent_module;\nint main(){return 0;}\n")

	manifestDoc := map[string]interface{}{
		"targets": []map[string]interface{}{
			{
				"name":    "app",
				"dir":     dir,
				"sources": []string{filepath.Join(dir, "main.cpp")},
			},
		},
	}
	data, _ := json.Marshal(manifestDoc)
	manifestPath := filepath.Join(dir, "harmony.json")
	writeFile(t, manifestPath, string(data))

	be := stub.New(filepath.Join(dir, "build"))
	_, err := Build(context.Background(), be, Options{ManifestPath: manifestPath, BuildDir: filepath.Join(dir, "build")})
	if err == nil {
		t.Fatal("expected an unresolved-requirement error, got nil")
	}
}

// headerUnitScanner wraps stub.Backend and implements backend.DependencyScanner
// by reporting the real header's source-path for any requirement spelled
// "h.hpp" — standing in for a compiler's own include-search resolution
// (spec.md §4.4), which the in-house scanner cannot perform on its own.
type headerUnitScanner struct {
	*stub.Backend
	headerPath string
}

func (b *headerUnitScanner) FindDependencies(_ context.Context, tasks []*model.Task) ([][]byte, error) {
	docs := make([][]byte, len(tasks))
	for i, t := range tasks {
		var rule backend.P1689Rule
		for _, p := range t.Produces {
			rule.Provides = append(rule.Provides, backend.P1689Provides{LogicalName: p})
		}
		for _, r := range t.Requires {
			req := backend.P1689Requires{LogicalName: r.LogicalName}
			if r.LogicalName == "h.hpp" {
				req.SourcePath = b.headerPath
			}
			rule.Requires = append(rule.Requires, req)
		}
		data, err := json.Marshal(backend.P1689Document{Rules: []backend.P1689Rule{rule}})
		if err != nil {
			return nil, err
		}
		docs[i] = data
	}
	return docs, nil
}

var _ backend.DependencyScanner = (*headerUnitScanner)(nil)

func TestBuildPromotesHeaderUnitViaBackendDependencyScan(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "h.hpp"), "// no module statements here\n")
	writeFile(t, filepath.Join(dir, "main.cpp"), "import \"h.hpp\";\nint main() { return 0; }\n")

	manifestDoc := map[string]interface{}{
		"targets": []map[string]interface{}{
			{
				"name": "app",
				"dir":  dir,
				"sources": []string{
					filepath.Join(dir, "h.hpp"),
					filepath.Join(dir, "main.cpp"),
				},
				"executable": map[string]interface{}{
					"name": "app",
				},
			},
		},
	}
	data, err := json.Marshal(manifestDoc)
	if err != nil {
		t.Fatal(err)
	}
	manifestPath := filepath.Join(dir, "harmony.json")
	writeFile(t, manifestPath, string(data))

	headerPath, err := filepath.Abs(filepath.Join(dir, "h.hpp"))
	if err != nil {
		t.Fatal(err)
	}
	buildDir := filepath.Join(dir, "build")
	be := &headerUnitScanner{Backend: stub.New(buildDir), headerPath: headerPath}

	report, err := Build(context.Background(), be, Options{ManifestPath: manifestPath, BuildDir: buildDir})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.TasksTotal != 2 {
		t.Errorf("TasksTotal = %d, want 2", report.TasksTotal)
	}
	if len(report.Failed) != 0 {
		t.Errorf("Failed = %v, want none", report.Failed)
	}
	if len(report.Blocked) != 0 {
		t.Errorf("Blocked = %v, want none", report.Blocked)
	}
}

// disagreeingScanner always reports an extra produced name the in-house
// scanner never saw, forcing crossCheckDependencies's BKD001 path.
type disagreeingScanner struct {
	*stub.Backend
}

func (b *disagreeingScanner) FindDependencies(_ context.Context, tasks []*model.Task) ([][]byte, error) {
	docs := make([][]byte, len(tasks))
	for i := range tasks {
		doc := backend.P1689Document{Rules: []backend.P1689Rule{
			{Provides: []backend.P1689Provides{{LogicalName: "unexpected"}}},
		}}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		docs[i] = data
	}
	return docs, nil
}

var _ backend.DependencyScanner = (*disagreeingScanner)(nil)

func TestBuildFailsOnBackendScanDiscrepancy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "greeter.ixx"), "export module greeter;\n")

	manifestDoc := map[string]interface{}{
		"targets": []map[string]interface{}{
			{"name": "lib", "dir": dir, "sources": []string{filepath.Join(dir, "greeter.ixx")}},
		},
	}
	data, err := json.Marshal(manifestDoc)
	if err != nil {
		t.Fatal(err)
	}
	manifestPath := filepath.Join(dir, "harmony.json")
	writeFile(t, manifestPath, string(data))

	buildDir := filepath.Join(dir, "build")
	be := &disagreeingScanner{Backend: stub.New(buildDir)}

	_, err = Build(context.Background(), be, Options{ManifestPath: manifestPath, BuildDir: buildDir})
	if err == nil {
		t.Fatal("expected a backend-scan discrepancy error, got nil")
	}
}
