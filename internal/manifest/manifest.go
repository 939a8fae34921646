package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/harmonybuild/harmony/internal/harmonyerr"
	"github.com/harmonybuild/harmony/internal/model"
)

// Doc is the raw JSON shape of a Harmony manifest (spec.md §6). Unknown
// top-level and target fields are ignored by encoding/json automatically;
// unknown enum values inside recognized fields are rejected by Parse.
type Doc struct {
	Targets []TargetDoc `json:"targets"`
}

// TargetDoc is one manifest target entry.
type TargetDoc struct {
	Name string `json:"name"`
	Dir  string `json:"dir,omitempty"`

	Sources []json.RawMessage `json:"sources,omitempty"`

	Include []string `json:"include,omitempty"`
	Define  []string `json:"define,omitempty"`
	Shared  []string `json:"shared,omitempty"`
	Link    []string `json:"link,omitempty"`

	Import          []string `json:"import,omitempty"`
	ImportPublic    []string `json:"import-public,omitempty"`
	ImportInterface []string `json:"import-interface,omitempty"`

	Executable *ExecutableDoc `json:"executable,omitempty"`

	Git      json.RawMessage `json:"git,omitempty"`
	Download *DownloadDoc    `json:"download,omitempty"`
	CMake    *CMakeDoc       `json:"cmake,omitempty"`
}

// SourceSetDoc is the object form of a `sources[]` entry.
type SourceSetDoc struct {
	Type    string   `json:"type"`
	Paths   []string `json:"paths"`
	Include []string `json:"includes,omitempty"`
	Define  []string `json:"define,omitempty"`
}

// ExecutableDoc is the manifest's `executable` object.
type ExecutableDoc struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// DownloadDoc is the manifest's `download` object.
type DownloadDoc struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// CMakeDoc is the manifest's `cmake` object (a CMake sub-build's inputs and
// exported artifacts; none of this is evaluated — it is passed through
// unchanged to the external CMake-invoking collaborator, per spec.md §1's
// "deliberately out of scope").
type CMakeDoc struct {
	Options []string `json:"options,omitempty"`
	Include []string `json:"include,omitempty"`
	Link    []string `json:"link,omitempty"`
	Shared  []string `json:"shared,omitempty"`
}

// GitRef is the resolved form of a manifest `git` field, which may appear
// as a bare URL string or as `{url, branch}`.
type GitRef struct {
	URL    string
	Branch string
}

var sourceTypeKinds = map[string]model.SourceKind{
	"c":            model.SourceC,
	"c++":          model.SourceCpp,
	"c++header":    model.SourceCppHeader,
	"c++interface": model.SourceCppInterface,
}

var executableTypeSubsystems = map[string]model.Subsystem{
	"console": model.Console,
	"window":  model.Window,
}

// Load reads a manifest file from path and converts it into a set of
// model.Target values, ready for scanning and expansion. It does not
// perform the target-graph flattening step — call FlattenImports once all
// manifests contributing to a build have been loaded and merged.
func Load(path string) ([]*model.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, harmonyerr.Wrap(&harmonyerr.Report{
			Schema:  "harmony.error/v1",
			Code:    harmonyerr.CFG001,
			Phase:   "config",
			Message: fmt.Sprintf("reading manifest %s: %v", path, err),
		})
	}
	return Parse(path, data)
}

// Parse converts raw manifest JSON bytes into targets. path is used only
// for diagnostics.
func Parse(path string, data []byte) ([]*model.Target, error) {
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, harmonyerr.Wrap(&harmonyerr.Report{
			Schema:  "harmony.error/v1",
			Code:    harmonyerr.CFG002,
			Phase:   "config",
			Message: fmt.Sprintf("parsing manifest %s: %v", path, err),
		})
	}

	seen := make(map[string]bool, len(doc.Targets))
	targets := make([]*model.Target, 0, len(doc.Targets))
	for _, td := range doc.Targets {
		if td.Name == "" {
			return nil, harmonyerr.Wrap(&harmonyerr.Report{
				Schema:  "harmony.error/v1",
				Code:    harmonyerr.CFG003,
				Phase:   "config",
				Message: fmt.Sprintf("%s: target missing required field \"name\"", path),
			})
		}
		if seen[td.Name] {
			return nil, harmonyerr.Wrap(&harmonyerr.Report{
				Schema:  "harmony.error/v1",
				Code:    harmonyerr.CFG003,
				Phase:   "config",
				Message: fmt.Sprintf("%s: duplicate target %q", path, td.Name),
			})
		}
		seen[td.Name] = true

		t, err := convertTarget(path, td)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets, nil
}

func convertTarget(path string, td TargetDoc) (*model.Target, error) {
	t := &model.Target{
		Name:       td.Name,
		Dir:        td.Dir,
		Libs:       td.Link,
		SharedLibs: td.Shared,
	}

	for _, raw := range td.Sources {
		ss, err := convertSourceSet(path, td.Name, raw)
		if err != nil {
			return nil, err
		}
		ss.IncludeDirs = append(append([]string{}, td.Include...), ss.IncludeDirs...)
		ss.Defines = append(append([]string{}, td.Define...), ss.Defines...)
		t.SourceSets = append(t.SourceSets, ss)
	}

	for _, name := range td.Import {
		t.Imports = append(t.Imports, model.ImportEdge{TargetName: name, Kind: model.Private})
	}
	for _, name := range td.ImportPublic {
		t.Imports = append(t.Imports, model.ImportEdge{TargetName: name, Kind: model.Public})
	}
	for _, name := range td.ImportInterface {
		t.Imports = append(t.Imports, model.ImportEdge{TargetName: name, Kind: model.Interface})
	}

	if td.Executable != nil {
		subsys := model.Console
		if td.Executable.Type != "" {
			s, ok := executableTypeSubsystems[td.Executable.Type]
			if !ok {
				return nil, unknownEnum(path, td.Name, "executable.type", td.Executable.Type)
			}
			subsys = s
		}
		t.Executable = &model.Executable{Path: td.Executable.Name, Subsystem: subsys}
	}

	if td.Download != nil && td.Download.Type != "" && td.Download.Type != "zip" {
		return nil, unknownEnum(path, td.Name, "download.type", td.Download.Type)
	}

	if len(td.Git) > 0 {
		if _, err := parseGitRef(td.Git); err != nil {
			return nil, harmonyerr.Wrap(&harmonyerr.Report{
				Schema:  "harmony.error/v1",
				Code:    harmonyerr.CFG004,
				Phase:   "config",
				Message: fmt.Sprintf("%s: target %q has a malformed \"git\" field: %v", path, td.Name, err),
			})
		}
	}

	return t, nil
}

func convertSourceSet(path, targetName string, raw json.RawMessage) (model.SourceSet, error) {
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return model.SourceSet{Paths: []string{bare}}, nil
	}

	var ss SourceSetDoc
	if err := json.Unmarshal(raw, &ss); err != nil {
		return model.SourceSet{}, harmonyerr.Wrap(&harmonyerr.Report{
			Schema:  "harmony.error/v1",
			Code:    harmonyerr.CFG005,
			Phase:   "config",
			Message: fmt.Sprintf("%s: target %q has a source entry that is neither a string nor an object: %v", path, targetName, err),
		})
	}

	kind := model.SourceUnknown
	if ss.Type != "" {
		k, ok := sourceTypeKinds[ss.Type]
		if !ok {
			return model.SourceSet{}, unknownEnum(path, targetName, "sources[].type", ss.Type)
		}
		kind = k
	}

	return model.SourceSet{
		Paths:        ss.Paths,
		IncludeDirs:  ss.Include,
		Defines:      ss.Define,
		KindOverride: kind,
	}, nil
}

func parseGitRef(raw json.RawMessage) (GitRef, error) {
	var url string
	if err := json.Unmarshal(raw, &url); err == nil {
		return GitRef{URL: url}, nil
	}
	var obj struct {
		URL    string `json:"url"`
		Branch string `json:"branch,omitempty"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return GitRef{}, err
	}
	return GitRef{URL: obj.URL, Branch: obj.Branch}, nil
}

func unknownEnum(path, target, field, value string) error {
	return harmonyerr.Wrap(&harmonyerr.Report{
		Schema:  "harmony.error/v1",
		Code:    harmonyerr.CFG006,
		Phase:   "config",
		Message: fmt.Sprintf("%s: target %q has an unrecognized value %q for %s", path, target, value, field),
		Data:    map[string]any{"target": target, "field": field, "value": value},
	})
}
