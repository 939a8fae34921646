// Package harmonyerr provides the centralized, structured error taxonomy
// used across the build engine, following the same schema/code/phase
// report shape the teacher compiler used for its own diagnostics.
package harmonyerr

import (
	"encoding/json"
	"errors"
)

// Location points at a byte offset (and best-effort line) in a source file.
// Populated by the scanner; left nil for errors that have no file position.
type Location struct {
	Path   string `json:"path"`
	Offset int    `json:"offset"`
	Line   int    `json:"line,omitempty"`
}

// Report is the canonical structured error type for the build engine.
// All error builders return *Report, which can be wrapped as a ReportError
// and unwrapped again with errors.As.
type Report struct {
	Schema  string         `json:"schema"`           // always "harmony.error/v1"
	Code    string         `json:"code"`             // e.g. RES001, SCH002
	Phase   string         `json:"phase"`            // "config", "scan", "resolve", "backend-scan", "schedule", "link"
	Message string         `json:"message"`          // human-readable message
	Loc     *Location      `json:"loc,omitempty"`    // source location, optional
	Data    map[string]any `json:"data,omitempty"`   // structured detail (task names, cycle paths, ...)
	Fix     *Fix           `json:"fix,omitempty"`    // suggested remediation, optional
}

// Fix is a suggested remediation attached to a Report.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// ReportError wraps a Report as an error so structured detail survives
// errors.As() unwrapping through ordinary Go error handling.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders a Report deterministically (sorted map keys via encoding/json).
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Generic wraps an arbitrary runtime error in a Report for a given phase.
func Generic(phase string, err error) *Report {
	return &Report{
		Schema:  "harmony.error/v1",
		Code:    "RUNTIME",
		Phase:   phase,
		Message: err.Error(),
		Data:    map[string]any{},
	}
}
