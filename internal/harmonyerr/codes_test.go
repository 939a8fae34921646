package harmonyerr

import "testing"

func TestReportRoundTrip(t *testing.T) {
	r := &Report{
		Schema:  "harmony.error/v1",
		Code:    RES001,
		Phase:   "resolve",
		Message: "unresolved logical module requirement",
		Data: map[string]any{
			"requiring_task": "c.cpp.abc123",
			"logical_name":   "no_such",
		},
	}

	err := Wrap(r)
	got, ok := AsReport(err)
	if !ok {
		t.Fatalf("AsReport: expected to unwrap a *Report")
	}
	if got.Code != RES001 {
		t.Errorf("Code = %q, want %q", got.Code, RES001)
	}

	js, jsErr := got.ToJSON(true)
	if jsErr != nil {
		t.Fatalf("ToJSON: %v", jsErr)
	}
	if js == "" {
		t.Error("ToJSON: expected non-empty output")
	}
}

func TestAsReportMiss(t *testing.T) {
	if _, ok := AsReport(nil); ok {
		t.Error("AsReport(nil): expected false")
	}
}
