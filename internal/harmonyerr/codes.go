// Package harmonyerr provides centralized error code definitions for the
// build engine. Codes follow a consistent per-phase taxonomy so tooling
// and log consumers can key off a stable string rather than message text.
package harmonyerr

const (
	// ============================================================
	// Configuration errors (CFG###) — fatal during manifest parsing
	// ============================================================

	// CFG001 indicates the manifest file could not be read.
	CFG001 = "CFG001"
	// CFG002 indicates the manifest is not well-formed JSON.
	CFG002 = "CFG002"
	// CFG003 indicates a required manifest field is missing, or a target
	// name is duplicated within one manifest.
	CFG003 = "CFG003"
	// CFG004 indicates a malformed "git" reference.
	CFG004 = "CFG004"
	// CFG005 indicates a source entry that is neither a bare path string
	// nor a valid source-set object.
	CFG005 = "CFG005"
	// CFG006 indicates an unknown enum value for a recognized field (source
	// type, executable type, or download type).
	CFG006 = "CFG006"
	// CFG007 indicates a recursive target-to-target import dependency,
	// detected while flattening the target graph.
	CFG007 = "CFG007"
	// CFG008 indicates a target imports another target name not present
	// anywhere in the loaded manifest set.
	CFG008 = "CFG008"

	// ============================================================
	// Scanner errors (SCN###) — returned by ScanFile; the build stops on any
	// ============================================================

	// SCN001 indicates a buffer overrun was detected (fatal bug, aborts scan).
	SCN001 = "SCN001"
	// SCN002 indicates a module partition whose primary name disagrees with
	// the translation unit's own primary module.
	SCN002 = "SCN002"

	// ============================================================
	// Resolution errors (RES###) — fatal before scheduling
	// ============================================================

	// RES001 indicates an unresolved logical module requirement.
	RES001 = "RES001"
	// RES002 indicates two tasks producing the same logical module name.
	RES002 = "RES002"
	// RES003 indicates a cycle in the requires-DAG.
	RES003 = "RES003"

	// ============================================================
	// Backend discrepancy errors (BKD###) — fatal before compilation
	// ============================================================

	// BKD001 indicates the in-house scanner and the backend's P1689 scan
	// disagree on produces/requires for some task.
	BKD001 = "BKD001"

	// ============================================================
	// Scheduler errors (SCH###) — reported, build exits non-zero
	// ============================================================

	// SCH001 indicates the dispatcher detected deadlock with no failed tasks
	// (an illegal dependency chain, e.g. a cycle that slipped past the
	// resolver, or a dependency never inserted into the task list).
	SCH001 = "SCH001"
	// SCH002 indicates the dispatcher is blocked after one or more failed
	// compilations; see the per-task blockage report attached as Data.
	SCH002 = "SCH002"

	// ============================================================
	// Link errors (LNK###) — reported per target
	// ============================================================

	// LNK001 indicates a target's link step failed.
	LNK001 = "LNK001"
)
