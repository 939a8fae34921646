// Package logging wraps charmbracelet/log behind a small process-global
// logger, grounded on _examples/open-platform-model-cli's
// internal/output/log.go: a package-level *log.Logger, a Setup function
// that reconfigures it once global flags are parsed, and leveled
// Debug/Info/Warn/Error helpers. Phase hands out *log.Logger values, and
// backend/exec logs through charmbracelet/log's own default logger, so
// some call sites still import charmbracelet/log directly.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

// Setup reconfigures the global logger. verbose raises the level to Debug
// and turns on caller reporting, matching SPEC_FULL.md §2.2's logging
// section.
func Setup(verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		ReportCaller:    verbose,
		TimeFormat:      "15:04:05",
	})
}

// Phase returns a child logger prefixed with a build-phase name (e.g.
// "scan", "resolve", "schedule"), mirroring ModuleLogger's scoped-prefix
// idiom.
func Phase(name string) *log.Logger {
	return logger.WithPrefix(name)
}

func Debug(msg string, keyvals ...interface{}) { logger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { logger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { logger.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { logger.Error(msg, keyvals...) }
