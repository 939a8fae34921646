// Package scanner implements the hand-rolled, single-pass, byte-wise
// scanner for C++20 module statements described in spec.md §4.1. It
// recognizes #include directives and module/import statements well enough
// to drive dependency discovery; it is not a preprocessor and does not
// understand comments or string literals (see the Limitations section
// below and spec.md §9).
//
// The state machine mirrors _examples/original_source/src/build-scan.cpp
// (the C++ original) cursor-by-cursor, but is restructured around
// explicit index bounds instead of raw pointer arithmetic, matching the
// cursor-struct idiom the teacher's own internal/lexer package used for its
// AILANG tokenizer (readChar/peekChar over an explicit position).
package scanner

import (
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/harmonybuild/harmony/internal/harmonyerr"
	"github.com/harmonybuild/harmony/internal/model"
)

// sentinelPad is the minimum number of trailing whitespace bytes appended
// to the real file content before scanning, so that bounded lookahead
// (checking "nclude", "odule", "mport" etc. near end-of-file) never reads
// past the backing array. See spec.md §4.1 ("padded with at least 16
// trailing bytes of harmless sentinel whitespace").
const sentinelPad = 16

// ScanFile scans one translation unit's raw bytes and delivers each
// recognized Component to sink in source order. It returns a ScanResult
// summarizing the scan (size/hash/unique name) plus any non-fatal
// diagnostics collected along the way (e.g. a partition import whose
// primary module disagrees with the file's own). A buffer overrun — an
// unterminated header-unit spelling that runs to the end of the file's
// real content, into the sentinel padding — is reported as the single element of errs and scanning stops immediately,
// matching spec.md's "Buffer overrun is a fatal bug (aborts the scan)."
func ScanFile(path string, raw []byte, sink func(model.Component)) (model.ScanResult, []error) {
	hash := xxhash.Sum64(raw)
	result := model.ScanResult{
		Size:       len(raw),
		Hash:       hash,
		UniqueName: fmt.Sprintf("%s.%016x", filepath.Base(path), hash),
	}

	padded := make([]byte, len(raw)+sentinelPad)
	copy(padded, raw)
	for i := len(raw); i < len(padded); i++ {
		padded[i] = ' '
	}

	s := &state{path: path, data: padded, limit: len(raw), sink: sink}
	s.run()
	return result, s.errs
}

func isWS(c byte) bool  { return c == ' ' || c == '\t' }
func isNL(c byte) bool  { return c == '\n' || c == '\r' }
func isWSNL(c byte) bool {
	return isWS(c) || isNL(c)
}
func isIdentChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '.' || c == '_'
}

type state struct {
	path  string
	data  []byte // real content + sentinelPad bytes of trailing spaces
	limit int    // length of the real content within data
	sink  func(model.Component)

	primary string
	errs    []error
	fatal   bool
}

func (s *state) overrun() {
	s.fatal = true
	s.errs = append(s.errs, harmonyerr.Wrap(&harmonyerr.Report{
		Schema:  "harmony.error/v1",
		Code:    harmonyerr.SCN001,
		Phase:   "scan",
		Message: "buffer overrun while scanning for a statement terminator",
		Loc:     &harmonyerr.Location{Path: s.path},
	}))
}

// atWordBoundary reports whether position i begins a new identifier: i is
// the start of the buffer or the preceding byte is whitespace/newline.
func (s *state) atWordBoundary(i int) bool {
	return i == 0 || isWSNL(s.data[i-1])
}

func (s *state) run() {
	i := 0
	for i < s.limit {
		switch s.data[i] {
		case '#':
			i = s.skipDirective(i)
		case 'm', 'i':
			next, ok := s.scanModuleStatement(i)
			if !ok {
				i++
				continue
			}
			i = next
		default:
			i++
		}
		if s.fatal {
			return
		}
	}
}

// skipDirective handles a `#` directive: only `#include` is interpreted;
// everything else is skipped through its unescaped terminating newline,
// honoring backslash-newline continuation and CRLF pairs.
func (s *state) skipDirective(i int) int {
	j := i + 1
	for j < len(s.data) && isWS(s.data[j]) {
		j++
	}
	if j+7 <= len(s.data) && string(s.data[j:j+7]) == "include" {
		k := j + 7
		for k < len(s.data) && isWS(s.data[k]) {
			k++
		}
		if k < s.limit && (s.data[k] == '<' || s.data[k] == '"') {
			angled := s.data[k] == '<'
			term := byte('"')
			if angled {
				term = '>'
			}
			k++
			for k < s.limit && s.data[k] != term {
				k++
			}
			if k >= s.limit {
				// Malformed #include (unterminated spelling): the toolchain
				// will reject this file itself; we skip it silently per
				// spec.md §4.1's failure semantics.
				return s.limit
			}
			return k + 1
		}
		return k
	}

	// Not #include: skip to the next unescaped, unescaped-CRLF-aware newline.
	k := j
	for {
		for k < len(s.data) && !isNL(s.data[k]) {
			k++
		}
		if k >= len(s.data) {
			return k
		}
		escaped := k > 0 && s.data[k-1] == '\\'
		if s.data[k] == '\r' && k+1 < len(s.data) && s.data[k+1] == '\n' {
			k += 2
		} else {
			k++
		}
		if !escaped {
			return k
		}
	}
}

// scanModuleStatement attempts to recognize a module/import statement
// starting at or around index i (i points at 'm' for "module" or at 'i'
// for "import"). Returns the index to resume scanning from and whether a
// statement was recognized at all (false means "advance by one and keep
// looking", matching the original's `++c; continue`).
func (s *state) scanModuleStatement(i int) (int, bool) {
	var keywordEnd int
	isImport := false

	switch {
	case s.data[i] == 'm' && s.atWordBoundary(i) && hasPrefix(s.data, i, "module"):
		keywordEnd = i + len("module")
	case s.data[i] == 'i' && s.atWordBoundary(i) && hasPrefix(s.data, i, "import"):
		keywordEnd = i + len("import")
		isImport = true
	default:
		return i, false
	}

	c := keywordEnd
	if c >= len(s.data) || !isWSNL(s.data[c]) {
		// Not actually followed by a boundary (e.g. "moduleFoo"): not a
		// real keyword occurrence.
		return i, false
	}
	for c < len(s.data) && isWSNL(s.data[c]) {
		c++
	}

	if c < len(s.data) && s.data[c] == ';' {
		// Bare `module;` — global-module-fragment opener, ignored.
		return c + 1, true
	}

	var name, part string
	var angled bool
	isHeaderUnit := false

	if c < len(s.data) && (s.data[c] == '"' || s.data[c] == '<') {
		isHeaderUnit = true
		angled = s.data[c] == '<'
		term := byte('"')
		if angled {
			term = '>'
		}
		start := c + 1
		k := start
		for k < s.limit && s.data[k] != term {
			k++
		}
		if k >= s.limit {
			s.overrun()
			return s.limit, true
		}
		name = string(s.data[start:k])
		k++
		for k < len(s.data) && isWSNL(s.data[k]) {
			k++
		}
		if k >= len(s.data) || s.data[k] != ';' {
			// Missing terminating semicolon: skip silently.
			return k, true
		}
		c = k + 1
	} else {
		nameStart := c
		for c < len(s.data) && isIdentChar(s.data[c]) {
			c++
		}
		nameEnd := c
		name = string(s.data[nameStart:nameEnd])

		for c < len(s.data) && isWSNL(s.data[c]) {
			c++
		}

		if c < len(s.data) && s.data[c] == ':' {
			c++
			for c < len(s.data) && isWSNL(s.data[c]) {
				c++
			}
			partStart := c
			for c < len(s.data) && isIdentChar(s.data[c]) {
				c++
			}
			part = string(s.data[partStart:c])

			if name == "" && part == "private" {
				// Private-module-fragment opener: ignore entirely.
				return c, true
			}
		}

		for c < len(s.data) && isWSNL(s.data[c]) {
			c++
		}
		if c >= len(s.data) || s.data[c] != ';' {
			// Not a semicolon-terminated module statement: ignore.
			return c, true
		}
		c++
	}

	exported := s.precededByExport(i)

	if isImport {
		if part != "" && name == "" {
			name = s.primary
		}
	} else {
		s.primary = name
	}

	if isImport && part != "" && name != s.primary {
		s.errs = append(s.errs, harmonyerr.Wrap(&harmonyerr.Report{
			Schema:  "harmony.error/v1",
			Code:    harmonyerr.SCN002,
			Phase:   "scan",
			Message: fmt.Sprintf("module partition :%s does not belong to primary module %q", part, s.primary),
			Loc:     &harmonyerr.Location{Path: s.path, Offset: i},
			Data:    map[string]any{"primary": s.primary, "partition": part},
		}))
	}

	comp := model.Component{
		Exported: exported,
		Imported: isImport,
		Angled:   angled,
	}
	if isHeaderUnit {
		comp.Kind = model.HeaderUnitComponent
		comp.Name = name
	} else {
		comp.Kind = model.InterfaceComponent
		if part != "" {
			comp.Name = name + ":" + part
		} else {
			comp.Name = name
		}
	}
	s.sink(comp)

	return c, true
}

// precededByExport reports whether an `export` keyword, at a word
// boundary, appears before keywordStart on the same physical line
// (separated only by horizontal whitespace — spec.md §4.1: "the keyword
// may be preceded on the same line by export"). This deliberately does not
// cross a newline, tightening the C++ original's pointer-walk (which
// skipped any whitespace including newlines); see DESIGN.md.
func (s *state) precededByExport(keywordStart int) bool {
	p := keywordStart - 1
	for p >= 0 && isWS(s.data[p]) {
		p--
	}
	if p < len("export")-1 {
		return false
	}
	start := p - len("export") + 1
	if start < 0 {
		return false
	}
	if string(s.data[start:p+1]) != "export" {
		return false
	}
	return start == 0 || isWSNL(s.data[start-1])
}

func hasPrefix(data []byte, i int, word string) bool {
	if i+len(word) > len(data) {
		return false
	}
	return string(data[i:i+len(word)]) == word
}
