// Package source owns loaded file text, byte-offset positions, and the
// rendering of compiler diagnostics against that text.
//
// A Manager loads each file exactly once, keyed by its canonicalized
// absolute path, so that "./foo.zed" and "foo.zed" resolve to the same
// Unit. Units are immutable after load.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ID identifies a loaded source unit.
type ID int

// Unit is one loaded file: its text plus the line-start index used to
// translate byte offsets into (line, column) pairs.
type Unit struct {
	ID   ID
	Path string
	Text string

	// lineStarts[i] is the byte offset of the first byte of line i+1
	// (1-based lines). Computed once, on load.
	lineStarts []int
}

// Span is a half-open byte range within one source unit. It is carried
// on every token and AST node and used only for diagnostics.
type Span struct {
	Unit  ID
	Start int
	End   int
}

// Manager owns the set of loaded units and assigns them stable ids.
type Manager struct {
	units  []*Unit
	byPath map[string]ID
}

// NewManager returns an empty source manager.
func NewManager() *Manager {
	return &Manager{byPath: make(map[string]ID)}
}

// Canonical resolves path to the absolute form used for unit identity.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving path %q", path)
	}
	return filepath.Clean(abs), nil
}

// Lookup returns the id already assigned to the canonical path, if any.
func (m *Manager) Lookup(canonicalPath string) (ID, bool) {
	id, ok := m.byPath[canonicalPath]
	return id, ok
}

// Load reads path from disk (unless it is already loaded) and returns its
// Unit. The path is canonicalized first, so repeated loads of the same
// file under different spellings return the same Unit.
func (m *Manager) Load(path string) (*Unit, error) {
	canonical, err := Canonical(path)
	if err != nil {
		return nil, err
	}
	if id, ok := m.byPath[canonical]; ok {
		return m.units[id], nil
	}

	text, err := os.ReadFile(canonical)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read %s", path)
	}

	id := ID(len(m.units))
	u := &Unit{ID: id, Path: canonical, Text: string(text)}
	u.lineStarts = computeLineStarts(u.Text)
	m.units = append(m.units, u)
	m.byPath[canonical] = id
	return u, nil
}

// LoadText registers text already held in memory under path, without
// touching the filesystem. Used by tools (and tests) that already have
// a unit's contents, such as a REPL reading from stdin.
func (m *Manager) LoadText(path, text string) *Unit {
	id := ID(len(m.units))
	u := &Unit{ID: id, Path: path, Text: text}
	u.lineStarts = computeLineStarts(u.Text)
	m.units = append(m.units, u)
	m.byPath[path] = id
	return u
}

// Unit returns the unit previously loaded under id.
func (m *Manager) Unit(id ID) *Unit {
	return m.units[id]
}

func computeLineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Position is a 1-based (line, column) pair.
type Position struct {
	Line   int
	Column int
}

// Position translates a byte offset into a (line, column) pair in
// O(log lines) via binary search over the precomputed line-start index.
func (u *Unit) Position(offset int) Position {
	// sort.Search finds the first line-start greater than offset; the
	// line containing offset is the one before it.
	line := sort.Search(len(u.lineStarts), func(i int) bool {
		return u.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	col := offset - u.lineStarts[line] + 1
	return Position{Line: line + 1, Column: col}
}

// Line returns the text of the given 1-based line number, without its
// trailing newline.
func (u *Unit) Line(n int) string {
	if n < 1 || n > len(u.lineStarts) {
		return ""
	}
	start := u.lineStarts[n-1]
	end := len(u.Text)
	if n < len(u.lineStarts) {
		end = u.lineStarts[n] - 1
	}
	line := u.Text[start:end]
	return strings.TrimSuffix(line, "\r")
}

// Diagnostic is a single span-anchored compiler error. The core surfaces
// at most one per detected defect (spec §7: first error aborts the unit).
type Diagnostic struct {
	Span    Span
	Message string
}

func (d *Diagnostic) Error() string {
	return d.Message
}

// Render produces the block spec §7 mandates: a header line, a location
// arrow line, and the source excerpt line followed by a caret underline
// matching the span — four lines of text in all.
func (d *Diagnostic) Render(m *Manager) string {
	u := m.Unit(d.Span.Unit)
	pos := u.Position(d.Span.Start)
	line := u.Line(pos.Line)

	width := d.Span.End - d.Span.Start
	if width < 1 {
		width = 1
	}
	caretLine := strings.Repeat(" ", pos.Column-1) + strings.Repeat("^", width)

	return fmt.Sprintf("error: %s\n  --> %s:%d:%d\n%s\n%s",
		d.Message, u.Path, pos.Line, pos.Column, line, caretLine)
}

// NewDiagnostic constructs a Diagnostic for the given span and message.
func NewDiagnostic(span Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Span: span, Message: fmt.Sprintf(format, args...)}
}
