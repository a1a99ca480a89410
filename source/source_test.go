package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, text string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.zed")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

// Trivial test that loading the same path twice returns the same unit.
func TestLoadIsIdempotent(t *testing.T) {
	path := writeTemp(t, "fn main() {}\n")

	m := NewManager()
	u1, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	u2, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load (again): %v", err)
	}
	if u1 != u2 {
		t.Errorf("expected the same *Unit for repeated loads, got different pointers")
	}
}

// Test Position against a small multi-line file.
func TestPosition(t *testing.T) {
	text := "fn add(a,b){\n  return a+b;\n}\n"
	path := writeTemp(t, text)

	m := NewManager()
	u, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		offset   int
		wantLine int
		wantCol  int
	}{
		{0, 1, 1},
		{3, 1, 4},
		{13, 2, 1},
		{22, 2, 10},
	}

	for _, tt := range tests {
		pos := u.Position(tt.offset)
		if pos.Line != tt.wantLine || pos.Column != tt.wantCol {
			t.Errorf("Position(%d) = %+v, want {Line:%d Column:%d}",
				tt.offset, pos, tt.wantLine, tt.wantCol)
		}
	}
}

// Test that Render produces the header, arrow, source and caret lines
// spec §7 requires.
func TestDiagnosticRender(t *testing.T) {
	text := "fn main() {\n  x = ;\n}\n"
	path := writeTemp(t, text)

	m := NewManager()
	u, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	span := Span{Unit: u.ID, Start: 18, End: 19}
	d := NewDiagnostic(span, "unexpected token %q", ";")

	rendered := d.Render(m)
	lines := strings.Split(rendered, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected a 4-line rendering (header/arrow/source/caret), got %d:\n%s", len(lines), rendered)
	}
	if !strings.HasPrefix(lines[0], "error: unexpected token") {
		t.Errorf("header line wrong: %q", lines[0])
	}
	if !strings.Contains(lines[1], "-->") {
		t.Errorf("arrow line wrong: %q", lines[1])
	}
	if !strings.Contains(lines[3], "^") {
		t.Errorf("caret line missing caret: %q", lines[3])
	}
}
