package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zedlang/zedc/source"
)

func writeUnit(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// We try to compile several bogus programs and expect each to fail with
// a renderable diagnostic rather than a panic.
func TestBogusInput(t *testing.T) {
	tests := []string{
		"",
		"fn (a) { return a; }", // missing function name
		"x = ;",                // missing expression
		"fn f(a) { return a",   // unterminated block
		"fn helper(a); x = 1;", // declared but never defined
		"fn f(a){} fn f(a){}",  // duplicate definition
	}

	for _, test := range tests {
		dir := t.TempDir()
		path := writeUnit(t, dir, "main.zed", test)
		c := New(source.NewManager(), "")
		if _, err := c.CompileUnit(path, true); err == nil {
			t.Errorf("expected an error compiling %q, got none", test)
		}
	}
}

// Test some valid programs compile to non-empty assembly mentioning the
// expected entry point or function label.
func TestValidPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"arithmetic", "x = 1 + 2 * 3;", "_start:"},
		{"function", "fn add(a, b) { return a + b; }\nx = add(1, 2);", "add:"},
		{"control flow", "fn f(n) { if (n == 0) { return 1; } return n; }\nx = f(3);", "f:"},
		{"while loop", "x = 0;\nwhile (x < 10) { x = x + 1; }", "_start:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeUnit(t, dir, "main.zed", tt.src)
			c := New(source.NewManager(), "")
			out, err := c.CompileUnit(path, true)
			if err != nil {
				t.Fatalf("unexpected error compiling %q: %v", tt.src, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Fatalf("expected generated output to contain %q, got:\n%s", tt.want, out)
			}
		})
	}
}

func TestCompileProjectCompilesEveryUnit(t *testing.T) {
	dir := t.TempDir()
	libPath := writeUnit(t, dir, "lib.zed", "fn helper(a) { return a; }")
	mainPath := writeUnit(t, dir, "main.zed", `@include "lib.zed";
x = helper(1);`)

	c := New(source.NewManager(), "")
	out, err := c.CompileProject(mainPath, []string{libPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected assembly for 2 units, got %d", len(out))
	}
	if !strings.Contains(out[mainPath], "_start:") {
		t.Fatalf("expected the main unit's output to contain _start")
	}
}

func TestDebugEnablesVerboseTracingWithoutChangingOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "main.zed", "x = 1;")

	plain := New(source.NewManager(), "")
	out1, err := plain.CompileUnit(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verbose := New(source.NewManager(), "")
	verbose.SetDebug(true)
	out2, err := verbose.CompileUnit(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out1 != out2 {
		t.Fatalf("expected SetDebug to only affect tracing, not the generated assembly")
	}
}
