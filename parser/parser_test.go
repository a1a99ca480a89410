package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zedlang/zedc/ast"
	"github.com/zedlang/zedc/source"
)

// writeUnit writes text to a temp file under dir and returns its path.
func writeUnit(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestParseFuncDefAndTopStmt(t *testing.T) {
	dir := t.TempDir()
	main := writeUnit(t, dir, "main.zed", `
fn add(a, b) {
	return a + b;
}
x = add(1, 2);
`)
	p := New(source.NewManager(), "")
	prog, err := p.ParseMain(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(prog.Items))
	}
	def, ok := prog.Items[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("expected first item to be a FuncDef, got %T", prog.Items[0])
	}
	if def.Name != "add" || len(def.Params) != 2 {
		t.Fatalf("unexpected func def: %+v", def)
	}
	if _, ok := prog.Items[1].(*ast.TopStmt); !ok {
		t.Fatalf("expected second item to be a TopStmt, got %T", prog.Items[1])
	}
}

func TestPredeclarationThenDefinitionIsAllowed(t *testing.T) {
	dir := t.TempDir()
	main := writeUnit(t, dir, "main.zed", `
fn helper(a);
fn helper(a) { return a; }
`)
	p := New(source.NewManager(), "")
	if _, err := p.ParseMain(main); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeclaredButNeverDefinedIsAnError(t *testing.T) {
	dir := t.TempDir()
	main := writeUnit(t, dir, "main.zed", `
fn helper(a);
x = 1;
`)
	p := New(source.NewManager(), "")
	if _, err := p.ParseMain(main); err == nil {
		t.Fatalf("expected an error for a declared-but-undefined function")
	}
}

func TestDuplicateDefinitionIsAnError(t *testing.T) {
	dir := t.TempDir()
	main := writeUnit(t, dir, "main.zed", `
fn helper(a) { return a; }
fn helper(a) { return a; }
`)
	p := New(source.NewManager(), "")
	if _, err := p.ParseMain(main); err == nil {
		t.Fatalf("expected an error for a duplicate definition")
	}
}

func TestMutualRecursionViaPredeclaration(t *testing.T) {
	dir := t.TempDir()
	main := writeUnit(t, dir, "main.zed", `
fn isEven(n);
fn isOdd(n) {
	if (n == 0) {
		return 0;
	}
	return isEven(n - 1);
}
fn isEven(n) {
	if (n == 0) {
		return 1;
	}
	return isOdd(n - 1);
}
`)
	p := New(source.NewManager(), "")
	if _, err := p.ParseMain(main); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIncludeSplicing(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "util.zed", `fn helper(a) { return a; }`)
	main := writeUnit(t, dir, "main.zed", `
@include "util.zed";
x = helper(1);
`)
	p := New(source.NewManager(), "")
	prog, err := p.ParseMain(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Items) != 2 {
		t.Fatalf("expected 2 spliced items, got %d", len(prog.Items))
	}
	if _, ok := prog.Items[0].(*ast.FuncDef); !ok {
		t.Fatalf("expected the included FuncDef first, got %T", prog.Items[0])
	}
}

func TestIncludeIsNoOpWhenAlreadyLoaded(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "util.zed", `fn helper(a) { return a; }`)
	main := writeUnit(t, dir, "main.zed", `
@include "util.zed";
@include "util.zed";
x = helper(1);
`)
	p := New(source.NewManager(), "")
	prog, err := p.ParseMain(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Items) != 2 {
		t.Fatalf("expected the second include to be a no-op, got %d items", len(prog.Items))
	}
}

func TestCircularIncludeIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "a.zed", `@include "b.zed";`)
	writeUnit(t, dir, "b.zed", `@include "a.zed";`)
	main := writeUnit(t, dir, "main.zed", `@include "a.zed";`)
	p := New(source.NewManager(), "")
	if _, err := p.ParseMain(main); err == nil {
		t.Fatalf("expected a circular include error")
	}
}

func TestSysIncludeResolvesAgainstStdlibRoot(t *testing.T) {
	dir := t.TempDir()
	stdlib := t.TempDir()
	writeUnit(t, stdlib, "io.zed", `fn write(fd, buf, n) { return n; }`)
	main := writeUnit(t, dir, "main.zed", `@include <io.zed>;`)
	p := New(source.NewManager(), stdlib)
	prog, err := p.ParseMain(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 spliced item, got %d", len(prog.Items))
	}
}

func TestInlineAsmClauses(t *testing.T) {
	dir := t.TempDir()
	main := writeUnit(t, dir, "main.zed", `
fn syscall3(n, a, b) {
	asm "syscall" : "=a"[ret] : "a"[n], "D"[a] : "rcx", "r11";
	return ret;
}
`)
	p := New(source.NewManager(), "")
	prog, err := p.ParseMain(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := prog.Items[0].(*ast.FuncDef)
	asmStmt, ok := def.Body.Stmts[0].(*ast.AsmBlock)
	if !ok {
		t.Fatalf("expected an AsmBlock, got %T", def.Body.Stmts[0])
	}
	if len(asmStmt.Outputs) != 1 || asmStmt.Outputs[0].Ident != "ret" {
		t.Fatalf("unexpected outputs: %+v", asmStmt.Outputs)
	}
	if len(asmStmt.Inputs) != 2 {
		t.Fatalf("unexpected inputs: %+v", asmStmt.Inputs)
	}
	if len(asmStmt.Clobbers) != 2 {
		t.Fatalf("unexpected clobbers: %+v", asmStmt.Clobbers)
	}
}

func TestExpressionPrecedence(t *testing.T) {
	dir := t.TempDir()
	main := writeUnit(t, dir, "main.zed", `
x = 1 + 2 * 3;
`)
	p := New(source.NewManager(), "")
	prog, err := p.ParseMain(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assign := prog.Items[0].(*ast.TopStmt).Stmt.(*ast.Assign)
	bin, ok := assign.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("expected a Binary expression, got %T", assign.Value)
	}
	// 1 + (2 * 3): the top-level operator must be the lower-precedence +.
	if _, ok := bin.Left.(*ast.IntLit); !ok {
		t.Fatalf("expected left operand to be the literal 1, got %T", bin.Left)
	}
	if _, ok := bin.Right.(*ast.Binary); !ok {
		t.Fatalf("expected right operand to be the nested 2 * 3, got %T", bin.Right)
	}
}

func TestIndexedAssignAndRead(t *testing.T) {
	dir := t.TempDir()
	main := writeUnit(t, dir, "main.zed", `
buf[0] = 65;
x = buf[0];
`)
	p := New(source.NewManager(), "")
	prog, err := p.ParseMain(main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := prog.Items[0].(*ast.TopStmt).Stmt.(*ast.IndexAssign); !ok {
		t.Fatalf("expected an IndexAssign, got %T", prog.Items[0].(*ast.TopStmt).Stmt)
	}
	assign := prog.Items[1].(*ast.TopStmt).Stmt.(*ast.Assign)
	if _, ok := assign.Value.(*ast.Index); !ok {
		t.Fatalf("expected an Index read, got %T", assign.Value)
	}
}
