// Package codegen lowers a parsed Zed program into GNU-assembler (AT&T
// syntax) for x86-64 Linux.
//
// The overall shape — a header naming globals, a body emitted by walking
// the program once, and a data section trailing it — is grounded on the
// teacher's single-pass generator (compiler/generator.go and
// compiler/compiler.go's output method in skx-math-compiler). Three
// things change: AT&T syntax instead of Intel (spec §5), a real
// expression tree walk instead of a flat instruction-stream switch, and
// a real stack-slot symbol table (symtab.Env) instead of fixed named
// globals for operands.
package codegen

import (
	"fmt"
	"strings"

	"github.com/zedlang/zedc/ast"
	"github.com/zedlang/zedc/label"
	"github.com/zedlang/zedc/source"
	"github.com/zedlang/zedc/symtab"
)

// argRegs holds the SysV AMD64 integer argument registers, in order.
var argRegs = [6]string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

// Generator lowers one translation unit's AST into assembly text. A
// Generator is single-use: construct a fresh one per unit (spec §3),
// since its label factory and string table are scoped to one output
// file.
type Generator struct {
	labels *label.Factory
	strs   *stringTable
	funcs  map[string]bool
}

// New returns a Generator ready to lower one unit.
func New() *Generator {
	return &Generator{labels: label.New(), strs: newStringTable()}
}

// Generate lowers prog into a complete assembly file. When isMain is
// true, the unit's top-level statements (if any) are wrapped in a
// `_start` entry point that terminates via the raw `exit` syscall —
// spec §5 excludes any libc dependency, so there is no `main`/CRT
// handoff to return through.
func (g *Generator) Generate(prog *ast.Program, isMain bool) (string, error) {
	g.funcs = make(map[string]bool)
	for _, item := range prog.Items {
		if def, ok := item.(*ast.FuncDef); ok {
			g.funcs[def.Name] = true
		}
	}

	var funcBody strings.Builder
	var topStmts []ast.Statement
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FuncDef:
			asm, err := g.genFunc(it)
			if err != nil {
				return "", err
			}
			funcBody.WriteString(asm)
		case *ast.TopStmt:
			if !isMain {
				return "", source.NewDiagnostic(it.Span(), "executable code outside function in library unit")
			}
			topStmts = append(topStmts, it.Stmt)
		case *ast.FuncDecl:
			// A predeclaration alone generates nothing; the
			// definition it promises emits the body.
		}
	}

	var out strings.Builder
	out.WriteString(".text\n")
	// Globals follow definition order rather than map order, so the same
	// program always yields the same text.
	for _, item := range prog.Items {
		if def, ok := item.(*ast.FuncDef); ok {
			fmt.Fprintf(&out, ".globl %s\n", def.Name)
		}
	}
	if isMain {
		out.WriteString(".globl _start\n")
	}
	out.WriteString("\n")

	if isMain {
		start, err := g.genStart(topStmts)
		if err != nil {
			return "", err
		}
		out.WriteString(start)
	}
	out.WriteString(funcBody.String())
	out.WriteString(g.strs.render())
	return out.String(), nil
}

// genStart lowers the main unit's top-level statements into the `_start`
// entry point. There is no caller frame to honor SysV alignment for
// beyond the initial push, so locals are allocated exactly as in an
// ordinary function.
func (g *Generator) genStart(stmts []ast.Statement) (string, error) {
	env := symtab.New()
	env.EnterScope()
	for _, s := range stmts {
		if err := reserveSlots(env, s); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	b.WriteString("_start:\n")
	b.WriteString("        pushq %rbp\n")
	b.WriteString("        movq %rsp, %rbp\n")
	if size := env.FrameSize(); size > 0 {
		fmt.Fprintf(&b, "        subq $%d, %%rsp\n", size)
	}

	for _, s := range stmts {
		asm, err := g.genStmt(env, s)
		if err != nil {
			return "", err
		}
		b.WriteString(asm)
	}

	// exit(0) via the raw syscall (rax=60, rdi=status); there is no
	// libc and no caller to return to.
	b.WriteString("        movq $60, %rax\n")
	b.WriteString("        movq $0, %rdi\n")
	b.WriteString("        syscall\n\n")
	return b.String(), nil
}

// genFunc lowers one function definition into its labeled assembly
// body, including the SysV prologue/epilogue and argument spill.
func (g *Generator) genFunc(def *ast.FuncDef) (string, error) {
	if len(def.Params) > 255 {
		return "", source.NewDiagnostic(def.SourceSpan, "function %q declares %d parameters, over the 255 limit", def.Name, len(def.Params))
	}

	env := symtab.New()
	env.EnterScope()

	offsets := make([]int, len(def.Params))
	for i, p := range def.Params {
		off, err := env.Define(p)
		if err != nil {
			return "", err
		}
		offsets[i] = off
	}
	if err := reserveSlots(env, def.Body); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", def.Name)
	b.WriteString("        pushq %rbp\n")
	b.WriteString("        movq %rsp, %rbp\n")
	if size := env.FrameSize(); size > 0 {
		fmt.Fprintf(&b, "        subq $%d, %%rsp\n", size)
	}

	for i := range def.Params {
		if i < len(argRegs) {
			fmt.Fprintf(&b, "        movq %s, %d(%%rbp)\n", argRegs[i], offsets[i])
			continue
		}
		// Arguments beyond the six register slots arrive on the
		// caller's stack, above the saved return address and saved
		// rbp: the first stack argument sits at 16(%rbp).
		stackIdx := i - len(argRegs)
		fmt.Fprintf(&b, "        movq %d(%%rbp), %%rax\n", 16+stackIdx*8)
		fmt.Fprintf(&b, "        movq %%rax, %d(%%rbp)\n", offsets[i])
	}

	asm, err := g.genStmt(env, def.Body)
	if err != nil {
		return "", err
	}
	b.WriteString(asm)

	// A function whose body falls off the end without an explicit
	// return yields 0, matching the implicit-return convention of
	// spec §4.6.
	b.WriteString("        movq $0, %rax\n")
	b.WriteString("        leave\n")
	b.WriteString("        ret\n\n")
	return b.String(), nil
}

// reserveSlots walks stmt's subtree, allocating a stack slot for every
// variable assigned within it that isn't already bound. A function body
// is a single flat scope (spec §4.5 scopes variables to the enclosing
// function, not to each block); symtab.Env's nested-scope support is
// exercised at the single EnterScope call genFunc/genStart makes, not
// per block, so an assignment inside an `if` or `while` body is visible
// for the rest of the function exactly like C.
func reserveSlots(env *symtab.Env, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Assign:
		if _, ok := env.Lookup(s.Name); !ok {
			if _, err := env.Define(s.Name); err != nil {
				return err
			}
		}
	case *ast.IndexAssign:
		if _, ok := env.Lookup(s.Name); !ok {
			if _, err := env.Define(s.Name); err != nil {
				return err
			}
		}
	case *ast.Block:
		for _, inner := range s.Stmts {
			if err := reserveSlots(env, inner); err != nil {
				return err
			}
		}
	case *ast.If:
		if err := reserveSlots(env, s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return reserveSlots(env, s.Else)
		}
	case *ast.While:
		return reserveSlots(env, s.Body)
	case *ast.AsmBlock:
		for _, out := range s.Outputs {
			if _, ok := env.Lookup(out.Ident); !ok {
				if _, err := env.Define(out.Ident); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
