package codegen

import (
	"fmt"
	"strings"

	"github.com/zedlang/zedc/ast"
	"github.com/zedlang/zedc/source"
	"github.com/zedlang/zedc/symtab"
)

// genStmt lowers one statement, leaving no value on the evaluation
// stack — any expression it evaluates is consumed immediately.
func (g *Generator) genStmt(env *symtab.Env, stmt ast.Statement) (string, error) {
	switch s := stmt.(type) {
	case *ast.Assign:
		return g.genAssign(env, s)
	case *ast.IndexAssign:
		return g.genIndexAssign(env, s)
	case *ast.ExprStmt:
		val, err := g.genExpr(env, s.Expr)
		if err != nil {
			return "", err
		}
		return val, nil // the result in %rax is simply discarded
	case *ast.Block:
		var b strings.Builder
		for _, inner := range s.Stmts {
			asm, err := g.genStmt(env, inner)
			if err != nil {
				return "", err
			}
			b.WriteString(asm)
		}
		return b.String(), nil
	case *ast.If:
		return g.genIf(env, s)
	case *ast.While:
		return g.genWhile(env, s)
	case *ast.Return:
		return g.genReturn(env, s)
	case *ast.AsmBlock:
		return g.genAsm(env, s)
	default:
		return "", source.NewDiagnostic(stmt.Span(), "unhandled statement type %T", stmt)
	}
}

func (g *Generator) genAssign(env *symtab.Env, s *ast.Assign) (string, error) {
	val, err := g.genExpr(env, s.Value)
	if err != nil {
		return "", err
	}
	off, ok := env.Lookup(s.Name)
	if !ok {
		return "", source.NewDiagnostic(s.SourceSpan, "%q was never allocated a slot", s.Name)
	}
	return val + fmt.Sprintf("        movq %%rax, %d(%%rbp)\n", off), nil
}

// genIndexAssign lowers `name[index] = value;`: name holds a byte
// pointer (spec §9), so the store is a single-byte write at base+index.
func (g *Generator) genIndexAssign(env *symtab.Env, s *ast.IndexAssign) (string, error) {
	var b strings.Builder

	val, err := g.genExpr(env, s.Value)
	if err != nil {
		return "", err
	}
	b.WriteString(val)
	b.WriteString("        pushq %rax\n") // save the value to store

	idx, err := g.genExpr(env, s.Index)
	if err != nil {
		return "", err
	}
	b.WriteString(idx)
	b.WriteString("        movq %rax, %rcx\n") // index

	off, ok := env.Lookup(s.Name)
	if !ok {
		return "", source.NewDiagnostic(s.SourceSpan, "%q was never allocated a slot", s.Name)
	}
	fmt.Fprintf(&b, "        movq %d(%%rbp), %%rdx\n", off) // base
	b.WriteString("        popq %rax\n")                    // value
	b.WriteString("        movb %al, (%rdx,%rcx,1)\n")      // *(base+index) = value
	return b.String(), nil
}

func (g *Generator) genIf(env *symtab.Env, s *ast.If) (string, error) {
	cond, err := g.genExpr(env, s.Cond)
	if err != nil {
		return "", err
	}
	then, err := g.genStmt(env, s.Then)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(cond)
	b.WriteString("        testq %rax, %rax\n")

	if s.Else == nil {
		end := g.labels.Fresh()
		fmt.Fprintf(&b, "        jz %s\n", end)
		b.WriteString(then)
		fmt.Fprintf(&b, "%s:\n", end)
		return b.String(), nil
	}

	elseLabel := g.labels.Fresh()
	end := g.labels.Fresh()
	elseAsm, err := g.genStmt(env, s.Else)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "        jz %s\n", elseLabel)
	b.WriteString(then)
	fmt.Fprintf(&b, "        jmp %s\n", end)
	fmt.Fprintf(&b, "%s:\n", elseLabel)
	b.WriteString(elseAsm)
	fmt.Fprintf(&b, "%s:\n", end)
	return b.String(), nil
}

func (g *Generator) genWhile(env *symtab.Env, s *ast.While) (string, error) {
	top := g.labels.Fresh()
	end := g.labels.Fresh()

	cond, err := g.genExpr(env, s.Cond)
	if err != nil {
		return "", err
	}
	body, err := g.genStmt(env, s.Body)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", top)
	b.WriteString(cond)
	b.WriteString("        testq %rax, %rax\n")
	fmt.Fprintf(&b, "        jz %s\n", end)
	b.WriteString(body)
	fmt.Fprintf(&b, "        jmp %s\n", top)
	fmt.Fprintf(&b, "%s:\n", end)
	return b.String(), nil
}

func (g *Generator) genReturn(env *symtab.Env, s *ast.Return) (string, error) {
	var b strings.Builder
	if s.Value != nil {
		val, err := g.genExpr(env, s.Value)
		if err != nil {
			return "", err
		}
		b.WriteString(val)
	} else {
		b.WriteString("        movq $0, %rax\n")
	}
	b.WriteString("        leave\n")
	b.WriteString("        ret\n")
	return b.String(), nil
}

// genAsm lowers an inline-asm block. The template is emitted verbatim;
// constraint strings are not copied into the output, and the compiler
// never rejects a constraint it doesn't recognize. Each input is
// materialized via constraintRegister,
// which treats a fixed hard-register code (a/b/c/d/D/S) as naming that
// register and anything else — including the generic "r" form spec
// §4.6 names — as "any register", defaulting to %rax, the register
// every expression already leaves its value in. Bound outputs are
// spilled back to their variable's slot after the template, and the
// clobber list (if any) is emitted as a verbatim annotation, since
// there is no register allocator here for it to constrain.
func (g *Generator) genAsm(env *symtab.Env, s *ast.AsmBlock) (string, error) {
	var b strings.Builder

	for _, in := range s.Inputs {
		val, err := g.genExpr(env, in.Expr)
		if err != nil {
			return "", err
		}
		b.WriteString(val)
		reg := constraintRegister(in.Constraint)
		if reg != "%rax" {
			fmt.Fprintf(&b, "        movq %%rax, %s\n", reg)
		}
	}

	fmt.Fprintf(&b, "        %s\n", s.Template)

	for _, out := range s.Outputs {
		reg := constraintRegister(strings.TrimPrefix(out.Constraint, "="))
		off, ok := env.Lookup(out.Ident)
		if !ok {
			return "", source.NewDiagnostic(s.SourceSpan, "%q was never allocated a slot", out.Ident)
		}
		fmt.Fprintf(&b, "        movq %s, %d(%%rbp)\n", reg, off)
	}

	if len(s.Clobbers) > 0 {
		fmt.Fprintf(&b, "        # clobbers: %s\n", strings.Join(s.Clobbers, ", "))
	}
	return b.String(), nil
}

// constraintRegister maps the fixed hard-register GCC-style constraint
// codes spec §4.6 documents ("a","b","c","d","D","S") to their 64-bit
// names. Any other constraint — "r", "m", or anything the program
// author wrote — is not interpreted: it defaults to %rax, since that is
// where every materialized value already lives.
func constraintRegister(constraint string) string {
	switch constraint {
	case "b":
		return "%rbx"
	case "c":
		return "%rcx"
	case "d":
		return "%rdx"
	case "D":
		return "%rdi"
	case "S":
		return "%rsi"
	default:
		return "%rax"
	}
}
