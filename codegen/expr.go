package codegen

import (
	"fmt"
	"strings"

	"github.com/zedlang/zedc/ast"
	"github.com/zedlang/zedc/ops"
	"github.com/zedlang/zedc/source"
	"github.com/zedlang/zedc/symtab"
)

// setcc maps a comparison opcode to the AT&T set instruction that
// materializes its boolean result in %al.
var setcc = map[ops.Kind]string{
	ops.Eq: "sete",
	ops.Ne: "setne",
	ops.Lt: "setl",
	ops.Gt: "setg",
	ops.Le: "setle",
	ops.Ge: "setge",
}

// genExpr lowers expr, leaving its value in %rax.
func (g *Generator) genExpr(env *symtab.Env, expr ast.Expression) (string, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("        movq $%d, %%rax\n", e.Value), nil

	case *ast.StrLit:
		label := g.strs.intern(e.Value)
		return fmt.Sprintf("        leaq %s(%%rip), %%rax\n", label), nil

	case *ast.Ident:
		off, ok := env.Lookup(e.Name)
		if !ok {
			return "", source.NewDiagnostic(e.SourceSpan, "undefined variable %q", e.Name)
		}
		return fmt.Sprintf("        movq %d(%%rbp), %%rax\n", off), nil

	case *ast.Index:
		return g.genIndexRead(env, e)

	case *ast.Call:
		return g.genCall(env, e)

	case *ast.Unary:
		return g.genUnary(env, e)

	case *ast.Binary:
		return g.genBinary(env, e)

	default:
		return "", source.NewDiagnostic(expr.Span(), "unhandled expression type %T", expr)
	}
}

func (g *Generator) genIndexRead(env *symtab.Env, e *ast.Index) (string, error) {
	off, ok := env.Lookup(e.Name)
	if !ok {
		return "", source.NewDiagnostic(e.SourceSpan, "undefined variable %q", e.Name)
	}
	idx, err := g.genExpr(env, e.IndexExpr)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(idx)
	fmt.Fprintf(&b, "        movq %d(%%rbp), %%rcx\n", off)
	b.WriteString("        movzbq (%rcx,%rax,1), %rax\n")
	return b.String(), nil
}

func (g *Generator) genUnary(env *symtab.Env, e *ast.Unary) (string, error) {
	operand, err := g.genExpr(env, e.Operand)
	if err != nil {
		return "", err
	}
	if e.Op != ops.Neg {
		return "", source.NewDiagnostic(e.SourceSpan, "unsupported unary operator %q", e.Op)
	}
	return operand + "        negq %rax\n", nil
}

func (g *Generator) genBinary(env *symtab.Env, e *ast.Binary) (string, error) {
	if e.Op == ops.LAnd || e.Op == ops.LOr {
		return g.genShortCircuit(env, e)
	}

	left, err := g.genExpr(env, e.Left)
	if err != nil {
		return "", err
	}
	right, err := g.genExpr(env, e.Right)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(left)
	b.WriteString("        pushq %rax\n")
	b.WriteString(right)
	b.WriteString("        movq %rax, %rcx\n") // right operand
	b.WriteString("        popq %rax\n")       // left operand

	switch e.Op {
	case ops.Add:
		b.WriteString("        addq %rcx, %rax\n")
	case ops.Sub:
		b.WriteString("        subq %rcx, %rax\n")
	case ops.Mul:
		b.WriteString("        imulq %rcx, %rax\n")
	case ops.Div:
		b.WriteString("        cqto\n")
		b.WriteString("        idivq %rcx\n")
	default:
		if setInstr, ok := setcc[e.Op]; ok {
			b.WriteString("        cmpq %rcx, %rax\n")
			fmt.Fprintf(&b, "        %s %%al\n", setInstr)
			b.WriteString("        movzbq %al, %rax\n")
		} else {
			return "", source.NewDiagnostic(e.SourceSpan, "unsupported binary operator %q", e.Op)
		}
	}
	return b.String(), nil
}

// genShortCircuit lowers && and ||, which must not evaluate their right
// operand when the left already determines the result (spec §4.4).
func (g *Generator) genShortCircuit(env *symtab.Env, e *ast.Binary) (string, error) {
	left, err := g.genExpr(env, e.Left)
	if err != nil {
		return "", err
	}
	right, err := g.genExpr(env, e.Right)
	if err != nil {
		return "", err
	}

	shortCircuit := g.labels.Fresh()
	end := g.labels.Fresh()

	var b strings.Builder
	b.WriteString(left)
	b.WriteString("        testq %rax, %rax\n")
	if e.Op == ops.LAnd {
		fmt.Fprintf(&b, "        jz %s\n", shortCircuit)
	} else {
		fmt.Fprintf(&b, "        jnz %s\n", shortCircuit)
	}
	b.WriteString(right)
	b.WriteString("        testq %rax, %rax\n")
	b.WriteString("        setne %al\n")
	b.WriteString("        movzbq %al, %rax\n")
	fmt.Fprintf(&b, "        jmp %s\n", end)
	fmt.Fprintf(&b, "%s:\n", shortCircuit)
	if e.Op == ops.LAnd {
		b.WriteString("        movq $0, %rax\n")
	} else {
		b.WriteString("        movq $1, %rax\n")
	}
	fmt.Fprintf(&b, "%s:\n", end)
	return b.String(), nil
}

// genCall lowers a call expression, spilling the first six arguments
// into the SysV integer argument registers and pushing any remainder,
// realigning %rsp to 16 bytes before the `call` as the ABI requires.
// It does not consult the function registry: a call to a name this unit
// never defines compiles to an unresolved symbol and is left for the
// linker to join against another unit's definition (spec §9) — this is
// the only cross-unit resolution mechanism the compiler has.
func (g *Generator) genCall(env *symtab.Env, e *ast.Call) (string, error) {
	var b strings.Builder

	regArgs := len(e.Args)
	if regArgs > len(argRegs) {
		regArgs = len(argRegs)
	}
	stackArgs := len(e.Args) - regArgs

	// The alignment pad goes in before any argument is pushed, so it
	// sits above the stack-passed arguments rather than between them
	// and the return address.
	pad := stackArgs%2 != 0
	if pad {
		b.WriteString("        subq $8, %rsp\n")
	}

	// Arguments are evaluated and pushed right to left, so that after
	// every push the first argument ends up nearest the top of the
	// stack: the register-bound ones pop off in ascending order, and
	// whatever is left (the 7th argument and beyond) is already laid
	// out the way the callee's positive-rbp-offset reads expect.
	for i := len(e.Args) - 1; i >= 0; i-- {
		asm, err := g.genExpr(env, e.Args[i])
		if err != nil {
			return "", err
		}
		b.WriteString(asm)
		b.WriteString("        pushq %rax\n")
	}

	for i := 0; i < regArgs; i++ {
		fmt.Fprintf(&b, "        popq %s\n", argRegs[i])
	}

	fmt.Fprintf(&b, "        call %s\n", e.Name)
	if stackArgs > 0 {
		fmt.Fprintf(&b, "        addq $%d, %%rsp\n", stackArgs*8)
	}
	if pad {
		b.WriteString("        addq $8, %rsp\n")
	}
	return b.String(), nil
}
