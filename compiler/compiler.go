// Package compiler wires the lexer, parser, and code generator into the
// driver object the command-line tool uses: given a unit's path, produce
// its assembly text, or fail with a renderable diagnostic.
//
// The New/SetDebug/Compile shape is grounded directly on the teacher's
// compiler.Compiler (compiler/compiler.go in skx-math-compiler):
// SetDebug there toggled an `int 03` debug trap in the output; here it
// toggles glog's verbose stage tracing instead, since there is no
// single-expression output left to annotate inline.
package compiler

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/zedlang/zedc/ast"
	"github.com/zedlang/zedc/codegen"
	"github.com/zedlang/zedc/parser"
	"github.com/zedlang/zedc/source"
)

// hasFuncDef reports whether prog defines at least one function.
func hasFuncDef(prog *ast.Program) bool {
	for _, item := range prog.Items {
		if _, ok := item.(*ast.FuncDef); ok {
			return true
		}
	}
	return false
}

// Compiler drives one project's compilation: a main unit plus whatever
// units it transitively includes, resolved against a standard-library
// root (spec §4.3).
type Compiler struct {
	mgr        *source.Manager
	stdlibRoot string
	debug      bool
}

// New returns a Compiler sharing mgr across every unit it compiles, so
// that a unit included from two different compiled units is read from
// disk only once; each CompileUnit call still parses it afresh with its
// own parser.
func New(mgr *source.Manager, stdlibRoot string) *Compiler {
	return &Compiler{mgr: mgr, stdlibRoot: stdlibRoot}
}

// SetDebug enables verbose per-stage tracing via glog.V(1).
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// CompileUnit parses path (splicing its includes) and lowers it to
// assembly text. isMain controls whether top-level statements are
// legal and whether a `_start` entry point is emitted (spec §4.6).
func (c *Compiler) CompileUnit(path string, isMain bool) (string, error) {
	if c.debug {
		glog.V(1).Infof("compiler: parsing %s (main=%v)", path, isMain)
	}

	p := parser.New(c.mgr, c.stdlibRoot)
	prog, err := p.ParseMain(path)
	if err != nil {
		return "", c.renderable(err)
	}

	if c.debug {
		glog.V(1).Infof("compiler: parsed %s into %d top-level items", path, len(prog.Items))
	}

	if !isMain && !hasFuncDef(prog) {
		glog.Warningf("compiler: library unit %s defines no functions", path)
	}

	gen := codegen.New()
	out, err := gen.Generate(prog, isMain)
	if err != nil {
		return "", c.renderable(err)
	}

	if c.debug {
		glog.V(1).Infof("compiler: generated %d bytes of assembly for %s", len(out), path)
	}
	return out, nil
}

// CompileProject compiles mainPath as the program's entry unit and every
// other path in units as a library unit, returning each unit's assembly
// keyed by its original path (spec §5: the project layout is a set of
// independently-assembled units, later linked together).
func (c *Compiler) CompileProject(mainPath string, units []string) (map[string]string, error) {
	out := make(map[string]string, len(units)+1)

	mainAsm, err := c.CompileUnit(mainPath, true)
	if err != nil {
		return nil, err
	}
	out[mainPath] = mainAsm

	for _, unit := range units {
		if unit == mainPath {
			continue
		}
		asm, err := c.CompileUnit(unit, false)
		if err != nil {
			return nil, err
		}
		out[unit] = asm
	}
	return out, nil
}

// renderable turns a *source.Diagnostic into an error whose message is
// already the location-anchored report spec §7 requires; any other
// error (I/O, internal) is passed through with its call stack attached.
func (c *Compiler) renderable(err error) error {
	diag, ok := err.(*source.Diagnostic)
	if !ok {
		return errors.WithStack(err)
	}
	return errors.New(diag.Render(c.mgr))
}
