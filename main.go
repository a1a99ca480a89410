// This is the main-driver for our compiler.

package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/golang/glog"

	"github.com/zedlang/zedc/compiler"
	"github.com/zedlang/zedc/source"
)

func main() {
	//
	// Look for flags.
	//
	debug := flag.Bool("debug", false, "Trace each compilation stage via glog -v=1.")
	compile := flag.Bool("compile", false, "Assemble and link the program, via invoking as/ld.")
	program := flag.String("filename", "a.out", "The binary to write.")
	run := flag.Bool("run", false, "Run the binary, post-compile.")
	stdlib := flag.String("stdlib", "", "Root directory resolving @include <path>; directives.")
	flag.Parse()
	defer glog.Flush()

	//
	// If we're running we're also compiling.
	//
	if *run {
		*compile = true
	}

	if *stdlib != "" {
		if info, err := os.Stat(*stdlib); err != nil || !info.IsDir() {
			glog.Fatalf("stdlib root %q does not exist or is not a directory", *stdlib)
		}
	}

	//
	// Ensure we have a source file as our single argument.
	//
	if len(flag.Args()) != 1 {
		fmt.Printf("Usage: zedc [flags] 'path/to/main.zed'\n")
		os.Exit(1)
	}
	srcPath := flag.Args()[0]

	//
	// Create a compiler-object.
	//
	comp := compiler.New(source.NewManager(), *stdlib)

	//
	// Are we tracing compilation stages?
	//
	if *debug {
		comp.SetDebug(true)
	}

	//
	// Compile.
	//
	out, err := comp.CompileUnit(srcPath, true)
	if err != nil {
		fmt.Printf("%s\n", err.Error())
		os.Exit(1)
	}

	//
	// If we're not assembling the output, just write it to STDOUT.
	//
	if !*compile {
		fmt.Printf("%s", out)
		return
	}

	if err := assembleAndLink(out, *program); err != nil {
		fmt.Printf("Error building %s: %s\n", *program, err)
		os.Exit(1)
	}

	//
	// Running the binary too?
	//
	if *run {
		exe := exec.Command(*program)
		exe.Stdout = os.Stdout
		exe.Stderr = os.Stderr
		if err := exe.Run(); err != nil {
			fmt.Printf("Error launching %s: %s\n", *program, err)
			os.Exit(1)
		}
	}
}

// assembleAndLink pipes asm through `as` to an object file, then links
// it with `ld` into the named binary. There is no gcc/libc step here
// (unlike the teacher's driver): the generated program defines its own
// `_start` and exits via a raw syscall, so it links against nothing.
func assembleAndLink(asm, program string) error {
	objFile, err := os.CreateTemp("", "zedc-*.o")
	if err != nil {
		return err
	}
	objPath := objFile.Name()
	objFile.Close()
	defer os.Remove(objPath)

	as := exec.Command("as", "-o", objPath, "-")
	as.Stderr = os.Stderr
	var in bytes.Buffer
	in.WriteString(asm)
	as.Stdin = &in
	if err := as.Run(); err != nil {
		return fmt.Errorf("assembling: %w", err)
	}

	ld := exec.Command("ld", "-o", program, objPath)
	ld.Stdout = os.Stdout
	ld.Stderr = os.Stderr
	if err := ld.Run(); err != nil {
		return fmt.Errorf("linking: %w", err)
	}
	return nil
}
