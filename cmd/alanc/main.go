package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ArloHS/alan-compiler/codegen"
	"github.com/ArloHS/alan-compiler/parser"
	"github.com/ArloHS/alan-compiler/scanner"
	"github.com/ArloHS/alan-compiler/symtable"
)

func usage() {
	_, _ = fmt.Fprintln(os.Stderr, `
Compiles an ALAN program to a JVM class file. The generated Jasmin
code file (.jasmin) is assembled with the Jasmin jar named by the
JASMIN_JAR environment variable and removed afterwards.

Usage:
    alanc [-S] [-l] [-d] file.alan

Flags:
    -S  Stops after writing the .jasmin code file; skips assembly.
    -l  Lists the generated code on standard output.
    -d  Traces the parse on standard error.

Examples:
    alanc hello.alan
    alanc -S hello.alan
    JASMIN_JAR=/opt/jasmin.jar alanc -l hello.alan`)
	os.Exit(2)
}

func main() {
	noAsm := flag.Bool("S", false, "stops after writing the .jasmin code file")
	list := flag.Bool("l", false, "lists the generated code on standard output")
	trace := flag.Bool("d", false, "traces the parse on standard error")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
	}
	file := flag.Arg(0)

	jasminJar := os.Getenv("JASMIN_JAR")
	if !*noAsm && jasminJar == "" {
		fail("alanc: JASMIN_JAR is not set; name the assembler jar or compile with -S")
	}

	f, err := os.Open(file)
	check(err)
	defer f.Close()

	s := scanner.New(f)
	g := codegen.NewGenerator()
	p := parser.New(s, symtable.New(), g, os.Stdout)
	if *trace {
		p.SetTrace(os.Stderr)
	}
	if err := p.Compile(); err != nil {
		fail(fmt.Sprintf("alanc: %s:%s", file, err))
	}

	codeFile, err := g.MakeCodeFile()
	check(err)
	if *list {
		check(g.List())
	}
	if *noAsm {
		return
	}
	if err := g.Assemble(jasminJar); err != nil {
		fail(fmt.Sprintf("alanc: assembling %s: %s", codeFile, err))
	}
	check(g.RemoveCodeFile())
}

func check(err error) {
	if err != nil {
		fail("alanc: " + err.Error())
	}
}

func fail(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
