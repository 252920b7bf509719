// Package codegen contains the JVM code generator for the ALAN compiler.
package codegen

import (
	"strings"

	"github.com/ArloHS/alan-compiler/symtable"
)

// Bytecode identifies a JVM instruction supported by the generator.
type Bytecode int

// The values index the instruction table; the order is relevant.
const (
	Aload Bytecode = iota
	Areturn
	Astore
	Getstatic
	Goto
	Iadd
	Iaload
	Iand
	Iastore
	Idiv
	Ifeq
	IfIcmpeq
	IfIcmpge
	IfIcmpgt
	IfIcmple
	IfIcmplt
	IfIcmpne
	Iload
	Imul
	Ineg
	Invokestatic
	Invokevirtual
	Ior
	Istore
	Isub
	Irem
	Ireturn
	Ixor
	Ldc
	Newarray
	Return
	Swap
)

// instruction mnemonics with their operand stack effects; instructions
// marked hasOperand are followed by one operand item in the code stream
var instructions = [...]struct {
	mnemonic   string
	pop, push  int
	hasOperand bool
}{
	Aload:         {"aload", 0, 1, true},
	Areturn:       {"areturn", 1, 0, false},
	Astore:        {"astore", 1, 0, true},
	Getstatic:     {"getstatic", 0, 1, true},
	Goto:          {"goto", 0, 0, true},
	Iadd:          {"iadd", 2, 1, false},
	Iaload:        {"iaload", 2, 1, false},
	Iand:          {"iand", 2, 1, false},
	Iastore:       {"iastore", 3, 0, false},
	Idiv:          {"idiv", 2, 1, false},
	Ifeq:          {"ifeq", 1, 0, true},
	IfIcmpeq:      {"if_icmpeq", 2, 0, true},
	IfIcmpge:      {"if_icmpge", 2, 0, true},
	IfIcmpgt:      {"if_icmpgt", 2, 0, true},
	IfIcmple:      {"if_icmple", 2, 0, true},
	IfIcmplt:      {"if_icmplt", 2, 0, true},
	IfIcmpne:      {"if_icmpne", 2, 0, true},
	Iload:         {"iload", 0, 1, true},
	Imul:          {"imul", 2, 1, false},
	Ineg:          {"ineg", 1, 1, false},
	Invokestatic:  {"invokestatic", 0, 1, true},
	Invokevirtual: {"invokevirtual", 0, 0, true},
	Ior:           {"ior", 2, 1, false},
	Istore:        {"istore", 1, 0, true},
	Isub:          {"isub", 2, 1, false},
	Irem:          {"irem", 2, 1, false},
	Ireturn:       {"ireturn", 1, 0, false},
	Ixor:          {"ixor", 2, 1, false},
	Ldc:           {"ldc", 0, 1, true},
	Newarray:      {"newarray", 1, 1, true},
	Return:        {"return", 0, 0, false},
	Swap:          {"swap", 2, 2, false},
}

// String returns the Jasmin mnemonic of the instruction.
func (b Bytecode) String() string {
	if b < 0 || int(b) >= len(instructions) {
		return "INVALID OPCODE"
	}
	return instructions[b].mnemonic
}

// AType is a JVM array type code, the operand of newarray.
type AType int

const (
	ATBoolean AType = iota + 4
	ATChar
	ATFloat
	ATDouble
	ATByte
	ATShort
	ATInt
	ATLong
)

var aTypeNames = [...]string{
	"boolean", "char", "float", "double", "byte", "short", "int", "long",
}

func (t AType) String() string {
	if t < ATBoolean || t > ATLong {
		return "INVALID ARRAY TYPE"
	}
	return aTypeNames[t-ATBoolean]
}

// A Label identifies a branch target in a method body.
type Label int

type codeKind int

const (
	kindInstruction codeKind = iota
	kindLabel
	kindLabelOperand
	kindIntOperand
	kindRefOperand
	kindStringOperand
	kindATypeOperand
)

// codeItem is one element of a method's code stream: an instruction, a
// label marker, or the operand following an instruction.
type codeItem struct {
	kind  codeKind
	op    Bytecode // kindInstruction
	num   int32    // kindIntOperand
	label Label    // kindLabel, kindLabelOperand
	str   string   // kindRefOperand, kindStringOperand
	atype AType    // kindATypeOperand
}

// body is the completed code stream of one JVM method.
type body struct {
	name     string
	props    *symtable.IDprop
	code     []codeItem
	maxStack int
	locals   int
}

const initialCodeSize = 1024

// Generator
// Code generator for the ALAN compiler targeting the JVM.
// Procedural interface to the parser; one code stream is built per
// subroutine, and Close files the stream as a method body.
// Method Dump writes the Jasmin translation unit.
type Generator struct {
	className string
	jasmName  string

	// state of the method body under construction
	funcName      string
	props         *symtable.IDprop
	code          []codeItem
	stackDepth    int
	maxStackDepth int

	label  Label
	bodies []*body
}

func NewGenerator() *Generator {
	return &Generator{}
}

// SetClassName fixes the name of the generated class and of the Jasmin
// file derived from it.
func (g *Generator) SetClassName(name string) {
	g.className = name
	g.jasmName = name + jasmExt
}

// ClassName returns the name set by SetClassName.
func (g *Generator) ClassName() string {
	return g.className
}

// Open starts the code stream of a new method body. The properties
// carry the signature for the Jasmin method header; the main body is
// opened with nil properties.
func (g *Generator) Open(name string, p *symtable.IDprop) {
	g.maxStackDepth = 0
	g.stackDepth = 0
	g.code = make([]codeItem, 0, initialCodeSize)
	g.funcName = name
	g.props = p
}

// Close files the current code stream as a completed method body.
// varWidth is the number of local variable slots the body needs.
func (g *Generator) Close(varWidth int) {
	g.bodies = append(g.bodies, &body{
		name:     g.funcName,
		props:    g.props,
		code:     g.code,
		maxStack: g.maxStackDepth,
		locals:   varWidth,
	})
}

// bytecode emission

func (g *Generator) add(c codeItem) {
	g.code = append(g.code, c)
}

// adjustStack computes the change in the stack depth caused by the
// instruction and updates the maximum depth if necessary.
func (g *Generator) adjustStack(op Bytecode) {
	g.stackDepth += instructions[op].push
	if g.stackDepth > g.maxStackDepth {
		g.maxStackDepth = g.stackDepth
	}
	g.stackDepth -= instructions[op].pop
}

// Emit appends an instruction without an operand.
func (g *Generator) Emit(op Bytecode) {
	g.add(codeItem{kind: kindInstruction, op: op})
	g.adjustStack(op)
}

// EmitImm appends an instruction with an immediate integer operand.
func (g *Generator) EmitImm(op Bytecode, operand int32) {
	g.add(codeItem{kind: kindInstruction, op: op})
	g.add(codeItem{kind: kindIntOperand, num: operand})
	g.adjustStack(op)
}

// EmitBranch appends a branch instruction targeting the label.
func (g *Generator) EmitBranch(op Bytecode, l Label) {
	g.add(codeItem{kind: kindInstruction, op: op})
	g.add(codeItem{kind: kindLabelOperand, label: l})
	g.adjustStack(op)
}

// EmitLabel marks the current position in the code stream with the
// label.
func (g *Generator) EmitLabel(l Label) {
	g.add(codeItem{kind: kindLabel, label: l})
}

// NewLabel returns a label not used before in this translation unit.
func (g *Generator) NewLabel() Label {
	g.label++
	return g.label
}

// EmitCompare appends a comparison over the two integers on top of the
// stack, leaving 1 if the branch taken by the instruction applies and
// 0 otherwise.
func (g *Generator) EmitCompare(op Bytecode) {
	l1 := g.NewLabel()
	l2 := g.NewLabel()
	g.EmitBranch(op, l1)
	g.EmitImm(Ldc, 0)
	g.EmitBranch(Goto, l2)
	g.EmitLabel(l1)
	g.EmitImm(Ldc, 1)
	g.EmitLabel(l2)
}

// EmitNewArray appends an array allocation for the element type.
func (g *Generator) EmitNewArray(t AType) {
	g.add(codeItem{kind: kindInstruction, op: Newarray})
	g.add(codeItem{kind: kindATypeOperand, atype: t})
	g.adjustStack(Newarray)
}

// EmitCall appends a static call to the named subroutine of the
// generated class.
func (g *Generator) EmitCall(name string, p *symtable.IDprop) {
	var ref strings.Builder
	ref.WriteString(g.className)
	ref.WriteString("/")
	ref.WriteString(name)
	ref.WriteString("(")
	for _, par := range p.Signature.Params {
		if par.Array {
			ref.WriteString("[")
		}
		ref.WriteString("I")
	}
	ref.WriteString(")")
	ref.WriteString(returnDescriptor(p))

	g.add(codeItem{kind: kindInstruction, op: Invokestatic})
	g.add(codeItem{kind: kindRefOperand, str: ref.String()})
	g.adjustStack(Invokestatic)
}

// EmitRead appends a call to the runtime routine reading one value of
// the scalar type from standard input.
func (g *Generator) EmitRead(t symtable.DataType) {
	ref := g.className + refReadInteger
	if t.Base == symtable.Boolean {
		ref = g.className + refReadBoolean
	}
	g.add(codeItem{kind: kindInstruction, op: Invokestatic})
	g.add(codeItem{kind: kindRefOperand, str: ref})
	g.adjustStack(Invokestatic)
}

// EmitPrint appends code writing the scalar value on top of the stack
// to standard output.
func (g *Generator) EmitPrint(t symtable.DataType) {
	g.add(codeItem{kind: kindInstruction, op: Getstatic})
	g.add(codeItem{kind: kindRefOperand, str: refPrintStream})
	g.add(codeItem{kind: kindInstruction, op: Swap})
	g.add(codeItem{kind: kindInstruction, op: Invokevirtual})
	ref := refPrintInteger
	if t.Base == symtable.Boolean {
		ref = refPrintBoolean
	}
	g.add(codeItem{kind: kindRefOperand, str: ref})
	g.adjustStack(Getstatic)
	g.adjustStack(Swap)
	g.adjustStack(Invokevirtual)
}

// EmitPrintString appends code writing the string literal to standard
// output. The lexeme keeps its escape sequences; Jasmin interprets
// them.
func (g *Generator) EmitPrintString(s string) {
	g.add(codeItem{kind: kindInstruction, op: Getstatic})
	g.add(codeItem{kind: kindRefOperand, str: refPrintStream})
	g.add(codeItem{kind: kindInstruction, op: Ldc})
	g.add(codeItem{kind: kindStringOperand, str: s})
	g.add(codeItem{kind: kindInstruction, op: Invokevirtual})
	g.add(codeItem{kind: kindRefOperand, str: refPrintString})
	g.adjustStack(Getstatic)
	g.adjustStack(Ldc)
	g.adjustStack(Invokevirtual)
}

// returnDescriptor renders the return part of a subroutine's method
// descriptor. All scalars travel as JVM ints.
func returnDescriptor(p *symtable.IDprop) string {
	switch {
	case p.Signature.Ret == nil:
		return "V"
	case p.Signature.Ret.Array:
		return "[I"
	default:
		return "I"
	}
}
