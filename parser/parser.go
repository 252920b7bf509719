// Package parser contains the parser of the ALAN compiler. It drives
// the scanner, the symbol table and the code generator in a single
// pass over the source text; there is no syntax tree.
package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/ArloHS/alan-compiler/codegen"
	"github.com/ArloHS/alan-compiler/scanner"
	"github.com/ArloHS/alan-compiler/symtable"
)

// Parser for the ALAN compiler. It obtains tokens from a Scanner,
// declares and resolves names through a SymbolTable, and emits JVM
// instructions through a Generator while productions are recognized.
// Type checking happens inline at every combination point; the first
// error aborts the compilation.
type Parser struct {
	scn *scanner.Scanner
	st  *symtable.SymbolTable
	gen *codegen.Generator

	tok scanner.Token     // lookahead token
	pos scanner.SourcePos // start position of the lookahead token

	funcName string             // enclosing subroutine, or the program name
	funcRet  *symtable.DataType // return type; nil in procedures and the main body

	w      io.Writer // progress messages
	traceW io.Writer // production trace; nil when off
	depth  int
}

// formal is one declared parameter of a funcdef, collected while the
// signature is parsed and inserted once the subroutine scope opens.
type formal struct {
	name string
	typ  symtable.DataType
	pos  scanner.SourcePos
}

func New(s *scanner.Scanner, st *symtable.SymbolTable, g *codegen.Generator, w io.Writer) *Parser {
	return &Parser{scn: s, st: st, gen: g, w: w}
}

// SetTrace enables the production trace on w.
func (p *Parser) SetTrace(w io.Writer) {
	p.traceW = w
}

func (p *Parser) next() {
	p.tok = p.scn.Next()
	p.pos = p.scn.Pos
}

func (p *Parser) log(format string, a ...any) {
	_, _ = fmt.Fprintf(p.w, format, a...)
}

func nop() {}

// enter traces the start of a production and returns the matching
// trace for its end.
func (p *Parser) enter(prod string) func() {
	if p.traceW == nil {
		return nop
	}
	fmt.Fprintf(p.traceW, "%*s<%s>\n", 2*p.depth, "", prod)
	p.depth++
	return func() {
		p.depth--
		fmt.Fprintf(p.traceW, "%*s</%s>\n", 2*p.depth, "", prod)
	}
}

// source = "source" id {funcdef} body
func (p *Parser) source() {
	p.next()
	defer p.enter("source")()
	p.expect(scanner.TokenSource)
	name := p.expectID()
	p.gen.SetClassName(name)
	p.log("  compiling %s\n", name)
	p.funcName = name
	for p.tok.Type == scanner.TokenFunction {
		p.funcdef()
	}
	p.gen.Open("main", nil)
	p.body()
	p.gen.Emit(codegen.Return)
	p.gen.Close(p.st.FrameWidth())
	p.expect(scanner.TokenEOF)
}

// funcdef = "function" id "(" [type id {"," type id}] ")" ["to" type] body
func (p *Parser) funcdef() {
	defer p.enter("funcdef")()
	p.expect(scanner.TokenFunction)
	pos := p.pos
	name := p.expectID()
	p.expect(scanner.TokenOpenParen)
	var formals []formal
	if p.tok.Type != scanner.TokenCloseParen {
		for {
			t := p._type()
			fpos := p.pos
			fname := p.expectID()
			formals = append(formals, formal{name: fname, typ: t, pos: fpos})
			if p.tok.Type != scanner.TokenComma {
				break
			}
			p.next()
		}
	}
	p.expect(scanner.TokenCloseParen)
	var ret *symtable.DataType
	if p.tok.Type == scanner.TokenTo {
		p.next()
		t := p._type()
		ret = &t
	}

	params := make([]symtable.DataType, len(formals))
	for i, f := range formals {
		params[i] = f.typ
	}
	props := &symtable.IDprop{Signature: &symtable.Callable{Params: params, Ret: ret}}
	if !p.st.OpenSubroutine(name, props) {
		scanner.Fail(pos, "multiple definition of '%s'", name)
	}
	for _, f := range formals {
		fp := &symtable.IDprop{Type: f.typ, Offset: p.st.FrameWidth()}
		if !p.st.Insert(f.name, fp) {
			scanner.Fail(f.pos, "multiple definition of '%s'", f.name)
		}
	}

	p.gen.Open(name, props)
	prevName, prevRet := p.funcName, p.funcRet
	p.funcName, p.funcRet = name, ret
	p.body()
	p.funcName, p.funcRet = prevName, prevRet
	if ret == nil {
		p.gen.Emit(codegen.Return)
	}
	p.gen.Close(p.st.FrameWidth())
	p.st.CloseSubroutine()
}

// body = "begin" {vardef} statements "end"
func (p *Parser) body() {
	defer p.enter("body")()
	p.expect(scanner.TokenBegin)
	for p.tok.Type == scanner.TokenBoolean || p.tok.Type == scanner.TokenInteger {
		p.vardef()
	}
	p.statements()
	p.expect(scanner.TokenEnd)
}

// type = ("boolean" | "integer") ["array"]
func (p *Parser) _type() symtable.DataType {
	defer p.enter("type")()
	var t symtable.DataType
	switch p.tok.Type {
	case scanner.TokenBoolean:
		t.Base = symtable.Boolean
	case scanner.TokenInteger:
		t.Base = symtable.Integer
	default:
		p.fail("expected type, but found %s", p.tok.Type)
	}
	p.next()
	if p.tok.Type == scanner.TokenArray {
		t.Array = true
		p.next()
	}
	return t
}

// vardef = type id {"," id} ";"
func (p *Parser) vardef() {
	defer p.enter("vardef")()
	t := p._type()
	for {
		pos := p.pos
		name := p.expectID()
		props := &symtable.IDprop{Type: t, Offset: p.st.FrameWidth()}
		if !p.st.Insert(name, props) {
			scanner.Fail(pos, "multiple definition of '%s'", name)
		}
		if p.tok.Type != scanner.TokenComma {
			break
		}
		p.next()
	}
	p.expect(scanner.TokenSemicolon)
}

// statements = "relax" | statement {";" statement}
func (p *Parser) statements() {
	defer p.enter("statements")()
	if p.tok.Type == scanner.TokenRelax {
		p.next()
		return
	}
	p.statement()
	for p.tok.Type == scanner.TokenSemicolon {
		p.next()
		p.statement()
	}
}

func (p *Parser) statement() {
	switch p.tok.Type {
	case scanner.TokenID:
		p.assign()
	case scanner.TokenCall:
		p.call()
	case scanner.TokenIf:
		p.ifStat()
	case scanner.TokenGet:
		p.input()
	case scanner.TokenLeave:
		p.leave()
	case scanner.TokenPut:
		p.output()
	case scanner.TokenWhile:
		p.whileStat()
	default:
		p.fail("expected statement, but found %s", p.tok.Type)
	}
}

// assign = id ["[" simple "]"] ":=" (expr | "array" simple)
func (p *Parser) assign() {
	defer p.enter("assign")()
	pos := p.pos
	name := p.expectID()
	props, ok := p.st.Lookup(name)
	if !ok {
		scanner.Fail(pos, "unknown identifier '%s'", name)
	}
	if !props.IsVariable() {
		scanner.Fail(pos, "'%s' is not a variable", name)
	}
	indexed := false
	if p.tok.Type == scanner.TokenOpenBracket {
		if !props.Type.Array {
			scanner.Fail(pos, "'%s' is not an array", name)
		}
		indexed = true
		p.next()
		p.gen.EmitImm(codegen.Aload, int32(props.Offset))
		idxPos := p.pos
		idxT := p.simple()
		p.checkTypeAt(idxPos, idxT, intScalar, fmt.Sprintf("for index of array '%s'", name))
		p.expect(scanner.TokenCloseBracket)
	}
	p.expect(scanner.TokenGets)

	switch {
	case p.tok.Type == scanner.TokenArray:
		if !props.Type.Array {
			scanner.Fail(pos, "'%s' is not an array", name)
		}
		if indexed {
			scanner.Fail(p.pos, "incompatible types (expected %s, found %s) for assignment to '%s'",
				symtable.DataType{Base: props.Type.Base}, props.Type, name)
		}
		p.next()
		sizePos := p.pos
		sizeT := p.simple()
		p.checkTypeAt(sizePos, sizeT, intScalar, fmt.Sprintf("for size of array '%s'", name))
		p.gen.EmitNewArray(codegen.ATInt)
		p.gen.EmitImm(codegen.Astore, int32(props.Offset))
	case p.tok.Type.StartsExpr():
		rhsPos := p.pos
		rhsT := p.expr()
		want := props.Type
		if indexed {
			want = symtable.DataType{Base: props.Type.Base}
		}
		p.checkTypeAt(rhsPos, rhsT, want, fmt.Sprintf("for assignment to '%s'", name))
		switch {
		case indexed:
			p.gen.Emit(codegen.Iastore)
		case props.Type.Array:
			p.gen.EmitImm(codegen.Astore, int32(props.Offset))
		default:
			p.gen.EmitImm(codegen.Istore, int32(props.Offset))
		}
	default:
		p.fail("expected array allocation or expression, but found %s", p.tok.Type)
	}
}

// call = "call" id "(" [expr {"," expr}] ")"
func (p *Parser) call() {
	defer p.enter("call")()
	p.expect(scanner.TokenCall)
	pos := p.pos
	name := p.expectID()
	props, ok := p.st.Lookup(name)
	if !ok {
		scanner.Fail(pos, "unknown identifier '%s'", name)
	}
	if !props.IsProcedure() {
		scanner.Fail(pos, "'%s' is not a procedure", name)
	}
	p.arguments(name, props)
	p.gen.EmitCall(name, props)
}

// arguments parses the parenthesized argument list of a call to name,
// checking each argument against the declared parameter type.
func (p *Parser) arguments(name string, props *symtable.IDprop) {
	p.expect(scanner.TokenOpenParen)
	params := props.Signature.Params
	n := 0
	if p.tok.Type != scanner.TokenCloseParen {
		for {
			if n >= len(params) {
				p.fail("too many arguments for call to '%s'", name)
			}
			argPos := p.pos
			t := p.expr()
			p.checkTypeAt(argPos, t, params[n],
				fmt.Sprintf("for parameter %d of call to '%s'", n+1, name))
			n++
			if p.tok.Type != scanner.TokenComma {
				break
			}
			p.next()
		}
	}
	if n < len(params) {
		p.fail("too few arguments for call to '%s'", name)
	}
	p.expect(scanner.TokenCloseParen)
}

// if = "if" expr "then" statements {"elsif" expr "then" statements}
//      ["else" statements] "end"
func (p *Parser) ifStat() {
	defer p.enter("if")()
	p.expect(scanner.TokenIf)
	falseL := p.gen.NewLabel()
	endL := p.gen.NewLabel()
	guardPos := p.pos
	t := p.expr()
	p.checkTypeAt(guardPos, t, boolScalar, "for 'if' guard")
	p.gen.EmitBranch(codegen.Ifeq, falseL)
	p.expect(scanner.TokenThen)
	p.statements()
	p.gen.EmitBranch(codegen.Goto, endL)
	p.gen.EmitLabel(falseL)
	ends := []codegen.Label{endL}
	for p.tok.Type == scanner.TokenElsif {
		p.next()
		fL := p.gen.NewLabel()
		eL := p.gen.NewLabel()
		guardPos := p.pos
		t := p.expr()
		p.checkTypeAt(guardPos, t, boolScalar, "for 'elsif' guard")
		p.gen.EmitBranch(codegen.Ifeq, fL)
		p.expect(scanner.TokenThen)
		p.statements()
		p.gen.EmitBranch(codegen.Goto, eL)
		p.gen.EmitLabel(fL)
		ends = append(ends, eL)
	}
	if p.tok.Type == scanner.TokenElse {
		p.next()
		p.statements()
	}
	p.expect(scanner.TokenEnd)
	for i := len(ends) - 1; i >= 0; i-- {
		p.gen.EmitLabel(ends[i])
	}
}

// input = "get" id ["[" simple "]"]
func (p *Parser) input() {
	defer p.enter("input")()
	p.expect(scanner.TokenGet)
	pos := p.pos
	name := p.expectID()
	props, ok := p.st.Lookup(name)
	if !ok {
		scanner.Fail(pos, "unknown identifier '%s'", name)
	}
	if !props.IsVariable() {
		scanner.Fail(pos, "'%s' is not a variable", name)
	}
	if p.tok.Type == scanner.TokenOpenBracket {
		if !props.Type.Array {
			scanner.Fail(pos, "'%s' is not an array", name)
		}
		p.next()
		p.gen.EmitImm(codegen.Aload, int32(props.Offset))
		idxPos := p.pos
		idxT := p.simple()
		p.checkTypeAt(idxPos, idxT, intScalar, fmt.Sprintf("for index of array '%s'", name))
		p.expect(scanner.TokenCloseBracket)
		p.gen.EmitRead(symtable.DataType{Base: props.Type.Base})
		p.gen.Emit(codegen.Iastore)
	} else {
		if props.Type.Array {
			scanner.Fail(pos, "'%s' is not a scalar", name)
		}
		p.gen.EmitRead(props.Type)
		p.gen.EmitImm(codegen.Istore, int32(props.Offset))
	}
}

// leave = "leave" [expr]
func (p *Parser) leave() {
	defer p.enter("leave")()
	pos := p.pos
	p.expect(scanner.TokenLeave)
	if p.tok.Type.StartsExpr() {
		if p.funcRet == nil {
			scanner.Fail(pos, "'%s' is not a function", p.funcName)
		}
		valPos := p.pos
		t := p.expr()
		p.checkTypeAt(valPos, t, *p.funcRet,
			fmt.Sprintf("for 'leave' from function '%s'", p.funcName))
		if p.funcRet.Array {
			p.gen.Emit(codegen.Areturn)
		} else {
			p.gen.Emit(codegen.Ireturn)
		}
	} else {
		if p.funcRet != nil {
			scanner.Fail(pos, "'%s' is not a procedure", p.funcName)
		}
		p.gen.Emit(codegen.Return)
	}
}

// output = "put" (string | expr) {"." (string | expr)}
func (p *Parser) output() {
	defer p.enter("output")()
	p.expect(scanner.TokenPut)
	p.putItem()
	for p.tok.Type == scanner.TokenConcatenate {
		p.next()
		p.putItem()
	}
}

func (p *Parser) putItem() {
	switch {
	case p.tok.Type == scanner.TokenString:
		p.gen.EmitPrintString(p.tok.Lexeme)
		p.next()
	case p.tok.Type.StartsExpr():
		exprPos := p.pos
		t := p.expr()
		if t.Array {
			scanner.Fail(exprPos, "illegal array operation %s", scanner.TokenPut)
		}
		p.gen.EmitPrint(t)
	default:
		p.fail("expected expression or string, but found %s", p.tok.Type)
	}
}

// while = "while" expr "do" statements "end"
func (p *Parser) whileStat() {
	defer p.enter("while")()
	p.expect(scanner.TokenWhile)
	loop := p.gen.NewLabel()
	exit := p.gen.NewLabel()
	p.gen.EmitLabel(loop)
	guardPos := p.pos
	t := p.expr()
	p.checkTypeAt(guardPos, t, boolScalar, "for 'while' guard")
	p.gen.EmitBranch(codegen.Ifeq, exit)
	p.expect(scanner.TokenDo)
	p.statements()
	p.gen.EmitBranch(codegen.Goto, loop)
	p.gen.EmitLabel(exit)
	p.expect(scanner.TokenEnd)
}

// expr = simple [relop simple]
func (p *Parser) expr() symtable.DataType {
	defer p.enter("expr")()
	t := p.simple()
	if !p.tok.Type.IsRelOp() {
		return t
	}
	op := p.tok.Type
	opPos := p.pos
	switch op {
	case scanner.TokenEqual, scanner.TokenNotEqual:
		if t.Array {
			scanner.Fail(opPos, "illegal array operation %s", op)
		}
		p.next()
		t2 := p.simple()
		if t2.Array {
			scanner.Fail(opPos, "illegal array operation %s", op)
		}
		if t2 != t {
			scanner.Fail(opPos, "incompatible types (expected %s, found %s) for right operand of %s",
				t, t2, op)
		}
	default:
		p.checkOperand(t, intScalar, op, opPos, "left")
		p.next()
		t2 := p.simple()
		p.checkOperand(t2, intScalar, op, opPos, "right")
	}
	p.gen.EmitCompare(relMap[op-scanner.TokenEqual])
	return boolScalar
}

// relMap holds the comparison branch for each relational operator.
var relMap = [...]codegen.Bytecode{
	codegen.IfIcmpeq, codegen.IfIcmpge, codegen.IfIcmpgt,
	codegen.IfIcmple, codegen.IfIcmplt, codegen.IfIcmpne,
}

// simple = ["-"] term {addop term}
func (p *Parser) simple() symtable.DataType {
	defer p.enter("simple")()
	negPos := p.pos
	neg := p.tok.Type == scanner.TokenMinus
	if neg {
		p.next()
		p.gen.EmitImm(codegen.Ldc, 0)
	}
	t := p.term()
	if neg {
		if t.Array {
			scanner.Fail(negPos, "illegal array operation %s", scanner.TokenMinus)
		}
		if t != intScalar {
			scanner.Fail(negPos, "incompatible types (expected %s, found %s) for operand of %s",
				intScalar, t, scanner.TokenMinus)
		}
		p.gen.Emit(codegen.Isub)
	}
	for p.tok.Type.IsAddOp() {
		op := p.tok.Type
		opPos := p.pos
		want := intScalar
		opcode := codegen.Iadd
		switch op {
		case scanner.TokenMinus:
			opcode = codegen.Isub
		case scanner.TokenOr:
			opcode = codegen.Ior
			want = boolScalar
		}
		p.checkOperand(t, want, op, opPos, "left")
		p.next()
		t2 := p.term()
		p.checkOperand(t2, want, op, opPos, "right")
		p.gen.Emit(opcode)
		t = want
	}
	return t
}

// term = factor {mulop factor}
func (p *Parser) term() symtable.DataType {
	defer p.enter("term")()
	t := p.factor()
	for p.tok.Type.IsMulOp() {
		op := p.tok.Type
		opPos := p.pos
		want := intScalar
		var opcode codegen.Bytecode
		switch op {
		case scanner.TokenMultiply:
			opcode = codegen.Imul
		case scanner.TokenDivide:
			opcode = codegen.Idiv
		case scanner.TokenRemainder:
			opcode = codegen.Irem
		case scanner.TokenAnd:
			opcode = codegen.Iand
			want = boolScalar
		}
		p.checkOperand(t, want, op, opPos, "left")
		p.next()
		t2 := p.factor()
		p.checkOperand(t2, want, op, opPos, "right")
		p.gen.Emit(opcode)
		t = want
	}
	return t
}

// factor = id ["[" simple "]"] | id "(" [expr {"," expr}] ")" | num
//        | "(" expr ")" | "not" factor | "true" | "false"
func (p *Parser) factor() symtable.DataType {
	defer p.enter("factor")()
	switch p.tok.Type {
	case scanner.TokenID:
		pos := p.pos
		name := p.expectID()
		props, ok := p.st.Lookup(name)
		if !ok {
			scanner.Fail(pos, "unknown identifier '%s'", name)
		}
		switch p.tok.Type {
		case scanner.TokenOpenParen:
			if !props.IsFunction() {
				scanner.Fail(pos, "'%s' is not a function", name)
			}
			p.arguments(name, props)
			p.gen.EmitCall(name, props)
			return *props.Signature.Ret
		case scanner.TokenOpenBracket:
			if !props.IsVariable() {
				scanner.Fail(pos, "'%s' is not a variable", name)
			}
			if !props.Type.Array {
				scanner.Fail(pos, "'%s' is not an array", name)
			}
			p.next()
			p.gen.EmitImm(codegen.Aload, int32(props.Offset))
			idxPos := p.pos
			idxT := p.simple()
			p.checkTypeAt(idxPos, idxT, intScalar, fmt.Sprintf("for index of array '%s'", name))
			p.expect(scanner.TokenCloseBracket)
			p.gen.Emit(codegen.Iaload)
			return symtable.DataType{Base: props.Type.Base}
		default:
			if !props.IsVariable() {
				scanner.Fail(pos, "'%s' is not a variable", name)
			}
			if props.Type.Array {
				p.gen.EmitImm(codegen.Aload, int32(props.Offset))
			} else {
				p.gen.EmitImm(codegen.Iload, int32(props.Offset))
			}
			return props.Type
		}
	case scanner.TokenNumber:
		v := p.tok.Value
		p.next()
		p.gen.EmitImm(codegen.Ldc, v)
		return intScalar
	case scanner.TokenOpenParen:
		p.next()
		t := p.expr()
		p.expect(scanner.TokenCloseParen)
		return t
	case scanner.TokenNot:
		opPos := p.pos
		p.next()
		t := p.factor()
		if t.Array {
			scanner.Fail(opPos, "illegal array operation %s", scanner.TokenNot)
		}
		if t != boolScalar {
			scanner.Fail(opPos, "incompatible types (expected %s, found %s) for operand of %s",
				boolScalar, t, scanner.TokenNot)
		}
		p.gen.EmitImm(codegen.Ldc, 1)
		p.gen.Emit(codegen.Ixor)
		return boolScalar
	case scanner.TokenTrue:
		p.next()
		p.gen.EmitImm(codegen.Ldc, 1)
		return boolScalar
	case scanner.TokenFalse:
		p.next()
		p.gen.EmitImm(codegen.Ldc, 0)
		return boolScalar
	default:
		p.fail("expected factor, but found %s", p.tok.Type)
		return symtable.DataType{}
	}
}

// Compile runs the whole-program production. The fatal diagnostic
// panic raised on the first error is converted into the returned
// error; any other panic is re-raised.
func (p *Parser) Compile() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(*scanner.Error)
			if !ok {
				panic(rec)
			}
			err = e
		}
	}()
	p.source()
	return nil
}

// Compile compiles one ALAN source text read from r and returns the
// generator holding the completed code. Progress messages go to w.
func Compile(r io.Reader, w io.Writer) (*codegen.Generator, error) {
	s := scanner.New(r)
	g := codegen.NewGenerator()
	p := New(s, symtable.New(), g, w)
	if err := p.Compile(); err != nil {
		return nil, err
	}
	return g, nil
}

// CompileFile compiles the ALAN source file at path.
func CompileFile(path string, w io.Writer) (*codegen.Generator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Compile(f, w)
}
