package parser

import (
	"github.com/ArloHS/alan-compiler/scanner"
	"github.com/ArloHS/alan-compiler/symtable"
)

var (
	intScalar  = symtable.DataType{Base: symtable.Integer}
	boolScalar = symtable.DataType{Base: symtable.Boolean}
)

// fail reports a diagnostic at the position of the lookahead token.
func (p *Parser) fail(format string, args ...any) {
	scanner.Fail(p.pos, format, args...)
}

// expect consumes a token of type t or fails.
func (p *Parser) expect(t scanner.TokenType) {
	if p.tok.Type != t {
		p.fail("expected %s, but found %s", t, p.tok.Type)
	}
	p.next()
}

// expectID consumes an identifier and returns its spelling.
func (p *Parser) expectID() string {
	if p.tok.Type != scanner.TokenID {
		p.fail("expected %s, but found %s", scanner.TokenID, p.tok.Type)
	}
	id := p.tok.Lexeme
	p.next()
	return id
}

// checkTypeAt fails at pos unless got is the wanted type. The context
// phrase completes the message, naming where the value was used.
func (p *Parser) checkTypeAt(pos scanner.SourcePos, got, want symtable.DataType, context string) {
	if got != want {
		scanner.Fail(pos, "incompatible types (expected %s, found %s) %s",
			want, got, context)
	}
}

// checkOperand validates one operand of the operator op at pos: array
// values are illegal at any operator, and the base type must match the
// operand type the operator works on. side is "left" or "right".
func (p *Parser) checkOperand(got, want symtable.DataType, op scanner.TokenType,
	pos scanner.SourcePos, side string) {

	if got.Array {
		scanner.Fail(pos, "illegal array operation %s", op)
	}
	if got != want {
		scanner.Fail(pos, "incompatible types (expected %s, found %s) for %s operand of %s",
			want, got, side, op)
	}
}
