package scanner

import "fmt"

// TokenType identifies the lexical class of a token.
//
// The relational, additive and multiplicative operators each occupy a
// contiguous run of values so that classification is a range check.
// Operator words (and, or, rem) therefore live in the operator runs,
// not with the other reserved words.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenID
	TokenNumber
	TokenString

	// reserved words that are not operators
	TokenArray
	TokenBegin
	TokenBoolean
	TokenCall
	TokenDo
	TokenElse
	TokenElsif
	TokenEnd
	TokenFalse
	TokenFunction
	TokenGet
	TokenIf
	TokenInteger
	TokenLeave
	TokenNot
	TokenPut
	TokenRelax
	TokenSource
	TokenThen
	TokenTo
	TokenTrue
	TokenWhile

	// relational operators; the order is relevant
	TokenEqual
	TokenGreaterEqual
	TokenGreaterThan
	TokenLessEqual
	TokenLessThan
	TokenNotEqual

	// additive operators; the order is relevant
	TokenMinus
	TokenOr
	TokenPlus

	// multiplicative operators; the order is relevant
	TokenAnd
	TokenDivide
	TokenMultiply
	TokenRemainder

	// non-alphabetic tokens
	TokenCloseBracket
	TokenCloseParen
	TokenComma
	TokenConcatenate
	TokenGets
	TokenOpenBracket
	TokenOpenParen
	TokenSemicolon
)

// Token is one lexical unit of an ALAN source text.
type Token struct {
	Type   TokenType
	Lexeme string // identifier spelling or string literal body
	Value  int32  // value of a number literal
}

// IsRelOp reports whether t is a relational operator.
func (t TokenType) IsRelOp() bool {
	return t >= TokenEqual && t <= TokenNotEqual
}

// IsAddOp reports whether t is an additive operator.
func (t TokenType) IsAddOp() bool {
	return t >= TokenMinus && t <= TokenPlus
}

// IsMulOp reports whether t is a multiplicative operator.
func (t TokenType) IsMulOp() bool {
	return t >= TokenAnd && t <= TokenRemainder
}

// StartsFactor reports whether a factor can start with t.
func (t TokenType) StartsFactor() bool {
	switch t {
	case TokenID, TokenNumber, TokenOpenParen, TokenNot, TokenTrue, TokenFalse:
		return true
	}
	return false
}

// StartsExpr reports whether an expression can start with t.
func (t TokenType) StartsExpr() bool {
	return t.StartsFactor() || t == TokenMinus
}

// reserved maps spellings to token types. The table must stay sorted
// by word: lookup is a binary search.
var reserved = [...]struct {
	word string
	typ  TokenType
}{
	{"and", TokenAnd},
	{"array", TokenArray},
	{"begin", TokenBegin},
	{"boolean", TokenBoolean},
	{"call", TokenCall},
	{"do", TokenDo},
	{"else", TokenElse},
	{"elsif", TokenElsif},
	{"end", TokenEnd},
	{"false", TokenFalse},
	{"function", TokenFunction},
	{"get", TokenGet},
	{"if", TokenIf},
	{"integer", TokenInteger},
	{"leave", TokenLeave},
	{"not", TokenNot},
	{"or", TokenOr},
	{"put", TokenPut},
	{"relax", TokenRelax},
	{"rem", TokenRemainder},
	{"source", TokenSource},
	{"then", TokenThen},
	{"to", TokenTo},
	{"true", TokenTrue},
	{"while", TokenWhile},
}

// tokenStrings renders token types for diagnostics; indexed by
// TokenType, so the order must match the constant block above.
var tokenStrings = [...]string{
	"end-of-file",
	"identifier",
	"number",
	"string",
	"'array'",
	"'begin'",
	"'boolean'",
	"'call'",
	"'do'",
	"'else'",
	"'elsif'",
	"'end'",
	"'false'",
	"'function'",
	"'get'",
	"'if'",
	"'integer'",
	"'leave'",
	"'not'",
	"'put'",
	"'relax'",
	"'source'",
	"'then'",
	"'to'",
	"'true'",
	"'while'",
	"'='",
	"'>='",
	"'>'",
	"'<='",
	"'<'",
	"'<>'",
	"'-'",
	"'or'",
	"'+'",
	"'and'",
	"'/'",
	"'*'",
	"'rem'",
	"']'",
	"')'",
	"','",
	"'.'",
	"':='",
	"'['",
	"'('",
	"';'",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenStrings) {
		return fmt.Sprintf("token(%d)", int(t))
	}
	return tokenStrings[t]
}
