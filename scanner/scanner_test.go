package scanner

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// scanAll tokenizes src completely, converting the fatal-diagnostic
// panic into an error the way the compile entry point does.
func scanAll(src string) (toks []Token, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(*Error)
			if !ok {
				panic(rec)
			}
			err = e
		}
	}()
	s := New(strings.NewReader(src))
	for {
		tok := s.Next()
		if tok.Type == TokenEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func types(toks []Token) []TokenType {
	if len(toks) == 0 {
		return nil
	}
	tt := make([]TokenType, len(toks))
	for i, tok := range toks {
		tt[i] = tok.Type
	}
	return tt
}

func TestTokens(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenType
	}{
		{"", nil},
		{"   \t\n\n ", nil},
		{"source test", []TokenType{TokenSource, TokenID}},
		{"x := 3 + 4", []TokenType{TokenID, TokenGets, TokenNumber, TokenPlus, TokenNumber}},
		{"a-b*c/d rem e", []TokenType{TokenID, TokenMinus, TokenID, TokenMultiply,
			TokenID, TokenDivide, TokenID, TokenRemainder, TokenID}},
		{"p and q or not r", []TokenType{TokenID, TokenAnd, TokenID, TokenOr,
			TokenNot, TokenID}},
		{"x[i] := y", []TokenType{TokenID, TokenOpenBracket, TokenID,
			TokenCloseBracket, TokenGets, TokenID}},
		{"f(a, b)", []TokenType{TokenID, TokenOpenParen, TokenID, TokenComma,
			TokenID, TokenCloseParen}},
		{`put "a" . x`, []TokenType{TokenPut, TokenString, TokenConcatenate, TokenID}},
		{"begin relax end", []TokenType{TokenBegin, TokenRelax, TokenEnd}},
		{"if a then relax elsif b then relax else relax end",
			[]TokenType{TokenIf, TokenID, TokenThen, TokenRelax, TokenElsif,
				TokenID, TokenThen, TokenRelax, TokenElse, TokenRelax, TokenEnd}},
		{"while true do false end", []TokenType{TokenWhile, TokenTrue, TokenDo,
			TokenFalse, TokenEnd}},
		{"function f() to integer array", []TokenType{TokenFunction, TokenID,
			TokenOpenParen, TokenCloseParen, TokenTo, TokenInteger, TokenArray}},
		{"call get leave boolean", []TokenType{TokenCall, TokenGet, TokenLeave,
			TokenBoolean}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, err := scanAll(tt.src)
			be.Err(t, err, nil)
			be.Equal(t, types(toks), tt.want)
		})
	}
}

func TestRelationalOperators(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenType
	}{
		// "<" followed by a space consumes the space; otherwise the
		// space-free forms "<>" and "<=" extend the operator.
		{"a < b", []TokenType{TokenID, TokenLessThan, TokenID}},
		{"a <b", []TokenType{TokenID, TokenLessThan, TokenID}},
		{"a<5", []TokenType{TokenID, TokenLessThan, TokenNumber}},
		{"a<=b", []TokenType{TokenID, TokenLessEqual, TokenID}},
		{"a<>b", []TokenType{TokenID, TokenNotEqual, TokenID}},
		{"a > b", []TokenType{TokenID, TokenGreaterThan, TokenID}},
		{"a >b", []TokenType{TokenID, TokenGreaterThan, TokenID}},
		{"a>=b", []TokenType{TokenID, TokenGreaterEqual, TokenID}},
		{"a = b", []TokenType{TokenID, TokenEqual, TokenID}},
		{"a<", []TokenType{TokenID, TokenLessThan}},
		{"a>", []TokenType{TokenID, TokenGreaterThan}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, err := scanAll(tt.src)
			be.Err(t, err, nil)
			be.Equal(t, types(toks), tt.want)
		})
	}
}

func TestIdentifiersAndKeywords(t *testing.T) {
	toks, err := scanAll("sources _x x_1 begins end2 while0 WHILE")
	be.Err(t, err, nil)
	be.Equal(t, types(toks), []TokenType{TokenID, TokenID, TokenID, TokenID,
		TokenID, TokenID, TokenID})
	be.Equal(t, toks[0].Lexeme, "sources")
	be.Equal(t, toks[1].Lexeme, "_x")
	be.Equal(t, toks[6].Lexeme, "WHILE")

	toks, err = scanAll(strings.Repeat("a", MaxIDLen))
	be.Err(t, err, nil)
	be.Equal(t, len(toks[0].Lexeme), MaxIDLen)

	_, err = scanAll(strings.Repeat("a", MaxIDLen+1))
	be.Equal(t, err.Error(), "1:1: identifier too long")
}

func TestReservedTableSorted(t *testing.T) {
	for i := 1; i < len(reserved); i++ {
		be.True(t, reserved[i-1].word < reserved[i].word)
	}
	be.Equal(t, len(reserved), 25)
}

func TestNumbers(t *testing.T) {
	toks, err := scanAll("0 7 2147483647")
	be.Err(t, err, nil)
	be.Equal(t, toks[0].Value, 0)
	be.Equal(t, toks[1].Value, 7)
	be.Equal(t, toks[2].Value, 2147483647)

	_, err = scanAll("x := 2147483648")
	be.Equal(t, err.Error(), "1:6: number too large")

	_, err = scanAll("99999999999999999999")
	be.Equal(t, err.Error(), "1:1: number too large")
}

func TestStrings(t *testing.T) {
	toks, err := scanAll(`"hello, world"`)
	be.Err(t, err, nil)
	be.Equal(t, toks[0].Type, TokenString)
	be.Equal(t, toks[0].Lexeme, "hello, world")

	toks, err = scanAll(`""`)
	be.Err(t, err, nil)
	be.Equal(t, toks[0].Lexeme, "")

	// legal escape codes keep their backslash for the assembler
	toks, err = scanAll(`"line\n" "tab\t" "quote\"q" "back\\slash"`)
	be.Err(t, err, nil)
	be.Equal(t, toks[0].Lexeme, `line\n`)
	be.Equal(t, toks[1].Lexeme, `tab\t`)
	be.Equal(t, toks[2].Lexeme, `quote\"q`)
	be.Equal(t, toks[3].Lexeme, `back\\slash`)
}

func TestStringErrors(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"illegal escape", `x := "ring\a"`, `1:11: illegal escape code '\a' in string`},
		{"illegal escape quote", `"\'"`, `1:2: illegal escape code '\'' in string`},
		{"not closed", `x := "abc`, "1:6: string not closed"},
		{"not closed empty", `"`, "1:1: string not closed"},
		{"raw tab", "\"a\tb\"", "1:3: non-printable character (ASCII #9) in string"},
		{"raw newline", "\"a\nb\"", "1:3: non-printable character (ASCII #10) in string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanAll(tt.src)
			be.Equal(t, err.Error(), tt.want)
		})
	}
}

func TestComments(t *testing.T) {
	toks, err := scanAll("a { this is ignored } b")
	be.Err(t, err, nil)
	be.Equal(t, types(toks), []TokenType{TokenID, TokenID})

	toks, err = scanAll("a { outer { inner } outer } b")
	be.Err(t, err, nil)
	be.Equal(t, types(toks), []TokenType{TokenID, TokenID})

	toks, err = scanAll("{ leading }x{ trailing }")
	be.Err(t, err, nil)
	be.Equal(t, toks[0].Lexeme, "x")
}

func TestCommentErrors(t *testing.T) {
	// an unterminated comment reports the position of its opening brace
	_, err := scanAll("ab { never closed")
	be.Equal(t, err.Error(), "1:4: comment not closed")

	// the innermost unterminated comment is the one reported
	_, err = scanAll("x {\n outer { inner } still open")
	be.Equal(t, err.Error(), "1:3: comment not closed")

	_, err = scanAll("x {\n outer { inner never closed")
	be.Equal(t, err.Error(), "2:8: comment not closed")

	_, err = scanAll("a } b")
	be.Equal(t, err.Error(), "1:3: illegal character '}' (ASCII #125)")
}

func TestIllegalCharacters(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"x := a % b", "1:8: illegal character '%' (ASCII #37)"},
		{"x : y", "1:3: illegal character ':' (ASCII #58)"},
		{"x :", "1:3: illegal character ':' (ASCII #58)"},
		{"#", "1:1: illegal character '#' (ASCII #35)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := scanAll(tt.src)
			be.Equal(t, err.Error(), tt.want)
		})
	}
}

func TestPositions(t *testing.T) {
	s := New(strings.NewReader("source test\n  x := 1\n"))
	want := []struct {
		typ TokenType
		pos SourcePos
	}{
		{TokenSource, SourcePos{1, 1}},
		{TokenID, SourcePos{1, 8}},
		{TokenID, SourcePos{2, 3}},
		{TokenGets, SourcePos{2, 5}},
		{TokenNumber, SourcePos{2, 8}},
	}
	for _, w := range want {
		tok := s.Next()
		be.Equal(t, tok.Type, w.typ)
		be.Equal(t, s.Pos, w.pos)
	}
	be.Equal(t, s.Next().Type, TokenEOF)
}

func TestEOFIsSticky(t *testing.T) {
	s := New(strings.NewReader("end"))
	be.Equal(t, s.Next().Type, TokenEnd)
	be.Equal(t, s.Next().Type, TokenEOF)
	be.Equal(t, s.Next().Type, TokenEOF)
}

func TestOperatorClasses(t *testing.T) {
	for _, op := range []TokenType{TokenEqual, TokenGreaterEqual, TokenGreaterThan,
		TokenLessEqual, TokenLessThan, TokenNotEqual} {
		be.True(t, op.IsRelOp())
		be.True(t, !op.IsAddOp() && !op.IsMulOp())
	}
	for _, op := range []TokenType{TokenMinus, TokenOr, TokenPlus} {
		be.True(t, op.IsAddOp())
		be.True(t, !op.IsRelOp() && !op.IsMulOp())
	}
	for _, op := range []TokenType{TokenAnd, TokenDivide, TokenMultiply, TokenRemainder} {
		be.True(t, op.IsMulOp())
		be.True(t, !op.IsRelOp() && !op.IsAddOp())
	}
	be.True(t, !TokenID.IsRelOp())

	for _, tt := range []TokenType{TokenID, TokenNumber, TokenOpenParen,
		TokenNot, TokenTrue, TokenFalse} {
		be.True(t, tt.StartsFactor())
		be.True(t, tt.StartsExpr())
	}
	be.True(t, TokenMinus.StartsExpr())
	be.True(t, !TokenMinus.StartsFactor())
	be.True(t, !TokenBegin.StartsExpr())
}

func TestTokenStrings(t *testing.T) {
	be.Equal(t, TokenEOF.String(), "end-of-file")
	be.Equal(t, TokenID.String(), "identifier")
	be.Equal(t, TokenGets.String(), "':='")
	be.Equal(t, TokenNotEqual.String(), "'<>'")
	be.Equal(t, TokenRemainder.String(), "'rem'")
	be.Equal(t, TokenSemicolon.String(), "';'")
	be.Equal(t, TokenType(999).String(), "token(999)")
	// every token type has a rendering
	be.Equal(t, len(tokenStrings), int(TokenSemicolon)+1)
}
