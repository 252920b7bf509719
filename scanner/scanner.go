// Package scanner contains the lexical scanner for the ALAN compiler.
package scanner

import (
	"bufio"
	"io"
	"math"
	"sort"
)

// MaxIDLen is the maximum length of an identifier.
const MaxIDLen = 32

// initial capacity of the buffer collecting a string literal body
const initialStringLen = 1024

// A Scanner holds the scanner's state while it tokenizes one source
// text. Lexical errors abort the compilation through Fail.
type Scanner struct {
	// Pos is the start position of the most recently scanned token.
	// While a diagnostic is being raised it holds the position the
	// diagnostic refers to.
	Pos SourcePos

	r        *bufio.Reader
	ch       byte // current character, valid while !eot
	eot      bool // end of text reached
	lastRead byte
	line     int // line of the current character
	col      int // column of the current character
}

// New returns a scanner reading ALAN source text from r.
func New(r io.Reader) *Scanner {
	s := &Scanner{r: bufio.NewReader(r), line: 1}
	s.nextCh()
	return s
}

func (s *Scanner) nextCh() {
	b, err := s.r.ReadByte()
	if err != nil {
		if err != io.EOF {
			panic(err)
		}
		s.eot = true
		return
	}
	if s.lastRead == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.lastRead = b
	s.ch = b
}

// Next scans and returns the next token. At the end of the text it
// returns a TokenEOF token on this and every later call.
func (s *Scanner) Next() Token {
	for {
		for !s.eot && (s.ch == ' ' || s.ch == '\t' || s.ch == '\n') {
			s.nextCh()
		}
		s.Pos = SourcePos{Line: s.line, Col: s.col}
		if s.eot {
			return Token{Type: TokenEOF}
		}
		switch {
		case isLetter(s.ch) || s.ch == '_':
			return s.word()
		case isDigit(s.ch):
			return s.number()
		}
		switch s.ch {
		case '"':
			s.nextCh()
			return s.str()
		case '{':
			s.comment()
			s.nextCh()
			continue
		case '}':
			// a closing brace outside a comment is not a token
			s.fail("illegal character '%c' (ASCII #%d)", s.ch, s.ch)
		case '(':
			s.nextCh()
			return Token{Type: TokenOpenParen}
		case ')':
			s.nextCh()
			return Token{Type: TokenCloseParen}
		case '[':
			s.nextCh()
			return Token{Type: TokenOpenBracket}
		case ']':
			s.nextCh()
			return Token{Type: TokenCloseBracket}
		case '+':
			s.nextCh()
			return Token{Type: TokenPlus}
		case '-':
			s.nextCh()
			return Token{Type: TokenMinus}
		case '/':
			s.nextCh()
			return Token{Type: TokenDivide}
		case '*':
			s.nextCh()
			return Token{Type: TokenMultiply}
		case ';':
			s.nextCh()
			return Token{Type: TokenSemicolon}
		case ',':
			s.nextCh()
			return Token{Type: TokenComma}
		case '.':
			s.nextCh()
			return Token{Type: TokenConcatenate}
		case '=':
			s.nextCh()
			return Token{Type: TokenEqual}
		case ':':
			ch := s.ch
			s.nextCh()
			if s.eot || s.ch != '=' {
				s.fail("illegal character '%c' (ASCII #%d)", ch, ch)
			}
			s.nextCh()
			return Token{Type: TokenGets}
		case '<':
			s.nextCh()
			if !s.eot {
				switch s.ch {
				case ' ':
					s.nextCh()
					return Token{Type: TokenLessThan}
				case '>':
					s.nextCh()
					return Token{Type: TokenNotEqual}
				case '=':
					s.nextCh()
					return Token{Type: TokenLessEqual}
				}
			}
			return Token{Type: TokenLessThan}
		case '>':
			s.nextCh()
			if !s.eot {
				switch s.ch {
				case ' ':
					s.nextCh()
					return Token{Type: TokenGreaterThan}
				case '=':
					s.nextCh()
					return Token{Type: TokenGreaterEqual}
				}
			}
			return Token{Type: TokenGreaterThan}
		default:
			s.fail("illegal character '%c' (ASCII #%d)", s.ch, s.ch)
		}
	}
}

// word scans an identifier or reserved word.
func (s *Scanner) word() Token {
	var buf []byte
	for !s.eot && (isLetter(s.ch) || isDigit(s.ch) || s.ch == '_') {
		if len(buf) >= MaxIDLen {
			s.fail("identifier too long")
		}
		buf = append(buf, s.ch)
		s.nextCh()
	}
	lexeme := string(buf)
	i := sort.Search(len(reserved), func(i int) bool {
		return reserved[i].word >= lexeme
	})
	if i < len(reserved) && reserved[i].word == lexeme {
		return Token{Type: reserved[i].typ}
	}
	return Token{Type: TokenID, Lexeme: lexeme}
}

// number scans a number literal, guarding against values the target's
// 32-bit integers cannot represent.
func (s *Scanner) number() Token {
	var v int32
	for !s.eot && isDigit(s.ch) {
		d := int32(s.ch - '0')
		if v > (math.MaxInt32-d)/10 {
			s.fail("number too large")
		}
		v = 10*v + d
		s.nextCh()
	}
	return Token{Type: TokenNumber, Value: v}
}

// str scans a string literal body; the opening quote has already been
// consumed and its position saved in s.Pos. Legal escape codes pass
// through with their backslash; the assembler interprets them.
func (s *Scanner) str() Token {
	start := s.Pos
	buf := make([]byte, 0, initialStringLen)
	for !s.eot && s.ch != '"' {
		if !isPrint(s.ch) {
			s.Pos = SourcePos{Line: s.line, Col: s.col}
			s.fail("non-printable character (ASCII #%d) in string", s.ch)
		}
		if s.ch == '\\' {
			s.nextCh()
			if s.eot {
				break
			}
			switch s.ch {
			case 'a', 'b', 'f', 'r', 'v', '\'', '?':
				s.Pos = SourcePos{Line: s.line, Col: s.col - 1}
				s.fail("illegal escape code '\\%c' in string", s.ch)
			}
			buf = append(buf, '\\')
		}
		buf = append(buf, s.ch)
		s.nextCh()
	}
	if s.eot {
		s.Pos = start
		s.fail("string not closed")
	}
	s.nextCh()
	s.Pos = start
	return Token{Type: TokenString, Lexeme: string(buf)}
}

// comment skips a brace comment, recursing on nested ones. On return
// the current character is the comment's closing brace.
func (s *Scanner) comment() {
	start := SourcePos{Line: s.line, Col: s.col}
	s.nextCh()
	for !s.eot && s.ch != '}' {
		if s.ch == '{' {
			s.comment()
		}
		s.nextCh()
	}
	if s.eot {
		s.Pos = start
		s.fail("comment not closed")
	}
}

func (s *Scanner) fail(format string, args ...any) {
	Fail(s.Pos, format, args...)
}

func isLetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isPrint(b byte) bool {
	return ' ' <= b && b <= '~'
}
