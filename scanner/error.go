package scanner

import "fmt"

// SourcePos is a position in the source text. Line and column are
// 1-based; column 0 only occurs before the first character is read.
type SourcePos struct {
	Line, Col int
}

func (p SourcePos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Error is a fatal compile diagnostic. Compilation stops at the first
// one: the scanner and parser raise it as a panic value, and the
// compile entry point recovers it and returns it as an ordinary error.
type Error struct {
	Pos SourcePos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Fail aborts the compilation with a diagnostic at pos.
func Fail(pos SourcePos, format string, args ...any) {
	panic(&Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}
