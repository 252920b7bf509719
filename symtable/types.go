package symtable

import "strings"

// Base is the base kind of an ALAN value: boolean or integer. The zero
// value is not a valid kind.
type Base int

const (
	Boolean Base = iota + 1
	Integer
)

// DataType describes the type of a value: a base kind, either as a
// scalar or as an array of it.
type DataType struct {
	Base  Base
	Array bool
}

func (t DataType) String() string {
	var s string
	switch t.Base {
	case Boolean:
		s = "boolean"
	case Integer:
		s = "integer"
	default:
		s = "unknown"
	}
	if t.Array {
		s += " array"
	}
	return s
}

// Callable is the signature of a subroutine. A nil Ret means the
// subroutine is a procedure and leaves no value.
type Callable struct {
	Params []DataType
	Ret    *DataType
}

// IDprop carries the semantic properties of a declared name: type and
// storage offset for variables and parameters, or the signature for
// subroutine names.
type IDprop struct {
	Type      DataType  // variable or parameter type; unset for subroutine names
	Offset    int       // storage slot in the enclosing frame
	Signature *Callable // non-nil exactly for subroutine names
}

// IsCallable reports whether the name is a subroutine.
func (p *IDprop) IsCallable() bool { return p.Signature != nil }

// IsVariable reports whether the name is a variable or parameter.
func (p *IDprop) IsVariable() bool { return p.Signature == nil }

// IsFunction reports whether the name is a subroutine that leaves a
// value.
func (p *IDprop) IsFunction() bool {
	return p.Signature != nil && p.Signature.Ret != nil
}

// IsProcedure reports whether the name is a subroutine that leaves no
// value.
func (p *IDprop) IsProcedure() bool {
	return p.Signature != nil && p.Signature.Ret == nil
}

func (p *IDprop) String() string {
	if p.IsVariable() {
		return p.Type.String()
	}
	var b strings.Builder
	b.WriteString("function(")
	for i, t := range p.Signature.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteByte(')')
	if p.Signature.Ret != nil {
		b.WriteString(" to ")
		b.WriteString(p.Signature.Ret.String())
	}
	return b.String()
}
