package symtable

import (
	"testing"

	"github.com/nalgeon/be"
)

var (
	intT     = DataType{Base: Integer}
	boolT    = DataType{Base: Boolean}
	intArrT  = DataType{Base: Integer, Array: true}
	boolArrT = DataType{Base: Boolean, Array: true}
)

func variable(t DataType, offset int) *IDprop {
	return &IDprop{Type: t, Offset: offset}
}

func function(ret DataType, params ...DataType) *IDprop {
	return &IDprop{Signature: &Callable{Params: params, Ret: &ret}}
}

func procedure(params ...DataType) *IDprop {
	return &IDprop{Signature: &Callable{Params: params}}
}

func TestGlobalOffsets(t *testing.T) {
	st := New()
	// slot 0 is reserved for the entry point's argument vector
	be.Equal(t, st.FrameWidth(), 1)

	be.True(t, st.Insert("x", variable(intT, st.FrameWidth())))
	be.Equal(t, st.FrameWidth(), 2)
	be.True(t, st.Insert("y", variable(boolT, st.FrameWidth())))
	be.Equal(t, st.FrameWidth(), 3)

	x, ok := st.Lookup("x")
	be.True(t, ok)
	be.Equal(t, x.Offset, 1)
	be.Equal(t, x.Type, intT)
	y, _ := st.Lookup("y")
	be.Equal(t, y.Offset, 2)
}

func TestCallablesTakeNoSlot(t *testing.T) {
	st := New()
	be.True(t, st.Insert("f", procedure(intT)))
	be.Equal(t, st.FrameWidth(), 1)
	be.True(t, st.Insert("x", variable(intT, st.FrameWidth())))
	x, _ := st.Lookup("x")
	be.Equal(t, x.Offset, 1)
}

func TestSubroutineScope(t *testing.T) {
	st := New()
	be.True(t, st.OpenSubroutine("f", function(intT, intT)))
	be.Equal(t, st.FrameWidth(), 0)

	be.True(t, st.Insert("n", variable(intT, st.FrameWidth())))
	n, ok := st.Lookup("n")
	be.True(t, ok)
	be.Equal(t, n.Offset, 0)
	be.Equal(t, st.FrameWidth(), 1)

	// the subroutine sees itself through the global scope
	f, ok := st.Lookup("f")
	be.True(t, ok)
	be.True(t, f.IsFunction())

	st.CloseSubroutine()
	be.Equal(t, st.FrameWidth(), 1)
	_, ok = st.Lookup("n")
	be.True(t, !ok)
	_, ok = st.Lookup("f")
	be.True(t, ok)
}

func TestLocalsInvisibleAcrossSubroutines(t *testing.T) {
	st := New()
	be.True(t, st.OpenSubroutine("f", procedure()))
	be.True(t, st.Insert("a", variable(intT, st.FrameWidth())))
	st.CloseSubroutine()

	be.True(t, st.OpenSubroutine("g", procedure()))
	_, ok := st.Lookup("a")
	be.True(t, !ok)
	_, ok = st.Lookup("f")
	be.True(t, ok)
	st.CloseSubroutine()
}

func TestNonCallableGlobalsInvisibleInSubroutine(t *testing.T) {
	st := New()
	be.True(t, st.Insert("x", variable(intT, st.FrameWidth())))
	be.True(t, st.OpenSubroutine("f", procedure()))
	_, ok := st.Lookup("x")
	be.True(t, !ok)
	st.CloseSubroutine()
	_, ok = st.Lookup("x")
	be.True(t, ok)
}

func TestLocalShadowsFunctionName(t *testing.T) {
	st := New()
	be.True(t, st.OpenSubroutine("f", function(intT)))
	st.CloseSubroutine()

	be.True(t, st.OpenSubroutine("g", procedure()))
	// insert checks the current scope only, so a local may reuse a
	// global function name and shadow it
	be.True(t, st.Insert("f", variable(boolT, st.FrameWidth())))
	f, ok := st.Lookup("f")
	be.True(t, ok)
	be.True(t, f.IsVariable())
	be.Equal(t, f.Type, boolT)
	st.CloseSubroutine()

	f, _ = st.Lookup("f")
	be.True(t, f.IsFunction())
}

func TestMultipleDefinition(t *testing.T) {
	st := New()
	be.True(t, st.Insert("x", variable(intT, st.FrameWidth())))
	be.True(t, !st.Insert("x", variable(boolT, st.FrameWidth())))
	be.Equal(t, st.FrameWidth(), 2)

	x, _ := st.Lookup("x")
	be.Equal(t, x.Type, intT)

	// a failed subroutine open leaves the global scope current
	be.True(t, !st.OpenSubroutine("x", procedure()))
	be.True(t, st.Insert("y", variable(intT, st.FrameWidth())))
	y, _ := st.Lookup("y")
	be.Equal(t, y.Offset, 2)
}

func TestOffsetRestoredAfterSubroutine(t *testing.T) {
	st := New()
	be.True(t, st.Insert("a", variable(intT, st.FrameWidth())))
	be.Equal(t, st.FrameWidth(), 2)

	be.True(t, st.OpenSubroutine("f", procedure(intT, intT)))
	be.True(t, st.Insert("p", variable(intT, st.FrameWidth())))
	be.True(t, st.Insert("q", variable(intT, st.FrameWidth())))
	be.True(t, st.Insert("r", variable(intArrT, st.FrameWidth())))
	be.Equal(t, st.FrameWidth(), 3)
	st.CloseSubroutine()

	// the global frame continues where it left off
	be.Equal(t, st.FrameWidth(), 2)
	be.True(t, st.Insert("b", variable(intT, st.FrameWidth())))
	b, _ := st.Lookup("b")
	be.Equal(t, b.Offset, 2)
}

func TestIdentHashMixesPosition(t *testing.T) {
	pairs := [][2]string{
		{"ab", "ba"},
		{"abc", "cab"},
		{"abc", "bca"},
		{"stop", "pots"},
		{"listen", "silent"},
	}
	for _, p := range pairs {
		be.True(t, identHash(p[0]) != identHash(p[1]))
	}
	be.Equal(t, identHash("x"), identHash("x"))
}

func TestPropPredicates(t *testing.T) {
	v := variable(intArrT, 3)
	be.True(t, v.IsVariable())
	be.True(t, !v.IsCallable() && !v.IsFunction() && !v.IsProcedure())

	f := function(intT, intT, boolArrT)
	be.True(t, f.IsCallable() && f.IsFunction())
	be.True(t, !f.IsVariable() && !f.IsProcedure())

	p := procedure(boolT)
	be.True(t, p.IsCallable() && p.IsProcedure())
	be.True(t, !p.IsFunction())
}

func TestTypeStrings(t *testing.T) {
	be.Equal(t, intT.String(), "integer")
	be.Equal(t, boolT.String(), "boolean")
	be.Equal(t, intArrT.String(), "integer array")
	be.Equal(t, boolArrT.String(), "boolean array")
	be.Equal(t, DataType{}.String(), "unknown")

	be.Equal(t, function(intT, intT, boolArrT).String(),
		"function(integer, boolean array) to integer")
	be.Equal(t, procedure().String(), "function()")
	be.Equal(t, variable(boolT, 0).String(), "boolean")
}

func TestStringDump(t *testing.T) {
	st := New()
	st.Insert("x", variable(intT, st.FrameWidth()))
	st.Insert("f", procedure(intT))
	be.Equal(t, st.String(), "f@0[function(integer)]\nx@1[integer]")
}
