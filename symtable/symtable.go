// Package symtable implements the two-level symbol table of the ALAN
// compiler and the value-type records bound to declared names.
package symtable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ArloHS/alan-compiler/hashtable"
)

const maxLoadFactor = 0.75

// A SymbolTable tracks declared names in two scopes: the global scope,
// which holds subroutine names and the main body's variables, and at
// most one open subroutine scope.
type SymbolTable struct {
	table       *hashtable.HashTab[string, *IDprop]
	saved       *hashtable.HashTab[string, *IDprop]
	offset      int
	savedOffset int
}

// New returns a symbol table holding only the global scope. The global
// storage frame starts at offset 1; slot 0 belongs to the runtime
// arguments of the program entry point.
func New() *SymbolTable {
	return &SymbolTable{table: newScope(), offset: 1}
}

func newScope() *hashtable.HashTab[string, *IDprop] {
	return hashtable.New[string, *IDprop](maxLoadFactor, identHash,
		func(a, b string) bool { return a == b })
}

// Insert binds name to props in the current scope. It reports false,
// leaving the table unchanged, if the name is already bound in the
// current scope. Every successful insertion of a non-callable name
// claims the next storage slot, so callers seed props.Offset with
// FrameWidth().
func (t *SymbolTable) Insert(name string, props *IDprop) bool {
	if !t.table.Insert(name, props) {
		return false
	}
	if props.IsVariable() {
		t.offset++
	}
	return true
}

// Lookup resolves name: the current scope first, then, from inside a
// subroutine, the global scope, where only callable names are visible.
// Subroutines cannot see each other's locals but can always reach
// globally declared functions.
func (t *SymbolTable) Lookup(name string) (*IDprop, bool) {
	if p, ok := t.table.Search(name); ok {
		return p, true
	}
	if t.saved != nil {
		if p, ok := t.saved.Search(name); ok && p.IsCallable() {
			return p, true
		}
	}
	return nil, false
}

// OpenSubroutine inserts name into the global scope and opens a fresh
// scope for the subroutine's parameters and locals, whose storage
// frame starts at offset 0. It reports false, with no scope switch, if
// the name is already taken.
func (t *SymbolTable) OpenSubroutine(name string, props *IDprop) bool {
	if !t.Insert(name, props) {
		return false
	}
	t.saved = t.table
	t.savedOffset = t.offset
	t.table = newScope()
	t.offset = 0
	return true
}

// CloseSubroutine discards the subroutine scope and reactivates the
// global scope with its storage offset restored.
func (t *SymbolTable) CloseSubroutine() {
	t.table = t.saved
	t.offset = t.savedOffset
	t.saved = nil
}

// FrameWidth returns the number of storage slots the current scope's
// frame occupies so far.
func (t *SymbolTable) FrameWidth() int {
	return t.offset
}

// String renders the current scope for debugging, one name per line.
func (t *SymbolTable) String() string {
	var lines []string
	t.table.Each(func(name string, p *IDprop) {
		lines = append(lines, fmt.Sprintf("%s@%d[%s]", name, p.Offset, p))
	})
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// identHash mixes every character into a 5-bit cyclic shift of the
// running hash, so identifiers that are anagrams of one another still
// hash apart.
func identHash(id string) uint32 {
	var h uint32
	for i := 0; i < len(id); i++ {
		h = h<<5 | h>>27
		h += uint32(id[i])
	}
	return h
}
