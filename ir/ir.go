// Copyright © 2026 The Sable Authors under an MIT-style license.

// Package ir has the intermediate representation
// of function bodies used by the middle-end passes.
//
// The representation is a naive SSA form
// which uses explicit allocations, loads, and stores for local variables.
// Basic blocks carry ordered parameter lists;
// terminators carry one argument list per outgoing edge,
// with one argument per destination parameter.
// The mem2reg pass rewrites slot loads and stores
// into block parameters and branch arguments.
//
// Statements that use a Val appear in the Val's user list.
// The user lists are kept consistent on every edit:
// erasing a statement unlinks it from the users of everything it uses.
// Erased statements are only marked; Fun.Compact sweeps them out
// and renumbers the remaining values.
package ir

import (
	"sort"
	"strings"
)

// A Fun is a code block.
type Fun struct {
	Name  string
	NVals int
	BBlks []*BBlk
}

// NewFun returns a new, empty function.
func NewFun(name string) *Fun {
	return &Fun{Name: name}
}

// NewBBlk appends a new, empty basic block.
func (f *Fun) NewBBlk() *BBlk {
	b := &BBlk{N: len(f.BBlks)}
	f.BBlks = append(f.BBlks, b)
	return b
}

// A BBlk is a basic block.
type BBlk struct {
	// N is unique within the containing Fun.
	N     int
	Parms []*Parm
	Stmts []Stmt
	In    []*BBlk
}

// Out returns the successor blocks.
func (b *BBlk) Out() []*BBlk {
	if t := b.Term(); t != nil {
		return t.Out()
	}
	return nil
}

// Term returns the block's terminator, if any.
func (b *BBlk) Term() Term {
	if len(b.Stmts) == 0 {
		return nil
	}
	term, ok := b.Stmts[len(b.Stmts)-1].(Term)
	if !ok {
		return nil
	}
	return term
}

func (b *BBlk) addIn(in *BBlk) {
	for _, i := range b.In {
		if i == in {
			return
		}
	}
	b.In = append(b.In, in)
}

func (b *BBlk) rmIn(in *BBlk) {
	for i, x := range b.In {
		if x == in {
			b.In = append(b.In[:i], b.In[i+1:]...)
			return
		}
	}
}

// Add appends a statement, wiring it into the user lists of its uses
// and, for a terminator, into the predecessor lists of its successors.
func (b *BBlk) Add(s Stmt) {
	b.Stmts = append(b.Stmts, s)
	wire(b, s)
}

// Insert inserts s immediately before at, which must be in b.
func (b *BBlk) Insert(at, s Stmt) {
	i := b.index(at)
	b.Stmts = append(b.Stmts, nil)
	copy(b.Stmts[i+1:], b.Stmts[i:])
	b.Stmts[i] = s
	wire(b, s)
}

// InsertAfter inserts s immediately after at, which must be in b.
func (b *BBlk) InsertAfter(at, s Stmt) {
	i := b.index(at) + 1
	b.Stmts = append(b.Stmts, nil)
	copy(b.Stmts[i+1:], b.Stmts[i:])
	b.Stmts[i] = s
	wire(b, s)
}

func (b *BBlk) index(at Stmt) int {
	for i, s := range b.Stmts {
		if s == at {
			return i
		}
	}
	panic("statement not in block")
}

func wire(b *BBlk, s Stmt) {
	s.stmt().blk = b
	for _, v := range s.Uses() {
		v.value().addUser(s)
	}
	if term, ok := s.(Term); ok {
		for _, o := range term.Out() {
			o.addIn(b)
		}
	}
}

// Erase marks a statement deleted
// and unlinks it from the user lists of everything it uses.
// The statement remains in its block until Fun.Compact.
func Erase(s Stmt) {
	base := s.stmt()
	if base.del {
		return
	}
	base.del = true
	for _, v := range s.Uses() {
		v.value().rmUser(s)
	}
	if term, ok := s.(Term); ok {
		for _, o := range term.Out() {
			o.rmIn(base.blk)
		}
	}
}

// Compact removes erased statements and renumbers the remaining values
// in block order.
func (f *Fun) Compact() {
	for _, b := range f.BBlks {
		var i int
		for _, s := range b.Stmts {
			if !s.stmt().del {
				b.Stmts[i] = s
				i++
			}
		}
		b.Stmts = b.Stmts[:i]
	}
	f.renumber()
}

func (f *Fun) renumber() {
	var iv int
	seen := make(map[Val]bool)
	number := func(v Val) {
		v.value().n = iv
		seen[v] = true
		iv++
	}
	for _, b := range f.BBlks {
		for _, p := range b.Parms {
			number(p)
		}
		for _, s := range b.Stmts {
			if v, ok := s.(Val); ok {
				number(v)
			}
		}
	}
	// Values used but defined in no block, like undefs, come last.
	for _, b := range f.BBlks {
		for _, s := range b.Stmts {
			for _, v := range s.Uses() {
				if !seen[v] {
					number(v)
				}
			}
		}
	}
	f.NVals = iv
	for _, b := range f.BBlks {
		sort.Slice(b.In, func(i, j int) bool { return b.In[i].N < b.In[j].N })
	}
}

// A Stmt is an instruction.
type Stmt interface {
	// Uses returns the values the statement uses.
	Uses() []Val
	// Blk returns the containing block.
	Blk() *BBlk
	// Deleted returns whether the statement has been erased.
	Deleted() bool

	buildString(*strings.Builder) *strings.Builder

	// sub substitutes values of the statement
	// that are keys of the map for their values.
	sub(valMap)

	// bugs returns a string describing errors in the statement.
	// An empty return indicates no errors.
	// These are indicative of bugs in the ir package or its callers,
	// like type mismatches or storing to a non-address.
	bugs() string

	stmt() *stmtBase
}

type stmtBase struct {
	blk *BBlk
	del bool
}

func (s *stmtBase) Blk() *BBlk      { return s.blk }
func (s *stmtBase) Deleted() bool   { return s.del }
func (s *stmtBase) stmt() *stmtBase { return s }

// A Term is a terminal statement.
type Term interface {
	Stmt
	Out() []*BBlk
	// EdgeArgs returns the branch arguments sent along the i'th out edge.
	EdgeArgs(i int) []Val
	// AppendArg appends v to the argument list
	// of every out edge targeting dst.
	AppendArg(dst *BBlk, v Val)
	rmArg(dst *BBlk, i int)
}

// A Val is a value: an SSA-producing instruction or block parameter.
type Val interface {
	Stmt
	// Num is the Val's unique number.
	Num() int
	// Type returns the Val's type.
	Type() *Type
	// Users returns the Stmts that use this Val.
	Users() []Stmt

	value() *val
}

type val struct {
	stmtBase
	n     int
	typ   *Type
	users []Stmt
}

func newVal(f *Fun, typ *Type) val {
	v := val{n: f.NVals, typ: typ}
	f.NVals++
	return v
}

func (v *val) Num() int      { return v.n }
func (v *val) Type() *Type   { return v.typ }
func (v *val) Users() []Stmt { return v.users }
func (v *val) value() *val   { return v }

func (v *val) addUser(s Stmt) {
	for _, u := range v.users {
		if u == s {
			return
		}
	}
	v.users = append(v.users, s)
}

func (v *val) rmUser(s Stmt) {
	for i, u := range v.users {
		if u == s {
			v.users = append(v.users[:i], v.users[i+1:]...)
			return
		}
	}
}

// A Parm is a basic block parameter.
// Its value is supplied per incoming edge
// by the predecessors' branch arguments.
type Parm struct {
	val
}

func (*Parm) Uses() []Val { return nil }

// AddParm appends a new parameter to b's parameter list.
// Predecessor terminators must be given a matching argument
// with Term.AppendArg.
func (f *Fun) AddParm(b *BBlk, typ *Type) *Parm {
	p := &Parm{val: newVal(f, typ)}
	p.blk = b
	b.Parms = append(b.Parms, p)
	return p
}

// RmParm removes b's i'th parameter
// along with the corresponding branch argument
// of every predecessor edge targeting b.
func (f *Fun) RmParm(b *BBlk, i int) {
	p := b.Parms[i]
	b.Parms = append(b.Parms[:i], b.Parms[i+1:]...)
	p.del = true
	for _, in := range b.In {
		if t := in.Term(); t != nil {
			t.rmArg(b, i)
		}
	}
}

// ParmIndex returns the index of p in its block's parameter list.
func ParmIndex(p *Parm) int {
	for i, q := range p.Blk().Parms {
		if q == p {
			return i
		}
	}
	panic("parameter not in block")
}

// rmArgVal removes one argument use of v by t,
// re-adding t as a user if t still uses v elsewhere.
func rmArgVal(t Term, v Val) {
	v.value().rmUser(t)
	for _, u := range t.Uses() {
		if u == v {
			v.value().addUser(t)
			return
		}
	}
}
