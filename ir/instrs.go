// Copyright © 2026 The Sable Authors under an MIT-style license.

package ir

// A Mode is an ownership qualifier on a load or store.
type Mode int

// The ownership modes.
// Loads are Trivial, Copy, or Take; stores are Trivial, Init, or Assign.
const (
	Trivial Mode = iota
	Init
	Assign
	Copy
	Take
)

// A ProjKind says what sort of projection a Proj or Extract is.
type ProjKind int

// The kinds of projections.
const (
	StructProj ProjKind = iota + 1
	TupleProj
	BitCast
)

// Alloc is the address of a fixed local memory cell of the element type.
type Alloc struct {
	val
	Elem *Type
	// Name is the source variable name, if any.
	Name string
}

func (*Alloc) Uses() []Val { return nil }

// NewAlloc returns a new stack slot allocation of the element type.
func (f *Fun) NewAlloc(elem *Type, name string) *Alloc {
	return &Alloc{val: newVal(f, AddrOf(elem)), Elem: elem, Name: name}
}

// Dealloc deallocates a stack slot.
type Dealloc struct {
	stmtBase
	Src Val
}

func (n *Dealloc) Uses() []Val { return []Val{n.Src} }

// Load loads the value at an address.
type Load struct {
	val
	Src  Val
	Mode Mode
}

func (n *Load) Uses() []Val { return []Val{n.Src} }

// NewLoad returns a new load of the value at src.
func (f *Fun) NewLoad(src Val, mode Mode) *Load {
	return &Load{val: newVal(f, src.Type().Elem()), Src: src, Mode: mode}
}

// Store stores a value to a location specified by address.
type Store struct {
	stmtBase
	// Dst is the address to which the value is stored.
	Dst  Val
	Val  Val
	Mode Mode
}

func (n *Store) Uses() []Val { return []Val{n.Dst, n.Val} }

// Proj is the address of an aggregate's sub-element,
// or a bitwise-compatible reinterpretation of an address.
type Proj struct {
	val
	// Obj is the base address of the object.
	Obj  Val
	Kind ProjKind
	// Index is the element index; unused for BitCast.
	Index int
}

func (n *Proj) Uses() []Val { return []Val{n.Obj} }

// NewProj returns a new struct or tuple element address projection.
func (f *Fun) NewProj(obj Val, kind ProjKind, index int) *Proj {
	elem := obj.Type().Elem().Elems[index]
	return &Proj{val: newVal(f, AddrOf(elem)), Obj: obj, Kind: kind, Index: index}
}

// NewBitCast returns a new bitwise reinterpretation of obj
// as the address of a to location.
func (f *Fun) NewBitCast(obj Val, to *Type) *Proj {
	return &Proj{val: newVal(f, AddrOf(to)), Obj: obj, Kind: BitCast}
}

// Extract is the value of an aggregate's sub-element,
// or a bitwise-compatible reinterpretation of a value.
type Extract struct {
	val
	Obj  Val
	Kind ProjKind
	// Index is the element index; unused for BitCast.
	Index int
}

func (n *Extract) Uses() []Val { return []Val{n.Obj} }

// NewExtract returns a new struct or tuple element extraction.
func (f *Fun) NewExtract(obj Val, kind ProjKind, index int) *Extract {
	elem := obj.Type().Elems[index]
	return &Extract{val: newVal(f, elem), Obj: obj, Kind: kind, Index: index}
}

// NewBitCastVal returns a new bitwise reinterpretation of a value.
func (f *Fun) NewBitCastVal(obj Val, to *Type) *Extract {
	return &Extract{val: newVal(f, to), Obj: obj, Kind: BitCast}
}

// Borrow begins a borrow of a value,
// giving temporary access without transferring ownership.
type Borrow struct {
	val
	Src Val
}

func (n *Borrow) Uses() []Val { return []Val{n.Src} }

// NewBorrow returns a new borrow of src.
func (f *Fun) NewBorrow(src Val) *Borrow {
	return &Borrow{val: newVal(f, src.Type()), Src: src}
}

// EndBorrow ends a borrow.
type EndBorrow struct {
	stmtBase
	Src Val
}

func (n *EndBorrow) Uses() []Val { return []Val{n.Src} }

// CopyVal is an independently owned copy of a value.
type CopyVal struct {
	val
	Src Val
}

func (n *CopyVal) Uses() []Val { return []Val{n.Src} }

// NewCopyVal returns a new copy of src.
func (f *Fun) NewCopyVal(src Val) *CopyVal {
	return &CopyVal{val: newVal(f, src.Type()), Src: src}
}

// Tuple constructs a tuple value from element values.
type Tuple struct {
	val
	Elems []Val
}

func (n *Tuple) Uses() []Val { return n.Elems }

// NewTuple returns a new tuple value of the given type.
func (f *Fun) NewTuple(typ *Type, elems []Val) *Tuple {
	return &Tuple{val: newVal(f, typ), Elems: elems}
}

// Undef is an explicit undefined-value placeholder.
// Undefs belong to no block.
type Undef struct {
	val
}

func (*Undef) Uses() []Val { return nil }

// NewUndef returns a new undefined value of the given type.
func (f *Fun) NewUndef(typ *Type) *Undef {
	return &Undef{val: newVal(f, typ)}
}

// Call is a call to an opaque function.
// The callee may do anything with its arguments,
// including retaining any address passed to it.
type Call struct {
	val
	Name string
	Args []Val
}

func (n *Call) Uses() []Val { return n.Args }

// NewCall returns a new call producing a value of the given type.
func (f *Fun) NewCall(name string, typ *Type, args ...Val) *Call {
	return &Call{val: newVal(f, typ), Name: name, Args: args}
}

// DebugAddr annotates an address as holding
// the current value of a source variable.
type DebugAddr struct {
	stmtBase
	Src  Val
	Name string
}

func (n *DebugAddr) Uses() []Val { return []Val{n.Src} }

// DebugVal annotates a value as the current value of a source variable.
type DebugVal struct {
	stmtBase
	Src  Val
	Name string
}

func (n *DebugVal) Uses() []Val { return []Val{n.Src} }

// DestroyAddr destroys the value held at an address.
type DestroyAddr struct {
	stmtBase
	Src Val
}

func (n *DestroyAddr) Uses() []Val { return []Val{n.Src} }

// DestroyVal destroys a value, releasing its ownership.
type DestroyVal struct {
	stmtBase
	Src Val
}

func (n *DestroyVal) Uses() []Val { return []Val{n.Src} }

// Ret is a Term that returns from the current Fun.
type Ret struct {
	stmtBase
}

func (*Ret) Uses() []Val          { return nil }
func (*Ret) Out() []*BBlk         { return nil }
func (*Ret) EdgeArgs(int) []Val   { return nil }
func (*Ret) AppendArg(*BBlk, Val) {}
func (*Ret) rmArg(*BBlk, int)     {}

// Jmp is a Term that transfers control to another BBlk.
type Jmp struct {
	stmtBase
	Dst  *BBlk
	Args []Val
}

func (n *Jmp) Uses() []Val { return n.Args }

func (n *Jmp) Out() []*BBlk { return []*BBlk{n.Dst} }

func (n *Jmp) EdgeArgs(int) []Val { return n.Args }

func (n *Jmp) AppendArg(dst *BBlk, v Val) {
	if n.Dst != dst {
		return
	}
	n.Args = append(n.Args, v)
	v.value().addUser(n)
}

func (n *Jmp) rmArg(dst *BBlk, i int) {
	if n.Dst != dst {
		return
	}
	v := n.Args[i]
	n.Args = append(n.Args[:i], n.Args[i+1:]...)
	rmArgVal(n, v)
}

// CondJmp is a Term that transfers control to one of two BBlks.
type CondJmp struct {
	stmtBase
	Cond     Val
	Then     *BBlk
	ThenArgs []Val
	Else     *BBlk
	ElseArgs []Val
}

func (n *CondJmp) Uses() []Val {
	uses := make([]Val, 0, 1+len(n.ThenArgs)+len(n.ElseArgs))
	uses = append(uses, n.Cond)
	uses = append(uses, n.ThenArgs...)
	uses = append(uses, n.ElseArgs...)
	return uses
}

func (n *CondJmp) Out() []*BBlk { return []*BBlk{n.Then, n.Else} }

func (n *CondJmp) EdgeArgs(i int) []Val {
	if i == 0 {
		return n.ThenArgs
	}
	return n.ElseArgs
}

func (n *CondJmp) AppendArg(dst *BBlk, v Val) {
	if n.Then == dst {
		n.ThenArgs = append(n.ThenArgs, v)
		v.value().addUser(n)
	}
	if n.Else == dst {
		n.ElseArgs = append(n.ElseArgs, v)
		v.value().addUser(n)
	}
}

func (n *CondJmp) rmArg(dst *BBlk, i int) {
	if n.Then == dst {
		v := n.ThenArgs[i]
		n.ThenArgs = append(n.ThenArgs[:i], n.ThenArgs[i+1:]...)
		rmArgVal(n, v)
	}
	if n.Else == dst {
		v := n.ElseArgs[i]
		n.ElseArgs = append(n.ElseArgs[:i], n.ElseArgs[i+1:]...)
		rmArgVal(n, v)
	}
}
