// Copyright © 2026 The Sable Authors under an MIT-style license.

package ir

/*
The bugs() methods perform checking for bugs in the instructions,
returning a string describing a bug found.
A bug string indicates a bug in the ir package or a pass, not the user input.

The general scheme is to defer recoverBug(&b) on the return variable b.
Then for each item needing to be checked, use bugIf.
The bugIf function panics if the condition is true.
This means that subsequent bugIfs can assume
that the condition of all preceding bugIfs was false.
*/

import "fmt"

func (n *Alloc) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(!n.Type().Addr() || !n.Type().Elem().equal(n.Elem),
		"alloc type mismatch: %s is not the address of %s", n.Type(), n.Elem)
	return ""
}

func (n *Dealloc) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(!n.Src.Type().Addr(),
		"dealloc of non-address type %s", n.Src.Type())
	return ""
}

func (n *Load) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(!n.Src.Type().Addr(),
		"load from non-address type %s", n.Src.Type())
	bugIf(!n.Src.Type().Elem().equal(n.Type()),
		"load type mismatch: got %s, want %s",
		n.Type(), n.Src.Type().Elem())
	return ""
}

func (n *Store) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(!n.Dst.Type().Addr(),
		"store to non-address type %s", n.Dst.Type())
	bugIf(!n.Dst.Type().Elem().equal(n.Val.Type()),
		"store type mismatch: dst %s != val %s",
		n.Dst.Type().Elem(), n.Val.Type())
	return ""
}

func (n *Proj) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(!n.Obj.Type().Addr(),
		"projection of non-address type %s", n.Obj.Type())
	if n.Kind == BitCast {
		bugIf(!n.Type().Addr(),
			"cast to non-address type %s", n.Type())
		return ""
	}
	objType := n.Obj.Type().Elem()
	bugIf(objType.Kind != StructType && objType.Kind != TupleType,
		"projection of non-aggregate type %s", objType)
	bugIf(n.Index < 0 || n.Index >= len(objType.Elems),
		"element %d does not exist on type %s", n.Index, objType)
	return ""
}

func (n *Extract) bugs() (b string) {
	defer recoverBug(&b)
	if n.Kind == BitCast {
		return ""
	}
	objType := n.Obj.Type()
	bugIf(objType.Kind != StructType && objType.Kind != TupleType,
		"extract of non-aggregate type %s", objType)
	bugIf(n.Index < 0 || n.Index >= len(objType.Elems),
		"element %d does not exist on type %s", n.Index, objType)
	return ""
}

func (n *Borrow) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(!n.Src.Type().equal(n.Type()),
		"borrow type mismatch: got %s, want %s", n.Type(), n.Src.Type())
	return ""
}

func (*EndBorrow) bugs() string { return "" }

func (n *CopyVal) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(n.Src.Type().Addr(),
		"copy of an address type %s", n.Src.Type())
	return ""
}

func (n *Tuple) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(n.Type().Kind != TupleType,
		"tuple of non-tuple type %s", n.Type())
	bugIf(len(n.Elems) != len(n.Type().Elems),
		"tuple element count mismatch: got %d, want %d",
		len(n.Elems), len(n.Type().Elems))
	return ""
}

func (*Undef) bugs() string { return "" }

func (*Call) bugs() string { return "" }

func (n *DebugAddr) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(!n.Src.Type().Addr(),
		"debug addr of non-address type %s", n.Src.Type())
	return ""
}

func (n *DebugVal) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(n.Src.Type().Addr(),
		"debug of an address type %s", n.Src.Type())
	return ""
}

func (n *DestroyAddr) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(!n.Src.Type().Addr(),
		"destroy addr of non-address type %s", n.Src.Type())
	return ""
}

func (n *DestroyVal) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(n.Src.Type().Addr(),
		"destroy of an address type %s", n.Src.Type())
	return ""
}

func (*Parm) bugs() string { return "" }

func (*Ret) bugs() string { return "" }

func (n *Jmp) bugs() (b string) {
	defer recoverBug(&b)
	return edgeBugs(n.Dst, n.Args)
}

func (n *CondJmp) bugs() (b string) {
	defer recoverBug(&b)
	bugIf(n.Cond.Type().Kind != BoolType,
		"cond on non-Bool type %s", n.Cond.Type())
	if b := edgeBugs(n.Then, n.ThenArgs); b != "" {
		return b
	}
	return edgeBugs(n.Else, n.ElseArgs)
}

func edgeBugs(dst *BBlk, args []Val) (b string) {
	defer recoverBug(&b)
	bugIf(len(args) != len(dst.Parms),
		"branch to %d argument count mismatch: got %d, want %d",
		dst.N, len(args), len(dst.Parms))
	for i, a := range args {
		bugIf(!a.Type().equal(dst.Parms[i].Type()),
			"branch to %d argument %d type mismatch: got %s, want %s",
			dst.N, i, a.Type(), dst.Parms[i].Type())
	}
	return ""
}

type bug string

func recoverBug(ret *string) {
	if b, ok := recover().(bug); ok {
		*ret = string(b)
	}
}

func bugIf(c bool, f string, vs ...interface{}) {
	if c {
		panic(bug(fmt.Sprintf(f, vs...)))
	}
}
