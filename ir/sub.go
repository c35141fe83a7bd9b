// Copyright © 2026 The Sable Authors under an MIT-style license.

package ir

type valMap []Val

func makeValMap(n int) valMap {
	return valMap(make([]Val, n))
}

func (s valMap) add(key, val Val) {
	s[key.Num()] = val
}

func (s valMap) get(v Val) Val {
	if v.Num() >= len(s) {
		return v
	}
	u := s[v.Num()]
	if u == nil {
		return v
	}
	u = s.get(u)
	s[v.Num()] = u
	return u
}

// ReplaceUses rewrites every user of old to use new instead,
// keeping the user lists consistent.
func (f *Fun) ReplaceUses(old, new Val) {
	sub := makeValMap(f.NVals)
	sub.add(old, new)
	users := append([]Stmt(nil), old.Users()...)
	for _, u := range users {
		u.sub(sub)
	}
}

func (*Alloc) sub(valMap) {}

func (n *Dealloc) sub(sub valMap) {
	sub1(sub, n, &n.Src)
}

func (n *Load) sub(sub valMap) {
	sub1(sub, n, &n.Src)
}

func (n *Store) sub(sub valMap) {
	sub1(sub, n, &n.Dst)
	sub1(sub, n, &n.Val)
}

func (n *Proj) sub(sub valMap) {
	sub1(sub, n, &n.Obj)
}

func (n *Extract) sub(sub valMap) {
	sub1(sub, n, &n.Obj)
}

func (n *Borrow) sub(sub valMap) {
	sub1(sub, n, &n.Src)
}

func (n *EndBorrow) sub(sub valMap) {
	sub1(sub, n, &n.Src)
}

func (n *CopyVal) sub(sub valMap) {
	sub1(sub, n, &n.Src)
}

func (n *Tuple) sub(sub valMap) {
	for i := range n.Elems {
		sub1(sub, n, &n.Elems[i])
	}
}

func (*Undef) sub(valMap) {}

func (n *Call) sub(sub valMap) {
	for i := range n.Args {
		sub1(sub, n, &n.Args[i])
	}
}

func (n *DebugAddr) sub(sub valMap) {
	sub1(sub, n, &n.Src)
}

func (n *DebugVal) sub(sub valMap) {
	sub1(sub, n, &n.Src)
}

func (n *DestroyAddr) sub(sub valMap) {
	sub1(sub, n, &n.Src)
}

func (n *DestroyVal) sub(sub valMap) {
	sub1(sub, n, &n.Src)
}

func (*Parm) sub(valMap) {}

func (*Ret) sub(valMap) {}

func (n *Jmp) sub(sub valMap) {
	for i := range n.Args {
		sub1(sub, n, &n.Args[i])
	}
}

func (n *CondJmp) sub(sub valMap) {
	sub1(sub, n, &n.Cond)
	for i := range n.ThenArgs {
		sub1(sub, n, &n.ThenArgs[i])
	}
	for i := range n.ElseArgs {
		sub1(sub, n, &n.ElseArgs[i])
	}
}

func sub1(sub valMap, s Stmt, v *Val) {
	if u := sub.get(*v); *v != u {
		(*v).value().rmUser(s)
		u.value().addUser(s)
		*v = u
	}
}
