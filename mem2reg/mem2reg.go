// Copyright © 2026 The Sable Authors under an MIT-style license.

// Package mem2reg promotes stack slot allocations into SSA values.
//
// The pass only handles load, store, destroy, debug-annotation, and
// deallocation uses of a slot's address, possibly behind chains of
// element-address projections. A slot whose address reaches any other
// instruction is considered captured and is left untouched.
// Block parameters are placed at control-flow merge points using the
// algorithm of Sreedhar and Gao,
// "A linear time algorithm for placing φ-nodes", POPL '95.
//
// The pass never adds, removes, or redirects control-flow edges,
// so the dominator tree it is given remains valid throughout a run.
package mem2reg

import (
	"github.com/sable-lang/sable/dom"
	"github.com/sable-lang/sable/ir"
)

// A Result reports what a run of the pass did to a function.
type Result struct {
	// Changed is whether any slot was eliminated.
	Changed bool
	// Found counts the stack slot allocations seen.
	Found int
	// Captured counts the slots left untouched
	// because their address escapes.
	Captured int
	// Removed counts the instructions erased.
	Removed int
	// PhisPlaced counts the new block parameters placed.
	PhisPlaced int
}

type pass struct {
	f   *ir.Fun
	dt  *dom.Tree
	res Result
}

// Run promotes the stack slots of f, mutating it in place.
// The dominator tree must be current for f
// and remains valid when Run returns.
func Run(f *ir.Fun, dt *dom.Tree) Result {
	p := pass{f: f, dt: dt}

	var allocs []*ir.Alloc
	for _, b := range f.BBlks {
		for _, s := range b.Stmts {
			if a, ok := s.(*ir.Alloc); ok && !a.Deleted() {
				allocs = append(allocs, a)
			}
		}
	}
	for _, a := range allocs {
		p.res.Found++
		if !p.promoteAlloc(a) {
			continue
		}
		if len(a.Users()) == 0 {
			p.erase(a)
		}
		p.res.Changed = true
	}
	f.Compact()
	return p.res
}

// promoteAlloc attempts to promote a single slot,
// reporting whether it did.
// On success all uses of the slot have been removed,
// but the allocation itself may remain.
func (p *pass) promoteAlloc(a *ir.Alloc) bool {
	captured, single := isCaptured(a)
	if captured {
		p.res.Captured++
		return false
	}

	if isWriteOnly(a) {
		// No load ever observes the slot's content,
		// so eliminating every use changes no observable behavior.
		p.eraseUses(a)
		return true
	}

	if single {
		p.removeSingleBlockAlloc(a)
		if len(a.Users()) > 0 {
			// The address leaked through an operation the scan does not
			// recognize. Reinsert a deallocation so the frame stays
			// structurally well-formed rather than failing the pass.
			a.Blk().InsertAfter(a, &ir.Dealloc{Src: a})
		}
		return true
	}

	newPromoter(p, a).run()
	p.eraseUses(a)
	return true
}

func (p *pass) erase(s ir.Stmt) {
	if s.Deleted() {
		return
	}
	ir.Erase(s)
	p.res.Removed++
}

// eraseUses erases every user of v, users-first.
func (p *pass) eraseUses(v ir.Val) {
	users := append([]ir.Stmt(nil), v.Users()...)
	for _, u := range users {
		if u.Deleted() {
			continue
		}
		if uv, ok := u.(ir.Val); ok {
			p.eraseUses(uv)
		}
		p.erase(u)
	}
}
