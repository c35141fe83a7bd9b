// Copyright © 2026 The Sable Authors under an MIT-style license.

package mem2reg

import "github.com/sable-lang/sable/ir"

// isCaptured returns whether any use of the slot's address
// escapes the patterns the pass can rewrite.
// It also reports whether every use lies in the slot's own block.
func isCaptured(a *ir.Alloc) (captured, singleBlock bool) {
	single := a.Blk()

	for _, u := range a.Users() {
		if u.Blk() != single {
			single = nil
		}

		// Loads are okay.
		if isAddressForLoad(u, &single) {
			continue
		}

		// We can store into a slot, but not store its address.
		if st, ok := u.(*ir.Store); ok && st.Dst == a {
			continue
		}

		// Deallocation is also okay, as are debug annotations.
		// The latter are rewritten to value-level annotations.
		switch u.(type) {
		case *ir.Dealloc, *ir.DebugAddr:
			continue
		}

		// Destroys of loadable types can be rewritten as releases,
		// so they are fine.
		if d, ok := u.(*ir.DestroyAddr); ok && d.Src.Type().Elem().Loadable() {
			continue
		}

		// Any other use is assumed to capture the slot.
		return true, false
	}

	return false, single != nil
}

// isAddressForLoad returns whether s consumes an address only as
// the operand of loads, behind zero or more projections.
// Aggregate-element projections hand out access without ownership,
// so a load that takes through one cannot be rewritten
// without an inserted borrow and copy, which this pass does not do;
// such a chain is rejected.
// Transitive users outside *single clear it to nil.
func isAddressForLoad(s ir.Stmt, single **ir.BBlk) bool {
	type frame struct {
		s ir.Stmt
		// aggregate is whether the chain so far passed through
		// a struct or tuple element projection.
		aggregate bool
	}
	work := []frame{{s: s}}
	for len(work) > 0 {
		fr := work[len(work)-1]
		work = work[:len(work)-1]

		if ld, ok := fr.s.(*ir.Load); ok {
			if fr.aggregate && ld.Mode == ir.Take {
				return false
			}
			continue
		}
		proj, ok := fr.s.(*ir.Proj)
		if !ok {
			return false
		}
		aggregate := fr.aggregate || proj.Kind != ir.BitCast
		for _, u := range proj.Users() {
			if u.Blk() != *single {
				*single = nil
			}
			work = append(work, frame{s: u, aggregate: aggregate})
		}
	}
	return true
}

// isDeadProj returns whether s is a projection
// all of whose transitive users are also projections.
func isDeadProj(s ir.Stmt) bool {
	work := []ir.Stmt{s}
	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]
		proj, ok := s.(*ir.Proj)
		if !ok {
			return false
		}
		work = append(work, proj.Users()...)
	}
	return true
}

// collectLoads returns every load that transitively uses s as its address.
func collectLoads(s ir.Stmt) []*ir.Load {
	var loads []*ir.Load
	work := []ir.Stmt{s}
	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]
		if ld, ok := s.(*ir.Load); ok {
			loads = append(loads, ld)
			continue
		}
		proj, ok := s.(*ir.Proj)
		if !ok {
			continue
		}
		work = append(work, proj.Users()...)
	}
	return loads
}

// isLoadFromSlot returns whether s loads from the slot's own address,
// behind zero or more projections.
func isLoadFromSlot(s ir.Stmt, a *ir.Alloc) bool {
	ld, ok := s.(*ir.Load)
	if !ok {
		return false
	}
	op := ld.Src
	for op != a {
		proj, ok := op.(*ir.Proj)
		if !ok {
			return false
		}
		op = proj.Obj
	}
	return true
}

// isWriteOnly returns whether the slot is never read:
// every use is a store of an independent value into it,
// a deallocation, a debug annotation, or a dead projection.
func isWriteOnly(a *ir.Alloc) bool {
	for _, u := range a.Users() {
		// It is okay to store into the slot,
		// but not to store another slot's address into it.
		if st, ok := u.(*ir.Store); ok {
			if _, srcIsSlot := st.Val.(*ir.Alloc); !srcIsSlot {
				continue
			}
		}
		switch u.(type) {
		case *ir.Dealloc, *ir.DebugAddr:
			continue
		}
		if isDeadProj(u) {
			continue
		}
		return false
	}
	return true
}
