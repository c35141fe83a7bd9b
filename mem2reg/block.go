// Copyright © 2026 The Sable Authors under an MIT-style license.

package mem2reg

import "github.com/sable-lang/sable/ir"

// removeSingleBlockAlloc eliminates every use of a slot
// confined to a single block in one linear scan.
// It deletes all uses of the slot, including the deallocation,
// but not the allocation itself.
func (p *pass) removeSingleBlockAlloc(a *ir.Alloc) {
	b := a.Blk()

	// runningVal is the current value in the slot.
	// We don't know the content of the slot until we find the first store.
	var runningVal ir.Val

	stmts := append([]ir.Stmt(nil), b.Stmts...)
	for _, s := range stmts {
		if s.Deleted() {
			continue
		}

		// Replace loaded values with the running value.
		if isLoadFromSlot(s, a) {
			if runningVal == nil {
				// Loading without a previous store is only acceptable
				// if the element type is void or a tuple of voids.
				runningVal = p.emptyValue(a.Elem, s)
			}
			p.replaceLoad(s.(*ir.Load), runningVal, a)
			continue
		}

		// Remove stores and record the stored value as the running value.
		if st, ok := s.(*ir.Store); ok && st.Dst == a {
			if st.Mode == ir.Assign && runningVal != nil {
				b.Insert(st, &ir.DestroyVal{Src: runningVal})
			}
			runningVal = st.Val
			p.erase(st)
			continue
		}

		// Replace debug address annotations with value-level ones.
		if d, ok := s.(*ir.DebugAddr); ok && d.Src == a {
			if runningVal != nil {
				p.promoteDebugAddr(d, runningVal)
			} else {
				// Debug annotation of an uninitialized void slot.
				p.erase(d)
			}
			continue
		}

		// Replace destroys with a release of the value.
		if d, ok := s.(*ir.DestroyAddr); ok && d.Src == a {
			p.replaceDestroy(d, runningVal)
			continue
		}

		// The running value is dead; forget it so no later use
		// resolves to an already-destroyed value.
		if d, ok := s.(*ir.DestroyVal); ok {
			if d.Src == runningVal {
				runningVal = nil
			}
			continue
		}

		// Remove the deallocation and stop scanning;
		// no use can follow a dominance-respecting deallocation.
		if d, ok := s.(*ir.Dealloc); ok && d.Src == a {
			p.erase(d)
			break
		}

		// Remove dead projections that may be uses of the slot.
		proj, ok := s.(*ir.Proj)
		for ok && !proj.Deleted() && len(proj.Users()) == 0 {
			obj := proj.Obj
			p.erase(proj)
			proj, ok = obj.(*ir.Proj)
		}
	}
}

// replaceLoad replaces a load from the slot with val,
// re-projected along the load's projection chain,
// and erases the load and any projections left unused.
func (p *pass) replaceLoad(ld *ir.Load, val ir.Val, a *ir.Alloc) {
	b := ld.Blk()

	// Collect the projection chain between the slot and the load.
	var chain []*ir.Proj
	for op := ld.Src; op != a; {
		proj := op.(*ir.Proj)
		chain = append(chain, proj)
		op = proj.Obj
	}

	// Peel the chain from the slot outward.
	// Element extraction of a non-trivially-owned value
	// needs a borrow so the extraction has correct ownership.
	var borrowed []ir.Val
	for i := len(chain) - 1; i >= 0; i-- {
		proj := chain[i]
		if proj.Kind == ir.BitCast {
			cast := p.f.NewBitCastVal(val, proj.Type().Elem())
			b.Insert(ld, cast)
			val = cast
			continue
		}
		if !val.Type().Trivial() {
			borrow := p.f.NewBorrow(val)
			b.Insert(ld, borrow)
			borrowed = append(borrowed, borrow)
			val = borrow
		}
		ext := p.f.NewExtract(val, proj.Kind, proj.Index)
		b.Insert(ld, ext)
		val = ext
	}

	// A copying load hands its users an independently owned value.
	if ld.Mode == ir.Copy {
		cp := p.f.NewCopyVal(val)
		b.Insert(ld, cp)
		val = cp
	}
	p.f.ReplaceUses(ld, val)
	for _, bv := range borrowed {
		b.Insert(ld, &ir.EndBorrow{Src: bv})
	}

	op := ld.Src
	p.erase(ld)
	for op != a && len(op.Users()) == 0 {
		proj := op.(*ir.Proj)
		next := proj.Obj
		p.erase(proj)
		op = next
	}
}

// replaceDestroy replaces a destroy of the slot's address
// with a release of val.
// A nil val is only expected for void slots, which need no release.
func (p *pass) replaceDestroy(d *ir.DestroyAddr, val ir.Val) {
	if val != nil && !val.Type().Trivial() {
		d.Blk().Insert(d, &ir.DestroyVal{Src: val})
	}
	p.erase(d)
}

// promoteDebugAddr replaces an address-level debug annotation
// with a value-level one bound to val.
// An equivalent annotation already on val is not duplicated.
func (p *pass) promoteDebugAddr(d *ir.DebugAddr, val ir.Val) {
	for _, u := range val.Users() {
		if dv, ok := u.(*ir.DebugVal); ok && dv.Name == d.Name {
			p.erase(d)
			return
		}
	}
	d.Blk().Insert(d, &ir.DebugVal{Src: val, Name: d.Name})
	p.erase(d)
}

// emptyValue synthesizes the canonical value
// of a void or tuple-of-voids type before the given statement.
func (p *pass) emptyValue(typ *ir.Type, before ir.Stmt) ir.Val {
	if typ.Kind != ir.TupleType {
		// An uninitialized load of a non-void slot is ill-formed
		// elsewhere; degrade to undef rather than corrupt anything.
		return p.f.NewUndef(typ)
	}
	elems := make([]ir.Val, len(typ.Elems))
	for i, e := range typ.Elems {
		elems[i] = p.emptyValue(e, before)
	}
	tuple := p.f.NewTuple(typ, elems)
	before.Blk().Insert(before, tuple)
	return tuple
}
