// Copyright © 2026 The Sable Authors under an MIT-style license.

package mem2reg

import (
	"container/heap"
	"sort"

	"github.com/sable-lang/sable/ir"
)

// A promoter promotes one multi-block slot into SSA values,
// placing block parameters where control flow merges stored values.
type promoter struct {
	p     *pass
	alloc *ir.Alloc
	// dealloc is the slot's unique deallocation.
	// It is nil when there are several;
	// none is privileged then, which only costs precision.
	dealloc *ir.Dealloc

	// lastStore records the store surviving pruning in each block.
	lastStore map[*ir.BBlk]*ir.Store

	// phis maps each block chosen for a new parameter to that parameter.
	// phiList holds the same blocks in placement order.
	phis    map[*ir.BBlk]*ir.Parm
	phiList []*ir.BBlk
}

func newPromoter(p *pass, a *ir.Alloc) *promoter {
	pr := &promoter{
		p:         p,
		alloc:     a,
		lastStore: make(map[*ir.BBlk]*ir.Store),
		phis:      make(map[*ir.BBlk]*ir.Parm),
	}
	for _, u := range a.Users() {
		d, ok := u.(*ir.Dealloc)
		if !ok {
			continue
		}
		if pr.dealloc != nil {
			pr.dealloc = nil
			break
		}
		pr.dealloc = d
	}
	return pr
}

func (pr *promoter) run() {
	// Reduce the loads and stores to at most one of each per block,
	// recording the surviving store.
	pr.prune()

	// Place new block parameters and rewrite everything onto them.
	pr.placePhis()
	pr.fixUses()
}

// prune runs the linear block scan on every block using the slot,
// leaving at most one load and one store per block.
func (pr *promoter) prune() {
	var blocks []*ir.BBlk
	seen := make(map[*ir.BBlk]bool)
	for _, u := range pr.alloc.Users() {
		if b := u.Blk(); b != nil && !seen[b] {
			seen[b] = true
			blocks = append(blocks, b)
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].N < blocks[j].N })

	for _, b := range blocks {
		if st := pr.pruneBlock(b); st != nil {
			pr.lastStore[b] = st
		}
	}
}

// pruneBlock scans one block, eliminating loads and stores on the slot
// against a running value.
// The first load with no running value and the last store survive;
// the surviving store, if any, is returned.
func (pr *promoter) pruneBlock(b *ir.BBlk) *ir.Store {
	a := pr.alloc
	var runningVal ir.Val
	var lastStore *ir.Store

	stmts := append([]ir.Stmt(nil), b.Stmts...)
	for _, s := range stmts {
		if s.Deleted() {
			continue
		}

		if isLoadFromSlot(s, a) {
			ld := s.(*ir.Load)
			switch {
			case runningVal != nil:
				// The content of the slot is known; use it.
				pr.p.replaceLoad(ld, runningVal, a)
			case ld.Src == a && ld.Mode != ir.Copy:
				// The loaded value is the slot's content.
				// A copying load is not usable as the running value:
				// its result is independently owned and consumed,
				// so it is left for the cross-block rewrite.
				runningVal = ld
			}
			continue
		}

		if st, ok := s.(*ir.Store); ok && st.Dst == a {
			// Normalize overwrites to initializations,
			// destroying the previous content first.
			if st.Mode == ir.Assign {
				if runningVal != nil {
					b.Insert(st, &ir.DestroyVal{Src: runningVal})
				} else {
					ld := pr.p.f.NewLoad(a, ir.Take)
					b.Insert(st, ld)
					b.Insert(st, &ir.DestroyVal{Src: ld})
				}
				st.Mode = ir.Init
			}
			// Only the last store in a block survives pruning.
			if lastStore != nil {
				pr.p.erase(lastStore)
			}
			runningVal = st.Val
			lastStore = st
			continue
		}

		if d, ok := s.(*ir.DebugAddr); ok {
			if d.Src == a && runningVal != nil {
				pr.p.promoteDebugAddr(d, runningVal)
			}
			continue
		}

		if d, ok := s.(*ir.DestroyAddr); ok {
			if d.Src == a && runningVal != nil {
				pr.p.replaceDestroy(d, runningVal)
			}
			continue
		}

		if d, ok := s.(*ir.DestroyVal); ok {
			// The running value is dead; forget it, and the store
			// that produced it, so neither resolves a later use
			// or flows out as a branch argument.
			if d.Src == runningVal {
				runningVal = nil
				lastStore = nil
			}
			continue
		}

		if d, ok := s.(*ir.Dealloc); ok && d.Src == a {
			break
		}
	}
	return lastStore
}

// blockLevel orders blocks by dominator-tree level, deepest first,
// breaking ties by block number for determinism.
type blockLevel struct {
	blk   *ir.BBlk
	level int
}

type blockQueue []blockLevel

func (q blockQueue) Len() int { return len(q) }
func (q blockQueue) Less(i, j int) bool {
	if q[i].level != q[j].level {
		return q[i].level > q[j].level
	}
	return q[i].blk.N < q[j].blk.N
}
func (q blockQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *blockQueue) Push(x interface{}) { *q = append(*q, x.(blockLevel)) }

func (q *blockQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// placePhis computes the blocks needing a new parameter for the slot
// and appends one to each.
// Definitions are processed bottom-up over the dominator tree;
// each new parameter is itself a definition
// and may force further frontier computation downstream.
func (pr *promoter) placePhis() {
	dt := pr.p.dt
	pq := &blockQueue{}
	for _, b := range pr.storeBlocks() {
		if dt.Has(b) {
			heap.Push(pq, blockLevel{blk: b, level: dt.Level(b)})
		}
	}

	visited := make(map[*ir.BBlk]bool)
	var work []*ir.BBlk

	for pq.Len() > 0 {
		root := heap.Pop(pq).(blockLevel)

		// Walk root's dominator subtree, inspecting successors.
		// Only join edges whose target level is at most root's level
		// are in the dominance frontier.
		work = append(work[:0], root.blk)
		for len(work) > 0 {
			b := work[len(work)-1]
			work = work[:len(work)-1]

			for _, succ := range b.Out() {
				if !dt.Has(succ) {
					continue
				}
				// Skip dominator-tree edges.
				if dt.Parent(succ) == b {
					continue
				}
				level := dt.Level(succ)
				if level > root.level {
					continue
				}
				if visited[succ] {
					continue
				}
				visited[succ] = true

				// A parameter not dominated by the slot's own block
				// would be dead.
				if !dt.Dominates(pr.alloc.Blk(), succ) {
					continue
				}
				// So would one properly dominated by the deallocation.
				if pr.dealloc != nil &&
					dt.ProperlyDominates(pr.dealloc.Blk(), succ) {
					continue
				}

				if pr.phis[succ] == nil {
					parm := pr.p.f.AddParm(succ, pr.alloc.Elem)
					pr.phis[succ] = parm
					pr.phiList = append(pr.phiList, succ)
					heap.Push(pq, blockLevel{blk: succ, level: level})
				}
			}

			for _, c := range dt.Children(b) {
				if !visited[c] {
					work = append(work, c)
				}
			}
		}
	}
	pr.p.res.PhisPlaced += len(pr.phiList)
}

// storeBlocks returns the blocks holding a store surviving pruning,
// in block order.
func (pr *promoter) storeBlocks() []*ir.BBlk {
	var blocks []*ir.BBlk
	for _, u := range pr.alloc.Users() {
		if st, ok := u.(*ir.Store); ok && st.Dst == pr.alloc {
			blocks = append(blocks, st.Blk())
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].N < blocks[j].N })
	return blocks
}

// fixUses rewrites the slot's remaining uses onto resolved values
// and threads the new parameters' arguments
// through the predecessor terminators.
func (pr *promoter) fixUses() {
	users := append([]ir.Stmt(nil), pr.alloc.Users()...)
	for _, u := range users {
		if u.Deleted() {
			continue
		}

		if loads := collectLoads(u); len(loads) > 0 {
			for _, ld := range loads {
				def := pr.liveIn(ld.Blk())
				pr.p.replaceLoad(ld, def, pr.alloc)
			}
			continue
		}

		switch u := u.(type) {
		case *ir.DebugAddr:
			pr.p.promoteDebugAddr(u, pr.liveIn(u.Blk()))
		case *ir.DestroyAddr:
			pr.p.replaceDestroy(u, pr.liveIn(u.Blk()))
		}
	}

	// Give every predecessor of every new parameter its argument.
	for _, b := range pr.phiList {
		for _, in := range b.In {
			def := pr.liveOut(in)
			in.Term().AppendArg(b, def)
		}
	}

	// Drop new parameters nothing ended up using.
	for _, b := range pr.phiList {
		parm := pr.phis[b]
		if len(parm.Users()) == 0 {
			pr.p.f.RmParm(b, ir.ParmIndex(parm))
		}
	}
}

// liveIn resolves the value the slot holds at b's entry.
func (pr *promoter) liveIn(b *ir.BBlk) ir.Val {
	// The block's own parameter comes before any store in the block.
	if parm := pr.phis[b]; parm != nil {
		return parm
	}
	dt := pr.p.dt
	if len(b.In) == 0 || !dt.Has(b) {
		// Nothing dominates the block; the use is unreachable.
		return pr.p.f.NewUndef(pr.alloc.Elem)
	}
	idom := dt.Parent(b)
	if idom == nil {
		// A live-in definition should exist here; degrade to undef.
		return pr.p.f.NewUndef(pr.alloc.Elem)
	}
	return pr.liveOut(idom)
}

// liveOut resolves the value the slot holds at b's exit,
// walking up the dominator tree to the nearest definition.
func (pr *promoter) liveOut(b *ir.BBlk) ir.Val {
	dt := pr.p.dt
	for ; b != nil; b = dt.Parent(b) {
		// A store comes after any parameter in the same block.
		if st := pr.lastStore[b]; st != nil && !st.Deleted() {
			return st.Val
		}
		if parm := pr.phis[b]; parm != nil {
			return parm
		}
	}
	return pr.p.f.NewUndef(pr.alloc.Elem)
}
