// Copyright © 2026 The Sable Authors under an MIT-style license.

// Package dom computes dominator trees over ir functions.
//
// Construction uses Cooper, Harvey, and Kennedy's
// "A Simple, Fast Dominance Algorithm".
// The tree is valid only as long as no control-flow edges
// are added, removed, or redirected;
// adding block parameters or rewriting branch arguments is fine.
package dom

import (
	"sort"

	"github.com/sable-lang/sable/ir"
)

// A Tree is the dominator tree of a function.
type Tree struct {
	root  *ir.BBlk
	nodes map[*ir.BBlk]*node
}

type node struct {
	parent *ir.BBlk
	kids   []*ir.BBlk
	level  int
}

// New computes the dominator tree of f.
// The entry block is f.BBlks[0].
func New(f *ir.Fun) *Tree {
	t := &Tree{nodes: make(map[*ir.BBlk]*node, len(f.BBlks))}
	rpo := reversePostOrder(f)
	if len(rpo) == 0 {
		return t
	}
	t.root = rpo[0]

	num := make(map[*ir.BBlk]int, len(rpo))
	for i, b := range rpo {
		num[b] = i
	}

	// idom maps each reachable block to its immediate dominator.
	// The entry maps to itself as a sentinel.
	idom := make(map[*ir.BBlk]*ir.BBlk, len(rpo))
	idom[t.root] = t.root

	intersect := func(b1, b2 *ir.BBlk) *ir.BBlk {
		for b1 != b2 {
			for num[b1] > num[b2] {
				b1 = idom[b1]
			}
			for num[b2] > num[b1] {
				b2 = idom[b2]
			}
		}
		return b1
	}

	for changed := true; changed; {
		changed = false
		for _, b := range rpo[1:] {
			var newIdom *ir.BBlk
			for _, p := range b.In {
				if idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
				} else {
					newIdom = intersect(p, newIdom)
				}
			}
			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	for _, b := range rpo {
		t.nodes[b] = &node{}
	}
	for _, b := range rpo[1:] {
		p := idom[b]
		t.nodes[b].parent = p
		t.nodes[p].kids = append(t.nodes[p].kids, b)
	}
	for _, n := range t.nodes {
		sort.Slice(n.kids, func(i, j int) bool { return n.kids[i].N < n.kids[j].N })
	}

	// Levels: root is 0, children are parent+1.
	work := []*ir.BBlk{t.root}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		n := t.nodes[b]
		for _, k := range n.kids {
			t.nodes[k].level = n.level + 1
			work = append(work, k)
		}
	}
	return t
}

// Root returns the tree's root: the function's entry block.
func (t *Tree) Root() *ir.BBlk { return t.root }

// Has returns whether b is in the tree.
// Blocks unreachable from the entry are not.
func (t *Tree) Has(b *ir.BBlk) bool {
	_, ok := t.nodes[b]
	return ok
}

// Parent returns the immediate dominator of b,
// or nil for the root and for blocks outside the tree.
func (t *Tree) Parent(b *ir.BBlk) *ir.BBlk {
	if n, ok := t.nodes[b]; ok {
		return n.parent
	}
	return nil
}

// Children returns the blocks immediately dominated by b.
func (t *Tree) Children(b *ir.BBlk) []*ir.BBlk {
	if n, ok := t.nodes[b]; ok {
		return n.kids
	}
	return nil
}

// Level returns b's depth in the tree; the root is 0.
func (t *Tree) Level(b *ir.BBlk) int {
	if n, ok := t.nodes[b]; ok {
		return n.level
	}
	return 0
}

// Dominates returns whether a dominates b.
// Every block dominates itself.
func (t *Tree) Dominates(a, b *ir.BBlk) bool {
	if !t.Has(a) || !t.Has(b) {
		return false
	}
	for t.Level(b) > t.Level(a) {
		b = t.Parent(b)
	}
	return a == b
}

// ProperlyDominates returns whether a dominates b and a != b.
func (t *Tree) ProperlyDominates(a, b *ir.BBlk) bool {
	return a != b && t.Dominates(a, b)
}

func reversePostOrder(f *ir.Fun) []*ir.BBlk {
	if len(f.BBlks) == 0 {
		return nil
	}
	var order []*ir.BBlk
	visited := make(map[*ir.BBlk]bool, len(f.BBlks))

	type frame struct {
		b *ir.BBlk
		i int
	}
	stack := []frame{{b: f.BBlks[0]}}
	visited[f.BBlks[0]] = true
	for len(stack) > 0 {
		fr := &stack[len(stack)-1]
		out := fr.b.Out()
		if fr.i < len(out) {
			s := out[fr.i]
			fr.i++
			if !visited[s] {
				visited[s] = true
				stack = append(stack, frame{b: s})
			}
			continue
		}
		order = append(order, fr.b)
		stack = stack[:len(stack)-1]
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
