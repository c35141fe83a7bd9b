// Copyright © 2026 The Sable Authors under an MIT-style license.

package mem2reg

import (
	"bufio"
	"strings"
	"testing"

	"github.com/eaburns/pretty"
	"github.com/google/go-cmp/cmp"
	"github.com/sable-lang/sable/dom"
	"github.com/sable-lang/sable/ir"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name  string
		build func() *ir.Fun
		want  string
		res   Result
	}{
		{
			name: "straight line store and load",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a := f.NewAlloc(ir.Int, "x")
				b0.Add(a)
				v := f.NewCall("mk", ir.Int)
				b0.Add(v)
				b0.Add(&ir.Store{Dst: a, Val: v})
				ld := f.NewLoad(a, ir.Trivial)
				b0.Add(ld)
				b0.Add(f.NewCall("use", ir.Void, ld))
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := call mk()
						$1 := call use($0)
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 4},
		},
		{
			name: "diamond merge",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				b1 := f.NewBBlk()
				b2 := f.NewBBlk()
				b3 := f.NewBBlk()
				a := f.NewAlloc(ir.Int, "x")
				b0.Add(a)
				c := f.NewCall("cond", ir.Bool)
				b0.Add(c)
				b0.Add(&ir.CondJmp{Cond: c, Then: b1, Else: b2})
				v1 := f.NewCall("a", ir.Int)
				b1.Add(v1)
				b1.Add(&ir.Store{Dst: a, Val: v1})
				b1.Add(&ir.Jmp{Dst: b3})
				v2 := f.NewCall("b", ir.Int)
				b2.Add(v2)
				b2.Add(&ir.Store{Dst: a, Val: v2})
				b2.Add(&ir.Jmp{Dst: b3})
				b3.Add(&ir.DebugAddr{Src: a, Name: "x"})
				ld := f.NewLoad(a, ir.Trivial)
				b3.Add(ld)
				b3.Add(f.NewCall("use", ir.Void, ld))
				b3.Add(&ir.Dealloc{Src: a})
				b3.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out: 1 2]
						$0 := call cond()
						cond $0 [1] [2]
					1:
						[in: 0] [out: 3]
						$1 := call a()
						jmp 3($1)
					2:
						[in: 0] [out: 3]
						$2 := call b()
						jmp 3($2)
					3($3 Int):
						[in: 1 2] [out:]
						debug($3) [x]
						$4 := call use($3)
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 6, PhisPlaced: 1},
		},
		{
			name: "loop",
			build: func() *ir.Fun { return buildLoop() },
			want: `
				f
					0:
						[in:] [out: 1]
						$0 := call init()
						jmp 1($0)
					1($1 Int):
						[in: 0 2] [out: 2 3]
						$2 := call use($1)
						$3 := call cond()
						cond $3 [2] [3]
					2:
						[in: 1] [out: 1]
						$4 := call next()
						jmp 1($4)
					3:
						[in: 1] [out:]
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 5, PhisPlaced: 1},
		},
		{
			name: "write only slot",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a := f.NewAlloc(ir.Int, "x")
				b0.Add(a)
				v := f.NewCall("mk", ir.Int)
				b0.Add(v)
				b0.Add(&ir.Store{Dst: a, Val: v})
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := call mk()
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 3},
		},
		{
			name: "captured by call",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a := f.NewAlloc(ir.Int, "x")
				b0.Add(a)
				b0.Add(f.NewCall("esc", ir.Void, a))
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := alloc(Int) [x]
						$1 := call esc($0)
						dealloc($0)
						return
			`,
			res: Result{Found: 1, Captured: 1},
		},
		{
			name: "take through projection is a capture",
			build: func() *ir.Fun {
				T := ir.RefOf("Obj")
				S := ir.StructOf("Pair", T, ir.Int)
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a := f.NewAlloc(S, "")
				b0.Add(a)
				v := f.NewCall("mk", S)
				b0.Add(v)
				b0.Add(&ir.Store{Dst: a, Val: v, Mode: ir.Init})
				pr := f.NewProj(a, ir.StructProj, 0)
				b0.Add(pr)
				ld := f.NewLoad(pr, ir.Take)
				b0.Add(ld)
				b0.Add(f.NewCall("use", ir.Void, ld))
				b0.Add(&ir.DestroyVal{Src: ld})
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := alloc(Pair)
						$1 := call mk()
						store [init]($0, $1)
						$2 := $0.0
						$3 := load [take]($2)
						$4 := call use($3)
						destroy($3)
						dealloc($0)
						return
			`,
			res: Result{Found: 1, Captured: 1},
		},
		{
			name: "assign destroys the previous value",
			build: func() *ir.Fun {
				T := ir.RefOf("Obj")
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a := f.NewAlloc(T, "x")
				b0.Add(a)
				v1 := f.NewCall("mk1", T)
				b0.Add(v1)
				b0.Add(&ir.Store{Dst: a, Val: v1, Mode: ir.Init})
				b0.Add(&ir.DebugAddr{Src: a, Name: "x"})
				v2 := f.NewCall("mk2", T)
				b0.Add(v2)
				b0.Add(&ir.Store{Dst: a, Val: v2, Mode: ir.Assign})
				ld := f.NewLoad(a, ir.Take)
				b0.Add(ld)
				b0.Add(f.NewCall("use", ir.Void, ld))
				b0.Add(&ir.DestroyVal{Src: ld})
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := call mk1()
						debug($0) [x]
						$1 := call mk2()
						destroy($0)
						$2 := call use($1)
						destroy($1)
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 6},
		},
		{
			name: "repeated debug annotations are not duplicated",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a := f.NewAlloc(ir.Int, "x")
				b0.Add(a)
				v := f.NewCall("mk", ir.Int)
				b0.Add(v)
				b0.Add(&ir.Store{Dst: a, Val: v})
				b0.Add(&ir.DebugAddr{Src: a, Name: "x"})
				b0.Add(&ir.DebugAddr{Src: a, Name: "x"})
				ld := f.NewLoad(a, ir.Trivial)
				b0.Add(ld)
				b0.Add(f.NewCall("use", ir.Void, ld))
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := call mk()
						debug($0) [x]
						$1 := call use($0)
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 6},
		},
		{
			name: "copying load through a projection borrows",
			build: func() *ir.Fun {
				T := ir.RefOf("Obj")
				S := ir.StructOf("Pair", T, ir.Int)
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a := f.NewAlloc(S, "")
				b0.Add(a)
				v := f.NewCall("mk", S)
				b0.Add(v)
				b0.Add(&ir.Store{Dst: a, Val: v, Mode: ir.Init})
				pr := f.NewProj(a, ir.StructProj, 0)
				b0.Add(pr)
				ld := f.NewLoad(pr, ir.Copy)
				b0.Add(ld)
				b0.Add(f.NewCall("use", ir.Void, ld))
				b0.Add(&ir.DestroyVal{Src: ld})
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := call mk()
						$1 := borrow($0)
						$2 := extract($1, 0)
						$3 := copy($2)
						end borrow($1)
						$4 := call use($3)
						destroy($3)
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 5},
		},
		{
			name: "cross block assign takes and destroys the incoming value",
			build: func() *ir.Fun {
				T := ir.RefOf("Obj")
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				b1 := f.NewBBlk()
				a := f.NewAlloc(T, "")
				b0.Add(a)
				v0 := f.NewCall("mk0", T)
				b0.Add(v0)
				b0.Add(&ir.Store{Dst: a, Val: v0, Mode: ir.Init})
				b0.Add(&ir.Jmp{Dst: b1})
				v1 := f.NewCall("mk1", T)
				b1.Add(v1)
				b1.Add(&ir.Store{Dst: a, Val: v1, Mode: ir.Assign})
				ld := f.NewLoad(a, ir.Trivial)
				b1.Add(ld)
				b1.Add(f.NewCall("use", ir.Void, ld))
				b1.Add(&ir.DestroyAddr{Src: a})
				b1.Add(&ir.Dealloc{Src: a})
				b1.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out: 1]
						$0 := call mk0()
						jmp 1
					1:
						[in: 0] [out:]
						$1 := call mk1()
						destroy($0)
						$2 := call use($1)
						destroy($1)
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 7},
		},
		{
			name: "unused parameter is pruned",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				b1 := f.NewBBlk()
				b2 := f.NewBBlk()
				b3 := f.NewBBlk()
				a := f.NewAlloc(ir.Int, "x")
				b0.Add(a)
				c := f.NewCall("cond", ir.Bool)
				b0.Add(c)
				b0.Add(&ir.CondJmp{Cond: c, Then: b1, Else: b2})
				v1 := f.NewCall("a1", ir.Int)
				b1.Add(v1)
				b1.Add(&ir.Store{Dst: a, Val: v1})
				ld := f.NewLoad(a, ir.Trivial)
				b1.Add(ld)
				b1.Add(f.NewCall("use", ir.Void, ld))
				b1.Add(&ir.Jmp{Dst: b3})
				v2 := f.NewCall("a2", ir.Int)
				b2.Add(v2)
				b2.Add(&ir.Store{Dst: a, Val: v2})
				b2.Add(&ir.Jmp{Dst: b3})
				b3.Add(&ir.Dealloc{Src: a})
				b3.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out: 1 2]
						$0 := call cond()
						cond $0 [1] [2]
					1:
						[in: 0] [out: 3]
						$1 := call a1()
						$2 := call use($1)
						jmp 3
					2:
						[in: 0] [out: 3]
						$3 := call a2()
						jmp 3
					3:
						[in: 1 2] [out:]
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 5, PhisPlaced: 1},
		},
		{
			name: "load in an unreachable block is undef",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				b1 := f.NewBBlk()
				a := f.NewAlloc(ir.Int, "x")
				b0.Add(a)
				v := f.NewCall("mk", ir.Int)
				b0.Add(v)
				b0.Add(&ir.Store{Dst: a, Val: v})
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				ld := f.NewLoad(a, ir.Trivial)
				b1.Add(ld)
				b1.Add(f.NewCall("use", ir.Void, ld))
				b1.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := call mk()
						return
					1:
						[in:] [out:]
						$1 := call use(undef)
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 4},
		},
		{
			name: "void slot loads an empty tuple",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a := f.NewAlloc(ir.Void, "")
				b0.Add(a)
				ld := f.NewLoad(a, ir.Trivial)
				b0.Add(ld)
				b0.Add(f.NewCall("use", ir.Void, ld))
				b0.Add(&ir.DebugAddr{Src: a, Name: "x"})
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := tuple()
						$1 := call use($0)
						debug($0) [x]
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 4},
		},
		{
			name: "two independent slots",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a1 := f.NewAlloc(ir.Int, "x")
				b0.Add(a1)
				a2 := f.NewAlloc(ir.Int, "y")
				b0.Add(a2)
				v := f.NewCall("mk", ir.Int)
				b0.Add(v)
				b0.Add(&ir.Store{Dst: a1, Val: v})
				b0.Add(&ir.Store{Dst: a2, Val: v})
				l1 := f.NewLoad(a1, ir.Trivial)
				b0.Add(l1)
				l2 := f.NewLoad(a2, ir.Trivial)
				b0.Add(l2)
				b0.Add(f.NewCall("use2", ir.Void, l1, l2))
				b0.Add(&ir.Dealloc{Src: a2})
				b0.Add(&ir.Dealloc{Src: a1})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := call mk()
						$1 := call use2($0, $0)
						return
			`,
			res: Result{Changed: true, Found: 2, Removed: 8},
		},
		{
			name: "extra deallocation keeps the slot",
			build: func() *ir.Fun {
				f := ir.NewFun("f")
				b0 := f.NewBBlk()
				a := f.NewAlloc(ir.Int, "")
				b0.Add(a)
				v := f.NewCall("mk", ir.Int)
				b0.Add(v)
				b0.Add(&ir.Store{Dst: a, Val: v})
				ld := f.NewLoad(a, ir.Trivial)
				b0.Add(ld)
				b0.Add(f.NewCall("use", ir.Void, ld))
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Dealloc{Src: a})
				b0.Add(&ir.Ret{})
				return f
			},
			want: `
				f
					0:
						[in:] [out:]
						$0 := alloc(Int)
						dealloc($0)
						$1 := call mk()
						$2 := call use($1)
						dealloc($0)
						return
			`,
			res: Result{Changed: true, Found: 1, Removed: 3},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			f := test.build()
			res := Run(f, dom.New(f))
			if res != test.res {
				t.Errorf("got %s,\nexpected %s",
					pretty.String(res), pretty.String(test.res))
			}
			want := trimLeadingTestIndent(test.want)
			got := strings.TrimSpace(f.String())
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("got\n%s\nexpected\n%s\ndiff\n%s", got, want, diff)
			}
			if strings.Contains(got, "BUG") {
				t.Errorf("function has a bug:\n%s", got)
			}
		})
	}
}

// A second run finds nothing left to promote and changes nothing.
func TestRunTwice(t *testing.T) {
	f := buildLoop()
	Run(f, dom.New(f))
	first := f.String()

	res := Run(f, dom.New(f))
	if res != (Result{}) {
		t.Errorf("second run did something: %s", pretty.String(res))
	}
	if diff := cmp.Diff(first, f.String()); diff != "" {
		t.Errorf("second run changed the function:\n%s", diff)
	}
}

// buildLoop returns a function storing to a slot
// before and inside a loop that loads it each iteration.
func buildLoop() *ir.Fun {
	f := ir.NewFun("f")
	b0 := f.NewBBlk()
	b1 := f.NewBBlk()
	b2 := f.NewBBlk()
	b3 := f.NewBBlk()
	a := f.NewAlloc(ir.Int, "i")
	b0.Add(a)
	v0 := f.NewCall("init", ir.Int)
	b0.Add(v0)
	b0.Add(&ir.Store{Dst: a, Val: v0})
	b0.Add(&ir.Jmp{Dst: b1})
	ld := f.NewLoad(a, ir.Trivial)
	b1.Add(ld)
	b1.Add(f.NewCall("use", ir.Void, ld))
	c := f.NewCall("cond", ir.Bool)
	b1.Add(c)
	b1.Add(&ir.CondJmp{Cond: c, Then: b2, Else: b3})
	v1 := f.NewCall("next", ir.Int)
	b2.Add(v1)
	b2.Add(&ir.Store{Dst: a, Val: v1})
	b2.Add(&ir.Jmp{Dst: b1})
	b3.Add(&ir.Dealloc{Src: a})
	b3.Add(&ir.Ret{})
	return f
}

func trimLeadingTestIndent(src string) string {
	var s strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(src))
	for scanner.Scan() {
		if strings.HasPrefix(strings.TrimSpace(scanner.Text()), "//") {
			continue
		}
		s.WriteString(strings.TrimPrefix(scanner.Text(), "\t\t\t\t"))
		s.WriteRune('\n')
	}
	if err := scanner.Err(); err != nil {
		panic(err.Error())
	}
	return strings.TrimSpace(s.String())
}
