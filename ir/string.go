// Copyright © 2026 The Sable Authors under an MIT-style license.

package ir

import (
	"fmt"
	"strings"
)

func (f *Fun) String() string {
	s := &strings.Builder{}
	s.WriteString(f.Name)
	for _, b := range f.BBlks {
		s.WriteRune('\n')
		b.buildString(s)
	}
	return s.String()
}

func (b *BBlk) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "\t%d", b.N)
	if len(b.Parms) > 0 {
		s.WriteRune('(')
		for i, p := range b.Parms {
			if i > 0 {
				s.WriteString(", ")
			}
			fmt.Fprintf(s, "$%d %s", p.Num(), p.Type())
		}
		s.WriteRune(')')
	}
	s.WriteString(":\n\t\t[in:")
	for _, in := range b.In {
		fmt.Fprintf(s, " %d", in.N)
	}
	s.WriteString("] [out:")
	for _, out := range b.Out() {
		fmt.Fprintf(s, " %d", out.N)
	}
	s.WriteRune(']')
	for _, t := range b.Stmts {
		if bug := t.bugs(); !t.Deleted() && bug != "" {
			s.WriteString("\n\t\t// BUG: ")
			s.WriteString(bug)
		}
		s.WriteString("\n\t\t")
		if t.Deleted() {
			s.WriteString("ⓧ ")
		}
		if v, ok := t.(Val); ok {
			fmt.Fprintf(s, "$%d := ", v.Num())
		}
		t.buildString(s)
	}
	return s
}

// valStr names a value as an operand.
func valStr(v Val) string {
	if _, ok := v.(*Undef); ok {
		return "undef"
	}
	return fmt.Sprintf("$%d", v.Num())
}

func modeStr(m Mode) string {
	switch m {
	case Init:
		return " [init]"
	case Assign:
		return " [assign]"
	case Copy:
		return " [copy]"
	case Take:
		return " [take]"
	default:
		return ""
	}
}

func (n *Alloc) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "alloc(%s)", n.Elem)
	if n.Name != "" {
		fmt.Fprintf(s, " [%s]", n.Name)
	}
	return s
}

func (n *Dealloc) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "dealloc(%s)", valStr(n.Src))
	return s
}

func (n *Load) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "load%s(%s)", modeStr(n.Mode), valStr(n.Src))
	return s
}

func (n *Store) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "store%s(%s, %s)", modeStr(n.Mode), valStr(n.Dst), valStr(n.Val))
	return s
}

func (n *Proj) buildString(s *strings.Builder) *strings.Builder {
	if n.Kind == BitCast {
		fmt.Fprintf(s, "cast(%s, %s)", valStr(n.Obj), n.Type())
		return s
	}
	fmt.Fprintf(s, "%s.%d", valStr(n.Obj), n.Index)
	return s
}

func (n *Extract) buildString(s *strings.Builder) *strings.Builder {
	if n.Kind == BitCast {
		fmt.Fprintf(s, "bitcast(%s, %s)", valStr(n.Obj), n.Type())
		return s
	}
	fmt.Fprintf(s, "extract(%s, %d)", valStr(n.Obj), n.Index)
	return s
}

func (n *Borrow) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "borrow(%s)", valStr(n.Src))
	return s
}

func (n *EndBorrow) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "end borrow(%s)", valStr(n.Src))
	return s
}

func (n *CopyVal) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "copy(%s)", valStr(n.Src))
	return s
}

func (n *Tuple) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("tuple(")
	for i, e := range n.Elems {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(valStr(e))
	}
	s.WriteRune(')')
	return s
}

func (n *Undef) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("undef")
	return s
}

func (n *Call) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "call %s(", n.Name)
	for i, a := range n.Args {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(valStr(a))
	}
	s.WriteRune(')')
	return s
}

func (n *DebugAddr) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "debug addr(%s) [%s]", valStr(n.Src), n.Name)
	return s
}

func (n *DebugVal) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "debug(%s) [%s]", valStr(n.Src), n.Name)
	return s
}

func (n *DestroyAddr) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "destroy addr(%s)", valStr(n.Src))
	return s
}

func (n *DestroyVal) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "destroy(%s)", valStr(n.Src))
	return s
}

func (n *Parm) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "parm %s", valStr(n))
	return s
}

func (*Ret) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("return")
	return s
}

func (n *Jmp) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "jmp %d", n.Dst.N)
	buildArgs(s, n.Args)
	return s
}

func (n *CondJmp) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "cond %s [%d", valStr(n.Cond), n.Then.N)
	buildArgs(s, n.ThenArgs)
	fmt.Fprintf(s, "] [%d", n.Else.N)
	buildArgs(s, n.ElseArgs)
	s.WriteRune(']')
	return s
}

func buildArgs(s *strings.Builder, args []Val) {
	if len(args) == 0 {
		return
	}
	s.WriteRune('(')
	for i, a := range args {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(valStr(a))
	}
	s.WriteRune(')')
}
