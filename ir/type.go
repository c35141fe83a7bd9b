// Copyright © 2026 The Sable Authors under an MIT-style license.

package ir

import (
	"fmt"
	"strings"
)

// A TypeKind says what sort of type a Type is.
type TypeKind int

// The kinds of types.
const (
	IntType TypeKind = iota + 1
	FloatType
	BoolType
	// RefType is a reference to a heap object.
	// References are register-representable but not trivially owned;
	// dropping the last one requires a destroy.
	RefType
	StructType
	TupleType
	// AddrType is the address of a location holding the element type.
	AddrType
	// OpaqueType is an address-only type.
	// Opaque values can never be loaded into a register.
	OpaqueType
)

// A Type is the type of a Val.
type Type struct {
	Kind TypeKind
	// Name names Ref, Struct, and Opaque types.
	Name string
	// Elems are the element types of Struct, Tuple, and Addr types.
	// An Addr type has exactly one element: the type stored at the address.
	Elems []*Type
}

// Singleton built-in types.
var (
	Int   = &Type{Kind: IntType}
	Float = &Type{Kind: FloatType}
	Bool  = &Type{Kind: BoolType}
	// Void is the empty tuple.
	Void = &Type{Kind: TupleType}
)

// RefOf returns a named reference type.
func RefOf(name string) *Type { return &Type{Kind: RefType, Name: name} }

// StructOf returns a named struct type with the given element types.
func StructOf(name string, elems ...*Type) *Type {
	return &Type{Kind: StructType, Name: name, Elems: elems}
}

// TupleOf returns a tuple type with the given element types.
func TupleOf(elems ...*Type) *Type {
	return &Type{Kind: TupleType, Elems: elems}
}

// OpaqueOf returns a named address-only type.
func OpaqueOf(name string) *Type { return &Type{Kind: OpaqueType, Name: name} }

// AddrOf returns the type of an address of a t location.
func AddrOf(t *Type) *Type {
	return &Type{Kind: AddrType, Elems: []*Type{t}}
}

// Addr returns whether t is an address type.
func (t *Type) Addr() bool { return t.Kind == AddrType }

// Elem returns the element type of an address type.
func (t *Type) Elem() *Type { return t.Elems[0] }

// Loadable returns whether a value of type t can be held in a register.
// Address-only types, and aggregates containing them, are not loadable.
func (t *Type) Loadable() bool {
	if t.Kind == OpaqueType {
		return false
	}
	if t.Kind == StructType || t.Kind == TupleType {
		for _, e := range t.Elems {
			if !e.Loadable() {
				return false
			}
		}
	}
	return true
}

// Trivial returns whether dropping a value of type t needs no destroy.
func (t *Type) Trivial() bool {
	switch t.Kind {
	case IntType, FloatType, BoolType:
		return true
	case StructType, TupleType:
		for _, e := range t.Elems {
			if !e.Trivial() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Void returns whether t is the empty tuple or a tuple of only void types.
func (t *Type) Void() bool {
	if t.Kind != TupleType {
		return false
	}
	for _, e := range t.Elems {
		if !e.Void() {
			return false
		}
	}
	return true
}

func (t *Type) equal(u *Type) bool {
	if t == u {
		return true
	}
	if t == nil || u == nil || t.Kind != u.Kind || t.Name != u.Name {
		return false
	}
	if len(t.Elems) != len(u.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].equal(u.Elems[i]) {
			return false
		}
	}
	return true
}

func (t *Type) String() string {
	switch t.Kind {
	case IntType:
		return "Int"
	case FloatType:
		return "Float"
	case BoolType:
		return "Bool"
	case RefType:
		return "&" + t.Name
	case StructType:
		if t.Name != "" {
			return t.Name
		}
		var s strings.Builder
		s.WriteRune('{')
		for i, e := range t.Elems {
			if i > 0 {
				s.WriteRune(' ')
			}
			s.WriteString(e.String())
		}
		s.WriteRune('}')
		return s.String()
	case TupleType:
		var s strings.Builder
		s.WriteRune('(')
		for i, e := range t.Elems {
			if i > 0 {
				s.WriteString(", ")
			}
			s.WriteString(e.String())
		}
		s.WriteRune(')')
		return s.String()
	case AddrType:
		return "*" + t.Elem().String()
	case OpaqueType:
		return t.Name
	default:
		return fmt.Sprintf("<bad type kind %d>", t.Kind)
	}
}
