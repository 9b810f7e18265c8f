// Package model is the language-neutral representation of declared types.
//
// A Shape is a closed sum type: every implementation lives in this file and
// consumers switch over the concrete types exhaustively. Shapes and declarations
// are immutable once built by the extractor.
package model

import (
	"fmt"
	"strings"
)

// Kind discriminates the Shape variants.
type Kind int

const (
	KindPrimitive Kind = iota
	KindText
	KindList
	KindFixedArray
	KindMap
	KindOptional
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindFixedArray:
		return "fixed-array"
	case KindMap:
		return "map"
	case KindOptional:
		return "optional"
	case KindReference:
		return "reference"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Shape is a field or payload type.
type Shape interface {
	Kind() Kind
	String() string
	shape()
}

// PrimitiveName is one of the fixed numeric kinds, plus bool.
type PrimitiveName string

const (
	U8   PrimitiveName = "u8"
	U16  PrimitiveName = "u16"
	U32  PrimitiveName = "u32"
	U64  PrimitiveName = "u64"
	U128 PrimitiveName = "u128"
	I8   PrimitiveName = "i8"
	I16  PrimitiveName = "i16"
	I32  PrimitiveName = "i32"
	I64  PrimitiveName = "i64"
	I128 PrimitiveName = "i128"
	F32  PrimitiveName = "f32"
	F64  PrimitiveName = "f64"
	Bool PrimitiveName = "bool"
)

// PrimitiveNames lists every primitive in canonical order.
var PrimitiveNames = []PrimitiveName{U8, U16, U32, U64, U128, I8, I16, I32, I64, I128, F32, F64, Bool}

// ParsePrimitive returns the primitive named s.
func ParsePrimitive(s string) (PrimitiveName, bool) {
	for _, p := range PrimitiveNames {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

type Primitive struct {
	Name PrimitiveName
}

type Text struct{}

type List struct {
	Elem Shape
}

// FixedArray has a length known at generation time.
type FixedArray struct {
	Elem Shape
	Len  int
}

type Map struct {
	Key   Shape
	Value Shape
}

type Optional struct {
	Inner Shape
}

// Reference links to another declared type by name. It never embeds the
// referenced declaration; the Registry resolves it.
type Reference struct {
	Name   string
	Module string
}

// FQN returns the fully-qualified name of the referenced type.
func (r Reference) FQN() string { return FQN(r.Module, r.Name) }

func (Primitive) Kind() Kind  { return KindPrimitive }
func (Text) Kind() Kind       { return KindText }
func (List) Kind() Kind       { return KindList }
func (FixedArray) Kind() Kind { return KindFixedArray }
func (Map) Kind() Kind        { return KindMap }
func (Optional) Kind() Kind   { return KindOptional }
func (Reference) Kind() Kind  { return KindReference }

func (Primitive) shape()  {}
func (Text) shape()       {}
func (List) shape()       {}
func (FixedArray) shape() {}
func (Map) shape()        {}
func (Optional) shape()   {}
func (Reference) shape()  {}

func (p Primitive) String() string  { return string(p.Name) }
func (Text) String() string         { return "string" }
func (l List) String() string       { return "list<" + l.Elem.String() + ">" }
func (a FixedArray) String() string { return fmt.Sprintf("array<%s, %d>", a.Elem.String(), a.Len) }
func (m Map) String() string        { return "map<" + m.Key.String() + ", " + m.Value.String() + ">" }
func (o Optional) String() string   { return "optional<" + o.Inner.String() + ">" }
func (r Reference) String() string  { return r.FQN() }

// FQN joins a module path and a type name into a fully-qualified name.
func FQN(module, name string) string {
	return module + "." + name
}

// SplitFQN is the inverse of FQN. Type names never contain dots, so the last dot
// separates module from name.
func SplitFQN(fqn string) (module, name string) {
	i := strings.LastIndex(fqn, ".")
	if i < 0 {
		return "", fqn
	}
	return fqn[:i], fqn[i+1:]
}

// Walk visits shape depth-first and calls fn for every Reference. indirect is
// true when the reference sits below a List, Map or Optional. A FixedArray is
// inline storage and does not count as indirection.
func Walk(shape Shape, fn func(ref Reference, indirect bool)) {
	walk(shape, false, fn)
}

func walk(shape Shape, indirect bool, fn func(Reference, bool)) {
	switch s := shape.(type) {
	case Primitive, Text:
	case List:
		walk(s.Elem, true, fn)
	case FixedArray:
		walk(s.Elem, indirect, fn)
	case Map:
		walk(s.Key, true, fn)
		walk(s.Value, true, fn)
	case Optional:
		walk(s.Inner, true, fn)
	case Reference:
		fn(s, indirect)
	}
}

// Equal reports structural equality of two shapes.
func Equal(a, b Shape) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Primitive:
		return x.Name == b.(Primitive).Name
	case Text:
		return true
	case List:
		return Equal(x.Elem, b.(List).Elem)
	case FixedArray:
		y := b.(FixedArray)
		return x.Len == y.Len && Equal(x.Elem, y.Elem)
	case Map:
		y := b.(Map)
		return Equal(x.Key, y.Key) && Equal(x.Value, y.Value)
	case Optional:
		return Equal(x.Inner, b.(Optional).Inner)
	case Reference:
		return x == b.(Reference)
	}
	return false
}
