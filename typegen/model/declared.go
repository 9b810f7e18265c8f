package model

import "strconv"

// DeclaredType is a Record or a Variant.
type DeclaredType interface {
	TypeName() string
	ModulePath() string
	// Comment is the declaration's doc comment, without comment markers.
	Comment() string
	declared()
}

// Field is a named member of a record or of a record-shaped enum case.
type Field struct {
	Name   string // serialized name
	GoName string // name in the Go source, for diagnostics
	Shape  Shape
}

// Record is a struct. Field order is the serialization order.
type Record struct {
	Name   string
	Module string
	Fields []Field
	Doc    string
}

// Variant is a tagged union. Case order is the discriminant order.
type Variant struct {
	Name   string
	Module string
	Cases  []Case
	Doc    string
}

type Case struct {
	Name    string
	Payload Payload
}

// Payload is NoPayload, TuplePayload or RecordPayload.
type Payload interface {
	payload()
}

type NoPayload struct{}

type TuplePayload struct {
	Elems []Shape
}

type RecordPayload struct {
	Fields []Field
}

func (NoPayload) payload()     {}
func (TuplePayload) payload()  {}
func (RecordPayload) payload() {}

func (r *Record) TypeName() string   { return r.Name }
func (r *Record) ModulePath() string { return r.Module }
func (r *Record) Comment() string    { return r.Doc }
func (*Record) declared()            {}

func (v *Variant) TypeName() string   { return v.Name }
func (v *Variant) ModulePath() string { return v.Module }
func (v *Variant) Comment() string    { return v.Doc }
func (*Variant) declared()            {}

// label names f the way the Go source does.
func (f Field) label() string {
	if f.GoName != "" {
		return f.GoName
	}
	return f.Name
}

// FQNOf returns the fully-qualified name of a declaration.
func FQNOf(d DeclaredType) string {
	return FQN(d.ModulePath(), d.TypeName())
}

// Member is one shape position inside a declaration, labelled for diagnostics.
// Record fields are labelled by their Go name, tuple payloads by case name and
// index, record payloads by "case.field".
type Member struct {
	Label string
	Shape Shape
}

// Members lists every shape of d in declaration order.
func Members(d DeclaredType) []Member {
	var out []Member
	switch t := d.(type) {
	case *Record:
		for _, f := range t.Fields {
			out = append(out, Member{Label: f.label(), Shape: f.Shape})
		}
	case *Variant:
		for _, c := range t.Cases {
			switch p := c.Payload.(type) {
			case TuplePayload:
				for i, s := range p.Elems {
					label := c.Name
					if len(p.Elems) > 1 {
						label = c.Name + "." + strconv.Itoa(i)
					}
					out = append(out, Member{Label: label, Shape: s})
				}
			case RecordPayload:
				for _, f := range p.Fields {
					out = append(out, Member{Label: c.Name + "." + f.label(), Shape: f.Shape})
				}
			}
		}
	}
	return out
}
