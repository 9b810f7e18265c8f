package emit

import (
	"strconv"
	"strings"
)

// Expr is a node of a rendered schema expression. Emission builds the tree
// first and prints it afterwards, so tests can compare structure instead of text.
type Expr interface {
	expr()
}

// Call is callee(args...), e.g. b.vec(b.u8()).
type Call struct {
	Callee string
	Args   []Expr
}

// Ident is a bare identifier such as ItemSchema.
type Ident struct {
	Name string
}

type Int struct {
	Value int
}

// Arrow is a parameterless arrow function: () => Body.
type Arrow struct {
	Body Expr
}

// Object is an object literal; entry order is preserved.
type Object struct {
	Entries []Entry
}

type Entry struct {
	Key   string
	Value Expr
}

func (Call) expr()   {}
func (Ident) expr()  {}
func (Int) expr()    {}
func (Arrow) expr()  {}
func (Object) expr() {}

const indentUnit = "    "

// Render prints e at the given nesting depth. Object literals span lines, one
// entry per line, without trailing commas.
func Render(e Expr, depth int) string {
	var b strings.Builder
	render(&b, e, depth)
	return b.String()
}

func render(b *strings.Builder, e Expr, depth int) {
	switch n := e.(type) {
	case Call:
		b.WriteString(n.Callee)
		b.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, arg, depth)
		}
		b.WriteByte(')')
	case Ident:
		b.WriteString(n.Name)
	case Int:
		b.WriteString(strconv.Itoa(n.Value))
	case Arrow:
		b.WriteString("() => ")
		render(b, n.Body, depth)
	case Object:
		if len(n.Entries) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, entry := range n.Entries {
			if i > 0 {
				b.WriteString(",\n")
			}
			b.WriteString(strings.Repeat(indentUnit, depth+1))
			b.WriteString(objectKey(entry.Key))
			b.WriteString(": ")
			render(b, entry.Value, depth+1)
		}
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(indentUnit, depth))
		b.WriteByte('}')
	}
}

// objectKey quotes keys that are not plain identifiers.
func objectKey(key string) string {
	if isIdentifier(key) {
		return key
	}
	return strconv.Quote(key)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !letter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}
