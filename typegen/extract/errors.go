package extract

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/teranos/zorsh-gen/errors"
)

// Error is a declaration that cannot be mapped onto the type model.
type Error struct {
	Module string
	Type   string
	Member string // field or case name; empty for declaration-level problems
	Expr   string // offending source expression, if any
	Reason string
	Pos    token.Position
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, "%s: ", e.Pos)
	}
	b.WriteString(e.Module)
	b.WriteString(": ")
	b.WriteString(e.Type)
	if e.Member != "" {
		b.WriteString(".")
		b.WriteString(e.Member)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Expr != "" {
		fmt.Fprintf(&b, " (%s)", e.Expr)
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	return target == errors.ErrExtraction
}
