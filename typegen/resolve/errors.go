package resolve

import (
	"fmt"
	"strings"

	"github.com/teranos/zorsh-gen/errors"
)

// UnresolvedReferenceError is a reference to a type missing from the registry.
type UnresolvedReferenceError struct {
	Type   string // fully-qualified name of the referencing type
	Field  string // field or case label inside Type
	Target string // referenced type name
	Module string // module the reference was resolved against
	// Candidates are registered types with the same name in other modules.
	Candidates []string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s.%s: unresolved reference to %s (looked in %s)", e.Type, e.Field, e.Target, e.Module)
}

func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == errors.ErrUnresolvedReference
}

func (e *UnresolvedReferenceError) hint() string {
	if len(e.Candidates) > 0 {
		return "types with this name exist in: " + strings.Join(e.Candidates, ", ")
	}
	return fmt.Sprintf("declare %s in %s and annotate it with //zorsh:generate, or add a type mapping", e.Target, e.Module)
}

// CycleError is a reference cycle the policy does not permit. Members are
// fully-qualified names in cycle order; the last member references the first.
type CycleError struct {
	Members []string
	// Direct is true when every edge of the cycle is direct containment.
	Direct bool
}

func (e *CycleError) Error() string {
	kind := "dependency cycle"
	if e.Direct {
		kind = "direct containment cycle"
	}
	return fmt.Sprintf("%s: %s -> %s", kind, strings.Join(e.Members, " -> "), e.Members[0])
}

func (e *CycleError) Is(target error) bool {
	return target == errors.ErrDependencyCycle
}

func (e *CycleError) hint() string {
	if e.Direct {
		return "a type cannot contain itself by value; hold one side through a pointer, slice or map"
	}
	return "cycles through pointers, slices or maps are permitted with generate.cycles = \"allow-indirect\""
}
