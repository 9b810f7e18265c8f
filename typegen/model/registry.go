package model

import (
	"fmt"
	"sort"

	"github.com/teranos/zorsh-gen/errors"
)

// DuplicateDeclarationError reports a second declaration under an existing
// fully-qualified name.
type DuplicateDeclarationError struct {
	FQN string
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("duplicate declaration of %s", e.FQN)
}

func (e *DuplicateDeclarationError) Is(target error) bool {
	return target == errors.ErrDuplicateDeclaration
}

// Registry maps fully-qualified names to declarations. Construct one per run,
// fill it single-threaded with Add, then treat it as read-only.
type Registry struct {
	order []string
	types map[string]DeclaredType
	index map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]DeclaredType),
		index: make(map[string]int),
	}
}

// Add registers d. An existing key is never overwritten.
func (r *Registry) Add(d DeclaredType) error {
	fqn := FQNOf(d)
	if _, exists := r.types[fqn]; exists {
		return &DuplicateDeclarationError{FQN: fqn}
	}
	r.index[fqn] = len(r.order)
	r.order = append(r.order, fqn)
	r.types[fqn] = d
	return nil
}

// Lookup returns the declaration registered under fqn.
func (r *Registry) Lookup(fqn string) (DeclaredType, bool) {
	d, ok := r.types[fqn]
	return d, ok
}

// Index is the insertion position of fqn, or -1.
func (r *Registry) Index(fqn string) int {
	if i, ok := r.index[fqn]; ok {
		return i
	}
	return -1
}

func (r *Registry) Len() int { return len(r.order) }

// Names returns every fully-qualified name in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Types returns every declaration in insertion order.
func (r *Registry) Types() []DeclaredType {
	out := make([]DeclaredType, 0, len(r.order))
	for _, fqn := range r.order {
		out = append(out, r.types[fqn])
	}
	return out
}

// Modules returns the distinct module paths, sorted.
func (r *Registry) Modules() []string {
	seen := make(map[string]bool)
	var out []string
	for _, fqn := range r.order {
		m := r.types[fqn].ModulePath()
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// ModuleTypes returns the declarations of one module in insertion order.
func (r *Registry) ModuleTypes(module string) []DeclaredType {
	var out []DeclaredType
	for _, fqn := range r.order {
		if d := r.types[fqn]; d.ModulePath() == module {
			out = append(out, d)
		}
	}
	return out
}

// FindByName returns the fully-qualified names of every declaration called name,
// in insertion order.
func (r *Registry) FindByName(name string) []string {
	var out []string
	for _, fqn := range r.order {
		if r.types[fqn].TypeName() == name {
			out = append(out, fqn)
		}
	}
	return out
}
