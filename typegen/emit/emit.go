// Package emit renders planned modules as Zorsh TypeScript schemas.
//
// Each declared type becomes a schema constant plus an inferred type:
//
//	export const ItemSchema = b.struct({
//	    id: b.u32(),
//	    name: b.string()
//	});
//
//	export type Item = b.infer<typeof ItemSchema>;
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/typegen/layout"
	"github.com/teranos/zorsh-gen/typegen/model"
	"github.com/teranos/zorsh-gen/typegen/resolve"
)

// DefaultImportSource is the package the b builder is imported from.
const DefaultImportSource = "@zorsh/zorsh"

// Header opens every generated file.
const Header = "// Code generated by zorsh-gen from Go source. DO NOT EDIT."

// SchemaSuffix is appended to a type name to form its schema identifier.
const SchemaSuffix = "Schema"

type Options struct {
	ImportSource string
	Layout       layout.Layout
}

func DefaultOptions() Options {
	return Options{ImportSource: DefaultImportSource, Layout: layout.Layout{Structure: layout.Nested}}
}

// Error is an internal invariant violation found while rendering. It means the
// plan and the registry disagree, not that the input is wrong.
type Error struct {
	Module string
	Type   string
	Reason string
}

func (e *Error) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("emit %s: %s", e.Module, e.Reason)
	}
	return fmt.Sprintf("emit %s: %s: %s", e.Module, e.Type, e.Reason)
}

func (e *Error) Is(target error) bool {
	return target == errors.ErrEmission
}

// Module renders one module's file.
func Module(reg *model.Registry, mp *resolve.ModulePlan, opts Options) (string, error) {
	if opts.ImportSource == "" {
		opts.ImportSource = DefaultImportSource
	}

	names, imports, err := bindNames(mp, opts.Layout)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	out.WriteString(Header)
	out.WriteString("\n// Source module: ")
	out.WriteString(mp.Module)
	out.WriteString("\n\n")
	fmt.Fprintf(&out, "import { b } from '%s';\n", opts.ImportSource)
	for _, imp := range imports {
		out.WriteString(imp)
		out.WriteByte('\n')
	}

	for _, fqn := range mp.Order {
		d, ok := reg.Lookup(fqn)
		if !ok {
			return "", &Error{Module: mp.Module, Type: fqn, Reason: "planned type missing from registry"}
		}
		e, err := DeclExpr(d, func(ref model.Reference) (Expr, error) {
			target := ref.FQN()
			name, ok := names[target]
			if !ok {
				return nil, &Error{Module: mp.Module, Type: fqn, Reason: "reference to " + target + " is neither local nor imported"}
			}
			if mp.IsDeferred(target) {
				return Call{Callee: "b.lazy", Args: []Expr{Arrow{Body: Ident{Name: name}}}}, nil
			}
			return Ident{Name: name}, nil
		})
		if err != nil {
			return "", err
		}

		out.WriteByte('\n')
		out.WriteString(jsDoc(d.Comment()))
		schema := d.TypeName() + SchemaSuffix
		fmt.Fprintf(&out, "export const %s = %s;\n\n", schema, Render(e, 0))
		fmt.Fprintf(&out, "export type %s = b.infer<typeof %s>;\n", d.TypeName(), schema)
	}
	return out.String(), nil
}

// bindNames assigns an identifier to every type the module mentions and renders
// the import statements, one per source module, sorted by module path with
// sorted symbols. Imported schemas whose plain name is taken are aliased.
func bindNames(mp *resolve.ModulePlan, l layout.Layout) (map[string]string, []string, error) {
	names := make(map[string]string)
	taken := make(map[string]bool)
	for _, fqn := range mp.Order {
		_, name := model.SplitFQN(fqn)
		names[fqn] = name + SchemaSuffix
		taken[name+SchemaSuffix] = true
		// The inferred type alias occupies the bare name.
		taken[name] = true
	}

	byModule := make(map[string][]string)
	for _, fqn := range mp.Imports {
		module, _ := model.SplitFQN(fqn)
		if module == mp.Module {
			return nil, nil, &Error{Module: mp.Module, Reason: "import of local type " + fqn}
		}
		byModule[module] = append(byModule[module], fqn)
	}

	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	var statements []string
	for _, module := range modules {
		fqns := byModule[module]
		sort.Strings(fqns)

		var symbols []string
		for _, fqn := range fqns {
			_, name := model.SplitFQN(fqn)
			symbol := name + SchemaSuffix
			local := symbol
			if taken[local] {
				local = strings.Join(layout.Segments(module), "_") + "_" + symbol
			}
			taken[local] = true
			names[fqn] = local
			if local != symbol {
				symbol += " as " + local
			}
			symbols = append(symbols, symbol)
		}
		statements = append(statements, fmt.Sprintf("import { %s } from '%s';",
			strings.Join(symbols, ", "), l.ImportPath(mp.Module, module)))
	}
	return names, statements, nil
}

// ShapeExpr builds the schema expression of a shape. ref renders references.
func ShapeExpr(s model.Shape, ref func(model.Reference) (Expr, error)) (Expr, error) {
	switch t := s.(type) {
	case model.Primitive:
		return Call{Callee: "b." + string(t.Name)}, nil
	case model.Text:
		return Call{Callee: "b.string"}, nil
	case model.List:
		elem, err := ShapeExpr(t.Elem, ref)
		if err != nil {
			return nil, err
		}
		return Call{Callee: "b.vec", Args: []Expr{elem}}, nil
	case model.FixedArray:
		elem, err := ShapeExpr(t.Elem, ref)
		if err != nil {
			return nil, err
		}
		return Call{Callee: "b.array", Args: []Expr{elem, Int{Value: t.Len}}}, nil
	case model.Map:
		key, err := ShapeExpr(t.Key, ref)
		if err != nil {
			return nil, err
		}
		value, err := ShapeExpr(t.Value, ref)
		if err != nil {
			return nil, err
		}
		return Call{Callee: "b.hashMap", Args: []Expr{key, value}}, nil
	case model.Optional:
		inner, err := ShapeExpr(t.Inner, ref)
		if err != nil {
			return nil, err
		}
		return Call{Callee: "b.option", Args: []Expr{inner}}, nil
	case model.Reference:
		return ref(t)
	}
	return nil, &Error{Reason: fmt.Sprintf("no rendering rule for shape %T", s)}
}

// DeclExpr builds the schema expression of a declaration.
func DeclExpr(d model.DeclaredType, ref func(model.Reference) (Expr, error)) (Expr, error) {
	switch t := d.(type) {
	case *model.Record:
		obj, err := fieldsObject(t.Fields, ref)
		if err != nil {
			return nil, withContext(err, t.Module, t.Name)
		}
		return Call{Callee: "b.struct", Args: []Expr{obj}}, nil

	case *model.Variant:
		var obj Object
		for _, c := range t.Cases {
			payload, err := payloadExpr(c.Payload, ref)
			if err != nil {
				return nil, withContext(err, t.Module, t.Name)
			}
			obj.Entries = append(obj.Entries, Entry{Key: c.Name, Value: payload})
		}
		return Call{Callee: "b.enum", Args: []Expr{obj}}, nil
	}
	return nil, &Error{Module: d.ModulePath(), Type: d.TypeName(), Reason: fmt.Sprintf("no rendering rule for declaration %T", d)}
}

func payloadExpr(p model.Payload, ref func(model.Reference) (Expr, error)) (Expr, error) {
	switch t := p.(type) {
	case model.NoPayload:
		return Call{Callee: "b.unit"}, nil
	case model.TuplePayload:
		if len(t.Elems) == 0 {
			return Call{Callee: "b.unit"}, nil
		}
		var args []Expr
		for _, s := range t.Elems {
			e, err := ShapeExpr(s, ref)
			if err != nil {
				return nil, err
			}
			args = append(args, e)
		}
		if len(args) == 1 {
			return args[0], nil
		}
		return Call{Callee: "b.tuple", Args: args}, nil
	case model.RecordPayload:
		obj, err := fieldsObject(t.Fields, ref)
		if err != nil {
			return nil, err
		}
		return Call{Callee: "b.struct", Args: []Expr{obj}}, nil
	}
	return nil, &Error{Reason: fmt.Sprintf("no rendering rule for payload %T", p)}
}

func fieldsObject(fields []model.Field, ref func(model.Reference) (Expr, error)) (Object, error) {
	var obj Object
	for _, f := range fields {
		e, err := ShapeExpr(f.Shape, ref)
		if err != nil {
			return Object{}, err
		}
		obj.Entries = append(obj.Entries, Entry{Key: f.Name, Value: e})
	}
	return obj, nil
}

func withContext(err error, module, typ string) error {
	var e *Error
	if errors.As(err, &e) && e.Type == "" {
		e.Module, e.Type = module, typ
	}
	return err
}

// jsDoc renders a doc comment as a JSDoc block, or nothing.
func jsDoc(doc string) string {
	if strings.TrimSpace(doc) == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("/**\n")
	for _, line := range strings.Split(doc, "\n") {
		line = strings.ReplaceAll(line, "*/", "*\\/")
		if line == "" {
			b.WriteString(" *\n")
			continue
		}
		b.WriteString(" * ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(" */\n")
	return b.String()
}
