package extract

import (
	"go/ast"
	"path"

	"github.com/teranos/zorsh-gen/typegen/model"
)

// shape resolves a type expression. scope is the file the expression was written
// in, which differs from td's file while expanding an alias declared elsewhere in
// the module. expanding guards against alias loops.
func (x *extractor) shape(td *typeDecl, member string, scope *fileScope, expr ast.Expr, expanding map[string]bool) (model.Shape, bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		return x.identShape(td, member, t, expanding)

	case *ast.SelectorExpr:
		return x.selectorShape(td, member, scope, t)

	case *ast.StarExpr:
		inner, ok := x.shape(td, member, scope, t.X, expanding)
		if !ok {
			return nil, false
		}
		return model.Optional{Inner: inner}, true

	case *ast.ArrayType:
		if _, ellipsis := t.Len.(*ast.Ellipsis); ellipsis {
			x.fail(td, member, t, "array length must be explicit", "")
			return nil, false
		}
		elem, ok := x.shape(td, member, scope, t.Elt, expanding)
		if !ok {
			return nil, false
		}
		if t.Len == nil {
			return model.List{Elem: elem}, true
		}
		n, ok := x.evalInt(t.Len, 0)
		if !ok {
			x.fail(td, member, t, "array length is not an integer constant of this package",
				"use an integer literal or a constant declared in the same package")
			return nil, false
		}
		if n < 0 {
			x.fail(td, member, t, "negative array length", "")
			return nil, false
		}
		return model.FixedArray{Elem: elem, Len: int(n)}, true

	case *ast.MapType:
		key, okK := x.shape(td, member, scope, t.Key, expanding)
		value, okV := x.shape(td, member, scope, t.Value, expanding)
		if !okK || !okV {
			return nil, false
		}
		return model.Map{Key: key, Value: value}, true

	case *ast.ParenExpr:
		return x.shape(td, member, scope, t.X, expanding)

	case *ast.IndexExpr, *ast.IndexListExpr:
		x.fail(td, member, expr, "generic instantiation is not supported", "")
	case *ast.StructType:
		x.fail(td, member, expr, "anonymous structs are only supported as enum case payloads",
			"declare a named struct and reference it")
	case *ast.InterfaceType:
		x.fail(td, member, expr, "interface types are not supported", "")
	case *ast.FuncType:
		x.fail(td, member, expr, "function types are not supported", "")
	case *ast.ChanType:
		x.fail(td, member, expr, "channel types are not supported", "")
	default:
		x.fail(td, member, expr, "unsupported type expression", "")
	}
	return nil, false
}

func (x *extractor) identShape(td *typeDecl, member string, id *ast.Ident, expanding map[string]bool) (model.Shape, bool) {
	name := id.Name
	if s, ok := x.mappings[name]; ok {
		return s, true
	}

	if local, ok := x.decls[name]; ok {
		if kind, _ := x.kind(local); kind == kindAlias {
			if expanding[name] {
				x.fail(td, member, id, "type alias loop through "+name, "")
				return nil, false
			}
			next := make(map[string]bool, len(expanding)+1)
			for k := range expanding {
				next[k] = true
			}
			next[name] = true
			return x.shape(td, member, local.scope, local.spec.Type, next)
		}
		return model.Reference{Name: name, Module: x.src.Module}, true
	}

	if s, ok := goBuiltins[name]; ok {
		return s, true
	}
	if reason, ok := unsupportedBuiltins[name]; ok {
		x.fail(td, member, id, reason, "")
		return nil, false
	}
	return model.Reference{Name: name, Module: x.src.Module}, true
}

func (x *extractor) selectorShape(td *typeDecl, member string, scope *fileScope, sel *ast.SelectorExpr) (model.Shape, bool) {
	pkg, ok := sel.X.(*ast.Ident)
	if !ok {
		x.fail(td, member, sel, "unsupported type expression", "")
		return nil, false
	}

	if s, ok := x.mappings[pkg.Name+"."+sel.Sel.Name]; ok {
		return s, true
	}

	importPath, ok := scope.imports[pkg.Name]
	if !ok {
		x.fail(td, member, sel, "unknown package "+pkg.Name, "")
		return nil, false
	}
	// Mappings are keyed by the conventional package name; match renamed imports too.
	if s, ok := x.mappings[path.Base(importPath)+"."+sel.Sel.Name]; ok {
		return s, true
	}

	module := importPath
	if x.resolver != nil {
		if m, ok := x.resolver.ModuleFor(importPath); ok {
			module = m
		}
	}
	return model.Reference{Name: sel.Sel.Name, Module: module}, true
}
