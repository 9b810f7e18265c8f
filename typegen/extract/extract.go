// Package extract maps one module's Go type declarations onto the type model.
//
// Declarations opt in with a doc-comment directive:
//
//	// Item is a thing in the inventory.
//	//
//	//zorsh:generate
//	type Item struct {
//	    ID   uint32
//	    Name string
//	}
//
// //zorsh:enum marks a tagged union. Either a struct whose fields are the cases:
//
//	//zorsh:enum
//	type Status struct {
//	    Online  struct{}
//	    Offline struct{ LastSeen uint64 }
//	    Away    string
//	}
//
// or a named integer type whose typed constants are unit cases. Structs in the
// borsh-go style (a leading `borsh.Enum` field tagged borsh_enum:"true") are
// tagged unions too.
package extract

import (
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"strconv"
	"strings"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/typegen/model"
	"github.com/teranos/zorsh-gen/typegen/util"
)

// Source is one module's parsed files, in a stable order.
type Source struct {
	Module string
	Fset   *token.FileSet
	Files  []*ast.File
}

// ImportResolver maps a Go import path to the module path its declarations
// are registered under.
type ImportResolver interface {
	ModuleFor(importPath string) (module string, ok bool)
}

// ImportResolverFunc adapts a function to ImportResolver.
type ImportResolverFunc func(importPath string) (string, bool)

func (f ImportResolverFunc) ModuleFor(importPath string) (string, bool) { return f(importPath) }

// Options controls which declarations are extracted and how fields are named.
type Options struct {
	// OnlyAnnotated restricts extraction to declarations carrying a zorsh directive.
	// When false every struct of the module is extracted, exported or not.
	OnlyAnnotated bool
	FieldCase     util.FieldCase
	// TypeMappings maps a Go spelling ("Amount", "decimal.Decimal") to a primitive
	// name or "string". Consulted before the built-in table.
	TypeMappings map[string]string
}

func DefaultOptions() Options {
	return Options{OnlyAnnotated: true, FieldCase: util.CasePreserve}
}

// BuiltinTypeMappings covers the 128-bit integer types Go has no keyword for.
var BuiltinTypeMappings = map[string]string{
	"big.Int":         "u128",
	"uint128.Uint128": "u128",
	"int128.Int128":   "i128",
}

var goBuiltins = map[string]model.Shape{
	"uint8":   model.Primitive{Name: model.U8},
	"byte":    model.Primitive{Name: model.U8},
	"uint16":  model.Primitive{Name: model.U16},
	"uint32":  model.Primitive{Name: model.U32},
	"uint64":  model.Primitive{Name: model.U64},
	"uint":    model.Primitive{Name: model.U64},
	"int8":    model.Primitive{Name: model.I8},
	"int16":   model.Primitive{Name: model.I16},
	"int32":   model.Primitive{Name: model.I32},
	"rune":    model.Primitive{Name: model.I32},
	"int64":   model.Primitive{Name: model.I64},
	"int":     model.Primitive{Name: model.I64},
	"float32": model.Primitive{Name: model.F32},
	"float64": model.Primitive{Name: model.F64},
	"bool":    model.Primitive{Name: model.Bool},
	"string":  model.Text{},
}

var unsupportedBuiltins = map[string]string{
	"any":        "interface types are not supported",
	"error":      "interface types are not supported",
	"uintptr":    "uintptr has no portable encoding",
	"complex64":  "complex numbers are not supported",
	"complex128": "complex numbers are not supported",
}

// ShapeForName parses a primitive name or "string".
func ShapeForName(name string) (model.Shape, bool) {
	if name == "string" {
		return model.Text{}, true
	}
	if p, ok := model.ParsePrimitive(name); ok {
		return model.Primitive{Name: p}, true
	}
	return nil, false
}

type declKind int

const (
	kindAlias declKind = iota
	kindRecord
	kindVariant
	kindIntEnum
)

type typeDecl struct {
	spec  *ast.TypeSpec
	doc   *ast.CommentGroup
	scope *fileScope
}

type fileScope struct {
	imports map[string]string // package name -> import path
}

type enumConst struct {
	name  string
	value int64
	ok    bool
	pos   token.Pos
}

type extractor struct {
	src        Source
	resolver   ImportResolver
	opts       Options
	mappings   map[string]model.Shape
	decls      map[string]*typeDecl
	order      []*typeDecl
	consts     map[string]int64
	enumConsts map[string][]enumConst
	errs       error
}

// Extract returns the in-scope declarations of one module, in source order.
// All problems of the module are reported together; when any occurs no
// declarations are returned.
func Extract(src Source, resolver ImportResolver, opts Options) ([]model.DeclaredType, error) {
	mappings, err := compileMappings(opts.TypeMappings)
	if err != nil {
		return nil, err
	}

	x := &extractor{
		src:        src,
		resolver:   resolver,
		opts:       opts,
		mappings:   mappings,
		decls:      make(map[string]*typeDecl),
		consts:     make(map[string]int64),
		enumConsts: make(map[string][]enumConst),
	}
	x.collect()

	var out []model.DeclaredType
	for _, td := range x.order {
		if d := x.declaration(td); d != nil {
			out = append(out, d)
		}
	}
	if x.errs != nil {
		return nil, x.errs
	}
	return out, nil
}

func compileMappings(user map[string]string) (map[string]model.Shape, error) {
	out := make(map[string]model.Shape, len(BuiltinTypeMappings)+len(user))
	for spelling, name := range BuiltinTypeMappings {
		s, _ := ShapeForName(name)
		out[spelling] = s
	}
	for _, spelling := range util.SortedKeys(user) {
		s, ok := ShapeForName(user[spelling])
		if !ok {
			return nil, errors.WithHint(
				errors.Newf("type mapping %s: unknown target %q", spelling, user[spelling]),
				"map to a primitive (u8..u128, i8..i128, f32, f64, bool) or string")
		}
		out[spelling] = s
	}
	return out, nil
}

// collect indexes every type declaration and integer constant of the module.
func (x *extractor) collect() {
	for _, f := range x.src.Files {
		scope := newFileScope(f)
		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			switch gen.Tok {
			case token.TYPE:
				for _, spec := range gen.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && !gen.Lparen.IsValid() {
						doc = gen.Doc
					}
					if _, exists := x.decls[ts.Name.Name]; exists {
						continue
					}
					td := &typeDecl{spec: ts, doc: doc, scope: scope}
					x.decls[ts.Name.Name] = td
					x.order = append(x.order, td)
				}
			case token.CONST:
				x.collectConsts(gen)
			}
		}
	}
}

// collectConsts records integer constants, following Go's implicit repetition
// of the previous type and expression list.
func (x *extractor) collectConsts(gen *ast.GenDecl) {
	var typeName string
	var values []ast.Expr
	for iota, spec := range gen.Specs {
		vs := spec.(*ast.ValueSpec)
		if vs.Type != nil || len(vs.Values) > 0 {
			typeName = ""
			if id, ok := vs.Type.(*ast.Ident); ok {
				typeName = id.Name
			}
			values = vs.Values
		}
		for i, name := range vs.Names {
			var expr ast.Expr
			if i < len(values) {
				expr = values[i]
			}
			value, ok := x.evalInt(expr, int64(iota))
			if ok && name.Name != "_" {
				x.consts[name.Name] = value
			}
			if typeName != "" {
				x.enumConsts[typeName] = append(x.enumConsts[typeName], enumConst{
					name: name.Name, value: value, ok: ok, pos: name.Pos(),
				})
			}
		}
	}
}

func (x *extractor) evalInt(expr ast.Expr, iota int64) (int64, bool) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT {
			return 0, false
		}
		v, err := strconv.ParseInt(e.Value, 0, 64)
		return v, err == nil
	case *ast.Ident:
		if e.Name == "iota" {
			return iota, true
		}
		v, ok := x.consts[e.Name]
		return v, ok
	case *ast.ParenExpr:
		return x.evalInt(e.X, iota)
	case *ast.CallExpr:
		// Conversions such as Color(iota) or uint8(4)
		if len(e.Args) == 1 {
			return x.evalInt(e.Args[0], iota)
		}
	case *ast.UnaryExpr:
		if v, ok := x.evalInt(e.X, iota); ok && e.Op == token.SUB {
			return -v, true
		}
	case *ast.BinaryExpr:
		a, okA := x.evalInt(e.X, iota)
		b, okB := x.evalInt(e.Y, iota)
		if !okA || !okB {
			return 0, false
		}
		switch e.Op {
		case token.ADD:
			return a + b, true
		case token.SUB:
			return a - b, true
		case token.MUL:
			return a * b, true
		case token.SHL:
			return a << uint64(b), true
		case token.QUO:
			if b != 0 {
				return a / b, true
			}
		}
	}
	return 0, false
}

func newFileScope(f *ast.File) *fileScope {
	s := &fileScope{imports: make(map[string]string)}
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := packageName(p)
		if imp.Name != nil {
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				continue
			}
			name = imp.Name.Name
		}
		s.imports[name] = p
	}
	return s
}

// packageName guesses the package name of an import path the way goimports
// does: last element, skipping a major-version suffix, without go- / -go.
func packageName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' && isDigits(base[1:]) && path.Dir(importPath) != "." {
		base = path.Base(path.Dir(importPath))
	}
	base = strings.TrimPrefix(base, "go-")
	base = strings.TrimSuffix(base, "-go")
	base = strings.TrimSuffix(base, ".go")
	return strings.ReplaceAll(base, "-", "")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (x *extractor) kind(td *typeDecl) (declKind, bool) {
	annotated := util.HasDirective(td.doc, "generate")
	isEnum := util.HasDirective(td.doc, "enum")

	switch st := td.spec.Type.(type) {
	case *ast.StructType:
		variant := isEnum || x.isBorshEnum(st, td.scope)
		included := annotated || isEnum || !x.opts.OnlyAnnotated
		if variant {
			return kindVariant, included
		}
		return kindRecord, included
	default:
		if isEnum {
			return kindIntEnum, true
		}
		return kindAlias, false
	}
}

// isBorshEnum reports whether st starts with a borsh-go discriminant field.
func (x *extractor) isBorshEnum(st *ast.StructType, scope *fileScope) bool {
	if st.Fields == nil || len(st.Fields.List) == 0 {
		return false
	}
	first := st.Fields.List[0]
	sel, ok := first.Type.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Enum" || !parseFieldTags(first.Tag).BorshEnum {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}
	importPath := scope.imports[pkg.Name]
	return strings.HasSuffix(importPath, "borsh-go") || pkg.Name == "borsh"
}

func (x *extractor) declaration(td *typeDecl) model.DeclaredType {
	kind, included := x.kind(td)
	if !included {
		return nil
	}
	name := td.spec.Name.Name
	if td.spec.TypeParams != nil && len(td.spec.TypeParams.List) > 0 {
		x.fail(td, "", td.spec.TypeParams, "generic types are not supported",
			"declare a concrete type per instantiation")
		return nil
	}

	doc := util.DocText(td.doc)
	switch kind {
	case kindRecord:
		fields, ok := x.fields(td, td.spec.Type.(*ast.StructType).Fields, "")
		if !ok {
			return nil
		}
		return &model.Record{Name: name, Module: x.src.Module, Fields: fields, Doc: doc}
	case kindVariant:
		cases, ok := x.structCases(td, td.spec.Type.(*ast.StructType))
		if !ok {
			return nil
		}
		return &model.Variant{Name: name, Module: x.src.Module, Cases: cases, Doc: doc}
	case kindIntEnum:
		cases, ok := x.constCases(td)
		if !ok {
			return nil
		}
		return &model.Variant{Name: name, Module: x.src.Module, Cases: cases, Doc: doc}
	}
	return nil
}

// fields maps a struct field list onto record fields. prefix labels fields of
// enum case payloads in diagnostics.
func (x *extractor) fields(td *typeDecl, list *ast.FieldList, prefix string) ([]model.Field, bool) {
	ok := true
	seen := make(map[string]bool)
	var out []model.Field
	for _, f := range list.List {
		if len(f.Names) == 0 {
			x.fail(td, prefix+types.ExprString(f.Type), f.Type, "embedded fields are not supported",
				"give the field a name")
			ok = false
			continue
		}
		tags := parseFieldTags(f.Tag)
		if tags.Skip {
			continue
		}
		for _, ident := range f.Names {
			if !ident.IsExported() {
				continue
			}
			member := prefix + ident.Name
			name := x.fieldName(ident.Name, tags)
			if seen[name] {
				x.fail(td, member, nil, "duplicate field name "+strconv.Quote(name), "")
				ok = false
				continue
			}
			seen[name] = true

			shape, shapeOK := x.fieldShape(td, member, f.Type, tags)
			if !shapeOK {
				ok = false
				continue
			}
			out = append(out, model.Field{Name: name, GoName: ident.Name, Shape: shape})
		}
	}
	return out, ok
}

func (x *extractor) fieldName(goName string, tags fieldTags) string {
	if tags.Name != "" {
		return tags.Name
	}
	if tags.JSONName != "" {
		return tags.JSONName
	}
	return x.opts.FieldCase.Apply(goName)
}

func (x *extractor) fieldShape(td *typeDecl, member string, expr ast.Expr, tags fieldTags) (model.Shape, bool) {
	if tags.Override != "" {
		s, ok := ShapeForName(tags.Override)
		if !ok {
			x.fail(td, member, expr, "unknown zorshtype "+strconv.Quote(tags.Override),
				"use a primitive (u8..u128, i8..i128, f32, f64, bool) or string")
		}
		return s, ok
	}
	return x.shape(td, member, td.scope, expr, nil)
}

// structCases maps each field of an enum struct to a case.
func (x *extractor) structCases(td *typeDecl, st *ast.StructType) ([]model.Case, bool) {
	list := st.Fields.List
	if x.isBorshEnum(st, td.scope) {
		list = list[1:]
	}

	ok := true
	seen := make(map[string]bool)
	var cases []model.Case
	for _, f := range list {
		if len(f.Names) == 0 {
			x.fail(td, types.ExprString(f.Type), f.Type, "embedded fields are not supported in enums",
				"name the case")
			ok = false
			continue
		}
		tags := parseFieldTags(f.Tag)
		if tags.Skip {
			continue
		}
		for _, ident := range f.Names {
			name := ident.Name
			if tags.Name != "" {
				name = tags.Name
			}
			if seen[name] {
				x.fail(td, name, nil, "duplicate case name "+strconv.Quote(name), "")
				ok = false
				continue
			}
			seen[name] = true

			payload, payloadOK := x.payload(td, name, f.Type, tags)
			if !payloadOK {
				ok = false
				continue
			}
			cases = append(cases, model.Case{Name: name, Payload: payload})
		}
	}
	if len(cases) == 0 && ok {
		x.fail(td, "", nil, "enum has no cases", "")
		ok = false
	}
	return cases, ok
}

func (x *extractor) payload(td *typeDecl, caseName string, expr ast.Expr, tags fieldTags) (model.Payload, bool) {
	st, isStruct := expr.(*ast.StructType)
	if !isStruct {
		shape, ok := x.fieldShape(td, caseName, expr, tags)
		if !ok {
			return nil, false
		}
		return model.TuplePayload{Elems: []model.Shape{shape}}, true
	}

	if len(st.Fields.List) == 0 {
		return model.NoPayload{}, true
	}

	if !tags.Tuple {
		fields, ok := x.fields(td, st.Fields, caseName+".")
		if !ok {
			return nil, false
		}
		return model.RecordPayload{Fields: fields}, true
	}

	ok := true
	index := 0
	var elems []model.Shape
	for _, f := range st.Fields.List {
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for j := 0; j < n; j++ {
			s, elemOK := x.shape(td, caseName+"."+strconv.Itoa(index), td.scope, f.Type, nil)
			index++
			if !elemOK {
				ok = false
				continue
			}
			elems = append(elems, s)
		}
	}
	if !ok {
		return nil, false
	}
	return model.TuplePayload{Elems: elems}, true
}

// constCases builds unit cases from the typed constants of an integer enum.
func (x *extractor) constCases(td *typeDecl) ([]model.Case, bool) {
	name := td.spec.Name.Name
	underlying, isIdent := td.spec.Type.(*ast.Ident)
	if !isIdent || !isInteger(underlying.Name) {
		x.fail(td, "", td.spec.Type, "//zorsh:enum requires a struct or a named integer type", "")
		return nil, false
	}

	consts := x.enumConsts[name]
	if len(consts) == 0 {
		x.fail(td, "", nil, "enum has no constants",
			"declare the cases as typed constants: const ( "+name+"A "+name+" = iota; "+name+"B )")
		return nil, false
	}

	var cases []model.Case
	for i, c := range consts {
		if c.name == "_" || !c.ok || c.value != int64(i) {
			x.failAt(td, c.name, c.pos, "enum constants must be sequential from 0",
				"use iota and do not skip values")
			return nil, false
		}
		caseName := strings.TrimPrefix(c.name, name)
		if caseName == "" {
			caseName = c.name
		}
		cases = append(cases, model.Case{Name: caseName, Payload: model.NoPayload{}})
	}
	return cases, true
}

func isInteger(name string) bool {
	switch name {
	case "uint8", "byte", "uint16", "uint32", "uint64", "uint",
		"int8", "int16", "int32", "int64", "int":
		return true
	}
	return false
}

func (x *extractor) fail(td *typeDecl, member string, node ast.Node, reason, hint string) {
	e := &Error{
		Module: x.src.Module,
		Type:   td.spec.Name.Name,
		Member: member,
		Reason: reason,
	}
	pos := td.spec.Pos()
	if node != nil {
		if expr, ok := node.(ast.Expr); ok {
			e.Expr = types.ExprString(expr)
		}
		pos = node.Pos()
	}
	if x.src.Fset != nil {
		e.Pos = x.src.Fset.Position(pos)
	}
	x.record(e, hint)
}

func (x *extractor) failAt(td *typeDecl, member string, pos token.Pos, reason, hint string) {
	e := &Error{Module: x.src.Module, Type: td.spec.Name.Name, Member: member, Reason: reason}
	if x.src.Fset != nil {
		e.Pos = x.src.Fset.Position(pos)
	}
	x.record(e, hint)
}

func (x *extractor) record(e *Error, hint string) {
	var err error = e
	if hint != "" {
		err = errors.WithHint(e, hint)
	}
	x.errs = errors.Append(x.errs, err)
}
