package emit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/typegen/layout"
	"github.com/teranos/zorsh-gen/typegen/model"
	"github.com/teranos/zorsh-gen/typegen/resolve"
)

func plan(t *testing.T, reg *model.Registry, policy resolve.CyclePolicy) *resolve.Plan {
	t.Helper()
	p, err := resolve.Resolve(reg, resolve.Options{Cycles: policy})
	require.NoError(t, err)
	return p
}

func emitModule(t *testing.T, reg *model.Registry, module string, opts Options) string {
	t.Helper()
	p := plan(t, reg, resolve.CyclesAllowIndirect)
	mp, ok := p.Module(module)
	require.True(t, ok)
	text, err := Module(reg, mp, opts)
	require.NoError(t, err)
	return text
}

func TestInventoryScenario(t *testing.T) {
	reg := model.NewRegistry()
	require.NoError(t, reg.Add(&model.Record{Name: "Item", Module: "pkg.item", Fields: []model.Field{
		{Name: "id", Shape: model.Primitive{Name: model.U32}},
		{Name: "name", Shape: model.Text{}},
	}}))
	require.NoError(t, reg.Add(&model.Record{Name: "Inventory", Module: "pkg.inventory", Fields: []model.Field{
		{Name: "items", Shape: model.List{Elem: model.Reference{Name: "Item", Module: "pkg.item"}}},
		{Name: "capacity", Shape: model.Primitive{Name: model.U32}},
	}}))

	want := `// Code generated by zorsh-gen from Go source. DO NOT EDIT.
// Source module: pkg.inventory

import { b } from '@zorsh/zorsh';
import { ItemSchema } from './item';

export const InventorySchema = b.struct({
    items: b.vec(ItemSchema),
    capacity: b.u32()
});

export type Inventory = b.infer<typeof InventorySchema>;
`
	assert.Equal(t, want, emitModule(t, reg, "pkg.inventory", DefaultOptions()))

	item := emitModule(t, reg, "pkg.item", DefaultOptions())
	assert.NotContains(t, item, "import {  }")
	assert.Equal(t, 1, strings.Count(item, "import "))
	assert.Contains(t, item, "export const ItemSchema = b.struct({\n    id: b.u32(),\n    name: b.string()\n});")
}

func TestStatusEnumCasesInDeclarationOrder(t *testing.T) {
	reg := model.NewRegistry()
	require.NoError(t, reg.Add(&model.Variant{Name: "Status", Module: "m", Doc: "Status of a peer.", Cases: []model.Case{
		{Name: "Online", Payload: model.NoPayload{}},
		{Name: "Offline", Payload: model.RecordPayload{Fields: []model.Field{{Name: "last_seen", Shape: model.Primitive{Name: model.U64}}}}},
		{Name: "Away", Payload: model.TuplePayload{Elems: []model.Shape{model.Text{}}}},
	}}))

	text := emitModule(t, reg, "m", DefaultOptions())
	assert.Contains(t, text, `/**
 * Status of a peer.
 */
export const StatusSchema = b.enum({
    Online: b.unit(),
    Offline: b.struct({
        last_seen: b.u64()
    }),
    Away: b.string()
});

export type Status = b.infer<typeof StatusSchema>;
`)
}

func TestMultiElementTuple(t *testing.T) {
	e, err := payloadExpr(model.TuplePayload{Elems: []model.Shape{model.Text{}, model.Primitive{Name: model.I8}}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "b.tuple(b.string(), b.i8())", Render(e, 0))
}

// shapeFromExpr inverts ShapeExpr so rendering can be checked structurally.
func shapeFromExpr(t *testing.T, e Expr, refs map[string]model.Reference) model.Shape {
	t.Helper()
	switch n := e.(type) {
	case Ident:
		r, ok := refs[n.Name]
		require.True(t, ok, "unknown identifier %s", n.Name)
		return r
	case Call:
		switch n.Callee {
		case "b.string":
			return model.Text{}
		case "b.vec":
			return model.List{Elem: shapeFromExpr(t, n.Args[0], refs)}
		case "b.array":
			return model.FixedArray{Elem: shapeFromExpr(t, n.Args[0], refs), Len: n.Args[1].(Int).Value}
		case "b.hashMap":
			return model.Map{Key: shapeFromExpr(t, n.Args[0], refs), Value: shapeFromExpr(t, n.Args[1], refs)}
		case "b.option":
			return model.Optional{Inner: shapeFromExpr(t, n.Args[0], refs)}
		}
		p, ok := model.ParsePrimitive(strings.TrimPrefix(n.Callee, "b."))
		require.True(t, ok, "unknown call %s", n.Callee)
		require.Empty(t, n.Args)
		return model.Primitive{Name: p}
	}
	t.Fatalf("unexpected expression %#v", e)
	return nil
}

func TestShapeRoundTrip(t *testing.T) {
	item := model.Reference{Name: "Item", Module: "pkg/item"}
	refs := map[string]model.Reference{"ItemSchema": item}
	render := func(r model.Reference) (Expr, error) { return Ident{Name: r.Name + SchemaSuffix}, nil }

	var shapes []model.Shape
	for _, p := range model.PrimitiveNames {
		shapes = append(shapes, model.Primitive{Name: p})
	}
	shapes = append(shapes,
		model.Text{},
		item,
		model.List{Elem: model.Primitive{Name: model.U8}},
		model.FixedArray{Elem: model.Text{}, Len: 0},
		model.FixedArray{Elem: item, Len: 32},
		model.Map{Key: model.Text{}, Value: model.List{Elem: item}},
		model.Optional{Inner: model.Map{Key: model.Primitive{Name: model.U64}, Value: model.Optional{Inner: model.Text{}}}},
		model.List{Elem: model.List{Elem: model.FixedArray{Elem: model.Primitive{Name: model.F64}, Len: 3}}},
	)

	for _, s := range shapes {
		t.Run(s.String(), func(t *testing.T) {
			e, err := ShapeExpr(s, render)
			require.NoError(t, err)
			assert.True(t, model.Equal(s, shapeFromExpr(t, e, refs)), "rendered %s", Render(e, 0))
		})
	}
}

func TestRenderShapes(t *testing.T) {
	render := func(r model.Reference) (Expr, error) { return Ident{Name: r.Name + SchemaSuffix}, nil }
	tests := []struct {
		shape model.Shape
		want  string
	}{
		{model.Primitive{Name: model.U128}, "b.u128()"},
		{model.Primitive{Name: model.Bool}, "b.bool()"},
		{model.Text{}, "b.string()"},
		{model.List{Elem: model.Text{}}, "b.vec(b.string())"},
		{model.FixedArray{Elem: model.Primitive{Name: model.U8}, Len: 32}, "b.array(b.u8(), 32)"},
		{model.Map{Key: model.Text{}, Value: model.Primitive{Name: model.I64}}, "b.hashMap(b.string(), b.i64())"},
		{model.Optional{Inner: model.Reference{Name: "Item", Module: "m"}}, "b.option(ItemSchema)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			e, err := ShapeExpr(tt.shape, render)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Render(e, 0))
		})
	}
}

func TestFieldOrderPreserved(t *testing.T) {
	for n := 0; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d fields", n), func(t *testing.T) {
			rec := &model.Record{Name: "R", Module: "m"}
			// Reverse alphabetical so any sorting would show
			for i := n; i > 0; i-- {
				rec.Fields = append(rec.Fields, model.Field{Name: fmt.Sprintf("f%c", 'a'+i), Shape: model.Primitive{Name: model.U8}})
			}
			e, err := DeclExpr(rec, nil)
			require.NoError(t, err)

			obj := e.(Call).Args[0].(Object)
			require.Len(t, obj.Entries, n)
			for i, entry := range obj.Entries {
				assert.Equal(t, rec.Fields[i].Name, entry.Key)
			}

			text := Render(e, 0)
			last := -1
			for _, f := range rec.Fields {
				idx := strings.Index(text, f.Name+":")
				require.GreaterOrEqual(t, idx, 0)
				assert.Greater(t, idx, last)
				last = idx
			}
			if n == 0 {
				assert.Equal(t, "b.struct({})", text)
			}
		})
	}
}

func TestDeferredReferencesRenderLazily(t *testing.T) {
	reg := model.NewRegistry()
	require.NoError(t, reg.Add(&model.Record{Name: "Node", Module: "tree", Fields: []model.Field{
		{Name: "value", Shape: model.Primitive{Name: model.I32}},
		{Name: "children", Shape: model.List{Elem: model.Reference{Name: "Node", Module: "tree"}}},
	}}))

	text := emitModule(t, reg, "tree", DefaultOptions())
	assert.Contains(t, text, "children: b.vec(b.lazy(() => NodeSchema))")
}

func TestImportsGroupedSortedAndAliased(t *testing.T) {
	reg := model.NewRegistry()
	for _, d := range []model.DeclaredType{
		&model.Record{Name: "Zed", Module: "lib/b"},
		&model.Record{Name: "Alpha", Module: "lib/b"},
		&model.Record{Name: "Item", Module: "lib/a"},
		&model.Record{Name: "Item", Module: "app"},
		&model.Record{Name: "Order", Module: "app", Fields: []model.Field{
			{Name: "local", Shape: model.Reference{Name: "Item", Module: "app"}},
			{Name: "foreign", Shape: model.Reference{Name: "Item", Module: "lib/a"}},
			{Name: "z", Shape: model.Reference{Name: "Zed", Module: "lib/b"}},
			{Name: "a", Shape: model.Reference{Name: "Alpha", Module: "lib/b"}},
		}},
	} {
		require.NoError(t, reg.Add(d))
	}

	text := emitModule(t, reg, "app", DefaultOptions())
	assert.Contains(t, text, "import { b } from '@zorsh/zorsh';\n"+
		"import { ItemSchema as lib_a_ItemSchema } from './lib/a';\n"+
		"import { AlphaSchema, ZedSchema } from './lib/b';\n")
	assert.Contains(t, text, "local: ItemSchema,\n    foreign: lib_a_ItemSchema,")

	flat := emitModule(t, reg, "app", Options{ImportSource: "zorsh", Layout: layout.Layout{Structure: layout.Flat}})
	assert.Contains(t, flat, "import { b } from 'zorsh';\n")
	assert.Contains(t, flat, "from './lib_b';")
}

func TestEmissionErrorOnInvariantViolation(t *testing.T) {
	reg := model.NewRegistry()
	mp := &resolve.ModulePlan{Module: "m", Order: []string{"m.Ghost"}}
	_, err := Module(reg, mp, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmission))

	require.NoError(t, reg.Add(&model.Record{Name: "A", Module: "m", Fields: []model.Field{
		{Name: "b", Shape: model.Reference{Name: "B", Module: "m"}},
	}}))
	_, err = Module(reg, &resolve.ModulePlan{Module: "m", Order: []string{"m.A"}}, DefaultOptions())
	require.Error(t, err)
	var emitErr *Error
	require.True(t, errors.As(err, &emitErr))
	assert.Equal(t, "m.A", emitErr.Type)
	assert.Contains(t, emitErr.Reason, "m.B")
}

func TestJSDoc(t *testing.T) {
	assert.Equal(t, "", jsDoc(""))
	assert.Equal(t, "/**\n * First.\n *\n * Second *\\/\n */\n", jsDoc("First.\n\nSecond */"))
}

func TestObjectKeysQuotedWhenNeeded(t *testing.T) {
	obj := Object{Entries: []Entry{
		{Key: "plain_name", Value: Call{Callee: "b.u8"}},
		{Key: "with-dash", Value: Call{Callee: "b.u8"}},
		{Key: "9lives", Value: Call{Callee: "b.u8"}},
	}}
	assert.Equal(t, "{\n    plain_name: b.u8(),\n    \"with-dash\": b.u8(),\n    \"9lives\": b.u8()\n}", Render(obj, 0))
}

func TestDeterministicOutput(t *testing.T) {
	build := func() *model.Registry {
		reg := model.NewRegistry()
		for _, m := range []string{"c", "a", "b"} {
			require.NoError(t, reg.Add(&model.Record{Name: "T", Module: m, Fields: []model.Field{
				{Name: "x", Shape: model.Map{Key: model.Text{}, Value: model.Primitive{Name: model.U8}}},
			}}))
		}
		require.NoError(t, reg.Add(&model.Record{Name: "Root", Module: "root", Fields: []model.Field{
			{Name: "c", Shape: model.Reference{Name: "T", Module: "c"}},
			{Name: "a", Shape: model.Reference{Name: "T", Module: "a"}},
			{Name: "b", Shape: model.Reference{Name: "T", Module: "b"}},
		}}))
		return reg
	}
	first := emitModule(t, build(), "root", DefaultOptions())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, emitModule(t, build(), "root", DefaultOptions()))
	}
	assert.Contains(t, first, "import { TSchema } from './a';\n"+
		"import { TSchema as b_TSchema } from './b';\n"+
		"import { TSchema as c_TSchema } from './c';\n")
}
