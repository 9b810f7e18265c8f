package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/typegen/model"
)

func ref(module, name string) model.Reference {
	return model.Reference{Name: name, Module: module}
}

func record(module, name string, fields ...model.Field) *model.Record {
	return &model.Record{Name: name, Module: module, Fields: fields}
}

func field(name string, shape model.Shape) model.Field {
	return model.Field{Name: name, GoName: name, Shape: shape}
}

func registry(t *testing.T, decls ...model.DeclaredType) *model.Registry {
	t.Helper()
	reg := model.NewRegistry()
	for _, d := range decls {
		require.NoError(t, reg.Add(d))
	}
	return reg
}

func TestResolveDirectCycle(t *testing.T) {
	reg := registry(t,
		record("m", "A", field("b", ref("m", "B"))),
		record("m", "B", field("a", ref("m", "A"))),
	)

	for _, policy := range []CyclePolicy{CyclesReject, CyclesAllowIndirect} {
		t.Run(string(policy), func(t *testing.T) {
			_, err := Resolve(reg, Options{Cycles: policy})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrDependencyCycle))

			var cycle *CycleError
			require.True(t, errors.As(err, &cycle))
			assert.Equal(t, []string{"m.A", "m.B"}, cycle.Members)
			assert.True(t, cycle.Direct)
			assert.Equal(t, "direct containment cycle: m.A -> m.B -> m.A", cycle.Error())
		})
	}
}

func TestResolveFixedArrayIsDirect(t *testing.T) {
	reg := registry(t,
		record("m", "A", field("bs", model.FixedArray{Elem: ref("m", "B"), Len: 2})),
		record("m", "B", field("a", ref("m", "A"))),
	)
	_, err := Resolve(reg, Options{Cycles: CyclesAllowIndirect})
	require.Error(t, err)

	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.True(t, cycle.Direct)
}

func TestResolveIndirectCycle(t *testing.T) {
	reg := registry(t,
		record("m", "A", field("bs", model.List{Elem: ref("m", "B")})),
		record("m", "B", field("parent", model.Optional{Inner: ref("m", "A")})),
	)

	_, err := Resolve(reg, Options{})
	require.Error(t, err, "reject is the default policy")
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.False(t, cycle.Direct)
	assert.Contains(t, errors.FlattenHints(err), "allow-indirect")

	plan, err := Resolve(reg, Options{Cycles: CyclesAllowIndirect})
	require.NoError(t, err)
	mp, ok := plan.Module("m")
	require.True(t, ok)
	assert.Equal(t, []string{"m.A", "m.B"}, mp.Order)
	assert.Equal(t, []string{"m.B"}, mp.Deferred)
	assert.True(t, mp.IsDeferred("m.B"))
	assert.False(t, mp.IsDeferred("m.A"))
}

func TestResolveMixedCycleEmitsDirectDependencyFirst(t *testing.T) {
	reg := registry(t,
		record("m", "A", field("b", ref("m", "B"))),
		record("m", "B", field("as", model.List{Elem: ref("m", "A")})),
	)
	plan, err := Resolve(reg, Options{Cycles: CyclesAllowIndirect})
	require.NoError(t, err)
	mp, _ := plan.Module("m")
	assert.Equal(t, []string{"m.B", "m.A"}, mp.Order)
	assert.Equal(t, []string{"m.A"}, mp.Deferred)
}

func TestResolveSelfReference(t *testing.T) {
	reg := registry(t,
		record("m", "Node", field("children", model.List{Elem: ref("m", "Node")})),
	)

	_, err := Resolve(reg, Options{Cycles: CyclesReject})
	require.Error(t, err)

	plan, err := Resolve(reg, Options{Cycles: CyclesAllowIndirect})
	require.NoError(t, err)
	mp, _ := plan.Module("m")
	assert.Equal(t, []string{"m.Node"}, mp.Order)
	assert.Equal(t, []string{"m.Node"}, mp.Deferred)
}

func TestResolveUnresolvedReference(t *testing.T) {
	reg := registry(t,
		record("mod", "A", field("x", ref("mod", "B"))),
	)
	_, err := Resolve(reg, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnresolvedReference))

	var unresolved *UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "mod.A", unresolved.Type)
	assert.Equal(t, "x", unresolved.Field)
	assert.Equal(t, "B", unresolved.Target)
	assert.Empty(t, unresolved.Candidates)
}

func TestResolveUnresolvedReferenceNamesGoField(t *testing.T) {
	reg := registry(t,
		record("mod", "A", model.Field{Name: "owner_ref", GoName: "OwnerRef", Shape: ref("mod", "Owner")}),
	)
	_, err := Resolve(reg, Options{})
	require.Error(t, err)

	var unresolved *UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "OwnerRef", unresolved.Field)
	assert.Contains(t, err.Error(), "mod.A.OwnerRef:")
}

func TestResolveUnresolvedReferenceSuggestsCandidates(t *testing.T) {
	reg := registry(t,
		record("app", "Order", field("item", ref("app", "Item")), field("other", ref("app", "Nope"))),
		record("pkg/item", "Item"),
	)
	_, err := Resolve(reg, Options{})
	require.Error(t, err)

	errs := errors.Flatten(err)
	require.Len(t, errs, 2)

	var first *UnresolvedReferenceError
	require.True(t, errors.As(errs[0], &first))
	assert.Equal(t, []string{"pkg/item.Item"}, first.Candidates)
	assert.Contains(t, errors.FlattenHints(errs[0]), "pkg/item.Item")
}

func TestResolveInventoryScenario(t *testing.T) {
	reg := registry(t,
		record("pkg.item", "Item",
			field("id", model.Primitive{Name: model.U32}),
			field("name", model.Text{}),
		),
		record("pkg.inventory", "Inventory",
			field("items", model.List{Elem: ref("pkg.item", "Item")}),
			field("capacity", model.Primitive{Name: model.U32}),
		),
	)

	plan, err := Resolve(reg, Options{})
	require.NoError(t, err)
	require.Len(t, plan.Modules, 2)

	item, ok := plan.Module("pkg.item")
	require.True(t, ok)
	assert.Equal(t, []string{"pkg.item.Item"}, item.Order)
	assert.Empty(t, item.Imports)

	inventory, ok := plan.Module("pkg.inventory")
	require.True(t, ok)
	assert.Equal(t, []string{"pkg.inventory.Inventory"}, inventory.Order)
	assert.Equal(t, []string{"pkg.item.Item"}, inventory.Imports)
	assert.Empty(t, inventory.Deferred)
}

func TestResolveOrderTieBreakIsDeclarationOrder(t *testing.T) {
	reg := registry(t,
		record("m", "Zeta", field("a", ref("m", "Alpha"))),
		record("m", "Mid"),
		record("m", "Alpha"),
		record("m", "Beta", field("z", ref("m", "Zeta")), field("m", model.Map{Key: model.Text{}, Value: ref("m", "Mid")})),
	)

	plan, err := Resolve(reg, Options{})
	require.NoError(t, err)
	mp, _ := plan.Module("m")
	assert.Equal(t, []string{"m.Mid", "m.Alpha", "m.Zeta", "m.Beta"}, mp.Order)
	assertTopological(t, reg, mp)
}

func TestResolveTopologicalValidity(t *testing.T) {
	// A chain declared backwards plus a diamond
	reg := registry(t,
		record("m", "E", field("d", ref("m", "D")), field("c", ref("m", "C"))),
		record("m", "D", field("b", ref("m", "B"))),
		record("m", "C", field("b", model.Optional{Inner: ref("m", "B")})),
		record("m", "B", field("a", model.List{Elem: ref("m", "A")})),
		record("m", "A", field("x", model.Primitive{Name: model.U8})),
		record("other", "X", field("e", ref("m", "E"))),
	)

	plan, err := Resolve(reg, Options{})
	require.NoError(t, err)
	for _, mp := range plan.Modules {
		assertTopological(t, reg, mp)
	}
	mp, _ := plan.Module("m")
	assert.Equal(t, []string{"m.A", "m.B", "m.D", "m.C", "m.E"}, mp.Order)
}

func assertTopological(t *testing.T, reg *model.Registry, mp *ModulePlan) {
	t.Helper()
	position := map[string]int{}
	for i, fqn := range mp.Order {
		position[fqn] = i
	}
	for _, fqn := range mp.Order {
		d, ok := reg.Lookup(fqn)
		require.True(t, ok)
		for _, m := range model.Members(d) {
			model.Walk(m.Shape, func(r model.Reference, _ bool) {
				if r.Module != mp.Module || r.FQN() == fqn {
					return
				}
				assert.Less(t, position[r.FQN()], position[fqn], "%s must come before %s", r.FQN(), fqn)
			})
		}
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	build := func() *model.Registry {
		return registry(t,
			record("b", "Y", field("x", ref("a", "X"))),
			record("a", "X", field("v", model.Primitive{Name: model.U64})),
			record("a", "W", field("x", ref("a", "X")), field("y", ref("b", "Y"))),
			record("c", "Z", field("w", ref("a", "W")), field("y", ref("b", "Y"))),
		)
	}
	first, err := Resolve(build(), Options{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Resolve(build(), Options{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	c, _ := first.Module("c")
	assert.Equal(t, []string{"a.W", "b.Y"}, c.Imports)
}

func mutuallyImportingModules(t *testing.T) *model.Registry {
	return registry(t,
		record("m1", "A", field("b", ref("m2", "B"))),
		record("m1", "D"),
		record("m2", "B"),
		record("m2", "C", field("d", ref("m1", "D"))),
		record("m3", "E", field("d", ref("m1", "D"))),
	)
}

func TestResolveMutuallyImportingModulesUnderReject(t *testing.T) {
	plan, err := Resolve(mutuallyImportingModules(t), Options{})
	require.NoError(t, err, "module import cycles are not type cycles")

	for _, mp := range plan.Modules {
		assert.Empty(t, mp.Deferred, mp.Module)
	}
	m1, _ := plan.Module("m1")
	assert.Equal(t, []string{"m2.B"}, m1.Imports)
}

func TestResolveMutuallyImportingModulesAreDeferred(t *testing.T) {
	plan, err := Resolve(mutuallyImportingModules(t), Options{Cycles: CyclesAllowIndirect})
	require.NoError(t, err)

	m1, _ := plan.Module("m1")
	assert.Equal(t, []string{"m2.B"}, m1.Imports)
	assert.Equal(t, []string{"m2.B"}, m1.Deferred)

	m2, _ := plan.Module("m2")
	assert.Equal(t, []string{"m1.D"}, m2.Deferred)

	m3, _ := plan.Module("m3")
	assert.Empty(t, m3.Deferred)
}

func TestResolveVariantPayloadEdges(t *testing.T) {
	reg := registry(t,
		&model.Variant{Name: "Event", Module: "m", Cases: []model.Case{
			{Name: "Created", Payload: model.RecordPayload{Fields: []model.Field{field("item", ref("m", "Item"))}}},
			{Name: "Deleted", Payload: model.TuplePayload{Elems: []model.Shape{ref("m", "Missing")}}},
		}},
		record("m", "Item"),
	)
	_, err := Resolve(reg, Options{})
	require.Error(t, err)
	var unresolved *UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "Deleted", unresolved.Field)
	assert.Equal(t, "Missing", unresolved.Target)
}

func TestParseCyclePolicy(t *testing.T) {
	p, err := ParseCyclePolicy("")
	require.NoError(t, err)
	assert.Equal(t, CyclesReject, p)

	p, err = ParseCyclePolicy("allow-indirect")
	require.NoError(t, err)
	assert.Equal(t, CyclesAllowIndirect, p)

	_, err = ParseCyclePolicy("ignore")
	assert.Error(t, err)
}
