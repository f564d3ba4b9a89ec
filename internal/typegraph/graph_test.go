package typegraph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"
)

func TestScalarIDs(t *testing.T) {
	g := New()
	require.Equal(t, numScalars, g.Len())
	for k := KindDouble; k <= KindBytes; k++ {
		typ := g.Resolve(k.ScalarID())
		require.NotNil(t, typ)
		assert.Equal(t, TypeScalar, typ.Kind)
		assert.Equal(t, k, typ.Scalar)
		assert.Equal(t, k.String(), typ.Name)
	}
}

func TestRegisterIsStableAndDense(t *testing.T) {
	g := New()
	foo := g.Register(TypeMessage, "pkg.Foo")
	bar := g.Register(TypeEnum, "pkg.Bar")

	assert.Equal(t, TypeID(numScalars), foo)
	assert.Equal(t, foo+1, bar)
	assert.Equal(t, "pkg.Foo", g.Message(foo).Name)
	assert.Nil(t, g.Enum(foo))
	assert.Equal(t, "pkg.Bar", g.Enum(bar).Name)
	assert.Nil(t, g.Resolve(TypeID(1000)))
}

func TestDeriveCopiesOnWrite(t *testing.T) {
	base := New()
	target := base.Register(TypeMessage, "pkg.Target")
	base.MutableMessage(target).ExtensionRanges = []ExtensionRange{{Range: Range{Start: 100, End: 200}}}
	base.Shrink()

	child := base.Derive()
	idx := child.AddExtension(&Extension{Field: Field{Number: 150, Name: "ext"}, Extendee: target})

	assert.Equal(t, 0, idx)
	assert.Empty(t, base.Message(target).Extensions, "base must not see the child's registration")
	assert.Equal(t, []int{0}, child.Message(target).Extensions)
	assert.NotSame(t, base.Message(target), child.Message(target))
	assert.Equal(t, base.Message(target).ExtensionRanges, child.Message(target).ExtensionRanges)

	ext := child.ExtensionByNumber(target, 150)
	require.NotNil(t, ext)
	assert.Equal(t, "ext", ext.Name)
	assert.Nil(t, base.ExtensionByNumber(target, 150))
	assert.Len(t, child.ExtensionsOf(target), 1)
}

func TestMessageFinalizeOrdersByNumber(t *testing.T) {
	g := New()
	id := g.Register(TypeMessage, "pkg.M")
	m := g.MutableMessage(id)
	m.AddField(&Field{Number: 3, Name: "c", JSONName: "c", Oneof: -1})
	m.AddField(&Field{Number: 1, Name: "foo_bar", JSONName: "fooBar", Oneof: -1})
	m.AddField(&Field{Number: 2, Name: "b", JSONName: "b", Oneof: -1})
	m.Finalize()

	numbers := []int32{}
	for _, f := range m.Fields {
		numbers = append(numbers, f.Number)
		assert.Equal(t, id, f.Parent)
	}
	assert.Equal(t, []int32{1, 2, 3}, numbers)
	assert.Equal(t, "foo_bar", m.FieldByNumber(1).Name)
	assert.Equal(t, int32(2), m.FieldByName("b").Number)
	assert.Equal(t, int32(1), m.FieldByJSONName("fooBar").Number)
	assert.Equal(t, int32(1), m.FieldByCamelName("FooBar").Number)
	assert.Nil(t, m.FieldByNumber(9))
}

func TestEnumLookups(t *testing.T) {
	e := &Enum{Name: "pkg.E", Values: []*EnumValue{
		{Name: "ZERO", Number: 0},
		{Name: "ZERO2", Number: 0},
		{Name: "ONE", Number: 1},
	}}
	e.Finalize()

	assert.Equal(t, "ZERO", e.Default().Name)
	assert.Equal(t, "ZERO", e.ValueByNumber(0).Name)
	assert.Equal(t, int32(1), e.ValueByName("ONE").Number)
	assert.Equal(t, []string{"ZERO", "ZERO2", "ONE"}, e.ValueNames())
	assert.Nil(t, (&Enum{}).Default())
}

func TestNameDerivations(t *testing.T) {
	assert.Equal(t, "fooBar", JSONName("foo_bar"))
	assert.Equal(t, "fooBar1", JSONName("foo_bar_1"))
	assert.Equal(t, "FooBar", JSONName("_foo_bar"))
	assert.Equal(t, "FooBar", TitleCase("foo_bar"))
	assert.Equal(t, "Baz", TitleCase("baz"))
	assert.Equal(t, "foobar", CamelKey("Foo_Bar"))
}

func TestKindConversions(t *testing.T) {
	for k := KindDouble; k <= KindGroup; k++ {
		back, ok := KindFromProto(k.ToProto())
		require.True(t, ok)
		assert.Equal(t, k, back)
	}
	_, ok := KindFromProto(descriptorpb.FieldDescriptorProto_Type(99))
	assert.False(t, ok)

	assert.True(t, KindEnum.IsPackable())
	assert.False(t, KindString.IsPackable())
	assert.True(t, KindGroup.IsMessage())
	assert.Equal(t, Repeated, CardinalityFromProto(descriptorpb.FieldDescriptorProto_LABEL_REPEATED))
	assert.Equal(t, Optional, CardinalityFromProto(0))

	s, ok := ParseSyntax("")
	assert.True(t, ok)
	assert.Equal(t, Proto2, s)
	_, ok = ParseSyntax("proto4")
	assert.False(t, ok)
}

func TestValues(t *testing.T) {
	assert.Equal(t, int32(-5), IntValue(KindInt32, -5).Interface())
	assert.Equal(t, uint64(math.MaxUint64), UintValue(KindUint64, math.MaxUint64).AsUint())
	assert.Equal(t, "inf", FloatValue(KindDouble, math.Inf(1)).String())
	assert.True(t, FloatValue(KindDouble, math.NaN()).Equal(FloatValue(KindDouble, math.NaN())))
	assert.Equal(t, int32(-1), EnumNumber(-1).AsEnum())
	assert.False(t, IntValue(KindInt32, 1).Equal(IntValue(KindInt64, 1)))
	assert.Equal(t, `"a\nb"`, BytesValue([]byte("a\nb")).String())
	assert.Equal(t, float32(0.1), FloatValue(KindFloat, 0.1).Interface())
}

func TestMessageValueSetKeepsOrder(t *testing.T) {
	m := NewMessageValue(0, "google.protobuf.FieldOptions")
	m.Set(&FieldValue{Number: 3, Name: "deprecated", Kind: KindBool, Value: BoolValue(true)})
	m.Set(&FieldValue{Number: 2, Name: "packed", Kind: KindBool, Value: BoolValue(false)})
	m.Set(&FieldValue{Number: 50000, Name: "pkg.ext", Extension: true, Kind: KindInt32, Value: IntValue(KindInt32, 1)})

	require.Equal(t, 3, m.Len())
	assert.Equal(t, int32(2), m.Fields[0].Number)
	assert.Equal(t, "(pkg.ext)", m.Fields[2].DisplayName())

	deprecated, ok := m.Bool(3)
	assert.True(t, ok)
	assert.True(t, deprecated)

	clone := m.Clone()
	clone.Set(&FieldValue{Number: 3, Name: "deprecated", Kind: KindBool, Value: BoolValue(false)})
	deprecated, _ = m.Bool(3)
	assert.True(t, deprecated, "clone must not alias the original")

	m.Clear(2)
	assert.Nil(t, m.Get(2))
	assert.NotNil(t, m.GetByName("pkg.ext"))
}
