package builder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/typegraph"
	"github.com/conduit-lang/protopool/internal/wkt"
)

func parseFiles(t *testing.T, texts ...string) []*descriptorpb.FileDescriptorProto {
	t.Helper()
	files := make([]*descriptorpb.FileDescriptorProto, 0, len(texts))
	for _, text := range texts {
		fd := &descriptorpb.FileDescriptorProto{}
		require.NoError(t, prototext.Unmarshal([]byte(text), fd))
		files = append(files, fd)
	}
	return files
}

func mustBuild(t *testing.T, base *Result, texts ...string) *Result {
	t.Helper()
	res, err := Build(base, parseFiles(t, texts...), nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func buildErrors(t *testing.T, base *Result, texts ...string) diag.List {
	t.Helper()
	res, err := Build(base, parseFiles(t, texts...), nil)
	require.Error(t, err)
	assert.Nil(t, res)
	list, ok := diag.AsList(err)
	require.True(t, ok)
	return list
}

func lookupMessage(t *testing.T, res *Result, name string) *typegraph.Message {
	t.Helper()
	sym, ok := res.Table.Lookup(name)
	require.True(t, ok, "symbol %s", name)
	msg := res.Graph.Message(sym.Type)
	require.NotNil(t, msg, "message %s", name)
	return msg
}

func lookupEnum(t *testing.T, res *Result, name string) *typegraph.Enum {
	t.Helper()
	sym, ok := res.Table.Lookup(name)
	require.True(t, ok, "symbol %s", name)
	e := res.Graph.Enum(sym.Type)
	require.NotNil(t, e, "enum %s", name)
	return e
}

func descriptorBase(t *testing.T) *Result {
	t.Helper()
	res, err := Build(nil, []*descriptorpb.FileDescriptorProto{wkt.Descriptor()}, nil)
	require.NoError(t, err)
	return res
}

const simpleFile = `
name: "foo/bar.proto"
package: "foo.bar"
syntax: "proto3"
message_type {
  name: "FooBar"
  field { name: "id" number: 1 label: LABEL_OPTIONAL type: TYPE_INT64 }
  field { name: "kind" number: 2 label: LABEL_OPTIONAL type: TYPE_ENUM type_name: ".foo.bar.Kind" }
  field { name: "child" number: 3 label: LABEL_OPTIONAL type_name: "Child" }
  field { name: "tags" number: 4 label: LABEL_REPEATED type: TYPE_INT32 }
  field { name: "names" number: 5 label: LABEL_REPEATED type: TYPE_STRING }
  nested_type {
    name: "Child"
    field { name: "parent" number: 1 label: LABEL_OPTIONAL type: TYPE_MESSAGE type_name: "FooBar" }
  }
}
enum_type {
  name: "Kind"
  value { name: "KIND_UNSPECIFIED" number: 0 }
  value { name: "KIND_A" number: 1 }
}
service {
  name: "FooService"
  method { name: "Get" input_type: ".foo.bar.FooBar" output_type: "FooBar" server_streaming: true }
}
`

func TestBuildResolvesTypes(t *testing.T) {
	res := mustBuild(t, nil, simpleFile)

	msg := lookupMessage(t, res, "foo.bar.FooBar")
	assert.Equal(t, "foo/bar.proto", msg.File)
	assert.Equal(t, typegraph.Proto3, msg.Syntax)
	require.Len(t, msg.Fields, 5)

	kind := msg.FieldByName("kind")
	require.NotNil(t, kind)
	assert.Equal(t, typegraph.KindEnum, kind.Kind)
	assert.Equal(t, lookupEnum(t, res, "foo.bar.Kind").ID, kind.Type)

	child := msg.FieldByName("child")
	require.NotNil(t, child)
	assert.Equal(t, typegraph.KindMessage, child.Kind, "kind is inferred from the resolved symbol")
	childMsg := lookupMessage(t, res, "foo.bar.FooBar.Child")
	assert.Equal(t, childMsg.ID, child.Type)
	assert.True(t, childMsg.HasParent)
	assert.Equal(t, msg.ID, childMsg.Parent)
	assert.Equal(t, msg.ID, childMsg.FieldByName("parent").Type)

	assert.True(t, msg.FieldByName("tags").IsPacked)
	assert.False(t, msg.FieldByName("names").IsPacked)
	assert.False(t, msg.FieldByName("id").SupportsPresence)
	assert.True(t, child.SupportsPresence)

	svcFile := res.File("foo/bar.proto")
	require.NotNil(t, svcFile)
	require.Len(t, svcFile.Services, 1)
	svc := res.Graph.Services()[svcFile.Services[0]]
	assert.Equal(t, "foo.bar.FooService", svc.Name)
	get := svc.MethodByName("Get")
	require.NotNil(t, get)
	assert.Equal(t, msg.ID, get.Input)
	assert.Equal(t, msg.ID, get.Output)
	assert.True(t, get.ServerStreaming)
}

func TestScopedResolution(t *testing.T) {
	t.Run("absolute reference", func(t *testing.T) {
		mustBuild(t, nil, `
name: "a.proto"
package: "foo.bar"
message_type { name: "FooBar" }
message_type {
  name: "User"
  field { name: "f" number: 1 label: LABEL_OPTIONAL type_name: ".foo.bar.FooBar" }
}`)
	})

	t.Run("absolute reference outside the package", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
package: "foo.bar"
message_type { name: "FooBar" }
message_type {
  name: "User"
  field { name: "f" number: 1 label: LABEL_OPTIONAL type_name: ".FooBar" }
}`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindTypeNameNotFound, list[0].Kind)
		assert.Equal(t, ".FooBar", list[0].Name)
	})

	t.Run("inner scope shadows outer", func(t *testing.T) {
		res := mustBuild(t, nil, `
name: "a.proto"
package: "pkg"
message_type { name: "Item" }
message_type {
  name: "Outer"
  nested_type { name: "Item" }
  field { name: "item" number: 1 label: LABEL_OPTIONAL type_name: "Item" }
}`)
		outer := lookupMessage(t, res, "pkg.Outer")
		inner := lookupMessage(t, res, "pkg.Outer.Item")
		assert.Equal(t, inner.ID, outer.FieldByName("item").Type)
	})

	t.Run("dotted reference through its enclosing message", func(t *testing.T) {
		res := mustBuild(t, nil, `
name: "a.proto"
package: "foo"
message_type { name: "Bar" nested_type { name: "Baz" } }
message_type {
  name: "Qux"
  field { name: "f" number: 1 label: LABEL_OPTIONAL type_name: "Bar.Baz" }
}`)
		qux := lookupMessage(t, res, "foo.Qux")
		baz := lookupMessage(t, res, "foo.Bar.Baz")
		assert.Equal(t, baz.ID, qux.FieldByName("f").Type)
	})

	t.Run("dotted reference with a shadowed first component", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
package: "foo"
message_type { name: "Bar" nested_type { name: "Baz" } }
message_type {
  name: "Qux"
  nested_type { name: "Bar" }
  field { name: "f" number: 1 label: LABEL_OPTIONAL type_name: "Bar.Baz" }
}`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindTypeNameNotFound, list[0].Kind)
		assert.Equal(t, "Bar.Baz", list[0].Name)
	})

	t.Run("wrong kind of symbol", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
package: "pkg"
enum_type { name: "E" value { name: "ZERO" number: 0 } }
message_type {
  name: "M"
  field { name: "f" number: 1 label: LABEL_OPTIONAL type: TYPE_MESSAGE type_name: "E" }
}`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindInvalidTypeReference, list[0].Kind)
	})

	t.Run("symbol of a file that is not imported", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
package: "pkg"
message_type { name: "A" }`, `
name: "b.proto"
package: "pkg"
message_type {
  name: "B"
  field { name: "a" number: 1 label: LABEL_OPTIONAL type_name: "A" }
}`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindTypeNameNotFound, list[0].Kind)
		assert.Contains(t, list[0].Help, "not imported")
	})

	t.Run("public imports re-export", func(t *testing.T) {
		mustBuild(t, nil, `
name: "a.proto"
package: "pkg"
message_type { name: "A" }`, `
name: "b.proto"
dependency: "a.proto"
public_dependency: 0`, `
name: "c.proto"
package: "pkg"
dependency: "b.proto"
message_type {
  name: "C"
  field { name: "a" number: 1 label: LABEL_OPTIONAL type_name: "A" }
}`)
	})
}

func TestFileChecks(t *testing.T) {
	t.Run("missing dependency", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
dependency: "missing.proto"`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindMissingDependency, list[0].Kind)
		assert.Equal(t, "missing.proto", list[0].Name)
	})

	t.Run("import cycle", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
dependency: "b.proto"`, `
name: "b.proto"
dependency: "a.proto"`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindImportCycle, list[0].Kind)
		assert.Contains(t, list[0].Message, "a.proto -> b.proto -> a.proto")
	})

	t.Run("public import index out of range", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
public_dependency: 2`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindInvalidName, list[0].Kind)
	})

	t.Run("identical duplicate is skipped", func(t *testing.T) {
		res := mustBuild(t, nil, `name: "a.proto" message_type { name: "A" }`, `name: "a.proto" message_type { name: "A" }`)
		assert.Len(t, res.Files, 1)
	})

	t.Run("conflicting duplicate", func(t *testing.T) {
		list := buildErrors(t, nil, `name: "a.proto" message_type { name: "A" }`, `name: "a.proto" message_type { name: "B" }`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindDuplicateName, list[0].Kind)
		assert.Equal(t, "a.proto", list[0].Name)
	})

	t.Run("base file repeated in batch", func(t *testing.T) {
		base := mustBuild(t, nil, `name: "a.proto" message_type { name: "A" }`)
		res := mustBuild(t, base, `name: "a.proto" message_type { name: "A" }`, `name: "b.proto" dependency: "a.proto"`)
		assert.Len(t, res.Files, 2)

		list := buildErrors(t, base, `name: "a.proto" message_type { name: "Other" }`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindDuplicateName, list[0].Kind)
		require.NotNil(t, list[0].First)
		assert.True(t, list[0].First.Imported)
	})
}

func TestDuplicateNames(t *testing.T) {
	list := buildErrors(t, nil, `
name: "a.proto"
package: "pkg"
message_type { name: "A" }`, `
name: "b.proto"
package: "pkg"
enum_type { name: "A" value { name: "ZERO" number: 0 } }`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindDuplicateName, list[0].Kind)
	assert.Equal(t, "pkg.A", list[0].Name)
}

func TestReservedOverlap(t *testing.T) {
	list := buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "Foo"
  field { name: "field" number: 2 label: LABEL_OPTIONAL type: TYPE_INT32 }
  reserved_range { start: 2 end: 3 }
}`)
	require.Len(t, list, 1)
	d := list[0]
	assert.Equal(t, diag.KindDuplicateNumber, d.Kind)
	require.NotNil(t, d.FirstItem)
	require.NotNil(t, d.SecondItem)
	assert.Equal(t, "reserved range", d.FirstItem.Kind)
	assert.Equal(t, "field", d.SecondItem.Kind)
	assert.Equal(t, "field", d.SecondItem.Name)
	assert.Equal(t, int64(2), d.Number)
}

func TestExtensionRangeOverlap(t *testing.T) {
	list := buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "Foo"
  reserved_range { start: 5 end: 11 }
  extension_range { start: 10 end: 20 }
}`)
	require.Len(t, list, 1)
	d := list[0]
	assert.Equal(t, diag.KindDuplicateNumber, d.Kind)
	assert.Equal(t, "reserved range", d.FirstItem.Kind)
	assert.Equal(t, "extension range", d.SecondItem.Kind)
	assert.Equal(t, int64(10), d.Number)
}

func TestInvertedRangeInMessageSet(t *testing.T) {
	list := buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "Set"
  options { message_set_wire_format: true }
  extension_range { start: 4 end: -2147483648 }
}`)
	assert.Contains(t, list.Kinds(), diag.KindInvalidRange)
}

func TestFieldNumbers(t *testing.T) {
	tests := []struct {
		name   string
		number int32
	}{
		{"zero", 0},
		{"negative", -1},
		{"implementation reserved", 19000},
		{"too large", 1 << 29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := &descriptorpb.FileDescriptorProto{
				Name: ptr("a.proto"),
				MessageType: []*descriptorpb.DescriptorProto{{
					Name: ptr("M"),
					Field: []*descriptorpb.FieldDescriptorProto{{
						Name:   ptr("f"),
						Number: &tt.number,
						Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						Type:   descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
					}},
				}},
			}
			_, err := Build(nil, []*descriptorpb.FileDescriptorProto{fd}, nil)
			require.Error(t, err)
			list, _ := diag.AsList(err)
			assert.Contains(t, list.Kinds(), diag.KindInvalidFieldNumber)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestAliasEnum(t *testing.T) {
	const withAlias = `
name: "a.proto"
enum_type {
  name: "E"
  value { name: "A" number: 0 }
  value { name: "B" number: 0 }
  options { allow_alias: true }
}`
	res := mustBuild(t, nil, withAlias)
	e := lookupEnum(t, res, "E")
	assert.True(t, e.AllowAlias)
	assert.Equal(t, "A", e.ValueByNumber(0).Name, "the first value declared with a number wins")

	list := buildErrors(t, nil, `
name: "a.proto"
enum_type {
  name: "E"
  value { name: "A" number: 0 }
  value { name: "B" number: 0 }
}`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindDuplicateNumber, list[0].Kind)
	assert.Equal(t, "enum value", list[0].FirstItem.Kind)
	assert.Equal(t, "A", list[0].FirstItem.Name)
	assert.Equal(t, "B", list[0].SecondItem.Name)
}

func TestEnumDefaultSuggestion(t *testing.T) {
	list := buildErrors(t, nil, `
name: "a.proto"
syntax: "proto2"
enum_type {
  name: "Foo"
  value { name: "ZERO" number: 0 }
  value { name: "TWO" number: 2 }
}
message_type {
  name: "M"
  field { name: "f" number: 1 label: LABEL_OPTIONAL type: TYPE_ENUM type_name: "Foo" default_value: "ONE" }
}`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindInvalidEnumValue, list[0].Kind)
	assert.Equal(t, "possible values are 'TWO' and 'ZERO'", list[0].Help)
}

func TestDefaults(t *testing.T) {
	res := mustBuild(t, nil, `
name: "a.proto"
enum_type {
  name: "Foo"
  value { name: "ZERO" number: 0 }
  value { name: "TWO" number: 2 }
}
message_type {
  name: "M"
  field { name: "i" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 default_value: "0x10" }
  field { name: "s" number: 2 label: LABEL_OPTIONAL type: TYPE_STRING default_value: "hello" }
  field { name: "e" number: 3 label: LABEL_OPTIONAL type: TYPE_ENUM type_name: "Foo" default_value: "TWO" }
  field { name: "d" number: 4 label: LABEL_OPTIONAL type: TYPE_DOUBLE default_value: "-inf" }
  field { name: "none" number: 5 label: LABEL_OPTIONAL type: TYPE_BOOL }
}`)
	m := lookupMessage(t, res, "M")

	require.NotNil(t, m.FieldByName("i").Default)
	assert.Equal(t, int64(16), m.FieldByName("i").Default.AsInt())
	assert.Equal(t, "hello", m.FieldByName("s").Default.AsString())
	assert.Equal(t, int32(2), m.FieldByName("e").Default.AsEnum())
	assert.True(t, m.FieldByName("d").Default.AsFloat() < 0)
	assert.Nil(t, m.FieldByName("none").Default)
}

func TestInvalidDefaults(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		expected diag.Kind
	}{
		{
			name: "message field",
			file: `name: "a.proto"
message_type { name: "N" }
message_type { name: "M" field { name: "f" number: 1 label: LABEL_OPTIONAL type_name: "N" default_value: "x" } }`,
			expected: diag.KindInvalidDefault,
		},
		{
			name: "repeated field",
			file: `name: "a.proto"
message_type { name: "M" field { name: "f" number: 1 label: LABEL_REPEATED type: TYPE_INT32 default_value: "1" } }`,
			expected: diag.KindInvalidDefault,
		},
		{
			name: "proto3",
			file: `name: "a.proto" syntax: "proto3"
message_type { name: "M" field { name: "f" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 default_value: "1" } }`,
			expected: diag.KindInvalidDefault,
		},
		{
			name: "wrong literal",
			file: `name: "a.proto"
message_type { name: "M" field { name: "f" number: 1 label: LABEL_OPTIONAL type: TYPE_BOOL default_value: "yes" } }`,
			expected: diag.KindValueInvalidType,
		},
		{
			name: "out of range",
			file: `name: "a.proto"
message_type { name: "M" field { name: "f" number: 1 label: LABEL_OPTIONAL type: TYPE_UINT32 default_value: "-1" } }`,
			expected: diag.KindValueInvalidType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := buildErrors(t, nil, tt.file)
			require.Len(t, list, 1)
			assert.Equal(t, tt.expected, list[0].Kind)
		})
	}
}

func TestSyntheticOneof(t *testing.T) {
	res := mustBuild(t, nil, `
name: "a.proto"
syntax: "proto3"
message_type {
  name: "M"
  field { name: "x" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 proto3_optional: true }
  field { name: "y" number: 2 label: LABEL_OPTIONAL type: TYPE_INT32 }
}`)
	m := lookupMessage(t, res, "M")
	require.Len(t, m.Oneofs, 1)
	assert.Equal(t, "_x", m.Oneofs[0].Name)
	assert.True(t, m.Oneofs[0].Synthetic)
	assert.Equal(t, []int32{1}, m.Oneofs[0].Fields)
	assert.True(t, m.FieldByName("x").SupportsPresence)
	assert.False(t, m.FieldByName("y").SupportsPresence)

	retained := res.File("a.proto").Proto.GetMessageType()[0]
	require.Len(t, retained.GetOneofDecl(), 1)
	assert.Equal(t, "_x", retained.GetOneofDecl()[0].GetName())
	assert.Equal(t, int32(0), retained.GetField()[0].GetOneofIndex())

	t.Run("collides with a declared name", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
syntax: "proto3"
message_type {
  name: "M"
  field { name: "x" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 proto3_optional: true }
  nested_type { name: "_x" }
}`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindDuplicateName, list[0].Kind)
		assert.Equal(t, "M._x", list[0].Name)
		require.NotNil(t, list[0].First)
		assert.True(t, list[0].First.Synthetic)
	})
}

func TestOneofs(t *testing.T) {
	t.Run("members must be adjacent", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "a" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 oneof_index: 0 }
  field { name: "b" number: 2 label: LABEL_OPTIONAL type: TYPE_INT32 }
  field { name: "c" number: 3 label: LABEL_OPTIONAL type: TYPE_INT32 oneof_index: 0 }
  oneof_decl { name: "choice" }
}`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindInvalidOneof, list[0].Kind)
		assert.Equal(t, "M.choice", list[0].Name)
	})

	t.Run("empty oneof", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
message_type { name: "M" oneof_decl { name: "choice" } }`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindInvalidOneof, list[0].Kind)
	})

	t.Run("index out of range", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "a" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 oneof_index: 3 }
}`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindInvalidOneof, list[0].Kind)
	})

	t.Run("repeated member", func(t *testing.T) {
		list := buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "a" number: 1 label: LABEL_REPEATED type: TYPE_INT32 oneof_index: 0 }
  oneof_decl { name: "choice" }
}`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindInvalidOneof, list[0].Kind)
	})
}

func TestLabels(t *testing.T) {
	list := buildErrors(t, nil, `
name: "a.proto"
syntax: "proto3"
message_type {
  name: "M"
  field { name: "a" number: 1 label: LABEL_REQUIRED type: TYPE_INT32 }
}`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindInvalidLabel, list[0].Kind)
}

const mapFile = `
name: "a.proto"
syntax: "proto3"
message_type {
  name: "M"
  field { name: "labels" number: 1 label: LABEL_REPEATED type: TYPE_MESSAGE type_name: ".M.LabelsEntry" }
  nested_type {
    name: "LabelsEntry"
    field { name: "key" number: 1 label: LABEL_OPTIONAL type: %s }
    field { name: "value" number: 2 label: LABEL_OPTIONAL type: TYPE_STRING }
    options { map_entry: true }
  }
}`

func TestMapEntries(t *testing.T) {
	res := mustBuild(t, nil, fmt.Sprintf(mapFile, "TYPE_STRING"))
	entry := lookupMessage(t, res, "M.LabelsEntry")
	assert.True(t, entry.IsMapEntry)

	list := buildErrors(t, nil, fmt.Sprintf(mapFile, "TYPE_DOUBLE"))
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindInvalidMapEntry, list[0].Kind)
	assert.Contains(t, list[0].Message, "double")

	list = buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "labels" number: 1 label: LABEL_REPEATED type: TYPE_MESSAGE type_name: ".M.Wrong" }
  nested_type {
    name: "Wrong"
    field { name: "key" number: 1 label: LABEL_OPTIONAL type: TYPE_STRING }
    field { name: "value" number: 2 label: LABEL_OPTIONAL type: TYPE_STRING }
    options { map_entry: true }
  }
}`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindInvalidMapEntry, list[0].Kind)
	assert.Contains(t, list[0].Message, "LabelsEntry")
}

func TestGroups(t *testing.T) {
	res := mustBuild(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "result" number: 1 label: LABEL_REPEATED type: TYPE_GROUP type_name: ".M.Result" }
  nested_type {
    name: "Result"
    field { name: "url" number: 2 label: LABEL_OPTIONAL type: TYPE_STRING }
  }
}`)
	f := lookupMessage(t, res, "M").FieldByName("result")
	assert.True(t, f.IsGroup)
	assert.Equal(t, typegraph.KindGroup, f.Kind)

	list := buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "other" number: 1 label: LABEL_OPTIONAL type: TYPE_GROUP type_name: ".M.Result" }
  nested_type { name: "Result" }
}`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindInvalidName, list[0].Kind)
}

func TestJSONNames(t *testing.T) {
	const file = `
name: "a.proto"
syntax: "%s"
message_type {
  name: "M"
  field { name: "foo_bar" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 }
  field { name: "fooBar" number: 2 label: LABEL_OPTIONAL type: TYPE_INT32 }
}`
	mustBuild(t, nil, fmt.Sprintf(file, "proto2"))

	list := buildErrors(t, nil, fmt.Sprintf(file, "proto3"))
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindDuplicateJSONName, list[0].Kind)
	assert.Equal(t, "fooBar", list[0].Name)

	list = buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "a" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 json_name: "same" }
  field { name: "b" number: 2 label: LABEL_OPTIONAL type: TYPE_INT32 json_name: "same" }
}`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindDuplicateJSONName, list[0].Kind)

	res := mustBuild(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "a_b" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 json_name: "aB" }
  field { name: "c" number: 2 label: LABEL_OPTIONAL type: TYPE_INT32 json_name: "custom" }
}`)
	m := lookupMessage(t, res, "M")
	assert.False(t, m.FieldByName("a_b").HasCustomJSON)
	assert.True(t, m.FieldByName("c").HasCustomJSON)
	assert.Equal(t, "custom", m.FieldByName("c").JSONName)
}

func TestPacked(t *testing.T) {
	res := mustBuild(t, nil, `
name: "a.proto"
syntax: "proto3"
message_type {
  name: "M"
  field { name: "a" number: 1 label: LABEL_REPEATED type: TYPE_INT32 options { packed: false } }
  field { name: "b" number: 2 label: LABEL_REPEATED type: TYPE_FIXED64 }
}`)
	m := lookupMessage(t, res, "M")
	assert.False(t, m.FieldByName("a").IsPacked)
	assert.True(t, m.FieldByName("b").IsPacked)

	res = mustBuild(t, nil, `
name: "b.proto"
message_type {
  name: "M"
  field { name: "a" number: 1 label: LABEL_REPEATED type: TYPE_INT32 }
  field { name: "b" number: 2 label: LABEL_REPEATED type: TYPE_INT32 options { packed: true } }
}`)
	m = lookupMessage(t, res, "M")
	assert.False(t, m.FieldByName("a").IsPacked)
	assert.True(t, m.FieldByName("b").IsPacked)

	list := buildErrors(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "a" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 options { packed: true } }
  field { name: "b" number: 2 label: LABEL_REPEATED type: TYPE_STRING options { packed: true } }
}`)
	require.Len(t, list, 2)
	assert.Equal(t, diag.KindInvalidPacked, list[0].Kind)
	assert.Equal(t, diag.KindInvalidPacked, list[1].Kind)
}

const optionsFile = `
name: "opts.proto"
package: "pkg"
dependency: "google/protobuf/descriptor.proto"
extension {
  name: "label"
  number: 50000
  label: LABEL_OPTIONAL
  type: TYPE_STRING
  extendee: ".google.protobuf.MessageOptions"
}
extension {
  name: "tags"
  number: 50001
  label: LABEL_REPEATED
  type: TYPE_INT32
  extendee: ".google.protobuf.MessageOptions"
}
message_type {
  name: "M"
  options {
    %s
  }
}`

func TestOptionMerge(t *testing.T) {
	base := descriptorBase(t)

	res := mustBuild(t, base, fmt.Sprintf(optionsFile, `
    uninterpreted_option { name { name_part: "tags" is_extension: true } positive_int_value: 1 }
    uninterpreted_option { name { name_part: "tags" is_extension: true } positive_int_value: 2 }
    uninterpreted_option { name { name_part: "label" is_extension: true } string_value: "hello" }`))
	m := lookupMessage(t, res, "pkg.M")
	tags := m.Options.Get(50001)
	require.NotNil(t, tags)
	list, ok := tags.Value.(typegraph.ListValue)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].(typegraph.Value).AsInt())
	assert.Equal(t, int64(2), list[1].(typegraph.Value).AsInt())
	assert.Equal(t, "hello", m.Options.Get(50000).Value.(typegraph.Value).AsString())

	diags := buildErrors(t, base, fmt.Sprintf(optionsFile, `
    uninterpreted_option { name { name_part: "label" is_extension: true } string_value: "a" }
    uninterpreted_option { name { name_part: "label" is_extension: true } string_value: "b" }`))
	require.Len(t, diags, 1)
	assert.Equal(t, diag.KindOptionAlreadySet, diags[0].Kind)
	require.NotNil(t, diags[0].First)
	require.NotNil(t, diags[0].Second)

	diags = buildErrors(t, base, fmt.Sprintf(optionsFile, `
    uninterpreted_option { name { name_part: "nope" is_extension: true } string_value: "a" }`))
	require.Len(t, diags, 1)
	assert.Equal(t, diag.KindTypeNameNotFound, diags[0].Kind)
	assert.Equal(t, "nope", diags[0].Name)
}

func TestBuiltinOptionsWithoutDescriptor(t *testing.T) {
	res := mustBuild(t, nil, `
name: "a.proto"
message_type {
  name: "M"
  field { name: "old" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 options { deprecated: true } }
  options { deprecated: true }
}`)
	m := lookupMessage(t, res, "M")
	assert.True(t, m.Deprecated)
	assert.True(t, m.FieldByName("old").Deprecated)
}

const extendeeFile = `
name: "base.proto"
package: "pkg"
message_type {
  name: "Base"
  field { name: "id" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 }
  extension_range { start: 100 end: 200 }
}`

func TestExtensions(t *testing.T) {
	base := mustBuild(t, nil, extendeeFile)

	res := mustBuild(t, base, `
name: "ext.proto"
package: "pkg"
dependency: "base.proto"
extension { name: "ext" number: 100 label: LABEL_OPTIONAL type: TYPE_STRING extendee: "Base" }`)
	extended := lookupMessage(t, res, "pkg.Base")
	require.Len(t, extended.Extensions, 1)
	ext := res.Graph.ExtensionByNumber(extended.ID, 100)
	require.NotNil(t, ext)
	assert.Equal(t, "pkg.ext", ext.FullName)
	assert.Equal(t, extended.ID, ext.Extendee)
	assert.True(t, ext.SupportsPresence)

	assert.Empty(t, lookupMessage(t, base, "pkg.Base").Extensions, "the base graph is not modified")

	t.Run("outside every range", func(t *testing.T) {
		list := buildErrors(t, base, `
name: "ext.proto"
package: "pkg"
dependency: "base.proto"
extension { name: "ext" number: 5 label: LABEL_OPTIONAL type: TYPE_STRING extendee: ".pkg.Base" }`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindInvalidExtensionNumber, list[0].Kind)
		assert.Equal(t, "available extension numbers are 100 to 199", list[0].Help)
	})

	t.Run("number claimed twice", func(t *testing.T) {
		list := buildErrors(t, res, `
name: "ext2.proto"
package: "pkg"
dependency: "base.proto"
extension { name: "again" number: 100 label: LABEL_OPTIONAL type: TYPE_STRING extendee: "Base" }`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindDuplicateNumber, list[0].Kind)
		assert.Equal(t, "pkg.ext", list[0].FirstItem.Name)
		assert.True(t, list[0].First.Imported)
	})

	t.Run("required extension", func(t *testing.T) {
		list := buildErrors(t, base, `
name: "ext.proto"
package: "pkg"
dependency: "base.proto"
extension { name: "ext" number: 101 label: LABEL_REQUIRED type: TYPE_STRING extendee: "Base" }`)
		require.Len(t, list, 1)
		assert.Equal(t, diag.KindInvalidLabel, list[0].Kind)
	})
}

func TestEnumChecks(t *testing.T) {
	list := buildErrors(t, nil, `
name: "a.proto"
syntax: "proto3"
enum_type {
  name: "E"
  value { name: "ONE" number: 1 }
}`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindInvalidName, list[0].Kind)

	list = buildErrors(t, nil, `
name: "a.proto"
enum_type {
  name: "E"
  value { name: "A" number: 0 }
  value { name: "B" number: 5 }
  reserved_range { start: 3 end: 7 }
}`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindDuplicateNumber, list[0].Kind)
	assert.Equal(t, "reserved range", list[0].FirstItem.Kind)

	list = buildErrors(t, nil, `name: "a.proto" enum_type { name: "E" }`)
	require.Len(t, list, 1)
	assert.Equal(t, diag.KindInvalidName, list[0].Kind)
}

func TestDeterministicDiagnostics(t *testing.T) {
	const file = `
name: "a.proto"
message_type {
  name: "M"
  field { name: "a" number: 1 label: LABEL_OPTIONAL type_name: "Missing" }
  field { name: "b" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 }
  field { name: "c" number: 3 label: LABEL_OPTIONAL type_name: "AlsoMissing" }
  reserved_range { start: 3 end: 4 }
}`
	first := buildErrors(t, nil, file)
	for i := 0; i < 5; i++ {
		again := buildErrors(t, nil, file)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Message, again[j].Message)
		}
	}
	assert.Equal(t, []diag.Kind{
		diag.KindTypeNameNotFound,
		diag.KindTypeNameNotFound,
		diag.KindDuplicateNumber,
		diag.KindDuplicateNumber,
	}, first.Kinds())
}

func TestWellKnownTypesBuild(t *testing.T) {
	res, err := Build(nil, wkt.Files(), nil)
	require.NoError(t, err)
	assert.Len(t, res.Files, len(wkt.Files()))

	anyMsg := lookupMessage(t, res, "google.protobuf.Any")
	assert.Equal(t, "google/protobuf/any.proto", anyMsg.File)
	fieldOpts := lookupMessage(t, res, "google.protobuf.FieldOptions")
	packed := fieldOpts.FieldByName("packed")
	require.NotNil(t, packed)
	assert.Equal(t, typegraph.KindBool, packed.Kind)
}
