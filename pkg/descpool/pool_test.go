package descpool

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/diag"
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

func mustPool(t *testing.T, texts ...string) *Pool {
	t.Helper()
	p, err := New(parseFiles(t, texts...))
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

const shopFile = `
name: "shop/order.proto"
package: "shop"
syntax: "proto3"
message_type {
  name: "Order"
  field { name: "id" number: 1 label: LABEL_OPTIONAL type: TYPE_STRING }
  field { name: "status" number: 2 label: LABEL_OPTIONAL type: TYPE_ENUM type_name: ".shop.Status" }
  field { name: "items" number: 3 label: LABEL_REPEATED type: TYPE_MESSAGE type_name: ".shop.Order.Item" }
  field { name: "labels" number: 4 label: LABEL_REPEATED type: TYPE_MESSAGE type_name: ".shop.Order.LabelsEntry" }
  field { name: "note" number: 5 label: LABEL_OPTIONAL type: TYPE_STRING proto3_optional: true }
  nested_type {
    name: "Item"
    field { name: "sku" number: 1 label: LABEL_OPTIONAL type: TYPE_STRING }
    field { name: "quantity" number: 2 label: LABEL_OPTIONAL type: TYPE_UINT32 }
  }
  nested_type {
    name: "LabelsEntry"
    field { name: "key" number: 1 label: LABEL_OPTIONAL type: TYPE_STRING }
    field { name: "value" number: 2 label: LABEL_OPTIONAL type: TYPE_STRING }
    options { map_entry: true }
  }
}
enum_type {
  name: "Status"
  value { name: "STATUS_UNSPECIFIED" number: 0 }
  value { name: "STATUS_PAID" number: 1 }
}
service {
  name: "Orders"
  method { name: "Get" input_type: ".shop.Order" output_type: ".shop.Order" }
  method { name: "Watch" input_type: ".shop.Order" output_type: ".shop.Order" server_streaming: true }
}
`

const plainFile = `
name: "plain.proto"
package: "plain"
message_type {
  name: "Thing"
  field { name: "id" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 }
}
`

func TestNew(t *testing.T) {
	p := mustPool(t, shopFile)

	require.Len(t, p.Files(), 1)
	f, ok := p.File("shop/order.proto")
	require.True(t, ok)
	assert.Equal(t, "shop", f.Package())
	assert.Equal(t, Proto3, f.Syntax())
	assert.Len(t, f.Messages(), 1)
	assert.Len(t, f.Enums(), 1)
	assert.Len(t, f.Services(), 1)

	_, ok = p.File("missing.proto")
	assert.False(t, ok)
}

func TestNewDoesNotRetainInput(t *testing.T) {
	files := parseFiles(t, plainFile)
	p, err := New(files)
	require.NoError(t, err)

	files[0].MessageType[0].Name = proto.String("Changed")

	_, ok := p.Message("plain.Thing")
	assert.True(t, ok)
	assert.Equal(t, "Thing", p.FileDescriptorSet().File[0].MessageType[0].GetName())
}

func TestNewReturnsDiagnostics(t *testing.T) {
	_, err := New(parseFiles(t, `
name: "bad.proto"
message_type {
  name: "Bad"
  field { name: "a" number: 1 label: LABEL_OPTIONAL type_name: "Missing" }
  field { name: "b" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 }
}
`))
	require.Error(t, err)

	list, ok := diag.AsList(err)
	require.True(t, ok)
	assert.Equal(t, []diag.Kind{diag.KindTypeNameNotFound, diag.KindDuplicateNumber}, list.Kinds())
}

func TestEncodeRoundTrip(t *testing.T) {
	files := parseFiles(t, plainFile)
	p, err := New(files)
	require.NoError(t, err)

	data, err := p.Encode()
	require.NoError(t, err)

	set := &descriptorpb.FileDescriptorSet{}
	require.NoError(t, proto.Unmarshal(data, set))
	want := &descriptorpb.FileDescriptorSet{File: files}
	if diff := cmp.Diff(want, set, protocmp.Transform()); diff != "" {
		t.Errorf("encoded set mismatch (-want +got):\n%s", diff)
	}

	again, err := Decode(data)
	require.NoError(t, err)
	data2, err := again.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, data2)
}

func TestEncodeIncludesSyntheticOneofs(t *testing.T) {
	p := mustPool(t, shopFile)

	set := p.FileDescriptorSet()
	order := set.File[0].MessageType[0]
	require.Len(t, order.OneofDecl, 1)
	assert.Equal(t, "_note", order.OneofDecl[0].GetName())
	assert.Equal(t, int32(0), order.Field[4].GetOneofIndex())

	// the retained records are copies
	set.File[0].Package = proto.String("other")
	f, _ := p.File("shop/order.proto")
	assert.Equal(t, "shop", f.Package())
}

func TestDecode(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xff})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode file descriptor set")
	_, isList := diag.AsList(err)
	assert.False(t, isList)

	data, err := proto.Marshal(&descriptorpb.FileDescriptorSet{File: parseFiles(t, plainFile)})
	require.NoError(t, err)
	p, err := Decode(data)
	require.NoError(t, err)
	_, ok := p.Message(".plain.Thing")
	assert.True(t, ok)
}

func TestExtend(t *testing.T) {
	base := mustPool(t, plainFile)

	ext, err := base.Extend(parseFiles(t, `
name: "more.proto"
package: "plain"
dependency: "plain.proto"
message_type {
  name: "Wrapper"
  field { name: "thing" number: 1 label: LABEL_OPTIONAL type_name: "Thing" }
}
`)...)
	require.NoError(t, err)
	require.NotSame(t, base, ext)
	assert.NotEqual(t, base.ID(), ext.ID())

	assert.Len(t, base.Files(), 1)
	assert.Len(t, ext.Files(), 2)
	_, ok := base.Message("plain.Wrapper")
	assert.False(t, ok)

	w, ok := ext.Message("plain.Wrapper")
	require.True(t, ok)
	thing, ok := w.Fields()[0].Message()
	require.True(t, ok)
	assert.Equal(t, "plain.Thing", thing.FullName())

	t.Run("empty batch", func(t *testing.T) {
		same, err := base.Extend()
		require.NoError(t, err)
		assert.Same(t, base, same)
	})

	t.Run("identical files", func(t *testing.T) {
		same, err := base.Extend(parseFiles(t, plainFile)...)
		require.NoError(t, err)
		assert.Same(t, base, same)
	})

	t.Run("failure leaves base usable", func(t *testing.T) {
		_, err := base.Extend(parseFiles(t, `
name: "broken.proto"
message_type { name: "Broken" field { name: "x" number: 0 label: LABEL_OPTIONAL type: TYPE_INT32 } }
`)...)
		require.Error(t, err)
		assert.Len(t, base.Files(), 1)
		_, ok := base.Message("plain.Thing")
		assert.True(t, ok)
	})

	t.Run("decode", func(t *testing.T) {
		data, err := ext.Encode()
		require.NoError(t, err)
		again, err := base.DecodeExtend(data)
		require.NoError(t, err)
		assert.Len(t, again.Files(), 2)

		_, err = base.DecodeExtend([]byte{0xff})
		assert.Error(t, err)
	})
}

func TestWellKnownTypes(t *testing.T) {
	wk, err := WellKnownTypes()
	require.NoError(t, err)
	again, err := WellKnownTypes()
	require.NoError(t, err)
	assert.Same(t, wk, again)

	ts, ok := wk.Message("google.protobuf.Timestamp")
	require.True(t, ok)
	assert.Equal(t, "google/protobuf/timestamp.proto", ts.ParentFile().Name())

	p, err := New(parseFiles(t, `
name: "event.proto"
package: "event"
syntax: "proto3"
dependency: "google/protobuf/timestamp.proto"
message_type {
  name: "Event"
  field { name: "at" number: 1 label: LABEL_OPTIONAL type: TYPE_MESSAGE type_name: ".google.protobuf.Timestamp" }
}
`), WithWellKnownTypes())
	require.NoError(t, err)

	ev, ok := p.Message("event.Event")
	require.True(t, ok)
	at, ok := ev.Fields()[0].Message()
	require.True(t, ok)
	assert.Equal(t, "google.protobuf.Timestamp", at.FullName())
	assert.False(t, at.Equal(ts), "views of different pools never compare equal")
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	_, err := New(parseFiles(t, plainFile), WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.NotZero(t, logs.FilterMessage("pool created").Len())
}

func TestLookups(t *testing.T) {
	p := mustPool(t, shopFile)

	_, ok := p.Message("shop.Order")
	assert.True(t, ok)
	_, ok = p.Message(".shop.Order.Item")
	assert.True(t, ok)
	_, ok = p.Message("shop.Status")
	assert.False(t, ok, "enums are not messages")
	_, ok = p.Enum(".shop.Status")
	assert.True(t, ok)
	_, ok = p.Service("shop.Orders")
	assert.True(t, ok)
	_, ok = p.Extension("shop.Order")
	assert.False(t, ok)

	var msgs []string
	for _, m := range p.Messages() {
		msgs = append(msgs, m.FullName())
	}
	assert.Equal(t, []string{"shop.Order", "shop.Order.Item", "shop.Order.LabelsEntry"}, msgs)
	assert.Len(t, p.Enums(), 1)
	assert.Len(t, p.Services(), 1)
	assert.Empty(t, p.Extensions())
}
