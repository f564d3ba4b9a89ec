package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

const validSet = `
file {
  name: "shop/order.proto"
  package: "shop"
  syntax: "proto3"
  dependency: "google/protobuf/timestamp.proto"
  message_type {
    name: "Order"
    field { name: "id" number: 1 label: LABEL_OPTIONAL type: TYPE_STRING }
    field { name: "status" number: 2 label: LABEL_OPTIONAL type: TYPE_ENUM type_name: ".shop.Status" }
    field { name: "placed_at" number: 3 label: LABEL_OPTIONAL type: TYPE_MESSAGE type_name: ".google.protobuf.Timestamp" }
    field { name: "note" number: 4 label: LABEL_OPTIONAL type: TYPE_STRING proto3_optional: true }
    reserved_range { start: 10 end: 12 }
  }
  enum_type {
    name: "Status"
    value { name: "STATUS_UNSPECIFIED" number: 0 }
    value { name: "STATUS_PAID" number: 1 }
  }
  service {
    name: "Orders"
    method { name: "Watch" input_type: ".shop.Order" output_type: ".shop.Order" server_streaming: true }
  }
}
`

const invalidSet = `
file {
  name: "bad.proto"
  package: "bad"
  message_type {
    name: "Bad"
    field { name: "a" number: 1 label: LABEL_OPTIONAL type_name: "Missing" }
    field { name: "b" number: 1 label: LABEL_OPTIONAL type: TYPE_INT32 }
  }
}
`

func writeSet(t *testing.T, text string) string {
	t.Helper()
	set := &descriptorpb.FileDescriptorSet{}
	require.NoError(t, prototext.Unmarshal([]byte(text), set))
	data, err := proto.Marshal(set)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "set.pb")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--color=false"))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "protopool", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"version", "check", "describe", "encode"})

	for _, flag := range []string{"config", "format", "color", "well-known-types", "root", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	defer func() { Version, GitCommit = "dev", "unknown" }()

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "protopool version: 1.0.0-test")
	assert.Contains(t, out, "Git commit: abc123")
}

func TestCheckCommand(t *testing.T) {
	path := writeSet(t, validSet)

	out, _, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 file(s) checked: 1 message(s), 1 enum(s), 1 service(s), 0 extension(s)")

	t.Run("without well-known types", func(t *testing.T) {
		out, _, err := execute(t, "check", path, "--well-known-types=false")
		require.Error(t, err)
		assert.Contains(t, out, "google/protobuf/timestamp.proto")
	})

	t.Run("diagnostics", func(t *testing.T) {
		out, _, err := execute(t, "check", writeSet(t, invalidSet))
		require.Error(t, err)
		assert.Equal(t, "2 error(s) found", err.Error())
		assert.Contains(t, out, "DSC102")
		assert.Contains(t, out, "DSC202")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "check", writeSet(t, invalidSet), "--format", "json")
		require.Error(t, err)

		var doc struct {
			Status  string `json:"status"`
			Summary struct {
				ErrorCount int `json:"error_count"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "error", doc.Status)
		assert.Equal(t, 2, doc.Summary.ErrorCount)

		out, _, err = execute(t, "check", path, "--format", "json")
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "success", doc.Status)
	})

	t.Run("lsp", func(t *testing.T) {
		out, _, err := execute(t, "check", writeSet(t, invalidSet), "--format", "lsp", "--root", "/src")
		require.Error(t, err)

		var docs map[string][]map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &docs))
		require.Contains(t, docs, "file:///src/bad.proto")
		assert.Len(t, docs["file:///src/bad.proto"], 2)
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, _, err := execute(t, "check", filepath.Join(t.TempDir(), "missing.pb"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read")
	})

	t.Run("bad format", func(t *testing.T) {
		_, stderr, err := execute(t, "check", path, "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, stderr, "CONFIGURATION ERROR")
	})
}

func TestCheckLayersSets(t *testing.T) {
	first := writeSet(t, validSet)
	second := writeSet(t, `
file {
  name: "shop/cart.proto"
  package: "shop"
  syntax: "proto3"
  dependency: "shop/order.proto"
  message_type {
    name: "Cart"
    field { name: "orders" number: 1 label: LABEL_REPEATED type: TYPE_MESSAGE type_name: ".shop.Order" }
  }
}
`)

	out, _, err := execute(t, "check", first, second)
	require.NoError(t, err)
	assert.Contains(t, out, "2 file(s) checked: 2 message(s)")
}

func TestDescribeCommand(t *testing.T) {
	path := writeSet(t, validSet)

	t.Run("files", func(t *testing.T) {
		out, _, err := execute(t, "describe", path)
		require.NoError(t, err)
		assert.Contains(t, out, "FILE")
		assert.Contains(t, out, "shop/order.proto")
		assert.NotContains(t, out, "timestamp.proto")
	})

	t.Run("message", func(t *testing.T) {
		out, _, err := execute(t, "describe", path, "shop.Order")
		require.NoError(t, err)
		assert.Contains(t, out, "message shop.Order")
		assert.Contains(t, out, "google.protobuf.Timestamp")
		assert.Contains(t, out, "shop.Status")
		assert.Contains(t, out, "10 to 11")
		assert.Contains(t, out, "_note (synthetic){note}")
	})

	t.Run("enum", func(t *testing.T) {
		out, _, err := execute(t, "describe", path, ".shop.Status")
		require.NoError(t, err)
		assert.Contains(t, out, "enum shop.Status")
		assert.Contains(t, out, "STATUS_PAID")
	})

	t.Run("service as json", func(t *testing.T) {
		out, _, err := execute(t, "describe", path, "shop.Orders", "--format", "json")
		require.NoError(t, err)

		var d description
		require.NoError(t, json.Unmarshal([]byte(out), &d))
		assert.Equal(t, "service", d.Kind)
		require.Len(t, d.Members, 1)
		assert.Equal(t, "Watch", d.Members[0]["method"])
		assert.Equal(t, "server", d.Members[0]["streaming"])
	})

	t.Run("unknown name", func(t *testing.T) {
		_, stderr, err := execute(t, "describe", path, "shop.Ordr")
		require.Error(t, err)
		assert.Contains(t, stderr, "SYMBOL NOT FOUND: shop.Ordr")
		assert.Contains(t, stderr, "shop.Order")
	})
}

func TestEncodeCommand(t *testing.T) {
	path := writeSet(t, validSet)
	outPath := filepath.Join(t.TempDir(), "out.pb")

	_, stderr, err := execute(t, "encode", path, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	set := &descriptorpb.FileDescriptorSet{}
	require.NoError(t, proto.Unmarshal(data, set))
	require.Len(t, set.File, 1)
	assert.Len(t, set.File[0].MessageType[0].OneofDecl, 1, "synthetic oneof is written")

	t.Run("re-encoding is stable", func(t *testing.T) {
		again := filepath.Join(t.TempDir(), "again.pb")
		_, _, err := execute(t, "encode", outPath, "-o", again)
		require.NoError(t, err)
		second, err := os.ReadFile(again)
		require.NoError(t, err)
		assert.Equal(t, data, second)
	})

	t.Run("include imports", func(t *testing.T) {
		out, _, err := execute(t, "encode", path, "--include-imports")
		require.NoError(t, err)
		all := &descriptorpb.FileDescriptorSet{}
		require.NoError(t, proto.Unmarshal([]byte(out), all))
		assert.Greater(t, len(all.File), 1)
	})

	t.Run("text", func(t *testing.T) {
		out, _, err := execute(t, "encode", path, "--text")
		require.NoError(t, err)
		set := &descriptorpb.FileDescriptorSet{}
		require.NoError(t, prototext.Unmarshal([]byte(out), set))
		require.Len(t, set.File, 1)
		assert.Equal(t, "shop/order.proto", set.File[0].GetName())
	})
}
