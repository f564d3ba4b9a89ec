package builder

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// syntheticOneofPrefix starts the name of the oneof generated for a proto3
// optional field
const syntheticOneofPrefix = "_"

// synthesizeFile amends a retained record: every proto3 optional field that
// is not yet in a oneof gets one of its own, appended after the declared
// oneofs of its message
func (b *builder) synthesizeFile(fd *descriptorpb.FileDescriptorProto) {
	for _, m := range fd.GetMessageType() {
		b.synthesizeMessage(m)
	}
}

func (b *builder) synthesizeMessage(m *descriptorpb.DescriptorProto) {
	for _, f := range m.GetField() {
		if !f.GetProto3Optional() || f.OneofIndex != nil {
			continue
		}
		oneof := &descriptorpb.OneofDescriptorProto{Name: proto.String(syntheticOneofPrefix + f.GetName())}
		m.OneofDecl = append(m.OneofDecl, oneof)
		f.OneofIndex = proto.Int32(int32(len(m.OneofDecl) - 1))
		b.generated[oneof] = true
	}
	for _, nested := range m.GetNestedType() {
		b.synthesizeMessage(nested)
	}
}

// isSyntheticOneof reports whether a oneof only gives a proto3 optional field
// explicit presence
func isSyntheticOneof(m *descriptorpb.DescriptorProto, index int) bool {
	members := 0
	for _, f := range m.GetField() {
		if f.OneofIndex == nil || int(f.GetOneofIndex()) != index {
			continue
		}
		if !f.GetProto3Optional() {
			return false
		}
		members++
	}
	return members == 1
}
