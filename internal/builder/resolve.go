package builder

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/srcinfo"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// resolve is the second pass: field types, extendees and method types are
// looked up in the now complete table
func (b *builder) resolve() {
	for _, fs := range b.files {
		for _, ms := range fs.messages {
			for _, f := range ms.fields {
				b.resolveField(f)
			}
		}
		for _, xs := range fs.extensions {
			b.resolveField(&xs.fieldState)
			b.resolveExtendee(xs)
		}
		for _, ss := range fs.services {
			for _, m := range ss.methods {
				b.resolveMethod(ss, m)
			}
		}
	}
}

func (b *builder) filter(fs *fileState, kinds names.KindSet, expected string) names.Filter {
	return names.Filter{Kinds: kinds, Visible: fs.isVisible, Expected: expected}
}

// resolveField sets the kind and target type of a field. A type name without
// an explicit type takes its kind from the symbol it resolves to.
func (b *builder) resolveField(f *fieldState) {
	fp := f.proto
	at := f.file.at(srcinfo.Child(f.path, srcinfo.FieldTypeName)...)

	if fp.TypeName == nil {
		if fp.Type == nil {
			b.diags.Add(diag.NewInvalidTypeReference(f.field.FullName, "a field type", "nothing",
				f.file.at(srcinfo.Child(f.path, srcinfo.FieldType)...)))
			return
		}
		kind, ok := typegraph.KindFromProto(fp.GetType())
		if !ok || !kind.IsScalar() {
			b.diags.Add(diag.NewInvalidTypeReference(f.field.FullName, "a type name for "+fp.GetType().String(), "nothing",
				f.file.at(srcinfo.Child(f.path, srcinfo.FieldType)...)))
			return
		}
		f.field.Kind = kind
		f.field.Type = kind.ScalarID()
		f.resolved = true
		return
	}

	accept, expected := names.Types, "a message or enum"
	if fp.Type != nil {
		switch fp.GetType() {
		case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, descriptorpb.FieldDescriptorProto_TYPE_GROUP:
			accept, expected = names.Kinds(names.SymMessage), "a message"
		case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
			accept, expected = names.Kinds(names.SymEnum), "an enum"
		default:
			b.diags.Add(diag.NewInvalidTypeReference(fp.GetTypeName(), "no type name",
				fmt.Sprintf("a type name on a %s field", fp.GetType()), at))
			return
		}
	}

	_, sym, d := b.table.Resolve(f.scope, fp.GetTypeName(), b.filter(f.file, accept, expected), at)
	if d != nil {
		b.diags.Add(d)
		return
	}
	f.field.Type = sym.Type
	switch {
	case sym.Kind == names.SymEnum:
		f.field.Kind = typegraph.KindEnum
	case fp.GetType() == descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		f.field.Kind = typegraph.KindGroup
		f.field.IsGroup = true
	default:
		f.field.Kind = typegraph.KindMessage
	}
	f.resolved = true
}

// resolveExtendee registers an extension on the message it extends
func (b *builder) resolveExtendee(xs *extensionState) {
	fp := xs.proto
	at := xs.file.at(srcinfo.Child(xs.path, srcinfo.FieldExtendee)...)
	if fp.Extendee == nil {
		b.diags.Add(diag.NewTypeNameNotFound("", at).WithHelp(fmt.Sprintf("extension '%s' does not name the message it extends", xs.field.FullName)))
		return
	}
	_, sym, d := b.table.Resolve(xs.scope, fp.GetExtendee(),
		b.filter(xs.file, names.Kinds(names.SymMessage), "a message"), at)
	if d != nil {
		b.diags.Add(d)
		return
	}
	xs.ext.Extendee = sym.Type
	xs.ext.Field.Parent = sym.Type
	b.graph.AttachExtension(xs.idx)
}

func (b *builder) resolveMethod(ss *serviceState, m *methodState) {
	accept := b.filter(ss.file, names.Kinds(names.SymMessage), "a message")
	if _, sym, d := b.table.Resolve(ss.svc.Name, m.proto.GetInputType(), accept,
		ss.file.at(srcinfo.Child(m.path, srcinfo.MethodInput)...)); d != nil {
		b.diags.Add(d)
	} else {
		m.method.Input = sym.Type
	}
	if _, sym, d := b.table.Resolve(ss.svc.Name, m.proto.GetOutputType(), accept,
		ss.file.at(srcinfo.Child(m.path, srcinfo.MethodOutput)...)); d != nil {
		b.diags.Add(d)
	} else {
		m.method.Output = sym.Type
	}
}
