package builder

import (
	"slices"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/ranges"
	"github.com/conduit-lang/protopool/internal/srcinfo"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// register is the first pass: every declaration gets a name in the table and
// every type an id in the graph. No reference is looked at yet, so the order
// of declarations across the batch does not matter.
func (b *builder) register() {
	for _, fs := range b.files {
		b.registerFile(fs)
	}
}

func (b *builder) registerFile(fs *fileState) {
	fd := fs.Proto
	syntax, ok := typegraph.ParseSyntax(fd.GetSyntax())
	if !ok {
		b.diags.Add(diag.NewValueInvalidType("'proto2', 'proto3' or 'editions'", fd.GetSyntax(), fs.at(srcinfo.FileSyntax)))
	}
	fs.Syntax = syntax

	pkg := fd.GetPackage()
	if pkg != "" {
		if names.ValidFullName(pkg) {
			b.diags.Add(b.table.DeclarePackage(pkg, fs.Name(), fs.at(srcinfo.FilePackage)))
		} else {
			b.diags.Add(diag.NewInvalidName(pkg, "a package name must be dot-separated identifiers", fs.at(srcinfo.FilePackage)))
		}
	}

	for i, m := range fd.GetMessageType() {
		if ms := b.registerMessage(fs, pkg, nil, m, []int32{srcinfo.FileMessage, int32(i)}); ms != nil {
			fs.Messages = append(fs.Messages, ms.msg.ID)
		}
	}
	for i, e := range fd.GetEnumType() {
		if es := b.registerEnum(fs, pkg, e, []int32{srcinfo.FileEnum, int32(i)}); es != nil {
			fs.Enums = append(fs.Enums, es.enum.ID)
		}
	}
	for i, x := range fd.GetExtension() {
		if xs := b.registerExtension(fs, pkg, x, i, []int32{srcinfo.FileExtension, int32(i)}); xs != nil {
			fs.Extensions = append(fs.Extensions, xs.idx)
		}
	}
	for i, s := range fd.GetService() {
		if ss := b.registerService(fs, pkg, s, []int32{srcinfo.FileService, int32(i)}); ss != nil {
			fs.Services = append(fs.Services, ss.index)
		}
	}
}

// declare adds a symbol, reporting invalid simple names and duplicates. It
// returns false when the declaration was rejected.
func (b *builder) declare(fs *fileState, scope, name string, sym names.Symbol, path []int32) (string, bool) {
	full := names.Join(scope, name)
	if sym.Location.File == "" && !sym.Location.Synthetic {
		sym.Location = fs.at(srcinfo.Child(path, srcinfo.Name)...)
	}
	if !names.ValidIdent(name) {
		reason := "a name must start with a letter or underscore and contain only letters, digits and underscores"
		if name == "" {
			reason = "a name must not be empty"
		}
		b.diags.Add(diag.NewInvalidName(full, reason, sym.Location))
		return full, false
	}
	sym.File = fs.Name()
	if d := b.table.Declare(full, sym); d != nil {
		b.diags.Add(d)
		return full, false
	}
	return full, true
}

func (b *builder) registerMessage(fs *fileState, scope string, parent *typegraph.Message, mp *descriptorpb.DescriptorProto, path []int32) *messageState {
	full := names.Join(scope, mp.GetName())
	id := b.graph.Register(typegraph.TypeMessage, full)
	if _, ok := b.declare(fs, scope, mp.GetName(), names.Symbol{Kind: names.SymMessage, Type: id}, path); !ok {
		return nil
	}

	msg := b.graph.Message(id)
	msg.File = fs.Name()
	msg.Syntax = fs.Syntax
	if parent != nil {
		msg.Parent, msg.HasParent = parent.ID, true
	}
	ms := &messageState{file: fs, msg: msg, proto: mp, path: path}
	fs.messages = append(fs.messages, ms)

	for i, fp := range mp.GetField() {
		fpath := srcinfo.Child(path, srcinfo.MessageField, int32(i))
		field, ok := b.newField(fs, full, fp, i, names.Symbol{Kind: names.SymField, Type: id, Index: i}, fpath)
		if !ok {
			continue
		}
		msg.AddField(field)
		ms.fields = append(ms.fields, &fieldState{file: fs, field: field, proto: fp, path: fpath, scope: full})
	}

	for i, op := range mp.GetOneofDecl() {
		opath := srcinfo.Child(path, srcinfo.MessageOneof, int32(i))
		sym := names.Symbol{Kind: names.SymOneof, Type: id, Index: i}
		if b.generated[op] {
			sym.Synthetic = true
			sym.Location = diag.Location{File: fs.Name(), Path: opath, Synthetic: true}
		}
		oneofFull, _ := b.declare(fs, full, op.GetName(), sym, opath)
		oneof := &typegraph.Oneof{
			Name:      op.GetName(),
			FullName:  oneofFull,
			Synthetic: b.generated[op] || isSyntheticOneof(mp, i),
		}
		for _, f := range msg.Fields {
			if f.Oneof == i {
				oneof.Fields = append(oneof.Fields, f.Number)
			}
		}
		msg.Oneofs = append(msg.Oneofs, oneof)
	}

	for _, r := range mp.GetReservedRange() {
		msg.ReservedRanges = append(msg.ReservedRanges, ranges.MessageRange(r.GetStart(), r.GetEnd()))
	}
	msg.ReservedNames = slices.Clone(mp.GetReservedName())
	for _, r := range mp.GetExtensionRange() {
		msg.ExtensionRanges = append(msg.ExtensionRanges, typegraph.ExtensionRange{Range: ranges.MessageRange(r.GetStart(), r.GetEnd())})
	}

	for i, nested := range mp.GetNestedType() {
		b.registerMessage(fs, full, msg, nested, srcinfo.Child(path, srcinfo.MessageNested, int32(i)))
	}
	for i, e := range mp.GetEnumType() {
		b.registerEnum(fs, full, e, srcinfo.Child(path, srcinfo.MessageEnum, int32(i)))
	}
	for i, x := range mp.GetExtension() {
		b.registerExtension(fs, full, x, i, srcinfo.Child(path, srcinfo.MessageExtension, int32(i)))
	}
	return ms
}

// newField declares a field or extension and builds its unresolved
// definition. Kind and type are filled in by the resolve pass.
func (b *builder) newField(fs *fileState, scope string, fp *descriptorpb.FieldDescriptorProto, index int, sym names.Symbol, path []int32) (*typegraph.Field, bool) {
	full, ok := b.declare(fs, scope, fp.GetName(), sym, path)
	if !ok {
		return nil, false
	}
	f := &typegraph.Field{
		Number:         fp.GetNumber(),
		Name:           fp.GetName(),
		FullName:       full,
		JSONName:       typegraph.JSONName(fp.GetName()),
		Index:          index,
		Cardinality:    typegraph.CardinalityFromProto(fp.GetLabel()),
		Proto3Optional: fp.GetProto3Optional(),
		Oneof:          -1,
	}
	if fp.JsonName != nil {
		f.HasCustomJSON = fp.GetJsonName() != f.JSONName
		f.JSONName = fp.GetJsonName()
	}
	if fp.OneofIndex != nil {
		f.Oneof = int(fp.GetOneofIndex())
	}
	return f, true
}

func (b *builder) registerExtension(fs *fileState, scope string, fp *descriptorpb.FieldDescriptorProto, index int, path []int32) *extensionState {
	ext := &typegraph.Extension{Scope: scope, File: fs.Name()}
	idx := b.graph.AddExtension(ext)
	field, ok := b.newField(fs, scope, fp, index, names.Symbol{Kind: names.SymExtension, Index: idx}, path)
	if !ok {
		return nil
	}
	ext.Field = *field
	xs := &extensionState{
		fieldState: fieldState{file: fs, field: &ext.Field, proto: fp, path: path, scope: scope},
		ext:        ext,
		idx:        idx,
	}
	fs.extensions = append(fs.extensions, xs)
	return xs
}

// registerEnum declares an enum and its values. Values are scoped as
// siblings of the enum, not as its children.
func (b *builder) registerEnum(fs *fileState, scope string, ep *descriptorpb.EnumDescriptorProto, path []int32) *enumState {
	full := names.Join(scope, ep.GetName())
	id := b.graph.Register(typegraph.TypeEnum, full)
	if _, ok := b.declare(fs, scope, ep.GetName(), names.Symbol{Kind: names.SymEnum, Type: id}, path); !ok {
		return nil
	}

	e := b.graph.Enum(id)
	e.File = fs.Name()
	e.Syntax = fs.Syntax
	for i, vp := range ep.GetValue() {
		vpath := srcinfo.Child(path, srcinfo.EnumValue, int32(i))
		valueFull, ok := b.declare(fs, scope, vp.GetName(), names.Symbol{Kind: names.SymEnumValue, Type: id, Index: i}, vpath)
		if !ok {
			continue
		}
		e.Values = append(e.Values, &typegraph.EnumValue{
			Name:     vp.GetName(),
			FullName: valueFull,
			Number:   vp.GetNumber(),
			Index:    i,
		})
	}
	for _, r := range ep.GetReservedRange() {
		e.ReservedRanges = append(e.ReservedRanges, typegraph.Range{Start: r.GetStart(), End: r.GetEnd()})
	}
	e.ReservedNames = slices.Clone(ep.GetReservedName())
	if len(ep.GetValue()) == 0 {
		b.diags.Add(diag.NewInvalidName(full, "an enum must contain at least one value", fs.at(srcinfo.Child(path, srcinfo.Name)...)))
	}

	es := &enumState{file: fs, enum: e, proto: ep, path: path}
	fs.enums = append(fs.enums, es)
	return es
}

func (b *builder) registerService(fs *fileState, scope string, sp *descriptorpb.ServiceDescriptorProto, path []int32) *serviceState {
	svc := &typegraph.Service{Name: names.Join(scope, sp.GetName()), File: fs.Name()}
	idx := len(b.graph.Services())
	if _, ok := b.declare(fs, scope, sp.GetName(), names.Symbol{Kind: names.SymService, Index: idx}, path); !ok {
		return nil
	}
	b.graph.AddService(svc)
	ss := &serviceState{file: fs, svc: svc, proto: sp, path: path, index: idx}
	fs.services = append(fs.services, ss)

	for i, mp := range sp.GetMethod() {
		mpath := srcinfo.Child(path, srcinfo.ServiceMethod, int32(i))
		methodFull, ok := b.declare(fs, svc.Name, mp.GetName(), names.Symbol{Kind: names.SymMethod, Index: i}, mpath)
		if !ok {
			continue
		}
		method := &typegraph.Method{
			Name:            mp.GetName(),
			FullName:        methodFull,
			ClientStreaming: mp.GetClientStreaming(),
			ServerStreaming: mp.GetServerStreaming(),
		}
		svc.Methods = append(svc.Methods, method)
		ss.methods = append(ss.methods, &methodState{method: method, proto: mp, path: mpath})
	}
	return ss
}
