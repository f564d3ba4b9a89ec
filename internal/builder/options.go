package builder

import (
	"sync"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/options"
	"github.com/conduit-lang/protopool/internal/srcinfo"
	"github.com/conduit-lang/protopool/internal/typegraph"
	"github.com/conduit-lang/protopool/internal/wkt"
)

// Option message names
const (
	fileOptions           = "google.protobuf.FileOptions"
	messageOptions        = "google.protobuf.MessageOptions"
	fieldOptions          = "google.protobuf.FieldOptions"
	oneofOptions          = "google.protobuf.OneofOptions"
	extensionRangeOptions = "google.protobuf.ExtensionRangeOptions"
	enumOptions           = "google.protobuf.EnumOptions"
	enumValueOptions      = "google.protobuf.EnumValueOptions"
	serviceOptions        = "google.protobuf.ServiceOptions"
	methodOptions         = "google.protobuf.MethodOptions"
)

// Option field numbers behind derived flags
const (
	optMessageSetWireFormat = 1
	optPacked               = 2
	optAllowAlias           = 2
	optDeprecated           = 3
	optMapEntry             = 7
)

var (
	descriptorOnce   sync.Once
	descriptorResult *Result
	descriptorErr    error
)

// descriptorOptions returns a graph holding only descriptor.proto. It types
// the options of batches that neither contain nor inherit that file.
func descriptorOptions() (*Result, error) {
	descriptorOnce.Do(func() {
		descriptorResult, descriptorErr = Build(nil, []*descriptorpb.FileDescriptorProto{wkt.Descriptor()}, nil)
	})
	return descriptorResult, descriptorErr
}

// optionResolver picks the graph options are typed against: the pool's own
// when it declares the option messages, the bundled descriptor graph otherwise
func (b *builder) optionResolver() *options.Resolver {
	if b.resolver != nil {
		return b.resolver
	}
	if sym, ok := b.table.Lookup(fileOptions); ok && sym.Kind == names.SymMessage {
		b.resolver = &options.Resolver{Graph: b.graph, Table: b.table}
		return b.resolver
	}
	res, err := descriptorOptions()
	if err != nil {
		b.logger.Warn("bundled descriptor.proto failed to build", zap.Error(err))
		return nil
	}
	b.resolver = &options.Resolver{Graph: res.Graph, Table: res.Table}
	return b.resolver
}

// interpret runs one options record through the resolver. Records that are
// absent yield nil.
func (b *builder) interpret(fs *fileState, optionType string, raw options.Record, scope string, path []int32) *typegraph.MessageValue {
	if isNilRecord(raw) {
		return nil
	}
	r := b.optionResolver()
	if r == nil {
		return nil
	}
	mv, diags := r.Interpret(options.Target{
		OptionType: optionType,
		Raw:        raw,
		Scope:      scope,
		Path:       path,
		Index:      fs.index,
		Visible:    fs.isVisible,
	})
	b.diags.Add(diags...)
	return mv
}

func isNilRecord(raw options.Record) bool {
	switch r := raw.(type) {
	case *descriptorpb.FileOptions:
		return r == nil
	case *descriptorpb.MessageOptions:
		return r == nil
	case *descriptorpb.FieldOptions:
		return r == nil
	case *descriptorpb.OneofOptions:
		return r == nil
	case *descriptorpb.ExtensionRangeOptions:
		return r == nil
	case *descriptorpb.EnumOptions:
		return r == nil
	case *descriptorpb.EnumValueOptions:
		return r == nil
	case *descriptorpb.ServiceOptions:
		return r == nil
	case *descriptorpb.MethodOptions:
		return r == nil
	}
	return raw == nil
}

// interpretOptions is the third pass: every options record is decoded and
// its statements applied, then the flags derived from options are set
func (b *builder) interpretOptions() {
	for _, fs := range b.files {
		pkg := fs.Proto.GetPackage()
		fs.Options = b.interpret(fs, fileOptions, fs.Proto.GetOptions(), pkg, []int32{srcinfo.FileOptions})

		for _, ms := range fs.messages {
			b.interpretMessage(ms)
		}
		for _, es := range fs.enums {
			b.interpretEnum(es)
		}
		for _, xs := range fs.extensions {
			b.interpretField(&xs.fieldState)
		}
		for _, ss := range fs.services {
			ss.svc.Options = b.interpret(fs, serviceOptions, ss.proto.GetOptions(), ss.svc.Name,
				srcinfo.Child(ss.path, srcinfo.ServiceOptions))
			for _, m := range ss.methods {
				m.method.Options = b.interpret(fs, methodOptions, m.proto.GetOptions(), ss.svc.Name,
					srcinfo.Child(m.path, srcinfo.MethodOptions))
			}
		}
	}
}

func (b *builder) interpretMessage(ms *messageState) {
	fs, msg := ms.file, ms.msg
	msg.Options = b.interpret(fs, messageOptions, ms.proto.GetOptions(), msg.Name,
		srcinfo.Child(ms.path, srcinfo.MessageOptions))
	msg.MessageSetWireFormat = flag(msg.Options, optMessageSetWireFormat)
	msg.Deprecated = flag(msg.Options, optDeprecated)
	msg.IsMapEntry = flag(msg.Options, optMapEntry)

	for _, f := range ms.fields {
		b.interpretField(f)
	}
	for i, op := range ms.proto.GetOneofDecl() {
		if i < len(msg.Oneofs) {
			msg.Oneofs[i].Options = b.interpret(fs, oneofOptions, op.GetOptions(), msg.Name,
				srcinfo.Child(ms.path, srcinfo.MessageOneof, int32(i), srcinfo.OneofOptions))
		}
	}
	for i, r := range ms.proto.GetExtensionRange() {
		if i < len(msg.ExtensionRanges) {
			msg.ExtensionRanges[i].Options = b.interpret(fs, extensionRangeOptions, r.GetOptions(), msg.Name,
				srcinfo.Child(ms.path, srcinfo.MessageExtensionRange, int32(i), srcinfo.ExtensionRangeOpts))
		}
	}
}

// interpretField interprets field options and derives the packed and
// deprecated flags. Repeated packable fields outside proto2 are packed unless
// an option says otherwise.
func (b *builder) interpretField(f *fieldState) {
	field := f.field
	field.Options = b.interpret(f.file, fieldOptions, f.proto.GetOptions(), f.scope,
		srcinfo.Child(f.path, srcinfo.FieldOptions))
	field.Deprecated = flag(field.Options, optDeprecated)
	if packed, ok := field.Options.Bool(optPacked); ok {
		field.IsPacked = packed && field.IsRepeated() && field.Kind.IsPackable()
	} else {
		field.IsPacked = f.file.Syntax != typegraph.Proto2 && field.IsRepeated() && field.Kind.IsPackable()
	}
}

func (b *builder) interpretEnum(es *enumState) {
	fs, e := es.file, es.enum
	e.Options = b.interpret(fs, enumOptions, es.proto.GetOptions(), e.Name,
		srcinfo.Child(es.path, srcinfo.EnumOptions))
	e.AllowAlias = flag(e.Options, optAllowAlias)
	e.Deprecated = flag(e.Options, optDeprecated)

	scope := names.ParentScope(e.Name)
	for _, v := range e.Values {
		if v.Index >= len(es.proto.GetValue()) {
			continue
		}
		v.Options = b.interpret(fs, enumValueOptions, es.proto.GetValue()[v.Index].GetOptions(), scope,
			srcinfo.Child(es.path, srcinfo.EnumValue, int32(v.Index), srcinfo.EnumValueOptions))
	}
}

func flag(mv *typegraph.MessageValue, number int32) bool {
	v, _ := mv.Bool(number)
	return v
}
