package descpool

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/builder"
)

// FileType is one file of a pool
type FileType struct {
	pool *Pool
	file *builder.File
}

// Name returns the file name
func (f FileType) Name() string { return f.file.Name() }

// Package returns the package, or "" when the file declares none
func (f FileType) Package() string { return f.file.Proto.GetPackage() }

// Syntax returns the dialect the file was written in
func (f FileType) Syntax() Syntax { return f.file.Syntax }

// Dependencies returns the imported files in import order
func (f FileType) Dependencies() []FileType {
	deps := f.file.Proto.GetDependency()
	out := make([]FileType, 0, len(deps))
	for _, name := range deps {
		if dep, ok := f.pool.File(name); ok {
			out = append(out, dep)
		}
	}
	return out
}

// Messages returns the top-level messages in declaration order
func (f FileType) Messages() []MessageType {
	out := make([]MessageType, len(f.file.Messages))
	for i, id := range f.file.Messages {
		out[i] = MessageType{pool: f.pool, id: id}
	}
	return out
}

// Enums returns the top-level enums in declaration order
func (f FileType) Enums() []EnumType {
	out := make([]EnumType, len(f.file.Enums))
	for i, id := range f.file.Enums {
		out[i] = EnumType{pool: f.pool, id: id}
	}
	return out
}

// Services returns the services in declaration order
func (f FileType) Services() []ServiceType {
	out := make([]ServiceType, len(f.file.Services))
	for i, idx := range f.file.Services {
		out[i] = ServiceType{pool: f.pool, index: idx}
	}
	return out
}

// Extensions returns the extensions declared at file level
func (f FileType) Extensions() []ExtensionType {
	out := make([]ExtensionType, len(f.file.Extensions))
	for i, idx := range f.file.Extensions {
		out[i] = ExtensionType{pool: f.pool, index: idx}
	}
	return out
}

// Options returns the interpreted file options
func (f FileType) Options() Options {
	return Options{pool: f.pool, value: f.file.Options}
}

// Proto returns a copy of the retained record
func (f FileType) Proto() *descriptorpb.FileDescriptorProto {
	return proto.Clone(f.file.Proto).(*descriptorpb.FileDescriptorProto)
}

// Equal reports whether both views name the same file of the same pool
func (f FileType) Equal(o FileType) bool {
	return f.pool.same(o.pool) && f.file == o.file
}

// String returns the file name
func (f FileType) String() string { return f.Name() }
