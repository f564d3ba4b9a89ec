// Package builder turns batches of file descriptor records into a validated
// type graph. Construction runs in passes over the whole batch: file checks,
// name registration, reference resolution, option interpretation and
// validation. Every pass keeps going after a problem so that a single build
// reports everything it can find.
package builder

import (
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/options"
	"github.com/conduit-lang/protopool/internal/srcinfo"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// File is one accepted file record and the declarations it contributed
type File struct {
	// Proto is the retained record, including synthesized oneofs
	Proto   *descriptorpb.FileDescriptorProto
	Syntax  typegraph.Syntax
	Options *typegraph.MessageValue

	// Messages and Enums are the top-level types in declaration order
	Messages []typegraph.TypeID
	Enums    []typegraph.TypeID
	// Services and Extensions index the graph's lists
	Services   []int
	Extensions []int
}

// Name returns the file name
func (f *File) Name() string {
	return f.Proto.GetName()
}

// Result is the immutable outcome of a successful build
type Result struct {
	Graph *typegraph.Graph
	Table *names.Table
	// Files lists base files first, then each batch in input order
	Files []*File

	byName map[string]*File
}

// File returns the file with the given name, or nil
func (r *Result) File(name string) *File {
	if r == nil {
		return nil
	}
	return r.byName[name]
}

type builder struct {
	logger *zap.Logger
	base   *Result
	graph  *typegraph.Graph
	table  *names.Table

	files  []*fileState
	byName map[string]*fileState
	// generated marks oneofs added to the retained records
	generated map[*descriptorpb.OneofDescriptorProto]bool

	resolver *options.Resolver
	diags    diag.List
}

type fileState struct {
	*File
	index   *srcinfo.Index
	visible map[string]bool

	messages   []*messageState
	enums      []*enumState
	extensions []*extensionState
	services   []*serviceState
}

func (fs *fileState) at(path ...int32) diag.Location {
	return fs.index.Nearest(path...)
}

func (fs *fileState) isVisible(file string) bool {
	return fs.visible[file]
}

type messageState struct {
	file   *fileState
	msg    *typegraph.Message
	proto  *descriptorpb.DescriptorProto
	path   []int32
	fields []*fieldState
}

type fieldState struct {
	file  *fileState
	field *typegraph.Field
	proto *descriptorpb.FieldDescriptorProto
	path  []int32
	// scope is where the field's type name is resolved from
	scope    string
	resolved bool
}

type extensionState struct {
	fieldState
	ext *typegraph.Extension
	idx int
}

type enumState struct {
	file  *fileState
	enum  *typegraph.Enum
	proto *descriptorpb.EnumDescriptorProto
	path  []int32
}

type serviceState struct {
	file    *fileState
	svc     *typegraph.Service
	proto   *descriptorpb.ServiceDescriptorProto
	path    []int32
	index   int
	methods []*methodState
}

type methodState struct {
	method *typegraph.Method
	proto  *descriptorpb.MethodDescriptorProto
	path   []int32
}

// Build constructs a new result from base, which may be nil, and a batch of
// file records. The records are cloned; the caller keeps ownership of batch.
// On failure the returned error is a diag.List and base is left untouched.
func Build(base *Result, batch []*descriptorpb.FileDescriptorProto, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &builder{
		logger:    logger,
		base:      base,
		byName:    make(map[string]*fileState),
		generated: make(map[*descriptorpb.OneofDescriptorProto]bool),
	}
	if base != nil {
		b.graph = base.Graph.Derive()
		b.table = names.NewTable(base.Table)
	} else {
		b.graph = typegraph.New()
		b.table = names.NewTable(nil)
	}

	start := time.Now()
	b.pass("files", func() { b.checkFiles(batch) })
	b.pass("register", b.register)
	b.pass("resolve", b.resolve)
	b.pass("options", b.interpretOptions)
	b.pass("validate", b.validate)

	b.diags = b.diags.Dedup()
	if len(b.diags) > 0 {
		logger.Debug("build failed",
			zap.Int("files", len(b.files)),
			zap.Int("diagnostics", len(b.diags)),
			zap.Duration("elapsed", time.Since(start)))
		return nil, b.diags
	}

	res := b.finish()
	logger.Debug("build finished",
		zap.Int("files", len(b.files)),
		zap.Int("types", res.Graph.Len()),
		zap.Int("extensions", len(res.Graph.Extensions())),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (b *builder) pass(name string, fn func()) {
	start := time.Now()
	before := len(b.diags)
	fn()
	b.logger.Debug("pass finished",
		zap.String("pass", name),
		zap.Int("diagnostics", len(b.diags)-before),
		zap.Duration("elapsed", time.Since(start)))
}

// lookupFile finds a file of the batch or the base
func (b *builder) lookupFile(name string) *File {
	if fs, ok := b.byName[name]; ok {
		return fs.File
	}
	return b.base.File(name)
}

// finish builds lookup indices, drops construction state and assembles the
// result
func (b *builder) finish() *Result {
	for _, fs := range b.files {
		for _, ms := range fs.messages {
			ms.msg.Finalize()
		}
		for _, es := range fs.enums {
			es.enum.Finalize()
		}
	}
	b.graph.Shrink()

	res := &Result{
		Graph:  b.graph,
		Table:  b.table,
		byName: make(map[string]*File),
	}
	if b.base != nil {
		res.Files = append(res.Files, b.base.Files...)
		for name, f := range b.base.byName {
			res.byName[name] = f
		}
	}
	for _, fs := range b.files {
		res.Files = append(res.Files, fs.File)
		res.byName[fs.Name()] = fs.File
	}
	return res
}

// clone copies a record so the retained copy can be amended
func clone(fd *descriptorpb.FileDescriptorProto) *descriptorpb.FileDescriptorProto {
	return proto.Clone(fd).(*descriptorpb.FileDescriptorProto)
}
