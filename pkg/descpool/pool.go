// Package descpool builds validated pools of protobuf type definitions from
// file descriptor records and answers queries about them.
//
// A Pool is immutable. Extending a pool returns a new pool that shares every
// existing definition with its base; the base stays valid and unchanged.
// Construction either succeeds completely or returns every problem found as
// a diag.List.
package descpool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/builder"
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/typegraph"
	"github.com/conduit-lang/protopool/internal/wkt"
)

// Pool is a validated, cross-referenced set of protobuf definitions
type Pool struct {
	id     uuid.UUID
	res    *builder.Result
	logger *zap.Logger
}

// Option configures pool construction
type Option func(*settings)

type settings struct {
	logger    *zap.Logger
	wellKnown bool
}

// WithLogger sets the logger used while building. Pools log nothing by default.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithWellKnownTypes builds on top of the shared well-known types pool, so
// files may import google/protobuf/*.proto without supplying them
func WithWellKnownTypes() Option {
	return func(s *settings) {
		s.wellKnown = true
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// New builds a pool from file records. The records are copied; the caller
// keeps ownership of files.
func New(files []*descriptorpb.FileDescriptorProto, opts ...Option) (*Pool, error) {
	s := newSettings(opts)
	var base *builder.Result
	if s.wellKnown {
		wk, err := WellKnownTypes()
		if err != nil {
			return nil, err
		}
		base = wk.res
	}
	res, err := builder.Build(base, files, s.logger)
	if err != nil {
		return nil, err
	}
	return newPool(res, s.logger), nil
}

// Decode builds a pool from an encoded FileDescriptorSet
func Decode(data []byte, opts ...Option) (*Pool, error) {
	set, err := decodeSet(data)
	if err != nil {
		return nil, err
	}
	return New(set.GetFile(), opts...)
}

func decodeSet(data []byte) (*descriptorpb.FileDescriptorSet, error) {
	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("failed to decode file descriptor set: %w", err)
	}
	return set, nil
}

func newPool(res *builder.Result, logger *zap.Logger) *Pool {
	p := &Pool{id: uuid.New(), res: res, logger: logger}
	logger.Debug("pool created",
		zap.String("pool", p.id.String()),
		zap.Int("files", len(res.Files)))
	return p
}

var (
	wellKnownOnce sync.Once
	wellKnownPool *Pool
	wellKnownErr  error
)

// WellKnownTypes returns the pool of well-known types bundled with the
// protobuf runtime. It is built once and shared.
func WellKnownTypes() (*Pool, error) {
	wellKnownOnce.Do(func() {
		wellKnownPool, wellKnownErr = New(wkt.Files())
		if wellKnownErr != nil {
			wellKnownErr = fmt.Errorf("failed to build well-known types: %w", wellKnownErr)
		}
	})
	return wellKnownPool, wellKnownErr
}

// Extend returns a pool holding p's files followed by files. Files already
// in p are skipped when identical. An empty batch, or one adding nothing
// new, returns p itself.
func (p *Pool) Extend(files ...*descriptorpb.FileDescriptorProto) (*Pool, error) {
	if len(files) == 0 {
		return p, nil
	}
	res, err := builder.Build(p.res, files, p.logger)
	if err != nil {
		return nil, err
	}
	if len(res.Files) == len(p.res.Files) {
		return p, nil
	}
	return newPool(res, p.logger), nil
}

// DecodeExtend extends p with the files of an encoded FileDescriptorSet
func (p *Pool) DecodeExtend(data []byte) (*Pool, error) {
	set, err := decodeSet(data)
	if err != nil {
		return nil, err
	}
	return p.Extend(set.GetFile()...)
}

// ID identifies the pool. Views from pools with different ids never compare
// equal.
func (p *Pool) ID() uuid.UUID {
	return p.id
}

// FileDescriptorSet returns copies of the retained records, base files
// first, including the oneofs synthesized for proto3 optional fields
func (p *Pool) FileDescriptorSet() *descriptorpb.FileDescriptorSet {
	set := &descriptorpb.FileDescriptorSet{File: make([]*descriptorpb.FileDescriptorProto, 0, len(p.res.Files))}
	for _, f := range p.res.Files {
		set.File = append(set.File, proto.Clone(f.Proto).(*descriptorpb.FileDescriptorProto))
	}
	return set
}

// Encode serializes the retained records as a FileDescriptorSet
func (p *Pool) Encode() ([]byte, error) {
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(p.FileDescriptorSet())
	if err != nil {
		return nil, fmt.Errorf("failed to encode file descriptor set: %w", err)
	}
	return b, nil
}

// Files returns every file in construction order
func (p *Pool) Files() []FileType {
	out := make([]FileType, len(p.res.Files))
	for i, f := range p.res.Files {
		out[i] = FileType{pool: p, file: f}
	}
	return out
}

// File returns the file with the given name
func (p *Pool) File(name string) (FileType, bool) {
	f := p.res.File(name)
	if f == nil {
		return FileType{}, false
	}
	return FileType{pool: p, file: f}, true
}

func (p *Pool) lookup(name string, kind names.SymbolKind) (*names.Symbol, bool) {
	sym, ok := p.res.Table.Lookup(strings.TrimPrefix(name, "."))
	if !ok || sym.Kind != kind {
		return nil, false
	}
	return sym, true
}

// Message finds a message by fully-qualified name; a leading dot is optional
func (p *Pool) Message(name string) (MessageType, bool) {
	sym, ok := p.lookup(name, names.SymMessage)
	if !ok {
		return MessageType{}, false
	}
	return MessageType{pool: p, id: sym.Type}, true
}

// Enum finds an enum by fully-qualified name
func (p *Pool) Enum(name string) (EnumType, bool) {
	sym, ok := p.lookup(name, names.SymEnum)
	if !ok {
		return EnumType{}, false
	}
	return EnumType{pool: p, id: sym.Type}, true
}

// Service finds a service by fully-qualified name
func (p *Pool) Service(name string) (ServiceType, bool) {
	sym, ok := p.lookup(name, names.SymService)
	if !ok {
		return ServiceType{}, false
	}
	return ServiceType{pool: p, index: sym.Index}, true
}

// Extension finds an extension by fully-qualified name
func (p *Pool) Extension(name string) (ExtensionType, bool) {
	sym, ok := p.lookup(name, names.SymExtension)
	if !ok {
		return ExtensionType{}, false
	}
	return ExtensionType{pool: p, index: sym.Index}, true
}

// Messages returns every message, map entries included, in definition order
func (p *Pool) Messages() []MessageType {
	var out []MessageType
	for _, t := range p.res.Graph.Types() {
		if t.Kind == typegraph.TypeMessage {
			out = append(out, MessageType{pool: p, id: t.ID})
		}
	}
	return out
}

// Enums returns every enum in definition order
func (p *Pool) Enums() []EnumType {
	var out []EnumType
	for _, t := range p.res.Graph.Types() {
		if t.Kind == typegraph.TypeEnum {
			out = append(out, EnumType{pool: p, id: t.ID})
		}
	}
	return out
}

// Services returns every service in definition order
func (p *Pool) Services() []ServiceType {
	svcs := p.res.Graph.Services()
	out := make([]ServiceType, len(svcs))
	for i := range svcs {
		out[i] = ServiceType{pool: p, index: i}
	}
	return out
}

// Extensions returns every extension in definition order
func (p *Pool) Extensions() []ExtensionType {
	exts := p.res.Graph.Extensions()
	out := make([]ExtensionType, len(exts))
	for i := range exts {
		out[i] = ExtensionType{pool: p, index: i}
	}
	return out
}

func (p *Pool) same(o *Pool) bool {
	return p != nil && o != nil && p.id == o.id
}
