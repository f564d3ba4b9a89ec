package descpool

import (
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// ServiceType is a service definition of a pool
type ServiceType struct {
	pool  *Pool
	index int
}

func (s ServiceType) def() *typegraph.Service {
	return s.pool.res.Graph.Services()[s.index]
}

// Name returns the simple name
func (s ServiceType) Name() string { return names.ShortName(s.def().Name) }

// FullName returns the fully-qualified name
func (s ServiceType) FullName() string { return s.def().Name }

// ParentFile returns the file declaring the service
func (s ServiceType) ParentFile() FileType {
	f, _ := s.pool.File(s.def().File)
	return f
}

// Methods returns the methods in declaration order
func (s ServiceType) Methods() []MethodType {
	def := s.def()
	out := make([]MethodType, len(def.Methods))
	for i := range def.Methods {
		out[i] = MethodType{pool: s.pool, service: s.index, index: i}
	}
	return out
}

// Method returns the method with the given simple name
func (s ServiceType) Method(name string) (MethodType, bool) {
	for i, m := range s.def().Methods {
		if m.Name == name {
			return MethodType{pool: s.pool, service: s.index, index: i}, true
		}
	}
	return MethodType{}, false
}

// Options returns the interpreted service options
func (s ServiceType) Options() Options {
	return Options{pool: s.pool, value: s.def().Options}
}

// Equal reports whether both views name the same service of the same pool
func (s ServiceType) Equal(o ServiceType) bool {
	return s.pool.same(o.pool) && s.index == o.index
}

// String returns the full name
func (s ServiceType) String() string { return s.FullName() }

// MethodType is one RPC of a service
type MethodType struct {
	pool    *Pool
	service int
	index   int
}

func (m MethodType) def() *typegraph.Method {
	return m.pool.res.Graph.Services()[m.service].Methods[m.index]
}

// Name returns the simple name
func (m MethodType) Name() string { return m.def().Name }

// FullName returns the fully-qualified name
func (m MethodType) FullName() string { return m.def().FullName }

// ParentService returns the service declaring the method
func (m MethodType) ParentService() ServiceType {
	return ServiceType{pool: m.pool, index: m.service}
}

// Input returns the request message type
func (m MethodType) Input() MessageType {
	return MessageType{pool: m.pool, id: m.def().Input}
}

// Output returns the response message type
func (m MethodType) Output() MessageType {
	return MessageType{pool: m.pool, id: m.def().Output}
}

// IsClientStreaming reports whether the client sends a stream
func (m MethodType) IsClientStreaming() bool { return m.def().ClientStreaming }

// IsServerStreaming reports whether the server sends a stream
func (m MethodType) IsServerStreaming() bool { return m.def().ServerStreaming }

// Options returns the interpreted method options
func (m MethodType) Options() Options {
	return Options{pool: m.pool, value: m.def().Options}
}

// Equal reports whether both views name the same method of the same pool
func (m MethodType) Equal(o MethodType) bool {
	return m.pool.same(o.pool) && m.service == o.service && m.index == o.index
}

// String returns the full name
func (m MethodType) String() string { return m.FullName() }
