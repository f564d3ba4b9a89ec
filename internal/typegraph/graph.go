// Package typegraph holds every message, enum, extension and service of a
// descriptor pool in an arena addressed by dense type ids. Cross references
// between definitions are ids, never pointers, so the graph has no ownership
// cycles. Lookup by name lives in the names package.
package typegraph

import (
	"slices"
)

// TypeID is a dense, stable index into a Graph. Ids below the number of
// scalar kinds name the scalars themselves.
type TypeID uint32

// TypeKind tags the variant held by a Type
type TypeKind uint8

const (
	TypeScalar TypeKind = iota
	TypeMessage
	TypeEnum
)

func (k TypeKind) String() string {
	switch k {
	case TypeMessage:
		return "message"
	case TypeEnum:
		return "enum"
	default:
		return "scalar"
	}
}

// Type is one arena entry. Exactly one of Scalar, Message or Enum is
// meaningful, selected by Kind.
type Type struct {
	ID      TypeID
	Kind    TypeKind
	Name    string
	Scalar  Kind
	Message *Message
	Enum    *Enum
}

// Graph is the type arena. A graph is mutable while a pool is being built and
// read-only afterwards; Derive produces a writable child sharing every
// existing entry.
type Graph struct {
	types      []*Type
	extensions []*Extension
	services   []*Service

	// owned marks the entries created or cloned by this graph; everything
	// else is shared with the parent and must be cloned before mutation
	owned map[TypeID]bool
}

var scalarTypes = func() []*Type {
	types := make([]*Type, numScalars)
	for k := 0; k < numScalars; k++ {
		types[k] = &Type{ID: TypeID(k), Kind: TypeScalar, Name: Kind(k).String(), Scalar: Kind(k)}
	}
	return types
}()

// New returns a graph holding only the scalar kinds
func New() *Graph {
	types := make([]*Type, numScalars)
	copy(types, scalarTypes)
	return &Graph{
		types: types,
		owned: make(map[TypeID]bool),
	}
}

// Derive returns a child graph for incremental extension. The child shares
// every entry of g; g is never modified through the child.
func (g *Graph) Derive() *Graph {
	return &Graph{
		types:      slices.Clone(g.types),
		extensions: slices.Clone(g.extensions),
		services:   slices.Clone(g.services),
		owned:      make(map[TypeID]bool),
	}
}

// Register allocates a new message or enum entry and returns its id
func (g *Graph) Register(kind TypeKind, fullName string) TypeID {
	id := TypeID(len(g.types))
	t := &Type{ID: id, Kind: kind, Name: fullName}
	switch kind {
	case TypeMessage:
		t.Message = &Message{ID: id, Name: fullName}
	case TypeEnum:
		t.Enum = &Enum{ID: id, Name: fullName}
	}
	g.types = append(g.types, t)
	g.markOwned(id)
	return id
}

func (g *Graph) markOwned(id TypeID) {
	if g.owned == nil {
		g.owned = make(map[TypeID]bool)
	}
	g.owned[id] = true
}

// Resolve returns the entry for id, or nil when id is out of range
func (g *Graph) Resolve(id TypeID) *Type {
	if int(id) >= len(g.types) {
		return nil
	}
	return g.types[id]
}

// Message returns the message stored at id, or nil
func (g *Graph) Message(id TypeID) *Message {
	if t := g.Resolve(id); t != nil {
		return t.Message
	}
	return nil
}

// Enum returns the enum stored at id, or nil
func (g *Graph) Enum(id TypeID) *Enum {
	if t := g.Resolve(id); t != nil {
		return t.Enum
	}
	return nil
}

// MutableMessage returns a message that may be modified. Messages inherited
// from a parent graph are cloned first so the parent stays unchanged.
func (g *Graph) MutableMessage(id TypeID) *Message {
	t := g.Resolve(id)
	if t == nil || t.Message == nil {
		return nil
	}
	if g.owned[id] {
		return t.Message
	}
	clone := *t
	clone.Message = t.Message.Clone()
	g.types[id] = &clone
	g.markOwned(id)
	return clone.Message
}

// Len returns the number of entries, scalars included
func (g *Graph) Len() int {
	return len(g.types)
}

// Types returns every entry in id order. The slice must not be modified.
func (g *Graph) Types() []*Type {
	return g.types
}

// AddExtension records an extension and registers it on its extendee.
// It returns the extension's index.
func (g *Graph) AddExtension(ext *Extension) int {
	idx := len(g.extensions)
	g.extensions = append(g.extensions, ext)
	if m := g.MutableMessage(ext.Extendee); m != nil {
		m.Extensions = append(m.Extensions, idx)
	}
	return idx
}

// AttachExtension registers a previously added extension on its extendee,
// once the extendee has been resolved
func (g *Graph) AttachExtension(idx int) {
	ext := g.Extension(idx)
	if ext == nil {
		return
	}
	if m := g.MutableMessage(ext.Extendee); m != nil && !slices.Contains(m.Extensions, idx) {
		m.Extensions = append(m.Extensions, idx)
	}
}

// Extension returns the extension at idx
func (g *Graph) Extension(idx int) *Extension {
	if idx < 0 || idx >= len(g.extensions) {
		return nil
	}
	return g.extensions[idx]
}

// Extensions returns every extension in registration order
func (g *Graph) Extensions() []*Extension {
	return g.extensions
}

// ExtensionsOf returns the extensions registered on a message, in registration order
func (g *Graph) ExtensionsOf(id TypeID) []*Extension {
	m := g.Message(id)
	if m == nil {
		return nil
	}
	out := make([]*Extension, 0, len(m.Extensions))
	for _, idx := range m.Extensions {
		out = append(out, g.extensions[idx])
	}
	return out
}

// ExtensionByNumber finds the extension of a message with the given number
func (g *Graph) ExtensionByNumber(id TypeID, number int32) *Extension {
	m := g.Message(id)
	if m == nil {
		return nil
	}
	for _, idx := range m.Extensions {
		if ext := g.extensions[idx]; ext.Number == number {
			return ext
		}
	}
	return nil
}

// AddService records a service and returns its index
func (g *Graph) AddService(s *Service) int {
	g.services = append(g.services, s)
	return len(g.services) - 1
}

// Services returns every service in registration order
func (g *Graph) Services() []*Service {
	return g.services
}

// Shrink drops construction-only state and spare capacity. The graph must
// not be mutated afterwards; use Derive to extend it.
func (g *Graph) Shrink() {
	for id := range g.owned {
		if m := g.types[id].Message; m != nil {
			m.shrink()
		}
	}
	g.owned = nil
	g.types = slices.Clip(g.types)
	g.extensions = slices.Clip(g.extensions)
	g.services = slices.Clip(g.services)
}
