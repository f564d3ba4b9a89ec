package descpool

import "github.com/conduit-lang/protopool/internal/typegraph"

// ExtensionType is an extension field declared anywhere in a pool
type ExtensionType struct {
	pool  *Pool
	index int
}

func (x ExtensionType) def() *typegraph.Extension {
	return x.pool.res.Graph.Extension(x.index)
}

// Number returns the field number
func (x ExtensionType) Number() int32 { return x.def().Number }

// Name returns the simple name
func (x ExtensionType) Name() string { return x.def().Name }

// FullName returns the fully-qualified name
func (x ExtensionType) FullName() string { return x.def().FullName }

// JSONName returns the JSON name
func (x ExtensionType) JSONName() string { return x.def().JSONName }

// ContainingMessage returns the message being extended
func (x ExtensionType) ContainingMessage() MessageType {
	return MessageType{pool: x.pool, id: x.def().Extendee}
}

// ParentMessage returns the message the extension is declared in, when it
// is not declared at file level
func (x ExtensionType) ParentMessage() (MessageType, bool) {
	return x.pool.Message(x.def().Scope)
}

// ParentFile returns the file declaring the extension
func (x ExtensionType) ParentFile() FileType {
	f, _ := x.pool.File(x.def().File)
	return f
}

// IsGroup reports whether the extension is a group
func (x ExtensionType) IsGroup() bool { return x.def().IsGroup }

// IsList reports whether the extension is repeated
func (x ExtensionType) IsList() bool { return isList(x.pool, &x.def().Field) }

// IsPacked reports whether the extension uses packed encoding
func (x ExtensionType) IsPacked() bool { return x.def().IsPacked }

// Cardinality returns whether the extension is optional or repeated
func (x ExtensionType) Cardinality() Cardinality { return x.def().Cardinality }

// SupportsPresence reports whether the extension distinguishes unset from
// the zero value
func (x ExtensionType) SupportsPresence() bool { return x.def().SupportsPresence }

// Kind returns the extension's field type
func (x ExtensionType) Kind() Kind { return x.def().Kind }

// Message returns the message type of a message or group extension
func (x ExtensionType) Message() (MessageType, bool) { return messageOf(x.pool, &x.def().Field) }

// Enum returns the enum type of an enum extension
func (x ExtensionType) Enum() (EnumType, bool) { return enumOf(x.pool, &x.def().Field) }

// DefaultValue returns the explicit default or the zero value
func (x ExtensionType) DefaultValue() Value { return defaultOf(x.pool, &x.def().Field) }

// Options returns the interpreted field options
func (x ExtensionType) Options() Options {
	return Options{pool: x.pool, value: x.def().Options}
}

// Equal reports whether both views name the same extension of the same pool
func (x ExtensionType) Equal(o ExtensionType) bool {
	return x.pool.same(o.pool) && x.index == o.index
}

// String returns the full name
func (x ExtensionType) String() string { return x.FullName() }

