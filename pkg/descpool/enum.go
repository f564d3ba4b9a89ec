package descpool

import (
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// EnumType is an enum definition of a pool
type EnumType struct {
	pool *Pool
	id   typegraph.TypeID
}

func (e EnumType) def() *typegraph.Enum {
	return e.pool.res.Graph.Enum(e.id)
}

// Name returns the simple name
func (e EnumType) Name() string { return names.ShortName(e.def().Name) }

// FullName returns the fully-qualified name
func (e EnumType) FullName() string { return e.def().Name }

// ParentFile returns the file declaring the enum
func (e EnumType) ParentFile() FileType {
	f, _ := e.pool.File(e.def().File)
	return f
}

// ParentMessage returns the message an enum is nested in
func (e EnumType) ParentMessage() (MessageType, bool) {
	return e.pool.Message(names.ParentScope(e.def().Name))
}

// Values returns the values in declaration order
func (e EnumType) Values() []EnumValue {
	def := e.def()
	out := make([]EnumValue, len(def.Values))
	for i := range def.Values {
		out[i] = EnumValue{pool: e.pool, enum: e.id, index: i}
	}
	return out
}

// Value returns the first value declared with number
func (e EnumType) Value(number int32) (EnumValue, bool) {
	return e.value(e.def().ValueByNumber(number))
}

// ValueByName returns the value with the given simple name
func (e EnumType) ValueByName(name string) (EnumValue, bool) {
	return e.value(e.def().ValueByName(name))
}

func (e EnumType) value(v *typegraph.EnumValue) (EnumValue, bool) {
	if v == nil {
		return EnumValue{}, false
	}
	for i, candidate := range e.def().Values {
		if candidate == v {
			return EnumValue{pool: e.pool, enum: e.id, index: i}, true
		}
	}
	return EnumValue{}, false
}

// DefaultValue returns the first declared value
func (e EnumType) DefaultValue() EnumValue {
	return EnumValue{pool: e.pool, enum: e.id, index: 0}
}

// IsClosed reports whether unknown numbers are rejected on decode
func (e EnumType) IsClosed() bool { return e.def().IsClosed() }

// AllowsAlias reports whether values may share numbers
func (e EnumType) AllowsAlias() bool { return e.def().AllowAlias }

// IsDeprecated reports the deprecated option
func (e EnumType) IsDeprecated() bool { return e.def().Deprecated }

// ReservedRanges returns the reserved number ranges, inclusive
func (e EnumType) ReservedRanges() []Range {
	return append([]Range(nil), e.def().ReservedRanges...)
}

// ReservedNames returns the reserved value names
func (e EnumType) ReservedNames() []string {
	return append([]string(nil), e.def().ReservedNames...)
}

// Options returns the interpreted enum options
func (e EnumType) Options() Options {
	return Options{pool: e.pool, value: e.def().Options}
}

// Equal reports whether both views name the same enum of the same pool
func (e EnumType) Equal(o EnumType) bool {
	return e.pool.same(o.pool) && e.id == o.id
}

// String returns the full name
func (e EnumType) String() string { return e.FullName() }

// EnumValue is one value of an enum
type EnumValue struct {
	pool  *Pool
	enum  typegraph.TypeID
	index int
}

func (v EnumValue) def() *typegraph.EnumValue {
	return v.pool.res.Graph.Enum(v.enum).Values[v.index]
}

// Name returns the simple name
func (v EnumValue) Name() string { return v.def().Name }

// FullName returns the fully-qualified name. Values are scoped beside their
// enum, so this is the enum's scope joined with the value name.
func (v EnumValue) FullName() string { return v.def().FullName }

// Number returns the value number
func (v EnumValue) Number() int32 { return v.def().Number }

// Index returns the position in the enum's declaration
func (v EnumValue) Index() int { return v.index }

// ParentEnum returns the enum declaring the value
func (v EnumValue) ParentEnum() EnumType {
	return EnumType{pool: v.pool, id: v.enum}
}

// Options returns the interpreted value options
func (v EnumValue) Options() Options {
	return Options{pool: v.pool, value: v.def().Options}
}

// Equal reports whether both views name the same value of the same pool
func (v EnumValue) Equal(o EnumValue) bool {
	return v.pool.same(o.pool) && v.enum == o.enum && v.index == o.index
}

// String returns the full name
func (v EnumValue) String() string { return v.FullName() }
