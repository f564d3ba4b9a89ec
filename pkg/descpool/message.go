package descpool

import (
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// MessageType is a message definition of a pool
type MessageType struct {
	pool *Pool
	id   typegraph.TypeID
}

func (m MessageType) def() *typegraph.Message {
	return m.pool.res.Graph.Message(m.id)
}

// Pool returns the pool the message belongs to
func (m MessageType) Pool() *Pool {
	return m.pool
}

// Name returns the simple name
func (m MessageType) Name() string {
	return names.ShortName(m.def().Name)
}

// FullName returns the fully-qualified name without a leading dot
func (m MessageType) FullName() string {
	return m.def().Name
}

// ParentFile returns the file declaring the message
func (m MessageType) ParentFile() FileType {
	f, _ := m.pool.File(m.def().File)
	return f
}

// ParentMessage returns the enclosing message of a nested message
func (m MessageType) ParentMessage() (MessageType, bool) {
	def := m.def()
	if !def.HasParent {
		return MessageType{}, false
	}
	return MessageType{pool: m.pool, id: def.Parent}, true
}

// Fields returns the fields ordered by number
func (m MessageType) Fields() []FieldType {
	def := m.def()
	out := make([]FieldType, len(def.Fields))
	for i, f := range def.Fields {
		out[i] = FieldType{pool: m.pool, message: m.id, number: f.Number}
	}
	return out
}

// Field returns the field with the given number
func (m MessageType) Field(number int32) (FieldType, bool) {
	return m.field(m.def().FieldByNumber(number))
}

// FieldByName returns the field with the given simple name
func (m MessageType) FieldByName(name string) (FieldType, bool) {
	return m.field(m.def().FieldByName(name))
}

// FieldByJSONName returns the field with the given JSON name
func (m MessageType) FieldByJSONName(name string) (FieldType, bool) {
	return m.field(m.def().FieldByJSONName(name))
}

func (m MessageType) field(f *typegraph.Field) (FieldType, bool) {
	if f == nil {
		return FieldType{}, false
	}
	return FieldType{pool: m.pool, message: m.id, number: f.Number}, true
}

// Oneofs returns the oneofs in declaration order, synthetic ones last
func (m MessageType) Oneofs() []OneofType {
	def := m.def()
	out := make([]OneofType, len(def.Oneofs))
	for i := range def.Oneofs {
		out[i] = OneofType{pool: m.pool, message: m.id, index: i}
	}
	return out
}

// Extensions returns the extensions registered on this message anywhere in
// the pool
func (m MessageType) Extensions() []ExtensionType {
	def := m.def()
	out := make([]ExtensionType, len(def.Extensions))
	for i, idx := range def.Extensions {
		out[i] = ExtensionType{pool: m.pool, index: idx}
	}
	return out
}

// Extension returns the extension registered with the given number
func (m MessageType) Extension(number int32) (ExtensionType, bool) {
	for _, idx := range m.def().Extensions {
		if m.pool.res.Graph.Extension(idx).Number == number {
			return ExtensionType{pool: m.pool, index: idx}, true
		}
	}
	return ExtensionType{}, false
}

// ReservedRanges returns the reserved number ranges, inclusive
func (m MessageType) ReservedRanges() []Range {
	return append([]Range(nil), m.def().ReservedRanges...)
}

// ReservedNames returns the reserved field names
func (m MessageType) ReservedNames() []string {
	return append([]string(nil), m.def().ReservedNames...)
}

// ExtensionRanges returns the ranges open to extensions, inclusive
func (m MessageType) ExtensionRanges() []Range {
	def := m.def()
	out := make([]Range, len(def.ExtensionRanges))
	for i, r := range def.ExtensionRanges {
		out[i] = r.Range
	}
	return out
}

// IsExtensionNumber reports whether n lies in an extension range
func (m MessageType) IsExtensionNumber(n int32) bool {
	return m.def().InExtensionRange(n)
}

// IsMapEntry reports whether the message stands in for a map field
func (m MessageType) IsMapEntry() bool {
	return m.def().IsMapEntry
}

// MapKey returns the key field of a map entry
func (m MessageType) MapKey() (FieldType, bool) {
	if !m.IsMapEntry() {
		return FieldType{}, false
	}
	return m.Field(1)
}

// MapValue returns the value field of a map entry
func (m MessageType) MapValue() (FieldType, bool) {
	if !m.IsMapEntry() {
		return FieldType{}, false
	}
	return m.Field(2)
}

// IsMessageSet reports whether the message uses the message set wire format
func (m MessageType) IsMessageSet() bool {
	return m.def().MessageSetWireFormat
}

// IsDeprecated reports the deprecated option
func (m MessageType) IsDeprecated() bool {
	return m.def().Deprecated
}

// Options returns the interpreted message options
func (m MessageType) Options() Options {
	return Options{pool: m.pool, value: m.def().Options}
}

// Equal reports whether both views name the same message of the same pool
func (m MessageType) Equal(o MessageType) bool {
	return m.pool.same(o.pool) && m.id == o.id
}

// String returns the full name
func (m MessageType) String() string {
	return m.FullName()
}

// FieldType is a field of a message
type FieldType struct {
	pool    *Pool
	message typegraph.TypeID
	number  int32
}

func (f FieldType) def() *typegraph.Field {
	return f.pool.res.Graph.Message(f.message).FieldByNumber(f.number)
}

// Number returns the field number
func (f FieldType) Number() int32 {
	return f.number
}

// Name returns the simple name
func (f FieldType) Name() string {
	return f.def().Name
}

// FullName returns the fully-qualified name
func (f FieldType) FullName() string {
	return f.def().FullName
}

// JSONName returns the JSON name, custom or derived
func (f FieldType) JSONName() string {
	return f.def().JSONName
}

// ContainingMessage returns the message declaring the field
func (f FieldType) ContainingMessage() MessageType {
	return MessageType{pool: f.pool, id: f.message}
}

// ContainingOneof returns the oneof the field belongs to, synthetic ones
// included
func (f FieldType) ContainingOneof() (OneofType, bool) {
	def := f.def()
	if def.Oneof < 0 {
		return OneofType{}, false
	}
	return OneofType{pool: f.pool, message: f.message, index: def.Oneof}, true
}

// IsGroup reports whether the field is a group
func (f FieldType) IsGroup() bool { return f.def().IsGroup }

// IsList reports whether the field is repeated and not a map
func (f FieldType) IsList() bool { return isList(f.pool, f.def()) }

// IsMap reports whether the field is a map
func (f FieldType) IsMap() bool { return isMap(f.pool, f.def()) }

// IsPacked reports whether the field uses packed encoding
func (f FieldType) IsPacked() bool { return f.def().IsPacked }

// Cardinality returns whether the field is optional, required or repeated
func (f FieldType) Cardinality() Cardinality { return f.def().Cardinality }

// SupportsPresence reports whether the field distinguishes unset from the
// zero value
func (f FieldType) SupportsPresence() bool { return f.def().SupportsPresence }

// Kind returns the field type
func (f FieldType) Kind() Kind { return f.def().Kind }

// Message returns the message type of a message or group field
func (f FieldType) Message() (MessageType, bool) { return messageOf(f.pool, f.def()) }

// Enum returns the enum type of an enum field
func (f FieldType) Enum() (EnumType, bool) { return enumOf(f.pool, f.def()) }

// DefaultValue returns the explicit default, or the zero value of the
// field's kind. Enum fields default to their first value.
func (f FieldType) DefaultValue() Value { return defaultOf(f.pool, f.def()) }

// HasDefault reports whether the field declares an explicit default
func (f FieldType) HasDefault() bool { return f.def().Default != nil }

// IsDeprecated reports the deprecated option
func (f FieldType) IsDeprecated() bool { return f.def().Deprecated }

// Options returns the interpreted field options
func (f FieldType) Options() Options {
	return Options{pool: f.pool, value: f.def().Options}
}

// Equal reports whether both views name the same field of the same pool
func (f FieldType) Equal(o FieldType) bool {
	return f.pool.same(o.pool) && f.message == o.message && f.number == o.number
}

// String returns the full name
func (f FieldType) String() string {
	return f.FullName()
}

func isMap(p *Pool, f *typegraph.Field) bool {
	if f.Kind != typegraph.KindMessage || !f.IsRepeated() {
		return false
	}
	m := p.res.Graph.Message(f.Type)
	return m != nil && m.IsMapEntry
}

func isList(p *Pool, f *typegraph.Field) bool {
	return f.IsRepeated() && !isMap(p, f)
}

func messageOf(p *Pool, f *typegraph.Field) (MessageType, bool) {
	if !f.Kind.IsMessage() {
		return MessageType{}, false
	}
	return MessageType{pool: p, id: f.Type}, true
}

func enumOf(p *Pool, f *typegraph.Field) (EnumType, bool) {
	if f.Kind != typegraph.KindEnum {
		return EnumType{}, false
	}
	return EnumType{pool: p, id: f.Type}, true
}

func defaultOf(p *Pool, f *typegraph.Field) Value {
	if f.Default != nil {
		return *f.Default
	}
	if f.Kind == typegraph.KindEnum {
		if first := p.res.Graph.Enum(f.Type).Default(); first != nil {
			return typegraph.EnumNumber(first.Number)
		}
	}
	return typegraph.ZeroValue(f.Kind)
}

// OneofType is a oneof of a message
type OneofType struct {
	pool    *Pool
	message typegraph.TypeID
	index   int
}

func (o OneofType) def() *typegraph.Oneof {
	return o.pool.res.Graph.Message(o.message).Oneofs[o.index]
}

// Name returns the simple name
func (o OneofType) Name() string { return o.def().Name }

// FullName returns the fully-qualified name
func (o OneofType) FullName() string { return o.def().FullName }

// Index returns the position among the message's oneofs
func (o OneofType) Index() int { return o.index }

// IsSynthetic reports whether the oneof only gives a proto3 optional field
// explicit presence
func (o OneofType) IsSynthetic() bool { return o.def().Synthetic }

// ContainingMessage returns the message declaring the oneof
func (o OneofType) ContainingMessage() MessageType {
	return MessageType{pool: o.pool, id: o.message}
}

// Fields returns the members in declaration order
func (o OneofType) Fields() []FieldType {
	def := o.def()
	out := make([]FieldType, len(def.Fields))
	for i, n := range def.Fields {
		out[i] = FieldType{pool: o.pool, message: o.message, number: n}
	}
	return out
}

// Options returns the interpreted oneof options
func (o OneofType) Options() Options {
	return Options{pool: o.pool, value: o.def().Options}
}

// Equal reports whether both views name the same oneof of the same pool
func (o OneofType) Equal(other OneofType) bool {
	return o.pool.same(other.pool) && o.message == other.message && o.index == other.index
}
