package typegraph

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Value is a scalar or enum value: a parsed default, or the leaf of an
// interpreted option. The zero Value is a double 0.
type Value struct {
	kind Kind
	bits uint64
	str  string
	raw  []byte
}

// BoolValue returns a bool value
func BoolValue(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.bits = 1
	}
	return v
}

// IntValue returns a signed integer value of the given kind
func IntValue(kind Kind, n int64) Value {
	return Value{kind: kind, bits: uint64(n)}
}

// UintValue returns an unsigned integer value of the given kind
func UintValue(kind Kind, n uint64) Value {
	return Value{kind: kind, bits: n}
}

// FloatValue returns a float or double value
func FloatValue(kind Kind, f float64) Value {
	if kind == KindFloat {
		f = float64(float32(f))
	}
	return Value{kind: kind, bits: math.Float64bits(f)}
}

// StringValue returns a string value
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// BytesValue returns a bytes value
func BytesValue(b []byte) Value {
	return Value{kind: KindBytes, raw: b}
}

// EnumNumber returns an enum value holding a number
func EnumNumber(n int32) Value {
	return Value{kind: KindEnum, bits: uint64(int64(n))}
}

// ZeroValue returns the zero value of a scalar kind. Enums use their first
// value, which callers resolve through the enum definition.
func ZeroValue(kind Kind) Value {
	switch {
	case kind == KindFloat || kind == KindDouble:
		return FloatValue(kind, 0)
	case kind == KindBool:
		return BoolValue(false)
	case kind == KindString:
		return StringValue("")
	case kind == KindBytes:
		return BytesValue(nil)
	default:
		return Value{kind: kind}
	}
}

// Kind returns the kind tag of the value
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the value as a bool
func (v Value) AsBool() bool { return v.bits != 0 }

// AsInt returns the value as a signed integer
func (v Value) AsInt() int64 { return int64(v.bits) }

// AsUint returns the value as an unsigned integer
func (v Value) AsUint() uint64 { return v.bits }

// AsFloat returns the value as a float64
func (v Value) AsFloat() float64 { return math.Float64frombits(v.bits) }

// AsString returns the value of a string
func (v Value) AsString() string { return v.str }

// AsBytes returns the value of a bytes field
func (v Value) AsBytes() []byte { return v.raw }

// AsEnum returns the number of an enum value
func (v Value) AsEnum() int32 { return int32(int64(v.bits)) }

// Interface returns the value as the natural Go type of its kind
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.AsBool()
	case KindInt32, KindSint32, KindSfixed32:
		return int32(v.AsInt())
	case KindInt64, KindSint64, KindSfixed64:
		return v.AsInt()
	case KindUint32, KindFixed32:
		return uint32(v.AsUint())
	case KindUint64, KindFixed64:
		return v.AsUint()
	case KindFloat:
		return float32(v.AsFloat())
	case KindDouble:
		return v.AsFloat()
	case KindString:
		return v.str
	case KindBytes:
		return v.raw
	case KindEnum:
		return v.AsEnum()
	}
	return nil
}

// Equal reports whether two values have the same kind and content
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindBytes:
		return bytes.Equal(v.raw, o.raw)
	case KindFloat, KindDouble:
		a, b := v.AsFloat(), o.AsFloat()
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	}
	return v.bits == o.bits
}

// String renders the value as it would appear in a schema
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.AsBool())
	case KindInt32, KindInt64, KindSint32, KindSint64, KindSfixed32, KindSfixed64:
		return strconv.FormatInt(v.AsInt(), 10)
	case KindUint32, KindUint64, KindFixed32, KindFixed64:
		return strconv.FormatUint(v.AsUint(), 10)
	case KindFloat:
		return formatFloat(v.AsFloat(), 32)
	case KindDouble:
		return formatFloat(v.AsFloat(), 64)
	case KindString:
		return strconv.Quote(v.str)
	case KindBytes:
		return strconv.Quote(string(v.raw))
	case KindEnum:
		return strconv.FormatInt(int64(v.AsEnum()), 10)
	}
	return fmt.Sprintf("<%s>", v.kind)
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

func (Value) isOptionValue() {}

// OptionValue is the value of an interpreted option field: a Value, a
// *MessageValue or a ListValue
type OptionValue interface {
	isOptionValue()
}

// ListValue holds the elements of a repeated option field in order
type ListValue []OptionValue

func (ListValue) isOptionValue() {}

// Source records where an option field value came from
type Source struct {
	// Statement is the index of the uninterpreted option that set the
	// value, or -1 when it was already present in the options record
	Statement int
	// Aggregate is set when the value was written inside an aggregate literal
	Aggregate bool
}

// RecordSource marks values decoded from the options record itself
var RecordSource = Source{Statement: -1}

// FieldValue is one set field of a MessageValue
type FieldValue struct {
	Number    int32
	Name      string
	Extension bool
	Kind      Kind
	Repeated  bool
	Packed    bool
	// Type is the message or enum type of the field, or the scalar id
	Type   TypeID
	Value  OptionValue
	Source Source
}

// DisplayName renders the field as option syntax spells it, with
// parentheses around extension names
func (fv *FieldValue) DisplayName() string {
	if fv.Extension {
		return "(" + fv.Name + ")"
	}
	return fv.Name
}

// MessageValue is an interpreted options message: its set fields ordered by
// number, plus the raw bytes of any field that could not be decoded
type MessageValue struct {
	TypeName string
	Type     TypeID
	Fields   []*FieldValue
	Unknown  []byte
	// Graph is the graph the type ids of an interpreted root refer to. It
	// is nil on nested values, which share their root's graph.
	Graph *Graph
}

func (*MessageValue) isOptionValue() {}

// NewMessageValue returns an empty value of the given message type
func NewMessageValue(id TypeID, name string) *MessageValue {
	return &MessageValue{Type: id, TypeName: name}
}

// Get returns the field with the given number, or nil
func (m *MessageValue) Get(number int32) *FieldValue {
	if m == nil {
		return nil
	}
	i := sort.Search(len(m.Fields), func(i int) bool { return m.Fields[i].Number >= number })
	if i < len(m.Fields) && m.Fields[i].Number == number {
		return m.Fields[i]
	}
	return nil
}

// GetByName returns the field with the given name, or nil. Extension names
// are fully qualified.
func (m *MessageValue) GetByName(name string) *FieldValue {
	if m == nil {
		return nil
	}
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Set inserts or replaces a field, keeping fields ordered by number
func (m *MessageValue) Set(fv *FieldValue) {
	i := sort.Search(len(m.Fields), func(i int) bool { return m.Fields[i].Number >= fv.Number })
	if i < len(m.Fields) && m.Fields[i].Number == fv.Number {
		m.Fields[i] = fv
		return
	}
	m.Fields = append(m.Fields, nil)
	copy(m.Fields[i+1:], m.Fields[i:])
	m.Fields[i] = fv
}

// Clear removes a field
func (m *MessageValue) Clear(number int32) {
	for i, f := range m.Fields {
		if f.Number == number {
			m.Fields = append(m.Fields[:i], m.Fields[i+1:]...)
			return
		}
	}
}

// Bool returns the bool stored in a singular field, and whether it was set
func (m *MessageValue) Bool(number int32) (bool, bool) {
	fv := m.Get(number)
	if fv == nil {
		return false, false
	}
	v, ok := fv.Value.(Value)
	if !ok || v.Kind() != KindBool {
		return false, false
	}
	return v.AsBool(), true
}

// Len returns the number of set fields
func (m *MessageValue) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Fields)
}

// Clone returns a deep copy of the message value
func (m *MessageValue) Clone() *MessageValue {
	if m == nil {
		return nil
	}
	c := &MessageValue{
		TypeName: m.TypeName,
		Type:     m.Type,
		Fields:   make([]*FieldValue, len(m.Fields)),
		Unknown:  bytes.Clone(m.Unknown),
		Graph:    m.Graph,
	}
	for i, f := range m.Fields {
		fc := *f
		fc.Value = cloneOptionValue(f.Value)
		c.Fields[i] = &fc
	}
	return c
}

func cloneOptionValue(v OptionValue) OptionValue {
	switch v := v.(type) {
	case *MessageValue:
		return v.Clone()
	case ListValue:
		out := make(ListValue, len(v))
		for i, e := range v {
			out[i] = cloneOptionValue(e)
		}
		return out
	default:
		return v
	}
}
