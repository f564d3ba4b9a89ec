package options

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/conduit-lang/protopool/internal/typegraph"
)

// uninterpretedOptionNumber is the field every options message uses for
// statements that still need interpretation
const uninterpretedOptionNumber = 999

// fieldInfo is a field or extension definition a value is decoded against
type fieldInfo struct {
	*typegraph.Field
	extension bool
	fullName  string
}

func (fi fieldInfo) valueName() string {
	if fi.extension {
		return fi.fullName
	}
	return fi.Name
}

func (fi fieldInfo) newValue(v typegraph.OptionValue, src typegraph.Source) *typegraph.FieldValue {
	return &typegraph.FieldValue{
		Number:    fi.Number,
		Name:      fi.valueName(),
		Extension: fi.extension,
		Kind:      fi.Kind,
		Repeated:  fi.IsRepeated(),
		Packed:    fi.IsPacked,
		Type:      fi.Type,
		Value:     v,
		Source:    src,
	}
}

// lookupField finds a field or registered extension of a message by number
func lookupField(g *typegraph.Graph, msgID typegraph.TypeID, number int32) (fieldInfo, bool) {
	m := g.Message(msgID)
	if m == nil {
		return fieldInfo{}, false
	}
	if f := m.FieldByNumber(number); f != nil {
		return fieldInfo{Field: f}, true
	}
	if ext := g.ExtensionByNumber(msgID, number); ext != nil {
		return fieldInfo{Field: &ext.Field, extension: true, fullName: ext.FullName}, true
	}
	return fieldInfo{}, false
}

// Decode reads an encoded options message against the message type msgID and
// its registered extensions. Fields that are unknown, or whose wire type does
// not match their definition, are kept verbatim in Unknown. Uninterpreted
// option statements are skipped.
func Decode(g *typegraph.Graph, msgID typegraph.TypeID, data []byte) (*typegraph.MessageValue, error) {
	t := g.Resolve(msgID)
	if t == nil || t.Message == nil {
		return nil, fmt.Errorf("type %d is not a message", msgID)
	}
	mv := typegraph.NewMessageValue(msgID, t.Name)
	if err := decodeInto(g, mv, data); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", t.Name, err)
	}
	return mv, nil
}

func decodeInto(g *typegraph.Graph, mv *typegraph.MessageValue, b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		fieldLen := protowire.ConsumeFieldValue(num, typ, b[n:])
		if fieldLen < 0 {
			return protowire.ParseError(fieldLen)
		}
		raw := b[:n+fieldLen]
		body := b[n : n+fieldLen]
		b = b[n+fieldLen:]

		if num == uninterpretedOptionNumber {
			continue
		}
		fi, ok := lookupField(g, mv.Type, int32(num))
		if !ok || !wireTypeMatches(fi, typ) {
			mv.Unknown = append(mv.Unknown, raw...)
			continue
		}
		if err := decodeField(g, mv, fi, num, typ, body); err != nil {
			return err
		}
	}
	return nil
}

func wireTypeMatches(fi fieldInfo, typ protowire.Type) bool {
	if typ == fi.Kind.WireType() {
		return true
	}
	return fi.IsRepeated() && fi.Kind.IsPackable() && typ == protowire.BytesType
}

func decodeField(g *typegraph.Graph, mv *typegraph.MessageValue, fi fieldInfo, num protowire.Number, typ protowire.Type, body []byte) error {
	switch {
	case fi.Kind.IsMessage():
		if fi.Kind == typegraph.KindGroup {
			var n int
			body, n = protowire.ConsumeGroup(num, body)
			if n < 0 {
				return protowire.ParseError(n)
			}
		} else {
			var n int
			body, n = protowire.ConsumeBytes(body)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		return decodeMessageField(g, mv, fi, body)

	case typ == protowire.BytesType && fi.Kind.IsPackable():
		packed, n := protowire.ConsumeBytes(body)
		if n < 0 {
			return protowire.ParseError(n)
		}
		for len(packed) > 0 {
			v, n := decodeScalar(fi.Kind, fi.Kind.WireType(), packed)
			if n < 0 {
				return protowire.ParseError(n)
			}
			packed = packed[n:]
			appendValue(mv, fi, v)
		}
		return nil
	}

	v, n := decodeScalar(fi.Kind, typ, body)
	if n < 0 {
		return protowire.ParseError(n)
	}
	if fi.IsRepeated() {
		appendValue(mv, fi, v)
	} else {
		mv.Set(fi.newValue(v, typegraph.RecordSource))
	}
	return nil
}

// decodeMessageField decodes a nested message. Repeated fields get a new
// element; a singular field seen twice is merged, as the wire format requires.
func decodeMessageField(g *typegraph.Graph, mv *typegraph.MessageValue, fi fieldInfo, body []byte) error {
	if fi.IsRepeated() {
		sub := typegraph.NewMessageValue(fi.Type, typeName(g, fi.Type))
		if err := decodeInto(g, sub, body); err != nil {
			return err
		}
		appendValue(mv, fi, sub)
		return nil
	}
	if existing := mv.Get(fi.Number); existing != nil {
		if sub, ok := existing.Value.(*typegraph.MessageValue); ok {
			return decodeInto(g, sub, body)
		}
	}
	sub := typegraph.NewMessageValue(fi.Type, typeName(g, fi.Type))
	if err := decodeInto(g, sub, body); err != nil {
		return err
	}
	mv.Set(fi.newValue(sub, typegraph.RecordSource))
	return nil
}

func appendValue(mv *typegraph.MessageValue, fi fieldInfo, v typegraph.OptionValue) {
	if existing := mv.Get(fi.Number); existing != nil {
		if list, ok := existing.Value.(typegraph.ListValue); ok {
			existing.Value = append(list, v)
			return
		}
	}
	mv.Set(fi.newValue(typegraph.ListValue{v}, typegraph.RecordSource))
}

func decodeScalar(kind typegraph.Kind, typ protowire.Type, b []byte) (typegraph.Value, int) {
	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return typegraph.Value{}, n
		}
		switch kind {
		case typegraph.KindBool:
			return typegraph.BoolValue(v != 0), n
		case typegraph.KindInt32:
			return typegraph.IntValue(kind, int64(int32(v))), n
		case typegraph.KindInt64:
			return typegraph.IntValue(kind, int64(v)), n
		case typegraph.KindSint32:
			return typegraph.IntValue(kind, int64(int32(protowire.DecodeZigZag(v & math.MaxUint32)))), n
		case typegraph.KindSint64:
			return typegraph.IntValue(kind, protowire.DecodeZigZag(v)), n
		case typegraph.KindUint32:
			return typegraph.UintValue(kind, uint64(uint32(v))), n
		case typegraph.KindEnum:
			return typegraph.EnumNumber(int32(v)), n
		default:
			return typegraph.UintValue(kind, v), n
		}
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return typegraph.Value{}, n
		}
		switch kind {
		case typegraph.KindFloat:
			return typegraph.FloatValue(kind, float64(math.Float32frombits(v))), n
		case typegraph.KindSfixed32:
			return typegraph.IntValue(kind, int64(int32(v))), n
		default:
			return typegraph.UintValue(kind, uint64(v)), n
		}
	case protowire.Fixed64Type:
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return typegraph.Value{}, n
		}
		switch kind {
		case typegraph.KindDouble:
			return typegraph.FloatValue(kind, math.Float64frombits(v)), n
		case typegraph.KindSfixed64:
			return typegraph.IntValue(kind, int64(v)), n
		default:
			return typegraph.UintValue(kind, v), n
		}
	case protowire.BytesType:
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return typegraph.Value{}, n
		}
		if kind == typegraph.KindString {
			return typegraph.StringValue(string(v)), n
		}
		return typegraph.BytesValue(append([]byte(nil), v...)), n
	}
	return typegraph.Value{}, -1
}

func typeName(g *typegraph.Graph, id typegraph.TypeID) string {
	if t := g.Resolve(id); t != nil {
		return t.Name
	}
	return ""
}
