package options

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/conduit-lang/protopool/internal/typegraph"
)

// Marshal encodes an interpreted options message. Fields are written in
// number order, repeated packable fields honour their packed flag, and
// unknown bytes are appended last.
func Marshal(mv *typegraph.MessageValue) []byte {
	if mv == nil {
		return nil
	}
	var b []byte
	for _, fv := range mv.Fields {
		b = appendField(b, fv)
	}
	return append(b, mv.Unknown...)
}

func appendField(b []byte, fv *typegraph.FieldValue) []byte {
	num := protowire.Number(fv.Number)
	list, isList := fv.Value.(typegraph.ListValue)
	if !isList {
		return appendSingle(b, num, fv.Kind, fv.Value)
	}
	if fv.Packed && fv.Kind.IsPackable() && len(list) > 0 {
		var packed []byte
		for _, e := range list {
			if v, ok := e.(typegraph.Value); ok {
				packed = appendScalar(packed, fv.Kind, v)
			}
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		return protowire.AppendBytes(b, packed)
	}
	for _, e := range list {
		b = appendSingle(b, num, fv.Kind, e)
	}
	return b
}

func appendSingle(b []byte, num protowire.Number, kind typegraph.Kind, v typegraph.OptionValue) []byte {
	switch v := v.(type) {
	case *typegraph.MessageValue:
		if kind == typegraph.KindGroup {
			b = protowire.AppendTag(b, num, protowire.StartGroupType)
			b = append(b, Marshal(v)...)
			return protowire.AppendTag(b, num, protowire.EndGroupType)
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		return protowire.AppendBytes(b, Marshal(v))
	case typegraph.Value:
		b = protowire.AppendTag(b, num, kind.WireType())
		return appendScalar(b, kind, v)
	}
	return b
}

func appendScalar(b []byte, kind typegraph.Kind, v typegraph.Value) []byte {
	switch kind {
	case typegraph.KindBool:
		return protowire.AppendVarint(b, protowire.EncodeBool(v.AsBool()))
	case typegraph.KindInt32, typegraph.KindInt64:
		return protowire.AppendVarint(b, uint64(v.AsInt()))
	case typegraph.KindUint32, typegraph.KindUint64:
		return protowire.AppendVarint(b, v.AsUint())
	case typegraph.KindSint32, typegraph.KindSint64:
		return protowire.AppendVarint(b, protowire.EncodeZigZag(v.AsInt()))
	case typegraph.KindEnum:
		return protowire.AppendVarint(b, uint64(int64(v.AsEnum())))
	case typegraph.KindFixed32:
		return protowire.AppendFixed32(b, uint32(v.AsUint()))
	case typegraph.KindSfixed32:
		return protowire.AppendFixed32(b, uint32(int32(v.AsInt())))
	case typegraph.KindFloat:
		return protowire.AppendFixed32(b, math.Float32bits(float32(v.AsFloat())))
	case typegraph.KindFixed64:
		return protowire.AppendFixed64(b, v.AsUint())
	case typegraph.KindSfixed64:
		return protowire.AppendFixed64(b, uint64(v.AsInt()))
	case typegraph.KindDouble:
		return protowire.AppendFixed64(b, math.Float64bits(v.AsFloat()))
	case typegraph.KindString:
		return protowire.AppendString(b, v.AsString())
	case typegraph.KindBytes:
		return protowire.AppendBytes(b, v.AsBytes())
	}
	return b
}
