package typegraph

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Kind is the type of a field: one of the fifteen scalars, or a reference
// to an enum, message or group definition
type Kind uint8

const (
	KindDouble Kind = iota
	KindFloat
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindBool
	KindString
	KindBytes
	KindEnum
	KindMessage
	KindGroup
)

// numScalars is the number of scalar kinds; their type ids are 0..numScalars-1
const numScalars = int(KindBytes) + 1

var kindNames = [...]string{
	KindDouble:   "double",
	KindFloat:    "float",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindSint32:   "sint32",
	KindSint64:   "sint64",
	KindFixed32:  "fixed32",
	KindFixed64:  "fixed64",
	KindSfixed32: "sfixed32",
	KindSfixed64: "sfixed64",
	KindBool:     "bool",
	KindString:   "string",
	KindBytes:    "bytes",
	KindEnum:     "enum",
	KindMessage:  "message",
	KindGroup:    "group",
}

// String returns the protobuf keyword for the kind
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether k is one of the fifteen scalar kinds
func (k Kind) IsScalar() bool {
	return k <= KindBytes
}

// IsMessage reports whether values of k are nested messages
func (k Kind) IsMessage() bool {
	return k == KindMessage || k == KindGroup
}

// IsNumeric reports whether k is an integer or floating point kind
func (k Kind) IsNumeric() bool {
	return k <= KindSfixed64
}

// IsInteger reports whether k is an integer kind
func (k Kind) IsInteger() bool {
	return k >= KindInt32 && k <= KindSfixed64
}

// IsSigned reports whether k is a signed integer kind
func (k Kind) IsSigned() bool {
	switch k {
	case KindInt32, KindInt64, KindSint32, KindSint64, KindSfixed32, KindSfixed64:
		return true
	}
	return false
}

// Is64Bit reports whether k is a 64-bit integer kind
func (k Kind) Is64Bit() bool {
	switch k {
	case KindInt64, KindUint64, KindSint64, KindFixed64, KindSfixed64:
		return true
	}
	return false
}

// IsPackable reports whether repeated fields of k may use packed encoding
func (k Kind) IsPackable() bool {
	return k.IsNumeric() || k == KindBool || k == KindEnum
}

// WireType returns the wire type a single value of k is encoded with
func (k Kind) WireType() protowire.Type {
	switch k {
	case KindDouble, KindFixed64, KindSfixed64:
		return protowire.Fixed64Type
	case KindFloat, KindFixed32, KindSfixed32:
		return protowire.Fixed32Type
	case KindString, KindBytes, KindMessage:
		return protowire.BytesType
	case KindGroup:
		return protowire.StartGroupType
	default:
		return protowire.VarintType
	}
}

// ScalarID returns the type id reserved for a scalar kind
func (k Kind) ScalarID() TypeID {
	return TypeID(k)
}

// KindFromProto converts a descriptor field type
func KindFromProto(t descriptorpb.FieldDescriptorProto_Type) (Kind, bool) {
	switch t {
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return KindDouble, true
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return KindFloat, true
	case descriptorpb.FieldDescriptorProto_TYPE_INT32:
		return KindInt32, true
	case descriptorpb.FieldDescriptorProto_TYPE_INT64:
		return KindInt64, true
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32:
		return KindUint32, true
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64:
		return KindUint64, true
	case descriptorpb.FieldDescriptorProto_TYPE_SINT32:
		return KindSint32, true
	case descriptorpb.FieldDescriptorProto_TYPE_SINT64:
		return KindSint64, true
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return KindFixed32, true
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return KindFixed64, true
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return KindSfixed32, true
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return KindSfixed64, true
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return KindBool, true
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return KindString, true
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return KindBytes, true
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return KindEnum, true
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		return KindMessage, true
	case descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return KindGroup, true
	}
	return 0, false
}

// ToProto converts the kind back to a descriptor field type
func (k Kind) ToProto() descriptorpb.FieldDescriptorProto_Type {
	return protoTypes[k]
}

var protoTypes = [...]descriptorpb.FieldDescriptorProto_Type{
	KindDouble:   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	KindFloat:    descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	KindInt32:    descriptorpb.FieldDescriptorProto_TYPE_INT32,
	KindInt64:    descriptorpb.FieldDescriptorProto_TYPE_INT64,
	KindUint32:   descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	KindUint64:   descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	KindSint32:   descriptorpb.FieldDescriptorProto_TYPE_SINT32,
	KindSint64:   descriptorpb.FieldDescriptorProto_TYPE_SINT64,
	KindFixed32:  descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
	KindFixed64:  descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
	KindSfixed32: descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
	KindSfixed64: descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
	KindBool:     descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	KindString:   descriptorpb.FieldDescriptorProto_TYPE_STRING,
	KindBytes:    descriptorpb.FieldDescriptorProto_TYPE_BYTES,
	KindEnum:     descriptorpb.FieldDescriptorProto_TYPE_ENUM,
	KindMessage:  descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
	KindGroup:    descriptorpb.FieldDescriptorProto_TYPE_GROUP,
}

// Cardinality determines whether a field is optional, required, or repeated
type Cardinality uint8

const (
	Optional Cardinality = iota
	Required
	Repeated
)

func (c Cardinality) String() string {
	switch c {
	case Required:
		return "required"
	case Repeated:
		return "repeated"
	default:
		return "optional"
	}
}

// CardinalityFromProto converts a descriptor label; an unset label is optional
func CardinalityFromProto(l descriptorpb.FieldDescriptorProto_Label) Cardinality {
	switch l {
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		return Required
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		return Repeated
	default:
		return Optional
	}
}

// Syntax is the schema dialect of a file
type Syntax uint8

const (
	Proto2 Syntax = iota
	Proto3
	Editions
)

func (s Syntax) String() string {
	switch s {
	case Proto3:
		return "proto3"
	case Editions:
		return "editions"
	default:
		return "proto2"
	}
}

// ParseSyntax reads a file's syntax marker. The empty marker means proto2.
func ParseSyntax(s string) (Syntax, bool) {
	switch s {
	case "", "proto2":
		return Proto2, true
	case "proto3":
		return Proto3, true
	case "editions":
		return Editions, true
	}
	return Proto2, false
}
