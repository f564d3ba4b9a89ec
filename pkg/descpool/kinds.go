package descpool

import "github.com/conduit-lang/protopool/internal/typegraph"

// Kind is the type of a field
type Kind = typegraph.Kind

const (
	KindDouble   = typegraph.KindDouble
	KindFloat    = typegraph.KindFloat
	KindInt32    = typegraph.KindInt32
	KindInt64    = typegraph.KindInt64
	KindUint32   = typegraph.KindUint32
	KindUint64   = typegraph.KindUint64
	KindSint32   = typegraph.KindSint32
	KindSint64   = typegraph.KindSint64
	KindFixed32  = typegraph.KindFixed32
	KindFixed64  = typegraph.KindFixed64
	KindSfixed32 = typegraph.KindSfixed32
	KindSfixed64 = typegraph.KindSfixed64
	KindBool     = typegraph.KindBool
	KindString   = typegraph.KindString
	KindBytes    = typegraph.KindBytes
	KindEnum     = typegraph.KindEnum
	KindMessage  = typegraph.KindMessage
	KindGroup    = typegraph.KindGroup
)

// Cardinality is whether a field is optional, required or repeated
type Cardinality = typegraph.Cardinality

const (
	Optional = typegraph.Optional
	Required = typegraph.Required
	Repeated = typegraph.Repeated
)

// Syntax is the dialect a file was written in
type Syntax = typegraph.Syntax

const (
	Proto2   = typegraph.Proto2
	Proto3   = typegraph.Proto3
	Editions = typegraph.Editions
)

// Value is a scalar or enum value, as held by field defaults
type Value = typegraph.Value

// Range is an inclusive number range
type Range = typegraph.Range
