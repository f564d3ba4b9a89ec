package options

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/defaults"
	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/fuzzy"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

type literalKind uint8

const (
	litIdent literalKind = iota
	litPosInt
	litNegInt
	litDouble
	litString
	litAggregate
	litNone
)

// literal is a value as written in an option statement or aggregate literal
type literal struct {
	kind literalKind
	// inAggregate enables the looser text format spellings
	inAggregate bool

	ident string
	pos   uint64
	neg   int64
	dbl   float64
	str   []byte
	agg   string
}

func literalFromOption(opt *descriptorpb.UninterpretedOption) literal {
	switch {
	case opt.IdentifierValue != nil:
		return literal{kind: litIdent, ident: opt.GetIdentifierValue()}
	case opt.PositiveIntValue != nil:
		return literal{kind: litPosInt, pos: opt.GetPositiveIntValue()}
	case opt.NegativeIntValue != nil:
		return literal{kind: litNegInt, neg: opt.GetNegativeIntValue()}
	case opt.DoubleValue != nil:
		return literal{kind: litDouble, dbl: opt.GetDoubleValue()}
	case opt.StringValue != nil:
		return literal{kind: litString, str: opt.GetStringValue()}
	case opt.AggregateValue != nil:
		return literal{kind: litAggregate, agg: opt.GetAggregateValue()}
	}
	return literal{kind: litNone}
}

// String renders the literal for diagnostics
func (l literal) String() string {
	switch l.kind {
	case litIdent:
		return l.ident
	case litPosInt:
		return strconv.FormatUint(l.pos, 10)
	case litNegInt:
		return strconv.FormatInt(l.neg, 10)
	case litDouble:
		return strconv.FormatFloat(l.dbl, 'g', -1, 64)
	case litString:
		return strconv.Quote(string(l.str))
	case litAggregate:
		return "{ " + l.agg + " }"
	}
	return ""
}

// scalarValue converts a literal into a value of the field's kind
func (r *Resolver) scalarValue(fi fieldInfo, lit literal, at diag.Location) (typegraph.Value, *diag.Diagnostic) {
	kind := fi.Kind
	mismatch := func() (typegraph.Value, *diag.Diagnostic) {
		return typegraph.Value{}, diag.NewValueInvalidType(defaults.Expected(kind), lit.String(), at)
	}

	switch kind {
	case typegraph.KindEnum:
		e := r.Graph.Enum(fi.Type)
		if e == nil {
			return mismatch()
		}
		switch lit.kind {
		case litIdent:
			if v := e.ValueByName(lit.ident); v != nil {
				return typegraph.EnumNumber(v.Number), nil
			}
			return typegraph.Value{}, diag.NewInvalidEnumValue(lit.ident, e.Name,
				fuzzy.PossibleValues(lit.ident, e.ValueNames()), at)
		case litPosInt, litNegInt:
			if !lit.inAggregate {
				return mismatch()
			}
			n, ok := signed(lit, false)
			if !ok {
				return mismatch()
			}
			return typegraph.EnumNumber(int32(n)), nil
		}
		return mismatch()

	case typegraph.KindBool:
		if lit.kind == litIdent {
			switch lit.ident {
			case "true":
				return typegraph.BoolValue(true), nil
			case "false":
				return typegraph.BoolValue(false), nil
			}
			if lit.inAggregate {
				switch lit.ident {
				case "True", "t":
					return typegraph.BoolValue(true), nil
				case "False", "f":
					return typegraph.BoolValue(false), nil
				}
			}
		}
		if lit.inAggregate && lit.kind == litPosInt && lit.pos <= 1 {
			return typegraph.BoolValue(lit.pos == 1), nil
		}
		return mismatch()

	case typegraph.KindString:
		if lit.kind != litString || !utf8.Valid(lit.str) {
			return mismatch()
		}
		return typegraph.StringValue(string(lit.str)), nil

	case typegraph.KindBytes:
		if lit.kind != litString {
			return mismatch()
		}
		return typegraph.BytesValue(lit.str), nil

	case typegraph.KindFloat, typegraph.KindDouble:
		f, ok := floating(lit)
		if !ok {
			return mismatch()
		}
		if kind == typegraph.KindFloat && !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return mismatch()
		}
		return typegraph.FloatValue(kind, f), nil
	}

	if !kind.IsInteger() {
		return mismatch()
	}
	if kind.IsSigned() {
		n, ok := signed(lit, kind.Is64Bit())
		if !ok {
			return mismatch()
		}
		return typegraph.IntValue(kind, n), nil
	}
	if lit.kind != litPosInt {
		return mismatch()
	}
	if !kind.Is64Bit() && lit.pos > math.MaxUint32 {
		return mismatch()
	}
	return typegraph.UintValue(kind, lit.pos), nil
}

func signed(lit literal, is64 bool) (int64, bool) {
	switch lit.kind {
	case litPosInt:
		return defaults.SignedInRange(false, lit.pos, is64)
	case litNegInt:
		if !is64 && lit.neg < math.MinInt32 {
			return 0, false
		}
		return lit.neg, true
	}
	return 0, false
}

func floating(lit literal) (float64, bool) {
	switch lit.kind {
	case litDouble:
		return lit.dbl, true
	case litPosInt:
		return float64(lit.pos), true
	case litNegInt:
		return float64(lit.neg), true
	case litIdent:
		switch strings.ToLower(lit.ident) {
		case "inf", "infinity":
			return math.Inf(1), true
		case "nan":
			return math.NaN(), true
		}
	}
	return 0, false
}

// optionName renders a statement's name as written: (ext.name).field
func optionName(parts []*descriptorpb.UninterpretedOption_NamePart) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('.')
		}
		if p.GetIsExtension() {
			fmt.Fprintf(&b, "(%s)", p.GetNamePart())
		} else {
			b.WriteString(p.GetNamePart())
		}
	}
	return b.String()
}
