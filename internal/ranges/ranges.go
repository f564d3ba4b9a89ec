// Package ranges validates the number space of a message or enum: fields,
// enum values, reserved ranges and extension ranges must not overlap, and
// every range must be well formed.
package ranges

import (
	"fmt"
	"math"
	"sort"

	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/fuzzy"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

const (
	// MaxFieldNumber is the largest field number of an ordinary message
	MaxFieldNumber = 1<<29 - 1
	// MaxMessageSetNumber is the largest number of a message-set message
	MaxMessageSetNumber = math.MaxInt32
	// MaxEnumNumber is the largest enum value number
	MaxEnumNumber = math.MaxInt32
	// FirstImplementationReserved and LastImplementationReserved bound the
	// numbers kept for the protobuf implementation
	FirstImplementationReserved = 19000
	LastImplementationReserved  = 19999
)

// ItemKind is the kind of declaration that claims numbers
type ItemKind uint8

const (
	ReservedRange ItemKind = iota
	ExtensionRange
	Field
	EnumValue
)

func (k ItemKind) String() string {
	switch k {
	case ReservedRange:
		return "reserved range"
	case ExtensionRange:
		return "extension range"
	case Field:
		return "field"
	default:
		return "enum value"
	}
}

// Item is one declaration claiming the inclusive range [Start, End]
type Item struct {
	Kind     ItemKind
	Name     string
	Start    int64
	End      int64
	Location diag.Location
}

// NumberItem describes the item in a diagnostic
func (it Item) NumberItem() diag.NumberItem {
	return diag.NumberItem{Kind: it.Kind.String(), Name: it.Name, Start: it.Start, End: it.End}
}

// Options adjusts Check
type Options struct {
	// AllowAlias permits enum values sharing a number
	AllowAlias bool
}

type sequenced struct {
	Item
	seq int
}

// Check reports malformed ranges and overlapping claims. Items must be given
// in declaration order: reserved ranges, then extension ranges, then fields
// or values. A range whose end precedes its start is reported first and left
// out of the overlap check. Every other overlapping pair is reported once,
// in ascending order of start, with the earlier declaration as the first side.
func Check(items []Item, opts Options) []*diag.Diagnostic {
	var out []*diag.Diagnostic
	valid := make([]sequenced, 0, len(items))
	for i, it := range items {
		if it.End < it.Start {
			out = append(out, diag.NewInvalidRange(it.NumberItem(), it.Location))
			continue
		}
		valid = append(valid, sequenced{Item: it, seq: i})
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Start < valid[j].Start
	})

	for i := range valid {
		a := valid[i]
		for j := i + 1; j < len(valid) && valid[j].Start <= a.End; j++ {
			b := valid[j]
			if opts.AllowAlias && a.Kind == EnumValue && b.Kind == EnumValue {
				continue
			}
			first, second := a, b
			if second.seq < first.seq {
				first, second = second, first
			}
			out = append(out, diag.NewDuplicateNumber(
				first.NumberItem(), first.Location,
				second.NumberItem(), second.Location,
			))
		}
	}
	return out
}

// CheckFieldNumber returns a reason when n cannot be used as a field number,
// or "" when it can
func CheckFieldNumber(n int64, messageSet bool) string {
	limit := int64(MaxFieldNumber)
	if messageSet {
		limit = MaxMessageSetNumber
	}
	switch {
	case n < 1:
		return "field numbers must be positive"
	case n > limit:
		return fmt.Sprintf("field numbers must not exceed %d", limit)
	case n >= FirstImplementationReserved && n <= LastImplementationReserved:
		return fmt.Sprintf("numbers %d to %d are reserved for the protobuf implementation",
			FirstImplementationReserved, LastImplementationReserved)
	}
	return ""
}

// MessageRange converts an end-exclusive descriptor range of a message into
// an inclusive range. An end of math.MinInt32 stays put so the range is
// still reported as inverted.
func MessageRange(start, end int32) typegraph.Range {
	last := int64(end) - 1
	if last < math.MinInt32 {
		last = math.MinInt32
	}
	return typegraph.Range{Start: start, End: int32(last)}
}

// ContainsNumber reports whether any range contains n
func ContainsNumber(rs []typegraph.Range, n int32) bool {
	for _, r := range rs {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// FormatRanges renders ranges for help text, as "1, 2 to 5 and 10 to max".
// An end equal to max is written as "max".
func FormatRanges(rs []typegraph.Range, max int32) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		switch {
		case r.Start == r.End:
			parts[i] = fmt.Sprintf("%d", r.Start)
		case r.End == max:
			parts[i] = fmt.Sprintf("%d to max", r.Start)
		default:
			parts[i] = fmt.Sprintf("%d to %d", r.Start, r.End)
		}
	}
	return fuzzy.JoinAnd(parts)
}

// ExtensionHelp builds the help text for an extension number outside every
// extension range of its extendee
func ExtensionHelp(message string, rs []typegraph.Range, max int32) string {
	if len(rs) == 0 {
		return fmt.Sprintf("message '%s' has no extension ranges", message)
	}
	return "available extension numbers are " + FormatRanges(rs, max)
}
