package diag

import (
	"fmt"
	"strings"
)

// NewDuplicateName reports a fully-qualified name declared twice. first is
// the earlier declaration, which may be imported or synthetic.
func NewDuplicateName(name string, first, second Location) *Diagnostic {
	msg := fmt.Sprintf("name '%s' is defined twice", name)
	switch {
	case first.Imported:
		msg = fmt.Sprintf("name '%s' is already defined in imported file '%s'", name, first.File)
	case first.Synthetic:
		msg = fmt.Sprintf("name '%s' conflicts with a generated declaration", name)
	}
	d := newDiagnostic(ErrDuplicateName, KindDuplicateName, msg)
	d.Name = name
	d.First = locPtr(first)
	d.Second = locPtr(second)
	return d
}

// NewTypeNameNotFound reports a reference that no scope could resolve.
// ref is the literal reference text as written in the record.
func NewTypeNameNotFound(ref string, at Location) *Diagnostic {
	d := newDiagnostic(ErrTypeNameNotFound, KindTypeNameNotFound,
		fmt.Sprintf("name '%s' is not defined", ref))
	d.Name = ref
	d.First = locPtr(at)
	return d
}

// NewInvalidName reports an empty or malformed identifier
func NewInvalidName(name, reason string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidName, KindInvalidName,
		fmt.Sprintf("invalid name '%s': %s", name, reason))
	d.Name = name
	d.First = locPtr(at)
	return d
}

// NewInvalidTypeReference reports a reference that resolved to the wrong kind of symbol
func NewInvalidTypeReference(ref, expected, actual string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidTypeReference, KindInvalidTypeReference,
		fmt.Sprintf("'%s' is %s, expected %s", ref, actual, expected))
	d.Name = ref
	d.Expected = expected
	d.Actual = actual
	d.First = locPtr(at)
	return d
}

// NewDuplicateJSONName reports two fields of one message sharing a JSON name
func NewDuplicateJSONName(jsonName, firstField, secondField string, first, second Location) *Diagnostic {
	d := newDiagnostic(ErrDuplicateJSONName, KindDuplicateJSONName,
		fmt.Sprintf("fields '%s' and '%s' both have JSON name '%s'", firstField, secondField, jsonName))
	d.Name = jsonName
	d.First = locPtr(first)
	d.Second = locPtr(second)
	return d
}

// NewInvalidRange reports a range whose end precedes its start
func NewInvalidRange(item NumberItem, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidRange, KindInvalidRange,
		fmt.Sprintf("invalid %s: end %d is less than start %d", item.Kind, item.End, item.Start))
	d.Number = item.Start
	d.First = locPtr(at)
	d.FirstItem = &item
	return d
}

// NewDuplicateNumber reports two declarations claiming overlapping numbers.
// The first side is always the earlier declaration.
func NewDuplicateNumber(first NumberItem, firstAt Location, second NumberItem, secondAt Location) *Diagnostic {
	d := newDiagnostic(ErrDuplicateNumber, KindDuplicateNumber,
		fmt.Sprintf("%s conflicts with %s", second, first))
	d.Number = maxInt64(first.Start, second.Start)
	d.First = locPtr(firstAt)
	d.Second = locPtr(secondAt)
	d.FirstItem = &first
	d.SecondItem = &second
	return d
}

// NewInvalidExtensionNumber reports an extension whose number lies outside
// every extension range of the extended message
func NewInvalidExtensionNumber(number int64, message, help string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidExtensionNumber, KindInvalidExtensionNumber,
		fmt.Sprintf("message '%s' does not define %d as an extension number", message, number))
	d.Name = message
	d.Number = number
	d.Help = help
	d.First = locPtr(at)
	return d
}

// NewInvalidFieldNumber reports a field number outside the usable space
func NewInvalidFieldNumber(field string, number int64, reason string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidFieldNumber, KindInvalidFieldNumber,
		fmt.Sprintf("field '%s' has invalid number %d: %s", field, number, reason))
	d.Name = field
	d.Number = number
	d.First = locPtr(at)
	return d
}

// NewInvalidDefault reports a default on a field that cannot carry one
func NewInvalidDefault(field, reason string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidDefault, KindInvalidDefault,
		fmt.Sprintf("invalid default for field '%s': %s", field, reason))
	d.Name = field
	d.First = locPtr(at)
	return d
}

// NewInvalidEnumValue reports an identifier that names no value of the target enum
func NewInvalidEnumValue(value, enum, help string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidEnumValue, KindInvalidEnumValue,
		fmt.Sprintf("enum '%s' has no value named '%s'", enum, value))
	d.Name = enum
	d.Actual = value
	d.Help = help
	d.First = locPtr(at)
	return d
}

// NewValueInvalidType reports a literal of the wrong shape for its target
func NewValueInvalidType(expected, actual string, at Location) *Diagnostic {
	d := newDiagnostic(ErrValueInvalidType, KindValueInvalidType,
		fmt.Sprintf("expected %s, but found '%s'", expected, actual))
	d.Expected = expected
	d.Actual = actual
	d.First = locPtr(at)
	return d
}

// NewInvalidMapEntry reports a malformed map entry message or map field
func NewInvalidMapEntry(name, reason string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidMapEntry, KindInvalidMapEntry,
		fmt.Sprintf("invalid map entry '%s': %s", name, reason))
	d.Name = name
	d.First = locPtr(at)
	return d
}

// NewInvalidOneof reports a bad oneof declaration or membership
func NewInvalidOneof(name, reason string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidOneof, KindInvalidOneof,
		fmt.Sprintf("invalid oneof '%s': %s", name, reason))
	d.Name = name
	d.First = locPtr(at)
	return d
}

// NewInvalidLabel reports a cardinality the field's context does not allow
func NewInvalidLabel(field, reason string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidLabel, KindInvalidLabel,
		fmt.Sprintf("invalid label on field '%s': %s", field, reason))
	d.Name = field
	d.First = locPtr(at)
	return d
}

// NewInvalidPacked reports packed encoding requested for a non-packable field
func NewInvalidPacked(field, reason string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidPacked, KindInvalidPacked,
		fmt.Sprintf("field '%s' cannot be packed: %s", field, reason))
	d.Name = field
	d.First = locPtr(at)
	return d
}

// NewOptionAlreadySet reports a singular option set by two statements
func NewOptionAlreadySet(name string, first, second Location) *Diagnostic {
	d := newDiagnostic(ErrOptionAlreadySet, KindOptionAlreadySet,
		fmt.Sprintf("option '%s' is already set", name))
	d.Name = name
	d.First = locPtr(first)
	d.Second = locPtr(second)
	return d
}

// NewUnknownOptionField reports an option name that is not a field or
// extension of the option message
func NewUnknownOptionField(name, message string, at Location) *Diagnostic {
	d := newDiagnostic(ErrUnknownOptionField, KindUnknownOptionField,
		fmt.Sprintf("'%s' is not a field or extension of '%s'", name, message))
	d.Name = name
	d.Expected = message
	d.First = locPtr(at)
	return d
}

// NewInvalidOptionPath reports an option path that cannot be walked
func NewInvalidOptionPath(name, reason string, at Location) *Diagnostic {
	d := newDiagnostic(ErrInvalidOptionPath, KindInvalidOptionPath,
		fmt.Sprintf("invalid option path '%s': %s", name, reason))
	d.Name = name
	d.First = locPtr(at)
	return d
}

// NewMissingDependency reports an import that is neither in the batch nor the base pool
func NewMissingDependency(dependency, file string, at Location) *Diagnostic {
	d := newDiagnostic(ErrMissingDependency, KindMissingDependency,
		fmt.Sprintf("file '%s' imports '%s', which was not found", file, dependency))
	d.Name = dependency
	d.First = locPtr(at)
	return d
}

// NewImportCycle reports files that import each other
func NewImportCycle(cycle []string, at Location) *Diagnostic {
	d := newDiagnostic(ErrImportCycle, KindImportCycle,
		fmt.Sprintf("import cycle: %s", strings.Join(cycle, " -> ")))
	if len(cycle) > 0 {
		d.Name = cycle[0]
	}
	d.First = locPtr(at)
	return d
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
