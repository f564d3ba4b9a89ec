// Package diag provides structured diagnostics for descriptor pool construction.
// Every condition is data: callers match on Kind or Code and read the structured
// fields, while rendering for terminals, JSON and editors is layered on top.
package diag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Code is a stable identifier for a diagnostic (e.g. "DSC101")
type Code string

// Kind is the machine-readable condition kind
type Kind string

const (
	KindDuplicateName          Kind = "duplicate_name"
	KindTypeNameNotFound       Kind = "type_name_not_found"
	KindInvalidRange           Kind = "invalid_range"
	KindDuplicateNumber        Kind = "duplicate_number"
	KindInvalidExtensionNumber Kind = "invalid_extension_number"
	KindInvalidDefault         Kind = "invalid_default"
	KindInvalidEnumValue       Kind = "invalid_enum_value"
	KindValueInvalidType       Kind = "value_invalid_type"
	KindOptionAlreadySet       Kind = "option_already_set"
	KindUnknownOptionField     Kind = "unknown_option_field"
	KindMissingDependency      Kind = "missing_dependency"

	KindInvalidName          Kind = "invalid_name"
	KindInvalidTypeReference Kind = "invalid_type_reference"
	KindInvalidFieldNumber   Kind = "invalid_field_number"
	KindInvalidMapEntry      Kind = "invalid_map_entry"
	KindInvalidOneof         Kind = "invalid_oneof"
	KindInvalidLabel         Kind = "invalid_label"
	KindInvalidPacked        Kind = "invalid_packed"
	KindDuplicateJSONName    Kind = "duplicate_json_name"
	KindInvalidOptionPath    Kind = "invalid_option_path"
	KindImportCycle          Kind = "import_cycle"
)

// Severity indicates how serious a diagnostic is
type Severity string

const (
	// SeverityError prevents the pool from being built
	SeverityError Severity = "error"
	// SeverityWarning is reported but does not fail construction
	SeverityWarning Severity = "warning"
)

// Span is a 1-based source range taken from source code info
type Span struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
}

// Location identifies a declaration inside a file descriptor record.
// Path is the descriptor source path; Span is set when the record carried
// source code info for that path.
type Location struct {
	File      string  `json:"file,omitempty"`
	Path      []int32 `json:"path,omitempty"`
	Span      *Span   `json:"span,omitempty"`
	Imported  bool    `json:"imported,omitempty"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

// String renders the location as file:line:col when a span is known
func (l Location) String() string {
	switch {
	case l.Synthetic:
		return "<generated>"
	case l.File == "":
		return "<unknown>"
	case l.Span != nil:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Span.StartLine, l.Span.StartColumn)
	default:
		return l.File
	}
}

// NumberItem describes one side of a numbering conflict
type NumberItem struct {
	Kind  string `json:"kind"`
	Name  string `json:"name,omitempty"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// String renders the item the way protobuf sources spell it
func (n NumberItem) String() string {
	switch {
	case n.Name != "":
		return fmt.Sprintf("%s '%s' (%d)", n.Kind, n.Name, n.Start)
	case n.Start == n.End:
		return fmt.Sprintf("%s %d", n.Kind, n.Start)
	default:
		return fmt.Sprintf("%s %d to %d", n.Kind, n.Start, n.End)
	}
}

// Diagnostic is a single structured condition raised while building a pool
type Diagnostic struct {
	Code     Code     `json:"code"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// Name is the symbol, reference text or option path the condition is about
	Name     string `json:"name,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Number   int64  `json:"number,omitempty"`

	// Help and Suggestions carry "did you mean" style hints
	Help        string   `json:"help,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`

	First  *Location `json:"first,omitempty"`
	Second *Location `json:"second,omitempty"`

	FirstItem  *NumberItem `json:"first_item,omitempty"`
	SecondItem *NumberItem `json:"second_item,omitempty"`
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	var b strings.Builder
	if loc := d.primary(); loc != nil && (loc.File != "" || loc.Synthetic) {
		b.WriteString(loc.String())
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	if d.Help != "" {
		b.WriteString(" (")
		b.WriteString(d.Help)
		b.WriteString(")")
	}
	return b.String()
}

// primary returns the location the condition is reported at: the second
// declaration of a conflict, or the only one
func (d *Diagnostic) primary() *Location {
	if d.Second != nil {
		return d.Second
	}
	return d.First
}

// WithHelp sets the help text
func (d *Diagnostic) WithHelp(help string) *Diagnostic {
	d.Help = help
	return d
}

// WithSuggestions records candidate replacements
func (d *Diagnostic) WithSuggestions(s ...string) *Diagnostic {
	d.Suggestions = s
	return d
}

// WithExpected sets what was expected
func (d *Diagnostic) WithExpected(expected string) *Diagnostic {
	d.Expected = expected
	return d
}

// WithActual sets what was found instead
func (d *Diagnostic) WithActual(actual string) *Diagnostic {
	d.Actual = actual
	return d
}

// AsWarning downgrades the diagnostic to a warning
func (d *Diagnostic) AsWarning() *Diagnostic {
	d.Severity = SeverityWarning
	return d
}

// key identifies the diagnostic for deduplication
func (d *Diagnostic) key() string {
	data, err := json.Marshal(d)
	if err != nil {
		return d.Error()
	}
	return string(data)
}

func newDiagnostic(code Code, kind Kind, message string) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Kind:     kind,
		Severity: SeverityError,
		Message:  message,
	}
}

func locPtr(l Location) *Location {
	return &l
}
