package diag

import (
	"encoding/json"
	"errors"
	"strings"
)

// List is an ordered collection of diagnostics. A non-empty list is returned
// as the error of a failed construction.
type List []*Diagnostic

// Add appends diagnostics, ignoring nils
func (l *List) Add(ds ...*Diagnostic) {
	for _, d := range ds {
		if d != nil {
			*l = append(*l, d)
		}
	}
}

// Extend appends every diagnostic of another list
func (l *List) Extend(other List) {
	l.Add(other...)
}

// Error implements the error interface
func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	lines := make([]string, 0, len(l))
	for _, d := range l {
		lines = append(lines, d.Error())
	}
	return strings.Join(lines, "\n")
}

// Dedup removes repeated diagnostics, keeping the first occurrence of each
func (l List) Dedup() List {
	if len(l) < 2 {
		return l
	}
	seen := make(map[string]bool, len(l))
	out := make(List, 0, len(l))
	for _, d := range l {
		k := d.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

// HasErrors returns true if the list contains any errors (excludes warnings)
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity diagnostics
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Kinds returns the kind of every diagnostic, in order
func (l List) Kinds() []Kind {
	kinds := make([]Kind, len(l))
	for i, d := range l {
		kinds[i] = d.Kind
	}
	return kinds
}

// ErrorCount returns the number of diagnostics by severity
func (l List) ErrorCount() (errors, warnings int) {
	for _, d := range l {
		switch d.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return
}

// ToJSON returns all diagnostics as a JSON array
func (l List) ToJSON() (string, error) {
	if l == nil {
		l = List{}
	}
	bytes, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// AsList extracts a diagnostic list from an error returned by pool construction
func AsList(err error) (List, bool) {
	var l List
	if errors.As(err, &l) {
		return l, true
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		return List{d}, true
	}
	return nil, false
}
