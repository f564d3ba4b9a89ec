package names

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/protopool/internal/diag"
)

// KindSet is a set of symbol kinds
type KindSet uint16

// Kinds builds a KindSet
func Kinds(ks ...SymbolKind) KindSet {
	var s KindSet
	for _, k := range ks {
		s |= 1 << k
	}
	return s
}

// Has reports whether k is in the set
func (s KindSet) Has(k SymbolKind) bool {
	return s&(1<<k) != 0
}

// Types accepts message and enum symbols
var Types = Kinds(SymMessage, SymEnum)

// Filter decides which symbols a reference may resolve to
type Filter struct {
	Kinds KindSet
	// Visible reports whether symbols from a file can be seen by the
	// referencing file; nil means every file is visible
	Visible func(file string) bool
	// Expected describes the accepted kinds in diagnostics, e.g. "a message"
	Expected string
}

func (f Filter) visible(sym *Symbol) bool {
	return f.Visible == nil || f.Visible(sym.File)
}

// Candidates lists the fully-qualified names a reference may denote, in
// search order. Absolute references (leading dot) have exactly one
// candidate. A simple relative name is tried in scope, then in each
// enclosing scope up to the root. A dotted relative name binds its first
// component to the innermost visible package, message, enum or service of
// that name; the rest must then be declared under that binding.
func (t *Table) Candidates(scope, ref string, filter Filter) []string {
	if strings.HasPrefix(ref, ".") {
		return []string{ref[1:]}
	}
	first, rest, dotted := strings.Cut(ref, ".")
	var out []string
	for s := scope; ; s = ParentScope(s) {
		name := Join(s, first)
		if !dotted {
			out = append(out, name)
		} else if sym, ok := t.Lookup(name); ok && isAggregate(sym.Kind) &&
			(sym.Kind == SymPackage || filter.visible(sym)) {
			return []string{name + "." + rest}
		}
		if s == "" {
			return out
		}
	}
}

func isAggregate(k SymbolKind) bool {
	switch k {
	case SymPackage, SymMessage, SymEnum, SymService:
		return true
	}
	return false
}

// Resolve resolves ref as seen from scope. The first candidate whose symbol
// passes the filter wins. On failure the diagnostic reports the literal
// reference: as the wrong kind of symbol when one was found, as hidden when
// the only match lives in a file that is not imported, and as not found
// otherwise.
func (t *Table) Resolve(scope, ref string, filter Filter, at diag.Location) (string, *Symbol, *diag.Diagnostic) {
	if ref == "" || ref == "." {
		return "", nil, diag.NewTypeNameNotFound(ref, at)
	}

	var wrongKind, hidden *Symbol
	var wrongName string
	for _, name := range t.Candidates(scope, ref, filter) {
		sym, ok := t.Lookup(name)
		if !ok {
			continue
		}
		if !filter.Kinds.Has(sym.Kind) {
			if wrongKind == nil {
				wrongKind, wrongName = sym, name
			}
			continue
		}
		if !filter.visible(sym) {
			if hidden == nil {
				hidden = sym
			}
			continue
		}
		return name, sym, nil
	}

	switch {
	case hidden != nil:
		return "", nil, diag.NewTypeNameNotFound(ref, at).
			WithHelp(fmt.Sprintf("'%s' is defined in '%s', which is not imported", ref, hidden.File))
	case wrongKind != nil && wrongKind.Kind != SymPackage:
		expected := filter.Expected
		if expected == "" {
			expected = "a type"
		}
		return "", nil, diag.NewInvalidTypeReference(ref, expected, wrongKind.Kind.String(), at).
			WithHelp(fmt.Sprintf("'%s' resolves to '%s'", ref, wrongName))
	default:
		return "", nil, diag.NewTypeNameNotFound(ref, at)
	}
}
