// Package names holds the scoped symbol table of a descriptor pool: it
// detects duplicate declarations and resolves textual type references.
package names

import (
	"strings"

	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// SymbolKind is what a fully-qualified name refers to
type SymbolKind uint8

const (
	SymPackage SymbolKind = iota
	SymMessage
	SymEnum
	SymEnumValue
	SymField
	SymOneof
	SymExtension
	SymService
	SymMethod
)

var symbolKindNames = [...]string{
	SymPackage:   "a package",
	SymMessage:   "a message",
	SymEnum:      "an enum",
	SymEnumValue: "an enum value",
	SymField:     "a field",
	SymOneof:     "a oneof",
	SymExtension: "an extension",
	SymService:   "a service",
	SymMethod:    "a method",
}

// String describes the kind with an article
func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return "a symbol"
}

// Symbol is one declared name
type Symbol struct {
	Kind SymbolKind
	// Type is the message or enum id for types, and the containing
	// message or enum for fields, oneofs and values
	Type typegraph.TypeID
	// Index is the extension, service or method index where relevant
	Index     int
	File      string
	Synthetic bool
	Location  diag.Location
}

// Table maps fully-qualified names (without a leading dot) to symbols. A
// table may sit on a parent table: lookups fall through to the parent,
// declarations only ever go into the child.
type Table struct {
	parent  *Table
	symbols map[string]*Symbol
}

// NewTable returns an empty table layered on parent, which may be nil
func NewTable(parent *Table) *Table {
	return &Table{parent: parent, symbols: make(map[string]*Symbol)}
}

// Parent returns the table this one is layered on
func (t *Table) Parent() *Table {
	return t.parent
}

// Lookup finds a fully-qualified name in this table or its ancestors
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for cur := t; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Len returns the number of names declared in this layer
func (t *Table) Len() int {
	return len(t.symbols)
}

// Declare inserts a name. Packages may be declared any number of times as
// long as every declaration is a package; any other clash is a duplicate
// name, framed by where the first declaration came from.
func (t *Table) Declare(name string, sym Symbol) *diag.Diagnostic {
	existing, ok := t.Lookup(name)
	if !ok {
		s := sym
		t.symbols[name] = &s
		return nil
	}
	if existing.Kind == SymPackage && sym.Kind == SymPackage {
		return nil
	}

	first := existing.Location
	switch {
	case existing.Synthetic:
		first.Synthetic = true
	case existing.File != sym.File:
		first.File = existing.File
		first.Imported = true
	}
	second := sym.Location
	if sym.Synthetic {
		second.Synthetic = true
	}
	return diag.NewDuplicateName(name, first, second)
}

// DeclarePackage declares a package and every dotted prefix of it
func (t *Table) DeclarePackage(pkg, file string, at diag.Location) *diag.Diagnostic {
	if pkg == "" {
		return nil
	}
	for i := 0; i <= len(pkg); i++ {
		if i < len(pkg) && pkg[i] != '.' {
			continue
		}
		if d := t.Declare(pkg[:i], Symbol{Kind: SymPackage, File: file, Location: at}); d != nil {
			return d
		}
	}
	return nil
}

// Join builds a fully-qualified name from a scope and a simple name
func Join(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

// ParentScope returns the scope enclosing a fully-qualified name
func ParentScope(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// ShortName returns the last component of a fully-qualified name
func ShortName(name string) string {
	return name[strings.LastIndexByte(name, '.')+1:]
}

// ValidIdent reports whether s is a valid simple identifier
func ValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// ValidFullName reports whether s is a dot-separated list of identifiers
func ValidFullName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if !ValidIdent(part) {
			return false
		}
	}
	return true
}
