package typegraph

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Range is an inclusive number range
type Range struct {
	Start int32
	End   int32
}

// Contains reports whether n lies in r
func (r Range) Contains(n int32) bool {
	return n >= r.Start && n <= r.End
}

// String renders the range as schema source writes it, such as "5" or
// "9 to 11"
func (r Range) String() string {
	if r.Start == r.End {
		return strconv.Itoa(int(r.Start))
	}
	return strconv.Itoa(int(r.Start)) + " to " + strconv.Itoa(int(r.End))
}

// ExtensionRange is a range of numbers open to extensions
type ExtensionRange struct {
	Range
	Options *MessageValue
}

// Message is a message definition
type Message struct {
	ID     TypeID
	Name   string
	File   string
	Syntax Syntax

	// Parent is the enclosing message, zero for top-level messages
	Parent    TypeID
	HasParent bool

	// Fields are ordered by number once Finalize has run
	Fields          []*Field
	Oneofs          []*Oneof
	ReservedRanges  []Range
	ReservedNames   []string
	ExtensionRanges []ExtensionRange

	// Extensions indexes the graph's extension list
	Extensions []int

	IsMapEntry           bool
	MessageSetWireFormat bool
	Deprecated           bool
	Options              *MessageValue

	byNumber map[int32]int
	byName   map[string]int
	byJSON   map[string]int
	byCamel  map[string]int
}

// AddField appends a field in declaration order
func (m *Message) AddField(f *Field) {
	f.Parent = m.ID
	m.Fields = append(m.Fields, f)
}

// Finalize orders fields by number and rebuilds the lookup indices. Oneof
// membership is stored as numbers, so it survives the reorder.
func (m *Message) Finalize() {
	sort.SliceStable(m.Fields, func(i, j int) bool {
		return m.Fields[i].Number < m.Fields[j].Number
	})
	m.byNumber = make(map[int32]int, len(m.Fields))
	m.byName = make(map[string]int, len(m.Fields))
	m.byJSON = make(map[string]int, len(m.Fields))
	m.byCamel = make(map[string]int, len(m.Fields))
	for i, f := range m.Fields {
		if _, ok := m.byNumber[f.Number]; !ok {
			m.byNumber[f.Number] = i
		}
		if _, ok := m.byName[f.Name]; !ok {
			m.byName[f.Name] = i
		}
		if _, ok := m.byJSON[f.JSONName]; !ok {
			m.byJSON[f.JSONName] = i
		}
		key := CamelKey(f.Name)
		if _, ok := m.byCamel[key]; !ok {
			m.byCamel[key] = i
		}
	}
}

// FieldByNumber returns the field with the given number, or nil
func (m *Message) FieldByNumber(n int32) *Field {
	if m.byNumber == nil {
		for _, f := range m.Fields {
			if f.Number == n {
				return f
			}
		}
		return nil
	}
	if i, ok := m.byNumber[n]; ok {
		return m.Fields[i]
	}
	return nil
}

// FieldByName returns the field with the given simple name, or nil
func (m *Message) FieldByName(name string) *Field {
	if m.byName == nil {
		for _, f := range m.Fields {
			if f.Name == name {
				return f
			}
		}
		return nil
	}
	if i, ok := m.byName[name]; ok {
		return m.Fields[i]
	}
	return nil
}

// FieldByJSONName returns the field with the given JSON name, or nil
func (m *Message) FieldByJSONName(name string) *Field {
	if i, ok := m.byJSON[name]; ok {
		return m.Fields[i]
	}
	return nil
}

// FieldByCamelName looks a field up ignoring case and underscores
func (m *Message) FieldByCamelName(name string) *Field {
	if i, ok := m.byCamel[CamelKey(name)]; ok {
		return m.Fields[i]
	}
	return nil
}

// FieldByGroupName finds a group field by the name of its group type, as
// text format spells groups
func (m *Message) FieldByGroupName(g *Graph, typeName string) *Field {
	for _, f := range m.Fields {
		if f.IsGroup {
			if t := g.Resolve(f.Type); t != nil && shortName(t.Name) == typeName {
				return f
			}
		}
	}
	return nil
}

// InExtensionRange reports whether n falls inside a declared extension range
func (m *Message) InExtensionRange(n int32) bool {
	for _, r := range m.ExtensionRanges {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// Clone returns a copy that can be modified without affecting m. Fields and
// oneofs are shared; only the registration list grows after construction.
func (m *Message) Clone() *Message {
	c := *m
	c.Extensions = slices.Clone(m.Extensions)
	return &c
}

func (m *Message) shrink() {
	m.Fields = slices.Clip(m.Fields)
	m.Extensions = slices.Clip(m.Extensions)
}

// Field describes a message field or, through Extension, an extension field
type Field struct {
	Number   int32
	Name     string
	FullName string
	JSONName string

	// Index is the position in the declaring record
	Index int
	// Parent is the declaring message for fields, the extendee for extensions
	Parent TypeID

	Cardinality      Cardinality
	Kind             Kind
	IsGroup          bool
	IsPacked         bool
	SupportsPresence bool
	Proto3Optional   bool
	HasCustomJSON    bool
	Deprecated       bool

	// Type is the resolved target; scalar fields point at their scalar id
	Type TypeID
	// Default is nil when the field uses its type's zero value
	Default *Value
	// Oneof indexes the parent's oneofs, -1 when the field is in none
	Oneof   int
	Options *MessageValue
}

// IsRepeated reports whether the field holds a list or map
func (f *Field) IsRepeated() bool {
	return f.Cardinality == Repeated
}

// Extension is a field registered on another message
type Extension struct {
	Field
	Extendee TypeID
	// Scope is the package or message the extension is declared in
	Scope string
	File  string
}

// Oneof is a group of fields of which at most one is set
type Oneof struct {
	Name      string
	FullName  string
	Fields    []int32
	Synthetic bool
	Options   *MessageValue
}

// JSONName derives the default JSON name: underscores are dropped and the
// letter following one is upper-cased
func JSONName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	upper := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		b.WriteByte(c)
	}
	return b.String()
}

// CamelKey folds a field name for camel-case conflict detection
func CamelKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// TitleCase upper-cases the first letter of each underscore-separated word
// and drops the underscores, as map entry names are derived
func TitleCase(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	upper := true
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		b.WriteByte(c)
	}
	return b.String()
}

func shortName(fullName string) string {
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}
