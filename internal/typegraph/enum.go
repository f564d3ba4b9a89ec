package typegraph

// Enum is an enum definition. Values keep declaration order; the first value
// is the default.
type Enum struct {
	ID     TypeID
	Name   string
	File   string
	Syntax Syntax

	Values         []*EnumValue
	ReservedRanges []Range
	ReservedNames  []string
	AllowAlias     bool
	Deprecated     bool
	Options        *MessageValue

	byNumber map[int32]int
	byName   map[string]int
}

// EnumValue is one named number of an enum
type EnumValue struct {
	Name     string
	FullName string
	Number   int32
	Index    int
	Options  *MessageValue
}

// Finalize builds the lookup indices. With aliases, a number maps to the
// first value declared with it.
func (e *Enum) Finalize() {
	e.byNumber = make(map[int32]int, len(e.Values))
	e.byName = make(map[string]int, len(e.Values))
	for i, v := range e.Values {
		if _, ok := e.byNumber[v.Number]; !ok {
			e.byNumber[v.Number] = i
		}
		if _, ok := e.byName[v.Name]; !ok {
			e.byName[v.Name] = i
		}
	}
}

// Default returns the first declared value, or nil for an empty enum
func (e *Enum) Default() *EnumValue {
	if len(e.Values) == 0 {
		return nil
	}
	return e.Values[0]
}

// ValueByNumber returns the first value declared with n, or nil
func (e *Enum) ValueByNumber(n int32) *EnumValue {
	if e.byNumber == nil {
		for _, v := range e.Values {
			if v.Number == n {
				return v
			}
		}
		return nil
	}
	if i, ok := e.byNumber[n]; ok {
		return e.Values[i]
	}
	return nil
}

// ValueByName returns the value with the given simple name, or nil
func (e *Enum) ValueByName(name string) *EnumValue {
	if e.byName == nil {
		for _, v := range e.Values {
			if v.Name == name {
				return v
			}
		}
		return nil
	}
	if i, ok := e.byName[name]; ok {
		return e.Values[i]
	}
	return nil
}

// ValueNames returns the value names in declaration order
func (e *Enum) ValueNames() []string {
	names := make([]string, len(e.Values))
	for i, v := range e.Values {
		names[i] = v.Name
	}
	return names
}

// IsClosed reports whether unknown numbers are rejected on decode, which is
// the case for enums declared in proto2 files
func (e *Enum) IsClosed() bool {
	return e.Syntax == Proto2
}
