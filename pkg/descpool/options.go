package descpool

import (
	"strings"

	"github.com/conduit-lang/protopool/internal/options"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// Options is an interpreted options message: the built-in option fields
// and every custom option set through an extension
type Options struct {
	pool  *Pool
	graph *typegraph.Graph
	value *typegraph.MessageValue
}

// OptionField is one set field of an options message. Value holds the
// natural Go type for scalars, the number for enums, []any for repeated
// fields and Options for message fields.
type OptionField struct {
	Number      int32
	Name        string
	IsExtension bool
	Value       any
}

// IsEmpty reports whether no option is set
func (o Options) IsEmpty() bool {
	return o.value.Len() == 0 && (o.value == nil || len(o.value.Unknown) == 0)
}

// TypeName returns the options message type, such as
// google.protobuf.FieldOptions
func (o Options) TypeName() string {
	if o.value == nil {
		return ""
	}
	return o.value.TypeName
}

// Fields returns the set fields ordered by number
func (o Options) Fields() []OptionField {
	if o.value == nil {
		return nil
	}
	out := make([]OptionField, len(o.value.Fields))
	for i, fv := range o.value.Fields {
		out[i] = o.field(fv)
	}
	return out
}

// Get returns a set field by name. Extensions are named by their full
// name, with or without surrounding parentheses.
func (o Options) Get(name string) (OptionField, bool) {
	name = strings.TrimSuffix(strings.TrimPrefix(name, "("), ")")
	fv := o.value.GetByName(strings.TrimPrefix(name, "."))
	if fv == nil {
		return OptionField{}, false
	}
	return o.field(fv), true
}

// Bool returns a singular bool field by name
func (o Options) Bool(name string) (value, ok bool) {
	f, found := o.Get(name)
	if !found {
		return false, false
	}
	b, ok := f.Value.(bool)
	return b, ok
}

// Marshal encodes the options message in wire format
func (o Options) Marshal() []byte {
	return options.Marshal(o.value)
}

// String renders the options in text format
func (o Options) String() string {
	var b strings.Builder
	o.render(&b, o.value)
	return b.String()
}

func (o Options) field(fv *typegraph.FieldValue) OptionField {
	return OptionField{
		Number:      fv.Number,
		Name:        fv.Name,
		IsExtension: fv.Extension,
		Value:       o.convert(fv.Value),
	}
}

func (o Options) convert(v typegraph.OptionValue) any {
	switch v := v.(type) {
	case typegraph.Value:
		return v.Interface()
	case typegraph.ListValue:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = o.convert(elem)
		}
		return out
	case *typegraph.MessageValue:
		return Options{pool: o.pool, graph: o.types(), value: v}
	}
	return nil
}

func (o Options) render(b *strings.Builder, mv *typegraph.MessageValue) {
	if mv == nil {
		return
	}
	for i, fv := range mv.Fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		if list, ok := fv.Value.(typegraph.ListValue); ok {
			b.WriteString(fv.DisplayName())
			b.WriteString(": [")
			for j, elem := range list {
				if j > 0 {
					b.WriteString(", ")
				}
				o.renderValue(b, fv, elem)
			}
			b.WriteByte(']')
			continue
		}
		b.WriteString(fv.DisplayName())
		if _, ok := fv.Value.(*typegraph.MessageValue); ok {
			b.WriteByte(' ')
		} else {
			b.WriteString(": ")
		}
		o.renderValue(b, fv, fv.Value)
	}
}

func (o Options) renderValue(b *strings.Builder, fv *typegraph.FieldValue, v typegraph.OptionValue) {
	switch v := v.(type) {
	case *typegraph.MessageValue:
		b.WriteString("{ ")
		o.render(b, v)
		b.WriteString(" }")
	case typegraph.Value:
		if g := o.types(); fv.Kind == typegraph.KindEnum && g != nil {
			if e := g.Enum(fv.Type); e != nil {
				if ev := e.ValueByNumber(v.AsEnum()); ev != nil {
					b.WriteString(ev.Name)
					return
				}
			}
		}
		b.WriteString(v.String())
	}
}

// types returns the graph the option type ids refer to. Built-in options of
// a pool without descriptor.proto are typed against a bundled graph.
func (o Options) types() *typegraph.Graph {
	switch {
	case o.graph != nil:
		return o.graph
	case o.value != nil && o.value.Graph != nil:
		return o.value.Graph
	case o.pool != nil:
		return o.pool.res.Graph
	}
	return nil
}
