// Package options interprets the uninterpreted option statements of
// descriptor options records into typed option values.
package options

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/srcinfo"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// Record is any descriptor options message
type Record interface {
	proto.Message
	GetUninterpretedOption() []*descriptorpb.UninterpretedOption
}

// Target is one options record to interpret
type Target struct {
	// OptionType is the full name of the options message, e.g.
	// google.protobuf.FieldOptions
	OptionType string
	Raw        Record
	// Scope is where extension names in option statements are resolved from
	Scope string
	// Path is the source path of the options record in its file
	Path    []int32
	Index   *srcinfo.Index
	Visible func(file string) bool
}

func (t *Target) location() diag.Location {
	if t.Index == nil {
		return diag.Location{Path: t.Path}
	}
	return t.Index.Nearest(t.Path...)
}

func (t *Target) statementLocation(i int) diag.Location {
	path := srcinfo.Child(t.Path, srcinfo.UninterpretedOption, int32(i))
	if t.Index == nil {
		return diag.Location{Path: path}
	}
	return t.Index.Nearest(path...)
}

func (t *Target) sourceLocation(src typegraph.Source) diag.Location {
	if src.Statement < 0 {
		return t.location()
	}
	return t.statementLocation(src.Statement)
}

// Resolver interprets options against a type graph and the symbol table
// that names its types and extensions
type Resolver struct {
	Graph *typegraph.Graph
	Table *names.Table
}

// Interpret decodes the already-typed fields of the record and applies each
// uninterpreted statement to them. Statements that fail produce a diagnostic
// and are skipped; the rest still apply.
func (r *Resolver) Interpret(t Target) (*typegraph.MessageValue, []*diag.Diagnostic) {
	sym, ok := r.Table.Lookup(t.OptionType)
	if !ok || sym.Kind != names.SymMessage {
		return nil, nil
	}

	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(t.Raw)
	if err != nil {
		return nil, []*diag.Diagnostic{diag.NewValueInvalidType("a valid "+t.OptionType, err.Error(), t.location())}
	}
	mv, err := Decode(r.Graph, sym.Type, data)
	if err != nil {
		return nil, []*diag.Diagnostic{diag.NewValueInvalidType("a valid "+t.OptionType, err.Error(), t.location())}
	}

	var diags []*diag.Diagnostic
	for i, opt := range t.Raw.GetUninterpretedOption() {
		if d := r.interpretStatement(&t, mv, i, opt); d != nil {
			diags = append(diags, d)
		}
	}
	mv.Graph = r.Graph
	return mv, diags
}

func (r *Resolver) interpretStatement(t *Target, mv *typegraph.MessageValue, i int, opt *descriptorpb.UninterpretedOption) *diag.Diagnostic {
	at := t.statementLocation(i)
	parts := opt.GetName()
	name := optionName(parts)
	if len(parts) == 0 {
		return diag.NewInvalidOptionPath(name, "option name is empty", at)
	}

	cur := mv
	for j, part := range parts {
		fi, d := r.lookupPart(t, cur.Type, part, at)
		if d != nil {
			return d
		}
		if j == len(parts)-1 {
			return r.assign(t, cur, fi, opt, i, name, at)
		}

		if !fi.Kind.IsMessage() || fi.IsRepeated() {
			return diag.NewInvalidOptionPath(name,
				fmt.Sprintf("'%s' is not a singular message field, so it cannot be followed by '.%s'",
					optionName(parts[:j+1]), optionName(parts[j+1:j+2])), at)
		}
		if existing := cur.Get(fi.Number); existing != nil {
			sub, ok := existing.Value.(*typegraph.MessageValue)
			if !ok {
				return diag.NewInvalidOptionPath(name, fmt.Sprintf("'%s' does not hold a message", optionName(parts[:j+1])), at)
			}
			cur = sub
			continue
		}
		sub := typegraph.NewMessageValue(fi.Type, typeName(r.Graph, fi.Type))
		cur.Set(fi.newValue(sub, typegraph.Source{Statement: i}))
		cur = sub
	}
	return nil
}

func (r *Resolver) lookupPart(t *Target, msgID typegraph.TypeID, part *descriptorpb.UninterpretedOption_NamePart, at diag.Location) (fieldInfo, *diag.Diagnostic) {
	if part.GetIsExtension() {
		return r.resolveExtension(t, msgID, part.GetNamePart(), at)
	}
	msg := r.Graph.Message(msgID)
	if msg == nil {
		return fieldInfo{}, diag.NewUnknownOptionField(part.GetNamePart(), typeName(r.Graph, msgID), at)
	}
	f := msg.FieldByName(part.GetNamePart())
	if f == nil {
		return fieldInfo{}, diag.NewUnknownOptionField(part.GetNamePart(), msg.Name, at)
	}
	return fieldInfo{Field: f}, nil
}

// resolveExtension resolves an extension name from the target's scope and
// checks that it extends msgID
func (r *Resolver) resolveExtension(t *Target, msgID typegraph.TypeID, ref string, at diag.Location) (fieldInfo, *diag.Diagnostic) {
	_, sym, d := r.Table.Resolve(t.Scope, ref, names.Filter{
		Kinds:    names.Kinds(names.SymExtension),
		Visible:  t.Visible,
		Expected: "an extension",
	}, at)
	if d != nil {
		return fieldInfo{}, d
	}
	ext := r.Graph.Extension(sym.Index)
	if ext == nil {
		return fieldInfo{}, diag.NewTypeNameNotFound(ref, at)
	}
	if ext.Extendee != msgID {
		return fieldInfo{}, diag.NewUnknownOptionField("("+ref+")", typeName(r.Graph, msgID), at).
			WithHelp(fmt.Sprintf("'%s' extends '%s'", ext.FullName, typeName(r.Graph, ext.Extendee)))
	}
	return fieldInfo{Field: &ext.Field, extension: true, fullName: ext.FullName}, nil
}

// assign stores the statement's value in the leaf field. Singular fields may
// only be set once; repeated fields append.
func (r *Resolver) assign(t *Target, cur *typegraph.MessageValue, fi fieldInfo, opt *descriptorpb.UninterpretedOption, i int, name string, at diag.Location) *diag.Diagnostic {
	existing := cur.Get(fi.Number)
	if existing != nil && !fi.IsRepeated() {
		return diag.NewOptionAlreadySet(name, t.sourceLocation(existing.Source), at)
	}

	lit := literalFromOption(opt)
	var v typegraph.OptionValue
	if fi.Kind.IsMessage() {
		if lit.kind != litAggregate {
			return diag.NewValueInvalidType("a message literal in braces", lit.String(), at)
		}
		sub, d := r.parseAggregate(t, fi.Type, lit.agg, i, at)
		if d != nil {
			return d
		}
		v = sub
	} else {
		sv, d := r.scalarValue(fi, lit, at)
		if d != nil {
			return d
		}
		v = sv
	}

	src := typegraph.Source{Statement: i}
	if !fi.IsRepeated() {
		cur.Set(fi.newValue(v, src))
		return nil
	}
	if existing != nil {
		if list, ok := existing.Value.(typegraph.ListValue); ok {
			existing.Value = append(list, v)
			return nil
		}
	}
	cur.Set(fi.newValue(typegraph.ListValue{v}, src))
	return nil
}
