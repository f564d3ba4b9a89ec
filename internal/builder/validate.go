package builder

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/conduit-lang/protopool/internal/defaults"
	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/fuzzy"
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/ranges"
	"github.com/conduit-lang/protopool/internal/srcinfo"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

// extensionClaim is the first extension seen for an extendee and number
type extensionClaim struct {
	name string
	at   diag.Location
}

type extensionKey struct {
	extendee typegraph.TypeID
	number   int32
}

// validate is the fourth pass. It runs on fully resolved declarations with
// interpreted options and checks everything that depends on both.
func (b *builder) validate() {
	claims := b.baseExtensionClaims()
	for _, fs := range b.files {
		for _, ms := range fs.messages {
			b.validateMessage(ms)
		}
		for _, es := range fs.enums {
			b.validateEnum(es)
		}
		for _, xs := range fs.extensions {
			b.validateExtension(xs, claims)
		}
	}
}

// baseExtensionClaims seeds the extension number claims with the extensions
// inherited from the base
func (b *builder) baseExtensionClaims() map[extensionKey]extensionClaim {
	claims := make(map[extensionKey]extensionClaim)
	if b.base == nil {
		return claims
	}
	for _, ext := range b.base.Graph.Extensions() {
		key := extensionKey{ext.Extendee, ext.Number}
		if _, ok := claims[key]; !ok {
			claims[key] = extensionClaim{
				name: ext.FullName,
				at:   diag.Location{File: ext.File, Imported: true},
			}
		}
	}
	return claims
}

func (b *builder) validateMessage(ms *messageState) {
	fs, msg, mp := ms.file, ms.msg, ms.proto

	limit := int32(ranges.MaxFieldNumber)
	if msg.MessageSetWireFormat {
		limit = ranges.MaxMessageSetNumber
	}

	var items []ranges.Item
	for i, r := range mp.GetReservedRange() {
		at := fs.at(srcinfo.Child(ms.path, srcinfo.MessageReservedRange, int32(i))...)
		rr := ranges.MessageRange(r.GetStart(), r.GetEnd())
		b.checkRangeBounds(msg.Name, "reserved range", rr, limit, at)
		items = append(items, ranges.Item{Kind: ranges.ReservedRange, Start: int64(rr.Start), End: int64(rr.End), Location: at})
	}
	for i, r := range mp.GetExtensionRange() {
		at := fs.at(srcinfo.Child(ms.path, srcinfo.MessageExtensionRange, int32(i))...)
		rr := ranges.MessageRange(r.GetStart(), r.GetEnd())
		b.checkRangeBounds(msg.Name, "extension range", rr, limit, at)
		items = append(items, ranges.Item{Kind: ranges.ExtensionRange, Start: int64(rr.Start), End: int64(rr.End), Location: at})
	}
	for _, f := range ms.fields {
		at := fs.at(srcinfo.Child(f.path, srcinfo.FieldNumber)...)
		n := int64(f.field.Number)
		if reason := ranges.CheckFieldNumber(n, msg.MessageSetWireFormat); reason != "" {
			b.diags.Add(diag.NewInvalidFieldNumber(f.field.FullName, n, reason, at))
		}
		items = append(items, ranges.Item{Kind: ranges.Field, Name: f.field.Name, Start: n, End: n, Location: at})

		if slices.Contains(msg.ReservedNames, f.field.Name) {
			b.diags.Add(diag.NewInvalidName(f.field.FullName,
				fmt.Sprintf("field name '%s' is reserved in '%s'", f.field.Name, msg.Name),
				fs.at(srcinfo.Child(f.path, srcinfo.FieldName)...)))
		}
		b.validateField(f, msg)
	}
	b.diags.Add(ranges.Check(items, ranges.Options{})...)

	b.validateOneofs(ms)
	b.validateJSONNames(ms)
}

func (b *builder) checkRangeBounds(message, kind string, r typegraph.Range, limit int32, at diag.Location) {
	switch {
	case r.Start < 1:
		b.diags.Add(diag.NewInvalidFieldNumber(message, int64(r.Start),
			fmt.Sprintf("a %s must start at a positive number", kind), at))
	case r.End > limit:
		b.diags.Add(diag.NewInvalidFieldNumber(message, int64(r.End),
			fmt.Sprintf("a %s must not end past %d", kind, limit), at))
	}
}

// validateField runs the checks shared by fields and extensions. msg is nil
// for extensions.
func (b *builder) validateField(f *fieldState, msg *typegraph.Message) {
	fs, field, fp := f.file, f.field, f.proto
	labelAt := fs.at(srcinfo.Child(f.path, srcinfo.FieldLabel)...)

	switch {
	case fs.Syntax == typegraph.Proto3 && field.Cardinality == typegraph.Required:
		b.diags.Add(diag.NewInvalidLabel(field.FullName, "required fields are not allowed in proto3", labelAt))
	case field.Proto3Optional && fs.Syntax != typegraph.Proto3:
		b.diags.Add(diag.NewInvalidLabel(field.FullName, "proto3_optional is only allowed in proto3 files", labelAt))
	case field.Proto3Optional && field.Cardinality != typegraph.Optional:
		b.diags.Add(diag.NewInvalidLabel(field.FullName,
			fmt.Sprintf("a proto3 optional field cannot be %s", field.Cardinality), labelAt))
	}

	if msg != nil && field.Oneof >= 0 {
		at := fs.at(srcinfo.Child(f.path, srcinfo.FieldOneofIndex)...)
		switch {
		case field.Oneof >= len(msg.Oneofs):
			b.diags.Add(diag.NewInvalidOneof(field.FullName,
				fmt.Sprintf("oneof index %d is out of range, '%s' declares %d", field.Oneof, msg.Name, len(msg.Oneofs)), at))
		case field.Cardinality != typegraph.Optional:
			b.diags.Add(diag.NewInvalidOneof(msg.Oneofs[field.Oneof].FullName,
				fmt.Sprintf("field '%s' in a oneof cannot be %s", field.Name, field.Cardinality), labelAt))
		}
	}

	field.SupportsPresence = !field.IsRepeated() &&
		(field.Kind.IsMessage() || field.Oneof >= 0 || msg == nil ||
			fs.Syntax != typegraph.Proto3 || field.Proto3Optional)

	if packed, ok := field.Options.Bool(optPacked); ok && packed {
		at := fs.at(srcinfo.Child(f.path, srcinfo.FieldOptions)...)
		switch {
		case !field.IsRepeated():
			b.diags.Add(diag.NewInvalidPacked(field.FullName, "only repeated fields can be packed", at))
		case f.resolved && !field.Kind.IsPackable():
			b.diags.Add(diag.NewInvalidPacked(field.FullName,
				fmt.Sprintf("%s fields cannot be packed", field.Kind), at))
		}
	}

	if !f.resolved {
		return
	}

	switch field.Kind {
	case typegraph.KindGroup:
		b.validateGroup(f)
	case typegraph.KindMessage:
		if entry := b.graph.Message(field.Type); entry != nil && entry.IsMapEntry {
			b.validateMapField(f, msg, entry)
		}
	case typegraph.KindEnum:
		if e := b.graph.Enum(field.Type); e != nil && fs.Syntax == typegraph.Proto3 && e.IsClosed() {
			b.diags.Add(diag.NewInvalidTypeReference(fp.GetTypeName(), "an open enum",
				fmt.Sprintf("closed enum '%s' from a proto2 file", e.Name),
				fs.at(srcinfo.Child(f.path, srcinfo.FieldTypeName)...)))
		}
	}

	if fp.DefaultValue != nil {
		b.validateDefault(f)
	}
}

// validateGroup checks that a group field is named after its type and that
// the type is declared beside it
func (b *builder) validateGroup(f *fieldState) {
	fs, field := f.file, f.field
	at := fs.at(srcinfo.Child(f.path, srcinfo.FieldTypeName)...)
	if fs.Syntax == typegraph.Proto3 {
		b.diags.Add(diag.NewInvalidLabel(field.FullName, "groups are not allowed in proto3", at))
		return
	}
	group := b.graph.Message(field.Type)
	if group == nil {
		return
	}
	if names.ParentScope(group.Name) != f.scope || group.File != fs.Name() {
		b.diags.Add(diag.NewInvalidTypeReference(f.proto.GetTypeName(),
			fmt.Sprintf("a group declared in '%s'", f.scope), fmt.Sprintf("message '%s'", group.Name), at))
		return
	}
	if want := strings.ToLower(names.ShortName(group.Name)); field.Name != want {
		b.diags.Add(diag.NewInvalidName(field.FullName,
			fmt.Sprintf("a group field must be named '%s' after its type", want),
			fs.at(srcinfo.Child(f.path, srcinfo.FieldName)...)))
	}
}

// validateMapField checks a field whose type is a map entry message
func (b *builder) validateMapField(f *fieldState, msg *typegraph.Message, entry *typegraph.Message) {
	fs, field := f.file, f.field
	at := fs.at(srcinfo.Child(f.path, srcinfo.FieldTypeName)...)
	fail := func(reason string) {
		b.diags.Add(diag.NewInvalidMapEntry(entry.Name, reason, at))
	}

	switch {
	case msg == nil:
		fail(fmt.Sprintf("extension '%s' cannot be a map", field.FullName))
		return
	case !field.IsRepeated():
		fail(fmt.Sprintf("map field '%s' must be repeated", field.FullName))
		return
	case !entry.HasParent || entry.Parent != msg.ID:
		fail(fmt.Sprintf("a map entry must be nested in '%s'", msg.Name))
		return
	}
	if want := typegraph.TitleCase(field.Name) + "Entry"; names.ShortName(entry.Name) != want {
		fail(fmt.Sprintf("the map entry of field '%s' must be named '%s'", field.Name, want))
	}
	if len(entry.Oneofs) > 0 || len(entry.ExtensionRanges) > 0 {
		fail("a map entry cannot declare oneofs or extension ranges")
	}
	if len(entry.Fields) != 2 {
		fail(fmt.Sprintf("a map entry must have exactly two fields, found %d", len(entry.Fields)))
		return
	}

	key, value := entry.FieldByNumber(1), entry.FieldByNumber(2)
	if key == nil || value == nil || key.Name != "key" || value.Name != "value" {
		fail("a map entry must have fields 'key' = 1 and 'value' = 2")
		return
	}
	if key.Cardinality != typegraph.Optional || value.Cardinality != typegraph.Optional {
		fail("map entry fields must be optional")
	}
	switch key.Kind {
	case typegraph.KindDouble, typegraph.KindFloat, typegraph.KindBytes,
		typegraph.KindEnum, typegraph.KindMessage, typegraph.KindGroup:
		fail(fmt.Sprintf("map keys must be integers, bools or strings, not %s", key.Kind))
	}
}

// validateDefault type-checks an explicit default and stores the parsed value
func (b *builder) validateDefault(f *fieldState) {
	fs, field := f.file, f.field
	text := f.proto.GetDefaultValue()
	at := fs.at(srcinfo.Child(f.path, srcinfo.FieldDefault)...)

	switch {
	case field.Kind.IsMessage():
		b.diags.Add(diag.NewInvalidDefault(field.FullName, fmt.Sprintf("%s fields cannot have default values", field.Kind), at))
		return
	case field.IsRepeated():
		b.diags.Add(diag.NewInvalidDefault(field.FullName, "repeated fields cannot have default values", at))
		return
	case fs.Syntax == typegraph.Proto3:
		b.diags.Add(diag.NewInvalidDefault(field.FullName, "explicit default values are not allowed in proto3", at))
		return
	}

	if field.Kind == typegraph.KindEnum {
		e := b.graph.Enum(field.Type)
		if e == nil {
			return
		}
		name, err := defaults.ParseEnum(text)
		if err != nil {
			b.addDefaultError(field, err, at)
			return
		}
		v := e.ValueByName(name)
		if v == nil {
			b.diags.Add(diag.NewInvalidEnumValue(name, e.Name, fuzzy.PossibleValues(name, e.ValueNames()), at))
			return
		}
		value := typegraph.EnumNumber(v.Number)
		field.Default = &value
		return
	}

	value, err := defaults.Parse(field.Kind, text)
	if err != nil {
		b.addDefaultError(field, err, at)
		return
	}
	field.Default = &value
}

func (b *builder) addDefaultError(field *typegraph.Field, err error, at diag.Location) {
	var te *defaults.TypeError
	if errors.As(err, &te) {
		b.diags.Add(diag.NewValueInvalidType(te.Expected, te.Actual, at))
		return
	}
	b.diags.Add(diag.NewInvalidDefault(field.FullName, err.Error(), at))
}

// validateOneofs checks that every oneof has members and that the members
// of a oneof are declared next to each other
func (b *builder) validateOneofs(ms *messageState) {
	fs, msg := ms.file, ms.msg
	for i, oneof := range msg.Oneofs {
		if len(oneof.Fields) == 0 {
			b.diags.Add(diag.NewInvalidOneof(oneof.FullName, "a oneof must contain at least one field",
				fs.at(srcinfo.Child(ms.path, srcinfo.MessageOneof, int32(i))...)))
		}
	}

	closed := make(map[int]bool)
	last := -1
	for _, f := range ms.fields {
		idx := f.field.Oneof
		if idx == last {
			continue
		}
		if last >= 0 {
			closed[last] = true
		}
		if idx >= 0 && idx < len(msg.Oneofs) && closed[idx] {
			b.diags.Add(diag.NewInvalidOneof(msg.Oneofs[idx].FullName,
				fmt.Sprintf("field '%s' is separated from the other fields of the oneof", f.field.Name),
				fs.at(srcinfo.Child(f.path, srcinfo.FieldOneofIndex)...)))
		}
		last = idx
	}
}

// validateJSONNames reports fields sharing a JSON name. Default names only
// clash in proto3, which also rejects names that differ in case alone;
// custom names clash in every syntax.
func (b *builder) validateJSONNames(ms *messageState) {
	fs, msg := ms.file, ms.msg
	if msg.IsMapEntry {
		return
	}
	proto3 := fs.Syntax == typegraph.Proto3

	jsonAt := func(f *fieldState) diag.Location {
		if f.field.HasCustomJSON {
			return fs.at(srcinfo.Child(f.path, srcinfo.FieldJSONName)...)
		}
		return fs.at(srcinfo.Child(f.path, srcinfo.FieldName)...)
	}

	byJSON := make(map[string]*fieldState)
	byCamel := make(map[string]*fieldState)
	for _, f := range ms.fields {
		name := f.field.JSONName
		if prev, ok := byJSON[name]; ok {
			if proto3 || f.field.HasCustomJSON || prev.field.HasCustomJSON {
				b.diags.Add(diag.NewDuplicateJSONName(name, prev.field.Name, f.field.Name, jsonAt(prev), jsonAt(f)))
			}
			continue
		}
		byJSON[name] = f

		if !proto3 || f.field.HasCustomJSON {
			continue
		}
		key := typegraph.CamelKey(f.field.Name)
		if prev, ok := byCamel[key]; ok {
			b.diags.Add(diag.NewDuplicateJSONName(name, prev.field.Name, f.field.Name, jsonAt(prev), jsonAt(f)).
				WithHelp(fmt.Sprintf("'%s' and '%s' differ only in case", prev.field.JSONName, name)))
			continue
		}
		byCamel[key] = f
	}
}

func (b *builder) validateEnum(es *enumState) {
	fs, e, ep := es.file, es.enum, es.proto

	var items []ranges.Item
	for i, r := range ep.GetReservedRange() {
		items = append(items, ranges.Item{
			Kind:     ranges.ReservedRange,
			Start:    int64(r.GetStart()),
			End:      int64(r.GetEnd()),
			Location: fs.at(srcinfo.Child(es.path, srcinfo.EnumReservedRange, int32(i))...),
		})
	}
	for _, v := range e.Values {
		vpath := srcinfo.Child(es.path, srcinfo.EnumValue, int32(v.Index))
		items = append(items, ranges.Item{
			Kind:     ranges.EnumValue,
			Name:     v.Name,
			Start:    int64(v.Number),
			End:      int64(v.Number),
			Location: fs.at(srcinfo.Child(vpath, srcinfo.EnumValueNumber)...),
		})
		if slices.Contains(e.ReservedNames, v.Name) {
			b.diags.Add(diag.NewInvalidName(v.FullName,
				fmt.Sprintf("value name '%s' is reserved in '%s'", v.Name, e.Name),
				fs.at(srcinfo.Child(vpath, srcinfo.EnumValueName)...)))
		}
	}
	b.diags.Add(ranges.Check(items, ranges.Options{AllowAlias: e.AllowAlias})...)

	if e.AllowAlias && !hasAlias(e) {
		b.diags.Add(diag.NewInvalidName(e.Name, "allow_alias is set but no two values share a number",
			fs.at(srcinfo.Child(es.path, srcinfo.EnumOptions)...)))
	}
	if fs.Syntax == typegraph.Proto3 {
		if first := e.Default(); first != nil && first.Number != 0 {
			b.diags.Add(diag.NewInvalidName(first.FullName, "the first value of a proto3 enum must be zero",
				fs.at(srcinfo.Child(es.path, srcinfo.EnumValue, int32(first.Index), srcinfo.EnumValueNumber)...)))
		}
	}
}

func hasAlias(e *typegraph.Enum) bool {
	seen := make(map[int32]bool, len(e.Values))
	for _, v := range e.Values {
		if seen[v.Number] {
			return true
		}
		seen[v.Number] = true
	}
	return false
}

// validateExtension checks an extension against its extendee: the number
// must lie in an extension range and no other extension may claim it
func (b *builder) validateExtension(xs *extensionState, claims map[extensionKey]extensionClaim) {
	fs, field := xs.file, xs.field
	b.validateField(&xs.fieldState, nil)

	if field.Cardinality == typegraph.Required {
		b.diags.Add(diag.NewInvalidLabel(field.FullName, "extensions cannot be required",
			fs.at(srcinfo.Child(xs.path, srcinfo.FieldLabel)...)))
	}
	if field.HasCustomJSON {
		b.diags.Add(diag.NewInvalidName(field.FullName, "extensions cannot set json_name",
			fs.at(srcinfo.Child(xs.path, srcinfo.FieldJSONName)...)))
	}
	if xs.proto.OneofIndex != nil {
		b.diags.Add(diag.NewInvalidOneof(field.FullName, "extensions cannot belong to a oneof",
			fs.at(srcinfo.Child(xs.path, srcinfo.FieldOneofIndex)...)))
	}

	extendee := b.graph.Message(xs.ext.Extendee)
	if extendee == nil || extendee.Name == "" {
		return
	}
	at := fs.at(srcinfo.Child(xs.path, srcinfo.FieldNumber)...)
	n := int64(field.Number)
	if reason := ranges.CheckFieldNumber(n, extendee.MessageSetWireFormat); reason != "" {
		b.diags.Add(diag.NewInvalidFieldNumber(field.FullName, n, reason, at))
		return
	}
	if !extendee.InExtensionRange(field.Number) {
		limit := int32(ranges.MaxFieldNumber)
		if extendee.MessageSetWireFormat {
			limit = ranges.MaxMessageSetNumber
		}
		rs := make([]typegraph.Range, len(extendee.ExtensionRanges))
		for i, r := range extendee.ExtensionRanges {
			rs[i] = r.Range
		}
		b.diags.Add(diag.NewInvalidExtensionNumber(n, extendee.Name, ranges.ExtensionHelp(extendee.Name, rs, limit), at))
		return
	}

	key := extensionKey{xs.ext.Extendee, field.Number}
	if prev, ok := claims[key]; ok {
		b.diags.Add(diag.NewDuplicateNumber(
			diag.NumberItem{Kind: "extension", Name: prev.name, Start: n, End: n}, prev.at,
			diag.NumberItem{Kind: "extension", Name: field.FullName, Start: n, End: n}, at,
		))
		return
	}
	claims[key] = extensionClaim{name: field.FullName, at: at}
}
