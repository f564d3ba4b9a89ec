package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/protopool/internal/cli/config"
	"github.com/conduit-lang/protopool/internal/cli/ui"
	"github.com/conduit-lang/protopool/internal/fuzzy"
	"github.com/conduit-lang/protopool/pkg/descpool"
)

// NewDescribeCommand creates the describe command
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <set.pb> [name]",
		Short: "Show the definitions of a descriptor set",
		Long: `Without a name, list the files of a descriptor set and what they declare.
With a fully-qualified name, show that message, enum, service or extension.`,
		Example: `  protopool describe api.pb
  protopool describe api.pb shop.Order
  protopool describe api.pb shop.Order --format json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			pool, err := s.loadPool(args[:1])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return describeFiles(s, pool)
			}
			return describeSymbol(s, pool, args[1])
		},
	}
}

type fileSummary struct {
	Name     string `json:"name"`
	Package  string `json:"package,omitempty"`
	Syntax   string `json:"syntax"`
	Messages int    `json:"messages"`
	Enums    int    `json:"enums"`
	Services int    `json:"services"`
}

func describeFiles(s *session, pool *descpool.Pool) error {
	files := pool.Files()[s.baseFiles():]
	summaries := make([]fileSummary, len(files))
	for i, f := range files {
		summaries[i] = fileSummary{
			Name:     f.Name(),
			Package:  f.Package(),
			Syntax:   f.Syntax().String(),
			Messages: len(f.Messages()),
			Enums:    len(f.Enums()),
			Services: len(f.Services()),
		}
	}
	if s.cfg.Output.Format == config.FormatJSON {
		return s.printJSON(summaries)
	}

	table := ui.NewTable(s.out, s.noColor, "FILE", "PACKAGE", "SYNTAX", "MESSAGES", "ENUMS", "SERVICES")
	for _, f := range summaries {
		table.AddRow(f.Name, f.Package, f.Syntax,
			strconv.Itoa(f.Messages), strconv.Itoa(f.Enums), strconv.Itoa(f.Services))
	}
	table.Render()
	return nil
}

func describeSymbol(s *session, pool *descpool.Pool, name string) error {
	if m, ok := pool.Message(name); ok {
		return s.render(describeMessage(m))
	}
	if e, ok := pool.Enum(name); ok {
		return s.render(describeEnum(e))
	}
	if svc, ok := pool.Service(name); ok {
		return s.render(describeService(svc))
	}
	if x, ok := pool.Extension(name); ok {
		return s.render(describeExtension(x))
	}

	fmt.Fprint(s.errOut, ui.SymbolNotFound(name, fuzzy.Closest(strings.TrimPrefix(name, "."), symbolNames(pool), 3), s.noColor))
	return &reportedError{err: fmt.Errorf("%s not found", name)}
}

func symbolNames(pool *descpool.Pool) []string {
	var out []string
	for _, m := range pool.Messages() {
		out = append(out, m.FullName())
	}
	for _, e := range pool.Enums() {
		out = append(out, e.FullName())
	}
	for _, svc := range pool.Services() {
		out = append(out, svc.FullName())
	}
	for _, x := range pool.Extensions() {
		out = append(out, x.FullName())
	}
	return out
}

// description is the rendering-neutral form of one definition
type description struct {
	Kind       string              `json:"kind"`
	Name       string              `json:"name"`
	File       string              `json:"file"`
	Properties map[string]string   `json:"properties,omitempty"`
	Columns    []string            `json:"-"`
	Rows       [][]string          `json:"-"`
	Members    []map[string]string `json:"members,omitempty"`
}

func (d *description) set(key, value string) {
	if value == "" {
		return
	}
	if d.Properties == nil {
		d.Properties = make(map[string]string)
	}
	d.Properties[key] = value
}

func (d *description) addRow(cells ...string) {
	d.Rows = append(d.Rows, cells)
	member := make(map[string]string, len(cells))
	for i, cell := range cells {
		if cell != "" && i < len(d.Columns) {
			member[strings.ToLower(d.Columns[i])] = cell
		}
	}
	d.Members = append(d.Members, member)
}

func (s *session) render(d *description) error {
	if s.cfg.Output.Format == config.FormatJSON {
		return s.printJSON(d)
	}

	ui.Header(s.out, d.Kind+" "+d.Name, s.noColor)
	kv := ui.NewKeyValues(s.out, s.noColor)
	kv.Add("file", d.File)
	for _, key := range propertyOrder {
		kv.Add(key, d.Properties[key])
	}
	kv.Render()

	if len(d.Rows) > 0 {
		fmt.Fprintln(s.out)
		table := ui.NewTable(s.out, s.noColor, d.Columns...)
		for _, row := range d.Rows {
			table.AddRow(row...)
		}
		table.Render()
	}
	return nil
}

var propertyOrder = []string{
	"syntax", "parent", "extendee", "number", "label", "type", "json name", "default",
	"oneofs", "reserved ranges", "reserved names", "extension ranges", "flags", "options",
}

func describeMessage(m descpool.MessageType) *description {
	d := &description{
		Kind:    "message",
		Name:    m.FullName(),
		File:    m.ParentFile().Name(),
		Columns: []string{"NUMBER", "NAME", "LABEL", "TYPE", "JSON", "DEFAULT"},
	}
	d.set("syntax", m.ParentFile().Syntax().String())
	if parent, ok := m.ParentMessage(); ok {
		d.set("parent", parent.FullName())
	}

	var oneofs []string
	for _, o := range m.Oneofs() {
		var members []string
		for _, f := range o.Fields() {
			members = append(members, f.Name())
		}
		name := o.Name()
		if o.IsSynthetic() {
			name += " (synthetic)"
		}
		oneofs = append(oneofs, fmt.Sprintf("%s{%s}", name, strings.Join(members, ", ")))
	}
	d.set("oneofs", strings.Join(oneofs, "; "))
	d.set("reserved ranges", formatRanges(m.ReservedRanges()))
	d.set("reserved names", strings.Join(m.ReservedNames(), ", "))
	d.set("extension ranges", formatRanges(m.ExtensionRanges()))
	d.set("flags", formatFlags(map[string]bool{
		"map entry":   m.IsMapEntry(),
		"message set": m.IsMessageSet(),
		"deprecated":  m.IsDeprecated(),
	}))
	d.set("options", m.Options().String())

	for _, f := range m.Fields() {
		d.addRow(strconv.Itoa(int(f.Number())), f.Name(), label(f), fieldType(f), f.JSONName(), defaultString(f))
	}
	return d
}

func describeEnum(e descpool.EnumType) *description {
	d := &description{
		Kind:    "enum",
		Name:    e.FullName(),
		File:    e.ParentFile().Name(),
		Columns: []string{"NUMBER", "NAME", "OPTIONS"},
	}
	if parent, ok := e.ParentMessage(); ok {
		d.set("parent", parent.FullName())
	}
	d.set("reserved ranges", formatRanges(e.ReservedRanges()))
	d.set("reserved names", strings.Join(e.ReservedNames(), ", "))
	d.set("flags", formatFlags(map[string]bool{
		"closed":      e.IsClosed(),
		"allow alias": e.AllowsAlias(),
		"deprecated":  e.IsDeprecated(),
	}))
	d.set("options", e.Options().String())

	for _, v := range e.Values() {
		d.addRow(strconv.Itoa(int(v.Number())), v.Name(), v.Options().String())
	}
	return d
}

func describeService(svc descpool.ServiceType) *description {
	d := &description{
		Kind:    "service",
		Name:    svc.FullName(),
		File:    svc.ParentFile().Name(),
		Columns: []string{"METHOD", "INPUT", "OUTPUT", "STREAMING"},
	}
	d.set("options", svc.Options().String())

	for _, m := range svc.Methods() {
		var streaming []string
		if m.IsClientStreaming() {
			streaming = append(streaming, "client")
		}
		if m.IsServerStreaming() {
			streaming = append(streaming, "server")
		}
		d.addRow(m.Name(), m.Input().FullName(), m.Output().FullName(), strings.Join(streaming, ", "))
	}
	return d
}

func describeExtension(x descpool.ExtensionType) *description {
	d := &description{
		Kind: "extension",
		Name: x.FullName(),
		File: x.ParentFile().Name(),
	}
	d.set("extendee", x.ContainingMessage().FullName())
	if parent, ok := x.ParentMessage(); ok {
		d.set("parent", parent.FullName())
	}
	d.set("number", strconv.Itoa(int(x.Number())))
	d.set("label", x.Cardinality().String())
	typ := x.Kind().String()
	if m, ok := x.Message(); ok {
		typ = m.FullName()
	} else if e, ok := x.Enum(); ok {
		typ = e.FullName()
	}
	d.set("type", typ)
	d.set("json name", x.JSONName())
	d.set("options", x.Options().String())
	return d
}

func label(f descpool.FieldType) string {
	if f.IsMap() {
		return ""
	}
	if f.Cardinality() == descpool.Optional && f.SupportsPresence() {
		return "optional"
	}
	if f.Cardinality() == descpool.Optional {
		return ""
	}
	return f.Cardinality().String()
}

func defaultString(f descpool.FieldType) string {
	if !f.HasDefault() {
		return ""
	}
	v := f.DefaultValue()
	if e, ok := f.Enum(); ok {
		if ev, ok := e.Value(v.AsEnum()); ok {
			return ev.Name()
		}
	}
	return v.String()
}

func fieldType(f descpool.FieldType) string {
	if f.IsMap() {
		entry, _ := f.Message()
		key, _ := entry.MapKey()
		value, _ := entry.MapValue()
		return fmt.Sprintf("map<%s, %s>", fieldType(key), fieldType(value))
	}
	if m, ok := f.Message(); ok {
		if f.IsGroup() {
			return "group " + m.FullName()
		}
		return m.FullName()
	}
	if e, ok := f.Enum(); ok {
		return e.FullName()
	}
	return f.Kind().String()
}

func formatRanges(ranges []descpool.Range) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

func formatFlags(flags map[string]bool) string {
	var set []string
	for _, name := range []string{"map entry", "message set", "closed", "allow alias", "deprecated"} {
		if flags[name] {
			set = append(set, name)
		}
	}
	return strings.Join(set, ", ")
}
