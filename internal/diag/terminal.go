package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// FormatOptions configures terminal rendering
type FormatOptions struct {
	NoColor bool
}

// FormatTerminal renders a diagnostic for terminal output.
//
// Example output:
//
//	error[DSC202]: duplicate number
//	   field 'bar' (1) conflicts with field 'foo' (1)
//	   --> test.proto:4:5
//	   first defined here: test.proto:3:5
//	   help: ...
func (d *Diagnostic) FormatTerminal(opts FormatOptions) string {
	var b strings.Builder

	var headerColor *color.Color
	switch d.Severity {
	case SeverityWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
	default:
		headerColor = color.New(color.FgRed, color.Bold)
	}
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	yellow := color.New(color.FgYellow)
	if opts.NoColor {
		headerColor.DisableColor()
		cyan.DisableColor()
		gray.DisableColor()
		yellow.DisableColor()
	}

	headerColor.Fprintf(&b, "%s[%s]: %s\n", d.Severity, d.Code, Title(d.Code))
	fmt.Fprintf(&b, "   %s\n", d.Message)

	if d.Second != nil {
		cyan.Fprintf(&b, "   --> %s\n", d.Second)
		gray.Fprintf(&b, "   first defined here: %s\n", describeFirst(d.First))
	} else if d.First != nil {
		cyan.Fprintf(&b, "   --> %s\n", d.First)
	}

	if d.Help != "" {
		yellow.Fprintf(&b, "   help: %s\n", d.Help)
	}
	if len(d.Suggestions) > 0 && d.Help == "" {
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(d.Suggestions, ", "))
	}

	return b.String()
}

func describeFirst(l *Location) string {
	switch {
	case l == nil:
		return "<unknown>"
	case l.Imported:
		return fmt.Sprintf("%s (imported)", l)
	default:
		return l.String()
	}
}

// FormatTerminal renders every diagnostic followed by a summary line
func (l List) FormatTerminal(opts FormatOptions) string {
	var b strings.Builder
	for i, d := range l {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d.FormatTerminal(opts))
	}

	errs, warnings := l.ErrorCount()
	summary := color.New(color.Bold)
	if opts.NoColor {
		summary.DisableColor()
	}
	if len(l) > 0 {
		b.WriteString("\n")
	}
	summary.Fprintf(&b, "%d error(s), %d warning(s)\n", errs, warnings)
	return b.String()
}

// WriteTerminal writes the rendered list to w
func (l List) WriteTerminal(w io.Writer, opts FormatOptions) {
	fmt.Fprint(w, l.FormatTerminal(opts))
}
