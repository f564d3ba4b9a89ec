package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Message is a CLI error or warning with optional follow-up hints
type Message struct {
	Warning     bool
	Context     string
	Problem     string
	Suggestions []string
	Help        []string
	NoColor     bool
}

// Format renders the message.
//
// Example output:
//
//	✗ SYMBOL NOT FOUND: shop.Ordr
//	   Did you mean: shop.Order, shop.Orders?
//	   → List definitions: protopool describe set.pb
func (m Message) Format() string {
	var b strings.Builder

	header := color.New(color.FgRed, color.Bold)
	symbol := "✗"
	if m.Warning {
		header = color.New(color.FgYellow, color.Bold)
		symbol = "!"
	}
	hint := color.New(color.FgCyan)
	if m.NoColor {
		header.DisableColor()
		hint.DisableColor()
	}

	if m.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), m.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}
	if len(m.Suggestions) > 0 {
		fmt.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}
	for _, h := range m.Help {
		hint.Fprintf(&b, "   → %s\n", h)
	}
	return b.String()
}

// SymbolNotFound reports a name missing from a pool
func SymbolNotFound(name string, suggestions []string, noColor bool) string {
	return Message{
		Context:     "symbol not found",
		Problem:     name,
		Suggestions: suggestions,
		Help:        []string{"List definitions: protopool describe <set.pb>"},
		NoColor:     noColor,
	}.Format()
}

// ConfigError reports an invalid protopool.yml or flag combination
func ConfigError(err error, noColor bool) string {
	return Message{
		Context: "configuration error",
		Problem: err.Error(),
		Help:    []string{"Check protopool.yml and PROTOPOOL_* variables"},
		NoColor: noColor,
	}.Format()
}

// WriteSuccess writes a green check line
func WriteSuccess(w io.Writer, message string, noColor bool) {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	green.Fprintf(w, "✓ %s\n", message)
}
