package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageFormat(t *testing.T) {
	got := Message{
		Context:     "symbol not found",
		Problem:     "shop.Ordr",
		Suggestions: []string{"shop.Order", "shop.Orders"},
		Help:        []string{"List definitions: protopool describe set.pb"},
		NoColor:     true,
	}.Format()

	assert.Equal(t, "✗ SYMBOL NOT FOUND: shop.Ordr\n"+
		"   Did you mean: shop.Order, shop.Orders?\n"+
		"   → List definitions: protopool describe set.pb\n", got)
}

func TestMessageWarning(t *testing.T) {
	got := Message{Warning: true, Problem: "nothing to check", NoColor: true}.Format()
	assert.Equal(t, "! nothing to check\n", got)
}

func TestSymbolNotFound(t *testing.T) {
	got := SymbolNotFound("pkg.Missing", nil, true)
	assert.Contains(t, got, "SYMBOL NOT FOUND: pkg.Missing")
	assert.NotContains(t, got, "Did you mean")
}

func TestConfigError(t *testing.T) {
	got := ConfigError(errors.New("output.format must be one of text, json, lsp"), true)
	assert.Contains(t, got, "CONFIGURATION ERROR: output.format")
	assert.Contains(t, got, "protopool.yml")
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "2 file(s) ok", true)
	assert.Equal(t, "✓ 2 file(s) ok\n", buf.String())
}
