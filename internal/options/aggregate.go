package options

import (
	"fmt"
	"math"
	"strings"

	"github.com/conduit-lang/protopool/internal/defaults"
	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/internal/names"
	"github.com/conduit-lang/protopool/internal/typegraph"
)

const anyTypeName = "google.protobuf.Any"

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	str  []byte
}

// lexer splits an aggregate literal into text format tokens
type lexer struct {
	src string
	pos int
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			lx.pos++
		case c == '#':
			lx.skipLine()
		case c == '/' && strings.HasPrefix(lx.src[lx.pos:], "//"):
			lx.skipLine()
		case c == '/' && strings.HasPrefix(lx.src[lx.pos:], "/*"):
			end := strings.Index(lx.src[lx.pos+2:], "*/")
			if end < 0 {
				lx.pos = len(lx.src)
				return
			}
			lx.pos += end + 4
		default:
			return
		}
	}
}

func (lx *lexer) skipLine() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipSpace()
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF}, nil
	}
	start := lx.pos
	c := lx.src[lx.pos]
	switch {
	case isLetter(c):
		for lx.pos < len(lx.src) && (isLetter(lx.src[lx.pos]) || isDigit(lx.src[lx.pos])) {
			lx.pos++
		}
		return token{kind: tokIdent, text: lx.src[start:lx.pos]}, nil

	case isDigit(c) || (c == '.' && lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1])):
		for lx.pos < len(lx.src) {
			d := lx.src[lx.pos]
			if isLetter(d) || isDigit(d) || d == '.' {
				lx.pos++
				continue
			}
			if (d == '+' || d == '-') && (lx.src[lx.pos-1] == 'e' || lx.src[lx.pos-1] == 'E') &&
				!strings.HasPrefix(strings.ToLower(lx.src[start:]), "0x") {
				lx.pos++
				continue
			}
			break
		}
		return token{kind: tokNumber, text: lx.src[start:lx.pos]}, nil

	case c == '"' || c == '\'':
		lx.pos++
		for lx.pos < len(lx.src) && lx.src[lx.pos] != c {
			if lx.src[lx.pos] == '\\' {
				lx.pos++
			}
			if lx.pos < len(lx.src) && lx.src[lx.pos] == '\n' {
				return token{}, fmt.Errorf("unterminated string")
			}
			lx.pos++
		}
		if lx.pos >= len(lx.src) {
			return token{}, fmt.Errorf("unterminated string")
		}
		lx.pos++
		raw := lx.src[start:lx.pos]
		decoded, err := defaults.Unescape(raw[1 : len(raw)-1])
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: raw, str: decoded}, nil
	}

	lx.pos++
	return token{kind: tokPunct, text: string(c)}, nil
}

func isLetter(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// aggParser parses one aggregate literal against a message type
type aggParser struct {
	r      *Resolver
	target *Target
	lx     lexer
	tok    token
	src    typegraph.Source
	at     diag.Location
}

// parseAggregate parses text as the body of a message of type msgID
func (r *Resolver) parseAggregate(target *Target, msgID typegraph.TypeID, text string, stmt int, at diag.Location) (*typegraph.MessageValue, *diag.Diagnostic) {
	p := &aggParser{
		r:      r,
		target: target,
		lx:     lexer{src: text},
		src:    typegraph.Source{Statement: stmt, Aggregate: true},
		at:     at,
	}
	if d := p.advance(); d != nil {
		return nil, d
	}
	mv := typegraph.NewMessageValue(msgID, typeName(r.Graph, msgID))
	if d := p.parseFields(mv, ""); d != nil {
		return nil, d
	}
	return mv, nil
}

func (p *aggParser) advance() *diag.Diagnostic {
	tok, err := p.lx.next()
	if err != nil {
		return p.syntaxError(err.Error())
	}
	p.tok = tok
	return nil
}

func (p *aggParser) syntaxError(reason string) *diag.Diagnostic {
	return diag.NewValueInvalidType("a valid aggregate value", p.lx.src, p.at).WithHelp(reason)
}

func (p *aggParser) isPunct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *aggParser) expectPunct(s string) *diag.Diagnostic {
	if !p.isPunct(s) {
		return p.syntaxError(fmt.Sprintf("expected '%s', found '%s'", s, p.describe()))
	}
	return p.advance()
}

func (p *aggParser) describe() string {
	if p.tok.kind == tokEOF {
		return "end of input"
	}
	return p.tok.text
}

// parseFields reads fields until the closing delimiter, or end of input at
// the top level
func (p *aggParser) parseFields(mv *typegraph.MessageValue, end string) *diag.Diagnostic {
	for {
		switch {
		case end == "" && p.tok.kind == tokEOF:
			return nil
		case end != "" && p.isPunct(end):
			return p.advance()
		case p.tok.kind == tokEOF:
			return p.syntaxError(fmt.Sprintf("expected '%s', found end of input", end))
		}
		if d := p.parseField(mv); d != nil {
			return d
		}
		if p.isPunct(",") || p.isPunct(";") {
			if d := p.advance(); d != nil {
				return d
			}
		}
	}
}

func (p *aggParser) parseField(mv *typegraph.MessageValue) *diag.Diagnostic {
	msg := p.r.Graph.Message(mv.Type)
	if msg == nil {
		return p.syntaxError("unknown message type")
	}

	if p.isPunct("[") {
		name, d := p.bracketName()
		if d != nil {
			return d
		}
		if strings.Contains(name, "/") {
			return p.parseAnyField(mv, msg, name)
		}
		fi, d := p.r.resolveExtension(p.target, mv.Type, name, p.at)
		if d != nil {
			return d
		}
		return p.parseValue(mv, fi)
	}

	if p.tok.kind != tokIdent {
		return p.syntaxError(fmt.Sprintf("expected field name, found '%s'", p.describe()))
	}
	name := p.tok.text
	f := msg.FieldByName(name)
	if f == nil {
		f = msg.FieldByGroupName(p.r.Graph, name)
	}
	if f == nil {
		return diag.NewUnknownOptionField(name, msg.Name, p.at)
	}
	if d := p.advance(); d != nil {
		return d
	}
	return p.parseValue(mv, fieldInfo{Field: f})
}

// bracketName reads [a.b.c] or [domain/pkg.Type] and returns the inner text
func (p *aggParser) bracketName() (string, *diag.Diagnostic) {
	if d := p.advance(); d != nil {
		return "", d
	}
	var b strings.Builder
	for !p.isPunct("]") {
		switch {
		case p.tok.kind == tokIdent, p.isPunct("."), p.isPunct("/"):
			b.WriteString(p.tok.text)
		default:
			return "", p.syntaxError(fmt.Sprintf("unexpected '%s' in extension name", p.describe()))
		}
		if d := p.advance(); d != nil {
			return "", d
		}
	}
	if d := p.advance(); d != nil {
		return "", d
	}
	return b.String(), nil
}

// parseAnyField expands [type.googleapis.com/pkg.Msg] { ... } into the
// type_url and value fields of google.protobuf.Any
func (p *aggParser) parseAnyField(mv *typegraph.MessageValue, msg *typegraph.Message, url string) *diag.Diagnostic {
	typeRef := url[strings.LastIndexByte(url, '/')+1:]
	if msg.Name != anyTypeName {
		return p.syntaxError(fmt.Sprintf("type URLs are only allowed in %s, not %s", anyTypeName, msg.Name))
	}
	_, sym, d := p.r.Table.Resolve("", "."+typeRef,
		names.Filter{Kinds: names.Kinds(names.SymMessage), Expected: "a message"}, p.at)
	if d != nil {
		return d
	}
	urlField, valueField := msg.FieldByNumber(1), msg.FieldByNumber(2)
	if urlField == nil || valueField == nil {
		return p.syntaxError("malformed google.protobuf.Any definition")
	}
	if p.isPunct(":") {
		if d := p.advance(); d != nil {
			return d
		}
	}
	inner, d := p.parseMessageLiteral(sym.Type)
	if d != nil {
		return d
	}

	mv.Set(fieldInfo{Field: urlField}.newValue(typegraph.StringValue(url), p.src))
	mv.Set(fieldInfo{Field: valueField}.newValue(typegraph.BytesValue(Marshal(inner)), p.src))
	return nil
}

func (p *aggParser) parseValue(mv *typegraph.MessageValue, fi fieldInfo) *diag.Diagnostic {
	hasColon := p.isPunct(":")
	if hasColon {
		if d := p.advance(); d != nil {
			return d
		}
	}

	if p.isPunct("[") {
		if !fi.IsRepeated() {
			return p.syntaxError(fmt.Sprintf("field '%s' is not repeated, so it cannot take a list", fi.valueName()))
		}
		if d := p.advance(); d != nil {
			return d
		}
		for !p.isPunct("]") {
			if d := p.parseSingle(mv, fi); d != nil {
				return d
			}
			if p.isPunct(",") {
				if d := p.advance(); d != nil {
					return d
				}
			} else if !p.isPunct("]") {
				return p.syntaxError(fmt.Sprintf("expected ',' or ']', found '%s'", p.describe()))
			}
		}
		return p.advance()
	}

	if !hasColon && !fi.Kind.IsMessage() {
		return p.syntaxError(fmt.Sprintf("expected ':' after '%s'", fi.valueName()))
	}
	return p.parseSingle(mv, fi)
}

// parseSingle reads one value and stores it: repeated fields append, singular
// fields take the latest value
func (p *aggParser) parseSingle(mv *typegraph.MessageValue, fi fieldInfo) *diag.Diagnostic {
	var v typegraph.OptionValue
	if fi.Kind.IsMessage() {
		sub, d := p.parseMessageLiteral(fi.Type)
		if d != nil {
			return d
		}
		v = sub
	} else {
		lit, d := p.scalarLiteral()
		if d != nil {
			return d
		}
		sv, d := p.r.scalarValue(fi, lit, p.at)
		if d != nil {
			return d
		}
		v = sv
	}

	if !fi.IsRepeated() {
		mv.Set(fi.newValue(v, p.src))
		return nil
	}
	if existing := mv.Get(fi.Number); existing != nil {
		if list, ok := existing.Value.(typegraph.ListValue); ok {
			existing.Value = append(list, v)
			return nil
		}
	}
	mv.Set(fi.newValue(typegraph.ListValue{v}, p.src))
	return nil
}

func (p *aggParser) parseMessageLiteral(msgID typegraph.TypeID) (*typegraph.MessageValue, *diag.Diagnostic) {
	var end string
	switch {
	case p.isPunct("{"):
		end = "}"
	case p.isPunct("<"):
		end = ">"
	default:
		return nil, p.syntaxError(fmt.Sprintf("expected '{' or '<', found '%s'", p.describe()))
	}
	if d := p.advance(); d != nil {
		return nil, d
	}
	sub := typegraph.NewMessageValue(msgID, typeName(p.r.Graph, msgID))
	if d := p.parseFields(sub, end); d != nil {
		return nil, d
	}
	return sub, nil
}

// scalarLiteral reads an identifier, a possibly negative number, or one or
// more adjacent strings, which are concatenated
func (p *aggParser) scalarLiteral() (literal, *diag.Diagnostic) {
	lit := literal{inAggregate: true}
	switch p.tok.kind {
	case tokString:
		for p.tok.kind == tokString {
			lit.str = append(lit.str, p.tok.str...)
			if d := p.advance(); d != nil {
				return lit, d
			}
		}
		lit.kind = litString
		return lit, nil

	case tokIdent:
		lit.kind = litIdent
		lit.ident = p.tok.text
		return lit, p.advance()

	case tokNumber:
		if d := p.number(&lit, false, p.tok.text); d != nil {
			return lit, d
		}
		return lit, p.advance()
	}

	if p.isPunct("-") {
		if d := p.advance(); d != nil {
			return lit, d
		}
		switch p.tok.kind {
		case tokNumber:
			if d := p.number(&lit, true, p.tok.text); d != nil {
				return lit, d
			}
			return lit, p.advance()
		case tokIdent:
			switch strings.ToLower(p.tok.text) {
			case "inf", "infinity":
				lit.kind = litDouble
				lit.dbl = math.Inf(-1)
				return lit, p.advance()
			case "nan":
				lit.kind = litDouble
				lit.dbl = math.NaN()
				return lit, p.advance()
			}
		}
	}
	return lit, p.syntaxError(fmt.Sprintf("expected a value, found '%s'", p.describe()))
}

func (p *aggParser) number(lit *literal, neg bool, text string) *diag.Diagnostic {
	if isNeg, mag, ok := defaults.ParseInt(text); ok && !isNeg {
		if !neg {
			lit.kind = litPosInt
			lit.pos = mag
			return nil
		}
		if n, ok := defaults.SignedInRange(true, mag, true); ok {
			lit.kind = litNegInt
			lit.neg = n
			return nil
		}
	}
	trimmed := strings.TrimRight(text, "fF")
	if strings.HasPrefix(strings.ToLower(text), "0x") {
		trimmed = text
	}
	f, ok := defaults.ParseFloat(trimmed, false)
	if !ok {
		return p.syntaxError(fmt.Sprintf("invalid number '%s'", text))
	}
	if neg {
		f = -f
	}
	lit.kind = litDouble
	lit.dbl = f
	return nil
}
