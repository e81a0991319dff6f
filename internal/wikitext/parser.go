package wikitext

import (
	"regexp"
	"strings"
)

// PieceKind discriminates the AST variants.
type PieceKind int

const (
	// KindText is literal text.
	KindText PieceKind = iota
	// KindTemplate is a double-brace template invocation.
	KindTemplate
	// KindLink is an internal link.
	KindLink
	// KindListItem is a run of list markers at the start of a line.
	KindListItem
)

// Piece is one node of the parsed markup tree.
type Piece struct {
	Kind       PieceKind
	Text       string // KindText: literal text; KindLink: link body; KindListItem: markers
	Name       string // KindTemplate: template name as written
	Attributes []Attribute
}

// Attribute is one pipe-separated argument of a template invocation.
// Name is empty for positional arguments.
type Attribute struct {
	Name  string
	Value []Piece
}

var (
	htmlComment = regexp.MustCompile(`<!--.+?-->`)
	htmlRef     = regexp.MustCompile(`<ref>.+?</ref>`)
)

// Preprocess removes annotation-only HTML tags that the parser does not
// handle. Tags like `code` and `sup` are used both for path segments and
// annotations, so those are left alone.
func Preprocess(raw string) string {
	out := htmlComment.ReplaceAllString(raw, "")
	out = htmlRef.ReplaceAllString(out, "")
	return out
}

// Parse parses raw markup into a piece sequence. Structural problems
// (unclosed templates or links) are reported through malformed, which
// may be nil; parsing always produces a usable result.
func Parse(raw string, malformed func(msg string)) []Piece {
	p := &parser{src: raw, malformed: malformed}
	return p.parseSequence(nil)
}

// Templates collects every template invocation in the tree, outer before
// inner, in document order.
func Templates(pieces []Piece) []Piece {
	var out []Piece
	for _, piece := range pieces {
		if piece.Kind == KindTemplate {
			out = append(out, piece)
			for _, attr := range piece.Attributes {
				out = append(out, Templates(attr.Value)...)
			}
		}
	}
	return out
}

// String renders the piece back to markup. Round-tripping is meant for
// storing extracted templates, not byte fidelity of arbitrary input.
func (p Piece) String() string {
	switch p.Kind {
	case KindText, KindListItem:
		return p.Text
	case KindLink:
		return "[[" + p.Text + "]]"
	case KindTemplate:
		var b strings.Builder
		b.WriteString("{{")
		b.WriteString(p.Name)
		for _, attr := range p.Attributes {
			b.WriteString("|")
			if attr.Name != "" {
				b.WriteString(attr.Name)
				b.WriteString("=")
			}
			b.WriteString(Render(attr.Value))
		}
		b.WriteString("}}")
		return b.String()
	default:
		return ""
	}
}

// Render joins rendered pieces.
func Render(pieces []Piece) string {
	var b strings.Builder
	for _, piece := range pieces {
		b.WriteString(piece.String())
	}
	return b.String()
}

type parser struct {
	src       string
	pos       int
	malformed func(msg string)
}

func (p *parser) report(msg string) {
	if p.malformed != nil {
		p.malformed(msg)
	}
}

func (p *parser) at(token string) bool {
	return strings.HasPrefix(p.src[p.pos:], token)
}

func (p *parser) atAny(tokens []string) bool {
	for _, token := range tokens {
		if p.at(token) {
			return true
		}
	}
	return false
}

func (p *parser) atLineStart() bool {
	return p.pos == 0 || p.src[p.pos-1] == '\n'
}

// parseSequence parses pieces until the end of input or any terminator
// appears at the current level. Terminators are not consumed.
func (p *parser) parseSequence(terminators []string) []Piece {
	var pieces []Piece
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			pieces = append(pieces, Piece{Kind: KindText, Text: text.String()})
			text.Reset()
		}
	}

	for p.pos < len(p.src) {
		if p.atAny(terminators) {
			break
		}

		switch {
		case p.at("{{"):
			flush()
			pieces = append(pieces, p.parseTemplate())
		case p.at("[["):
			flush()
			pieces = append(pieces, p.parseLink())
		case p.atLineStart() && (p.src[p.pos] == '*' || p.src[p.pos] == '#'):
			flush()
			start := p.pos
			for p.pos < len(p.src) && (p.src[p.pos] == '*' || p.src[p.pos] == '#') {
				p.pos++
			}
			pieces = append(pieces, Piece{Kind: KindListItem, Text: p.src[start:p.pos]})
		default:
			text.WriteByte(p.src[p.pos])
			p.pos++
		}
	}

	flush()
	return pieces
}

var templateBodyTerminators = []string{"|", "}}"}

func (p *parser) parseTemplate() Piece {
	p.pos += len("{{")

	var name strings.Builder
	for p.pos < len(p.src) && !p.atAny(templateBodyTerminators) {
		name.WriteByte(p.src[p.pos])
		p.pos++
	}

	out := Piece{Kind: KindTemplate, Name: name.String()}

	for p.pos < len(p.src) && p.at("|") {
		p.pos++
		value := p.parseSequence(templateBodyTerminators)
		out.Attributes = append(out.Attributes, splitAttribute(value))
	}

	if p.at("}}") {
		p.pos += len("}}")
	} else {
		p.report("unclosed template: " + out.Name)
	}

	return out
}

func (p *parser) parseLink() Piece {
	p.pos += len("[[")

	end := strings.Index(p.src[p.pos:], "]]")
	if end < 0 {
		p.report("unclosed link")
		text := p.src[p.pos:]
		p.pos = len(p.src)
		return Piece{Kind: KindText, Text: text}
	}

	body := p.src[p.pos : p.pos+end]
	p.pos += end + len("]]")
	return Piece{Kind: KindLink, Text: body}
}

// splitAttribute turns a parsed value into a named attribute when its
// leading text contains an equals sign, mirroring `name=value` syntax.
func splitAttribute(value []Piece) Attribute {
	if len(value) > 0 && value[0].Kind == KindText {
		if idx := strings.Index(value[0].Text, "="); idx >= 0 {
			name := strings.TrimSpace(value[0].Text[:idx])
			rest := value[0].Text[idx+1:]
			if name != "" {
				out := Attribute{Name: name}
				if rest != "" {
					out.Value = append(out.Value, Piece{Kind: KindText, Text: rest})
				}
				out.Value = append(out.Value, value[1:]...)
				return out
			}
		}
	}
	return Attribute{Value: value}
}
