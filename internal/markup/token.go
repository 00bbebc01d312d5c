// Package markup implements the markup parser (spec §4.2): a recursive
// descent parser over Decorous's small element/text/block DSL, producing
// the *decor.Node tree every later stage walks. The tokenizer below keeps
// the teacher's internal/token.go idiom — a byte-oriented Tokenizer that
// tracks z.raw/z.data as loc.Span offsets into a single in-memory buffer
// and exposes readByte/skipWhiteSpace helpers — narrowed to Decorous's
// much smaller grammar: `#tag[attrs] children /tag` elements, `{expr}`
// interpolations, and `{#if}`/`{:else}`/`{#for}`/`{/if}`/`{/for}` blocks.
package markup

import (
	"io"
	"strings"
	"unicode"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/loc"
)

// TokenType is the variant tag of a single scanned Token.
type TokenType uint32

const (
	ErrorToken TokenType = iota
	TextToken
	ElementOpenToken
	ElementCloseToken
	ExpressionToken
	BlockIfToken
	BlockForToken
	BlockElseToken
	BlockEndToken
)

func (t TokenType) String() string {
	switch t {
	case ErrorToken:
		return "Error"
	case TextToken:
		return "Text"
	case ElementOpenToken:
		return "ElementOpen"
	case ElementCloseToken:
		return "ElementClose"
	case ExpressionToken:
		return "Expression"
	case BlockIfToken:
		return "BlockIf"
	case BlockForToken:
		return "BlockFor"
	case BlockElseToken:
		return "BlockElse"
	case BlockEndToken:
		return "BlockEnd"
	}
	return "Invalid"
}

// RawAttribute is an unparsed `key`, `key=value`, `key={expr}` or
// `@event={expr}` attribute as lexed out of an element's `[...]` list.
// The parser turns these into decor.Attribute once it knows the
// enclosing element's full span.
type RawAttribute struct {
	Key      string
	KeyLoc   loc.Loc
	Val      string
	ValLoc   loc.Loc
	IsEvent  bool
	IsQuoted bool
	IsExpr   bool
	IsBare   bool
}

// Token is one lexical unit produced by the Tokenizer.
type Token struct {
	Type TokenType
	// Data holds the tag name for element tokens, the literal run for a
	// TextToken, and the raw expression source for ExpressionToken,
	// BlockIfToken (the condition) and BlockForToken (the iterable).
	Data string
	// Pattern is the `for pat in expr` binding pattern; only set on
	// BlockForToken.
	Pattern string
	Attr    []RawAttribute
	Loc     loc.Loc
}

// Tokenizer scans a markup source buffer into a stream of Tokens.
type Tokenizer struct {
	buf []byte
	raw loc.Span
	err error

	handler *handler.Handler
}

// NewTokenizer creates a Tokenizer over the markup span of a .decor
// component (the text left over outside every fence.Block).
func NewTokenizer(source string, h *handler.Handler) *Tokenizer {
	return &Tokenizer{buf: []byte(source), handler: h}
}

func (z *Tokenizer) Err() error {
	return z.err
}

func (z *Tokenizer) readByte() byte {
	if z.raw.End >= len(z.buf) {
		z.err = io.EOF
		return 0
	}
	x := z.buf[z.raw.End]
	z.raw.End++
	return x
}

func (z *Tokenizer) peekByte() (byte, bool) {
	if z.raw.End >= len(z.buf) {
		return 0, false
	}
	return z.buf[z.raw.End], true
}

func (z *Tokenizer) peekAt(offset int) (byte, bool) {
	i := z.raw.End + offset
	if i < 0 || i >= len(z.buf) {
		return 0, false
	}
	return z.buf[i], true
}

func (z *Tokenizer) skipWhiteSpace() {
	for {
		c, ok := z.peekByte()
		if !ok || !unicode.IsSpace(rune(c)) {
			return
		}
		z.raw.End++
	}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-'
}

// readName reads a bare identifier/tag-name run starting at z.raw.End.
func (z *Tokenizer) readName() string {
	start := z.raw.End
	for {
		c, ok := z.peekByte()
		if !ok || !isNameChar(c) {
			break
		}
		z.raw.End++
	}
	return string(z.buf[start:z.raw.End])
}

// Next scans and returns the next Token. At EOF it returns a Token of
// type ErrorToken with z.Err() == io.EOF.
func (z *Tokenizer) Next() Token {
	if z.err != nil {
		return Token{Type: ErrorToken, Loc: loc.Loc{Start: z.raw.End}}
	}

	start := z.raw.End
	c, ok := z.peekByte()
	if !ok {
		z.err = io.EOF
		return Token{Type: ErrorToken, Loc: loc.Loc{Start: start}}
	}

	switch {
	case c == '#' && isNameStartAt(z, 1):
		return z.readElementOpen()
	case c == '/' && isNameStartAt(z, 1) && z.atWordBoundary():
		return z.readElementClose()
	case c == '{':
		return z.readBrace()
	default:
		return z.readText()
	}
}

func isNameStartAt(z *Tokenizer, offset int) bool {
	c, ok := z.peekAt(offset)
	return ok && isNameStart(c)
}

// atWordBoundary reports whether the byte just before z.raw.End is
// whitespace or the start of the buffer, so a stray "/" inside running
// text (a URL, a fraction) is not mistaken for an element close tag.
func (z *Tokenizer) atWordBoundary() bool {
	if z.raw.End == 0 {
		return true
	}
	return unicode.IsSpace(rune(z.buf[z.raw.End-1]))
}

func (z *Tokenizer) readElementOpen() Token {
	start := z.raw.End
	z.raw.End++ // consume '#'
	name := z.readName()
	tok := Token{Type: ElementOpenToken, Data: name, Loc: loc.Loc{Start: start}}

	if c, ok := z.peekByte(); ok && c == '[' {
		z.raw.End++
		tok.Attr = z.readAttrList()
	}
	return tok
}

func (z *Tokenizer) readElementClose() Token {
	start := z.raw.End
	z.raw.End++ // consume '/'
	name := z.readName()
	return Token{Type: ElementCloseToken, Data: name, Loc: loc.Loc{Start: start}}
}

// readAttrList scans a `[k1=v1 k2 @evt={expr}]` list. The opening '[' has
// already been consumed.
func (z *Tokenizer) readAttrList() []RawAttribute {
	var attrs []RawAttribute
	for {
		z.skipWhiteSpace()
		c, ok := z.peekByte()
		if !ok {
			return attrs
		}
		if c == ']' {
			z.raw.End++
			return attrs
		}
		attrs = append(attrs, z.readAttr())
	}
}

func (z *Tokenizer) readAttr() RawAttribute {
	var attr RawAttribute
	keyStart := z.raw.End
	if c, ok := z.peekByte(); ok && c == '@' {
		attr.IsEvent = true
		z.raw.End++
	}
	attr.Key = z.readName()
	attr.KeyLoc = loc.Loc{Start: keyStart}

	c, ok := z.peekByte()
	if !ok || c != '=' {
		attr.IsBare = true // bare key reads as the empty-string boolean form
		return attr
	}
	z.raw.End++ // consume '='

	c, ok = z.peekByte()
	if ok && c == '{' {
		attr.IsExpr = true
		valStart := z.raw.End
		attr.Val, attr.ValLoc = z.readExpressionBody(valStart)
		return attr
	}
	if ok && (c == '"' || c == '\'') {
		quote := c
		z.raw.End++
		valStart := z.raw.End
		for {
			c, ok = z.peekByte()
			if !ok || c == quote {
				break
			}
			z.raw.End++
		}
		attr.Val = string(z.buf[valStart:z.raw.End])
		attr.ValLoc = loc.Loc{Start: valStart}
		attr.IsQuoted = true
		if ok {
			z.raw.End++ // consume closing quote
		}
		return attr
	}
	// Unquoted bare value, read up to the next whitespace or ']'.
	valStart := z.raw.End
	for {
		c, ok = z.peekByte()
		if !ok || unicode.IsSpace(rune(c)) || c == ']' {
			break
		}
		z.raw.End++
	}
	attr.Val = string(z.buf[valStart:z.raw.End])
	attr.ValLoc = loc.Loc{Start: valStart}
	attr.IsQuoted = true
	return attr
}

// readBrace scans any `{...}` construct: `{{` escapes to a literal '{',
// `{#if`/`{#for` open a block, `{:else}` marks the else clause, `{/if}`/
// `{/for}` close a block, and everything else is an interpolation.
func (z *Tokenizer) readBrace() Token {
	start := z.raw.End

	if c, ok := z.peekAt(1); ok && c == '{' {
		z.raw.End += 2
		return Token{Type: TextToken, Data: "{", Loc: loc.Loc{Start: start}}
	}

	if c, ok := z.peekAt(1); ok && c == '#' {
		z.raw.End += 2
		kw := z.readName()
		z.skipWhiteSpace()
		switch kw {
		case "if":
			body, _ := z.readExpressionBody(z.raw.End)
			return Token{Type: BlockIfToken, Data: strings.TrimSpace(body), Loc: loc.Loc{Start: start}}
		case "for":
			header, _ := z.readExpressionBody(z.raw.End)
			pattern, expr := splitForHeader(header)
			return Token{Type: BlockForToken, Data: expr, Pattern: pattern, Loc: loc.Loc{Start: start}}
		default:
			_, _ = z.readExpressionBody(z.raw.End)
			z.handler.AppendError(decor.UnbalancedTag("#"+kw, loc.Loc{Start: start}))
			return Token{Type: ErrorToken, Data: kw, Loc: loc.Loc{Start: start}}
		}
	}

	if c, ok := z.peekAt(1); ok && c == ':' {
		z.raw.End += 2
		kw := z.readName()
		z.skipWhiteSpace()
		if kw == "else" {
			if rest, ok := z.peekByte(); ok && rest != '}' {
				z.handler.AppendError(decor.UnbalancedTag("{:else if}", loc.Loc{Start: start}))
			}
		}
		z.skipToMatchingBrace()
		return Token{Type: BlockElseToken, Data: kw, Loc: loc.Loc{Start: start}}
	}

	if c, ok := z.peekAt(1); ok && c == '/' {
		z.raw.End += 2
		kw := z.readName()
		z.skipToMatchingBrace()
		return Token{Type: BlockEndToken, Data: kw, Loc: loc.Loc{Start: start}}
	}

	body, _ := z.readExpressionBody(start)
	return Token{Type: ExpressionToken, Data: body, Loc: loc.Loc{Start: start}}
}

// skipToMatchingBrace consumes up to and including the next unescaped
// '}', for the header-less `{:else}`/`{/if}`/`{/for}` tokens.
func (z *Tokenizer) skipToMatchingBrace() {
	for {
		c, ok := z.peekByte()
		if !ok || c == '}' {
			if ok {
				z.raw.End++
			}
			return
		}
		z.raw.End++
	}
}

// readExpressionBody reads the JS-expression text between a `{` (already
// positioned at or before it) and its matching `}`, tracking nested
// braces, strings and template literals so an expression containing its
// own object/arrow-function braces or string literals is read whole. On
// entry z.raw.End must be at the character immediately after the opening
// `{` if from points past it, or at the `{` itself otherwise.
func (z *Tokenizer) readExpressionBody(from int) (string, loc.Loc) {
	if z.raw.End == from {
		// Positioned at the opening brace; consume it.
		if c, ok := z.peekByte(); ok && c == '{' {
			z.raw.End++
		}
	}
	start := z.raw.End
	depth := 1
	for depth > 0 {
		c := z.readByte()
		if z.err != nil {
			z.handler.AppendError(decor.UnterminatedBlock("expression", loc.Loc{Start: start}))
			return string(z.buf[start:z.raw.End]), loc.Loc{Start: start}
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		case '\'', '"', '`':
			z.skipString(c)
		}
	}
	return string(z.buf[start : z.raw.End-1]), loc.Loc{Start: start}
}

func (z *Tokenizer) skipString(quote byte) {
	for {
		c := z.readByte()
		if z.err != nil {
			return
		}
		if c == '\\' {
			z.readByte()
			continue
		}
		if c == quote {
			return
		}
	}
}

// readText scans a literal text run up to the next '{', the next
// word-boundary '/closetag', or the next '#tagname' element open.
func (z *Tokenizer) readText() Token {
	start := z.raw.End
	for {
		c, ok := z.peekByte()
		if !ok {
			break
		}
		if c == '{' {
			break
		}
		if c == '#' && isNameStartAt(z, 1) {
			break
		}
		if c == '/' && isNameStartAt(z, 1) && z.atWordBoundary() {
			break
		}
		z.raw.End++
	}
	return Token{Type: TextToken, Data: string(z.buf[start:z.raw.End]), Loc: loc.Loc{Start: start}}
}

// splitForHeader splits a `pat in expr` header (readBrace has already
// consumed the `for` keyword) into its binding pattern and iterable
// expression.
func splitForHeader(header string) (pattern, expr string) {
	header = strings.TrimSpace(header)
	idx := strings.Index(header, " in ")
	if idx < 0 {
		return header, ""
	}
	return strings.TrimSpace(header[:idx]), strings.TrimSpace(header[idx+len(" in "):])
}
