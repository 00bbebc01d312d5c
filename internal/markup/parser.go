package markup

import (
	"strings"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/loc"
)

// Parser turns a Tokenizer's stream into a *decor.Node tree (spec §4.2:
// "a recursive-descent parser over a small DSL"). It assigns anchor
// indices to every mutable site in document order as it goes, the way
// the teacher's own parser resolves positions while it walks rather than
// in a later pass.
type Parser struct {
	z       *Tokenizer
	h       *handler.Handler
	tok     Token
	nAnchor int
}

// Parse parses a component's markup span into a DocumentNode whose
// children are the top-level nodes, reporting UnbalancedTag,
// UnterminatedBlock, MalformedAttribute and EmptyInterpolation on h.
func Parse(source string, h *handler.Handler) *decor.Node {
	p := &Parser{z: NewTokenizer(source, h), h: h}
	p.advance()

	doc := decor.NewNode(decor.DocumentNode)
	p.parseChildren(doc, "")
	return doc
}

func (p *Parser) advance() {
	p.tok = p.z.Next()
}

func (p *Parser) nextAnchor() int {
	idx := p.nAnchor
	p.nAnchor++
	return idx
}

// parseChildren parses nodes into parent until EOF, a matching
// ElementCloseToken for closeTag (when non-empty), or a block-terminating
// token ({:else}/{/if}/{/for}) that the caller will itself consume.
func (p *Parser) parseChildren(parent *decor.Node, closeTag string) {
	for {
		if p.z.Err() != nil && p.tok.Type == ErrorToken {
			if closeTag != "" {
				p.h.AppendError(decor.UnbalancedTag(closeTag, p.tok.Loc))
			}
			return
		}

		switch p.tok.Type {
		case TextToken:
			p.parseText(parent)
		case ElementOpenToken:
			parent.AppendChild(p.parseElement())
		case ElementCloseToken:
			if p.tok.Data != closeTag {
				p.h.AppendError(decor.UnbalancedTag(p.tok.Data, p.tok.Loc))
			}
			p.advance()
			return
		case ExpressionToken:
			parent.AppendChild(p.parseInterpolation())
		case BlockIfToken:
			parent.AppendChild(p.parseIf())
		case BlockForToken:
			parent.AppendChild(p.parseFor())
		case BlockElseToken, BlockEndToken:
			return
		case ErrorToken:
			p.advance()
		}
	}
}

func (p *Parser) parseText(parent *decor.Node) {
	// A whitespace-only run only separates tags and braces; it gets no node.
	if strings.TrimSpace(p.tok.Data) == "" {
		p.advance()
		return
	}
	node := decor.NewNode(decor.TextNode)
	node.Data = p.tok.Data
	node.Loc = p.tok.Loc
	p.advance()
	parent.AppendChild(node)
}

func (p *Parser) parseInterpolation() *decor.Node {
	if strings.TrimSpace(p.tok.Data) == "" {
		p.h.AppendError(decor.EmptyInterpolation(p.tok.Loc))
	}
	node := decor.NewNode(decor.InterpolationNode)
	node.Data = p.tok.Data
	node.Loc = p.tok.Loc
	node.AnchorIndex = p.nextAnchor()
	p.advance()
	return node
}

func (p *Parser) parseElement() *decor.Node {
	node := decor.NewNode(decor.ElementNode)
	node.Data = p.tok.Data
	node.Loc = p.tok.Loc

	for _, raw := range p.tok.Attr {
		attr, ok := p.resolveAttr(raw)
		if !ok {
			continue
		}
		if attr.Type == decor.ExpressionAttribute || attr.Type == decor.EventAttribute {
			attr.AnchorIndex = p.nextAnchor()
		}
		node.Attr = append(node.Attr, attr)
	}

	tagName := node.Data
	p.advance()
	p.parseChildren(node, tagName)
	return node
}

func (p *Parser) resolveAttr(raw RawAttribute) (decor.Attribute, bool) {
	if raw.Key == "" {
		p.h.AppendError(decor.MalformedAttribute(raw.Val, raw.KeyLoc))
		return decor.Attribute{}, false
	}
	attr := decor.Attribute{
		Key:         raw.Key,
		KeyLoc:      raw.KeyLoc,
		Val:         raw.Val,
		ValLoc:      raw.ValLoc,
		AnchorIndex: -1,
	}
	switch {
	case raw.IsEvent:
		attr.Type = decor.EventAttribute
		if strings.TrimSpace(raw.Val) == "" {
			p.h.AppendError(decor.MalformedAttribute("@"+raw.Key, raw.KeyLoc))
		}
	case raw.IsExpr:
		attr.Type = decor.ExpressionAttribute
	case raw.IsBare:
		attr.Type = decor.EmptyAttribute
	case raw.IsQuoted:
		attr.Type = decor.QuotedAttribute
	default:
		p.h.AppendError(decor.MalformedAttribute(raw.Key, raw.KeyLoc))
		return decor.Attribute{}, false
	}
	return attr, true
}

func (p *Parser) parseIf() *decor.Node {
	node := decor.NewNode(decor.IfNode)
	node.Data = p.tok.Data
	node.Loc = p.tok.Loc
	node.AnchorIndex = p.nextAnchor()
	openLoc := p.tok.Loc
	p.advance()

	p.parseChildren(node, "")

	switch p.tok.Type {
	case BlockElseToken:
		p.advance()
		elseNode := decor.NewNode(decor.ElseNode)
		p.parseChildren(elseNode, "")
		// Not wired through AppendChild (an ElseNode is reached via
		// node.Else, not the sibling chain), but it still needs a Parent
		// so an ancestor walk (e.g. printer's "is this inside a #for"
		// check) can cross an {:else} branch without a gap.
		elseNode.Parent = node
		node.Else = elseNode
		p.expectBlockEnd("if", openLoc)
	case BlockEndToken:
		if p.tok.Data != "if" {
			p.h.AppendError(decor.UnterminatedBlock("if", openLoc))
		}
		p.advance()
	default:
		p.h.AppendError(decor.UnterminatedBlock("if", openLoc))
	}
	return node
}

func (p *Parser) parseFor() *decor.Node {
	node := decor.NewNode(decor.ForNode)
	node.Data = p.tok.Data
	node.Pattern = p.tok.Pattern
	node.Loc = p.tok.Loc
	node.AnchorIndex = p.nextAnchor()
	openLoc := p.tok.Loc
	p.advance()

	p.parseChildren(node, "")
	p.expectBlockEnd("for", openLoc)
	return node
}

// expectBlockEnd consumes a {/kind} token, reporting UnterminatedBlock if
// the stream ended or a mismatched block-end token was found instead.
func (p *Parser) expectBlockEnd(kind string, openLoc loc.Loc) {
	if p.tok.Type != BlockEndToken || p.tok.Data != kind {
		p.h.AppendError(decor.UnterminatedBlock(kind, openLoc))
		return
	}
	p.advance()
}
