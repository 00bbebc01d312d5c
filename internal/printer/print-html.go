package printer

import (
	"strconv"
	"strings"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/script"
)

// BlockSpec is one top-level (non-repeated) {#if}/{#for} block's
// precompiled body, consumed by print-js.go to build the runtime's
// per-block re-render function `__block_<Anchor>` (spec §4.7: a block
// anchor's recomputation rebuilds its subtree, rather than patching a
// single DOM property the way a text/attr anchor does). A block nested
// inside a #for is never registered here: a repeated block has no
// single persistent DOM node a flat-array slot could address, so
// renderNode compiles it inline as a `${...}` hole in its enclosing
// #for's Then body instead.
type BlockSpec struct {
	Anchor  int
	Type    decor.NodeType // decor.IfNode or decor.ForNode
	Pattern string         // ForNode's loop pattern; empty for IfNode
	Then    string         // IfNode's then-branch HTML, or ForNode's per-item HTML
	Else    string         // IfNode's else-branch HTML; empty for ForNode
}

// renderCtx threads the state every recursive renderNode call needs:
// the scope token for data-scope, the script analysis and context-index
// map for resolving reactive reads, the names currently bound by an
// enclosing #for pattern (excluded from ctx[] substitution), whether
// the current node sits inside a repeated (#for) subtree, and the
// output slice of top-level BlockSpecs.
type renderCtx struct {
	scope  string
	a      *script.Analysis
	ctxIdx map[string]int
	locals map[string]bool
	inline bool
	specs  *[]BlockSpec
}

func (c renderCtx) withLocals(names []string) renderCtx {
	if len(names) == 0 {
		return c
	}
	next := make(map[string]bool, len(c.locals)+len(names))
	for k := range c.locals {
		next[k] = true
	}
	for _, n := range names {
		next[n] = true
	}
	c.locals = next
	return c
}

func (c renderCtx) resolve(name string) (int, bool) {
	if c.locals[name] {
		return 0, false
	}
	idx, ok := c.ctxIdx[name]
	return idx, ok
}

// patternNames extracts the identifier(s) a `{#for pat in expr}`
// pattern binds, handling both a bare identifier ("t") and a shallow
// destructuring pattern ("{name, age}"/"[a, b]"). Nested destructuring
// and default values are not unpacked further than their top-level
// names; a binding introduced that way is simply never excluded from
// ctx[] substitution, which only matters if it collides with a
// same-named reactive top-level binding.
func patternNames(pattern string) []string {
	p := strings.TrimSpace(pattern)
	p = strings.Trim(p, "{}[]")
	var names []string
	for _, part := range strings.Split(p, ",") {
		part = strings.TrimSpace(part)
		if i := strings.IndexAny(part, ":="); i >= 0 {
			part = strings.TrimSpace(part[:i])
		}
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// PrintHTML renders a component's out.html artifact (spec §4.7): the
// static markup tree with `data-scope` on every element (so
// internal/cssscope's `[data-scope="token"]` attribute-selector
// qualifiers match), and an indexed comment marker `<!--a<N>-->` at
// every top-level anchor site in place of baking in a value the
// compiler has no way to evaluate (DESIGN.md "Initial dynamic content
// without a JS expression evaluator"). The second return value is every
// top-level block's precompiled body, which print-js.go turns into
// runtime renderers.
func PrintHTML(root *decor.Node, scopeToken string, a *script.Analysis, contextIndex map[string]int) ([]byte, []BlockSpec) {
	p := &printer{}
	var specs []BlockSpec
	ctx := renderCtx{scope: scopeToken, a: a, ctxIdx: contextIndex, specs: &specs}
	renderSiblings(p, root.FirstChild, ctx)
	return p.bytes(), specs
}

func renderSiblings(p *printer, n *decor.Node, ctx renderCtx) {
	for c := n; c != nil; c = c.NextSibling {
		renderNode(p, c, ctx)
	}
}

func renderNode(p *printer, n *decor.Node, ctx renderCtx) {
	switch n.Type {
	case decor.TextNode:
		if ctx.inline {
			p.print(escapeTemplateLiteralText(escapeHTMLText(n.Data)))
		} else {
			p.print(escapeHTMLText(n.Data))
		}
	case decor.CommentNode:
		if ctx.inline {
			p.printf("<!--%s-->", escapeTemplateLiteralText(n.Data))
		} else {
			p.printf("<!--%s-->", n.Data)
		}
	case decor.ElementNode:
		renderElement(p, n, ctx)
	case decor.InterpolationNode:
		renderInterpolation(p, n, ctx)
	case decor.IfNode:
		renderIf(p, n, ctx)
	case decor.ForNode:
		renderFor(p, n, ctx)
	}
}

func renderInterpolation(p *printer, n *decor.Node, ctx renderCtx) {
	if ctx.inline {
		p.printf("${%s}", ctx.a.Substitute(n.Data, ctx.resolve))
		return
	}
	p.printf("<!--a%d-->", n.AnchorIndex)
}

func renderElement(p *printer, n *decor.Node, ctx renderCtx) {
	p.printf("<%s", n.Data)
	var anchorAttrs []string
	for _, attr := range n.Attr {
		switch attr.Type {
		case decor.QuotedAttribute:
			if ctx.inline {
				p.printf(` %s="%s"`, attr.Key, escapeTemplateLiteralText(escapeHTMLAttr(attr.Val)))
			} else {
				p.printf(` %s="%s"`, attr.Key, escapeHTMLAttr(attr.Val))
			}
		case decor.EmptyAttribute:
			p.printf(" %s", attr.Key)
		case decor.ExpressionAttribute:
			if ctx.inline {
				p.printf(` %s="${%s}"`, attr.Key, ctx.a.Substitute(attr.Val, ctx.resolve))
			} else {
				anchorAttrs = append(anchorAttrs, strconv.Itoa(attr.AnchorIndex))
			}
		case decor.EventAttribute:
			// Kept as a data-a marker even inline: a repeated item still
			// gets its listener wired post-insertion by the same
			// querySelectorAll('[data-a]') pass, just run once per item
			// instead of once overall (print-js.go).
			anchorAttrs = append(anchorAttrs, strconv.Itoa(attr.AnchorIndex))
		}
	}
	p.printf(` data-scope="%s"`, ctx.scope)
	if len(anchorAttrs) > 0 {
		p.printf(` data-a="%s"`, strings.Join(anchorAttrs, " "))
	}
	p.print(">")
	renderSiblings(p, n.FirstChild, ctx)
	p.printf("</%s>", n.Data)
}

// renderBranch renders a sibling chain into its own buffer so its HTML
// can be captured apart from the surrounding document (an if-branch's
// then/else body, or a for-loop's per-item body).
func renderBranch(n *decor.Node, ctx renderCtx) string {
	p := &printer{}
	renderSiblings(p, n, ctx)
	return string(p.bytes())
}

func renderIf(p *printer, n *decor.Node, ctx renderCtx) {
	if ctx.inline {
		cond := ctx.a.Substitute(n.Data, ctx.resolve)
		then := renderBranch(n.FirstChild, ctx)
		els := ""
		if n.Else != nil {
			els = renderBranch(n.Else.FirstChild, ctx)
		}
		p.printf("${(%s) ? `%s` : `%s`}", cond, then, els)
		return
	}

	p.printf("<!--a%d-->", n.AnchorIndex)
	branchCtx := ctx
	branchCtx.inline = false
	then := renderBranch(n.FirstChild, branchCtx)
	els := ""
	if n.Else != nil {
		els = renderBranch(n.Else.FirstChild, branchCtx)
	}
	*ctx.specs = append(*ctx.specs, BlockSpec{Anchor: n.AnchorIndex, Type: decor.IfNode, Then: then, Else: els})
}

func renderFor(p *printer, n *decor.Node, ctx renderCtx) {
	iter := ctx.a.Substitute(n.Data, ctx.resolve)
	bodyCtx := ctx.withLocals(patternNames(n.Pattern))
	bodyCtx.inline = true
	body := renderBranch(n.FirstChild, bodyCtx)

	if ctx.inline {
		p.printf("${(%s).map(%s => `%s`).join('')}", iter, n.Pattern, body)
		return
	}

	p.printf("<!--a%d-->", n.AnchorIndex)
	*ctx.specs = append(*ctx.specs, BlockSpec{Anchor: n.AnchorIndex, Type: decor.ForNode, Pattern: n.Pattern, Then: body})
}
