package markup_test

import (
	"testing"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func children(n *decor.Node) []*decor.Node {
	var out []*decor.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func TestParse_StaticElement(t *testing.T) {
	h := handler.New("#p Red /p", "t.decor")
	doc := markup.Parse("#p Red /p", h)

	require.False(t, h.HasErrors())
	kids := children(doc)
	require.Len(t, kids, 1)
	p := kids[0]
	assert.Equal(t, decor.ElementNode, p.Type)
	assert.Equal(t, "p", p.Data)
	assert.False(t, p.HasAnchor())

	text := children(p)
	require.Len(t, text, 1)
	assert.Equal(t, decor.TextNode, text[0].Type)
	assert.Contains(t, text[0].Data, "Red")
}

func TestParse_Interpolation(t *testing.T) {
	src := "#p {counter} /p"
	h := handler.New(src, "t.decor")
	doc := markup.Parse(src, h)

	require.False(t, h.HasErrors())
	p := children(doc)[0]
	interp := children(p)[0]
	assert.Equal(t, decor.InterpolationNode, interp.Type)
	assert.Equal(t, "counter", interp.Data)
	assert.True(t, interp.HasAnchor())
	assert.Equal(t, 0, interp.AnchorIndex)
}

func TestParse_EventBindingAssignsAnchor(t *testing.T) {
	src := "#button[@click={() => counter = counter + 1}] {counter} /button"
	h := handler.New(src, "t.decor")
	doc := markup.Parse(src, h)

	require.False(t, h.HasErrors())
	button := children(doc)[0]
	require.Len(t, button.Attr, 1)
	assert.Equal(t, decor.EventAttribute, button.Attr[0].Type)
	assert.Equal(t, "click", button.Attr[0].Key)
	assert.GreaterOrEqual(t, button.Attr[0].AnchorIndex, 0)

	interp := children(button)[0]
	assert.True(t, interp.HasAnchor())
	assert.NotEqual(t, button.Attr[0].AnchorIndex, interp.AnchorIndex)
}

func TestParse_IfElse(t *testing.T) {
	src := "{#if stuff.length >= 10} #p Many /p {:else} #p Few /p {/if}"
	h := handler.New(src, "t.decor")
	doc := markup.Parse(src, h)

	require.False(t, h.HasErrors())
	ifNode := children(doc)[0]
	assert.Equal(t, decor.IfNode, ifNode.Type)
	assert.Equal(t, "stuff.length >= 10", ifNode.Data)
	require.NotNil(t, ifNode.Else)
	assert.Equal(t, decor.ElseNode, ifNode.Else.Type)
}

func TestParse_For(t *testing.T) {
	src := "{#for t in stuff} #span {t} /span {/for}"
	h := handler.New(src, "t.decor")
	doc := markup.Parse(src, h)

	require.False(t, h.HasErrors())
	forNode := children(doc)[0]
	assert.Equal(t, decor.ForNode, forNode.Type)
	assert.Equal(t, "t", forNode.Pattern)
	assert.Equal(t, "stuff", forNode.Data)
}

func TestParse_UnbalancedTagIsAnError(t *testing.T) {
	src := "#p Red /div"
	h := handler.New(src, "t.decor")
	markup.Parse(src, h)

	assert.True(t, h.HasErrors())
}

func TestParse_UnterminatedBlockIsAnError(t *testing.T) {
	src := "{#if x} #p Red /p"
	h := handler.New(src, "t.decor")
	markup.Parse(src, h)

	assert.True(t, h.HasErrors())
}

func TestParse_EmptyInterpolationIsAnError(t *testing.T) {
	src := "#p {} /p"
	h := handler.New(src, "t.decor")
	markup.Parse(src, h)

	assert.True(t, h.HasErrors())
}

func TestParse_DoubleBraceEscapesToLiteral(t *testing.T) {
	src := "#p {{literal}} /p"
	h := handler.New(src, "t.decor")
	doc := markup.Parse(src, h)

	require.False(t, h.HasErrors())
	p := children(doc)[0]
	var buf string
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == decor.TextNode {
			buf += c.Data
		}
	}
	assert.Contains(t, buf, "{")
}

func TestParse_AnchorsAreAssignedInDocumentOrder(t *testing.T) {
	src := "#p {a} /p #p {b} /p"
	h := handler.New(src, "t.decor")
	doc := markup.Parse(src, h)

	require.False(t, h.HasErrors())
	kids := children(doc)
	require.Len(t, kids, 2)
	first := children(kids[0])[0]
	second := children(kids[1])[0]
	assert.Equal(t, 0, first.AnchorIndex)
	assert.Equal(t, 1, second.AnchorIndex)
}

func TestParse_MultipleDynamicAttrsOnOneElementGetDistinctAnchors(t *testing.T) {
	src := "#input[value={name} @input={() => name = name}] /input"
	h := handler.New(src, "t.decor")
	doc := markup.Parse(src, h)

	require.False(t, h.HasErrors())
	input := children(doc)[0]
	require.Len(t, input.Attr, 2)
	assert.NotEqual(t, input.Attr[0].AnchorIndex, input.Attr[1].AnchorIndex)
	assert.GreaterOrEqual(t, input.Attr[0].AnchorIndex, 0)
	assert.GreaterOrEqual(t, input.Attr[1].AnchorIndex, 0)
}
