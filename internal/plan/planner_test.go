package plan_test

import (
	"testing"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/markup"
	"github.com/dzfrias/decorous/internal/plan"
	"github.com/dzfrias/decorous/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPlan(t *testing.T, jsSrc, markupSrc string) (*plan.Plan, *handler.Handler) {
	t.Helper()
	h := handler.New(markupSrc, "t.decor")
	a := script.Analyze(jsSrc, h)
	doc := markup.Parse(markupSrc, h)
	return plan.Build(doc, a, h), h
}

func TestBuild_ContextIndicesCoverOnlyReactiveBindings(t *testing.T) {
	jsSrc := "let counter = 0;\nconst label = 'hi';\nconst onClick = () => { counter = counter + 1; };"
	p, h := buildPlan(t, jsSrc, "#button[@click={() => counter = counter + 1}] {counter} /button")

	require.False(t, h.HasErrors())
	assert.Equal(t, []string{"counter"}, p.ContextOrder)
	assert.Equal(t, 0, p.ContextIndex["counter"])
	assert.NotContains(t, p.ContextIndex, "label")
}

func TestBuild_InterpolationAnchorGetsTriggerMaskBit(t *testing.T) {
	jsSrc := "let counter = 0;\nconst onClick = () => { counter = counter + 1; };"
	p, h := buildPlan(t, jsSrc, "#button[@click={() => counter = counter + 1}] {counter} /button")
	require.False(t, h.HasErrors())

	var textAnchor *plan.Anchor
	for i := range p.Anchors {
		if p.Anchors[i].Kind == plan.TextAnchor {
			textAnchor = &p.Anchors[i]
		}
	}
	require.NotNil(t, textAnchor)
	idx := p.ContextIndex["counter"]
	assert.NotZero(t, textAnchor.TriggerMask[idx/8]&(1<<uint(idx%8)))
}

func TestBuild_AnchorsAreOrderedByIndex(t *testing.T) {
	jsSrc := "let a = 0;\nlet b = 0;\nconst f = () => { a = 1; b = 2; };"
	p, h := buildPlan(t, jsSrc, "#p {a} /p #p {b} /p")
	require.False(t, h.HasErrors())

	require.Len(t, p.Anchors, 2)
	assert.Less(t, p.Anchors[0].Index, p.Anchors[1].Index)
}

func TestBuild_HandlerWriteSetResolvesToContextIndices(t *testing.T) {
	jsSrc := "let counter = 0;\nconst onClick = () => { counter = counter + 1; };"
	p, h := buildPlan(t, jsSrc, "#button[@click={() => counter = counter + 1}] {counter} /button")
	require.False(t, h.HasErrors())

	require.Len(t, p.HandlerWrites, 1)
	assert.Equal(t, "click", p.HandlerWrites[0].Event)
	assert.Equal(t, []int{p.ContextIndex["counter"]}, p.HandlerWrites[0].Indices)
}

func TestBuild_ConstOnlyInterpolationFoldsToStaticTextInsteadOfAnAnchor(t *testing.T) {
	h := handler.New("", "t.decor")
	a := script.Analyze("const greeting = 'hi';", h)
	doc := markup.Parse("#p {greeting} /p", h)
	p := plan.Build(doc, a, h)
	require.False(t, h.HasErrors())

	assert.Empty(t, p.Anchors)

	var folded *decor.Node
	decor.Walk(doc, func(n *decor.Node) {
		if n.Type == decor.TextNode {
			folded = n
		}
	})
	require.NotNil(t, folded)
	assert.Equal(t, "hi", folded.Data)
}

func TestBuild_ConstOnlyAttributeFoldsToQuotedAttribute(t *testing.T) {
	h := handler.New("", "t.decor")
	a := script.Analyze("const id = 'greeting';", h)
	doc := markup.Parse(`#p[id={id}] Hello /p`, h)
	p := plan.Build(doc, a, h)
	require.False(t, h.HasErrors())
	assert.Empty(t, p.Anchors)

	el := doc.FirstChild
	require.NotNil(t, el)
	attr := el.Attribute("id")
	require.NotNil(t, attr)
	assert.Equal(t, decor.QuotedAttribute, attr.Type)
	assert.Equal(t, "greeting", attr.Val)
	assert.Equal(t, -1, attr.AnchorIndex)
}

func TestBuild_UnfoldableZeroDependencyAnchorIsMarkedStaticRatherThanDead(t *testing.T) {
	h := handler.New("", "t.decor")
	a := script.Analyze("", h)
	doc := markup.Parse("#p {Math.random()} /p", h)
	p := plan.Build(doc, a, h)
	require.False(t, h.HasErrors())

	require.Len(t, p.Anchors, 1)
	assert.Empty(t, p.Anchors[0].Deps)
	assert.True(t, p.Anchors[0].Static)
}

func TestBuild_MultipleDynamicAttrsProduceDistinctAnchors(t *testing.T) {
	jsSrc := "let name = '';\nconst onInput = (e) => { name = e.target.value; };"
	p, h := buildPlan(t, jsSrc, "#input[value={name} @input={(e) => name = e.target.value}] /input")
	require.False(t, h.HasErrors())

	var attrAnchors int
	for _, anc := range p.Anchors {
		if anc.Kind == plan.AttrAnchor {
			attrAnchors++
		}
	}
	assert.Equal(t, 2, attrAnchors)
}
