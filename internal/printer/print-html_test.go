package printer_test

import (
	"testing"

	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/markup"
	"github.com/dzfrias/decorous/internal/plan"
	"github.com/dzfrias/decorous/internal/printer"
	"github.com/dzfrias/decorous/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildHTML(t *testing.T, jsSrc, markupSrc string) (string, []printer.BlockSpec) {
	t.Helper()
	h := handler.New(markupSrc, "t.decor")
	a := script.Analyze(jsSrc, h)
	doc := markup.Parse(markupSrc, h)
	p := plan.Build(doc, a, h)
	require.False(t, h.HasErrors())
	out, specs := printer.PrintHTML(doc, "tok123", a, p.ContextIndex)
	return string(out), specs
}

func TestPrintHTML_StaticElementGetsDataScopeOnly(t *testing.T) {
	out, specs := buildHTML(t, "", "#p Hello /p")
	assert.Contains(t, out, `data-scope="tok123"`)
	assert.NotContains(t, out, "data-a")
	assert.Empty(t, specs)
}

func TestPrintHTML_InterpolationBecomesCommentMarker(t *testing.T) {
	out, _ := buildHTML(t, "let counter = 0;\nconst onClick = () => { counter = counter + 1; };", "#p {counter} /p")
	assert.Contains(t, out, "<!--a0-->")
}

func TestPrintHTML_EventAttributeGetsDataA(t *testing.T) {
	out, _ := buildHTML(t, "let counter = 0;\nconst onClick = () => { counter = counter + 1; };",
		"#button[@click={() => counter = counter + 1}] {counter} /button")
	assert.Contains(t, out, `data-a="0"`)
	assert.Contains(t, out, "<!--a1-->")
}

func TestPrintHTML_IfBlockYieldsMarkerAndBlockSpec(t *testing.T) {
	out, specs := buildHTML(t, "let show = true;", "{#if show} #p yes /p {/if}")
	assert.Contains(t, out, "<!--a0-->")
	require.Len(t, specs, 1)
	assert.Equal(t, 0, specs[0].Anchor)
	assert.Contains(t, specs[0].Then, "yes")
}

func TestPrintHTML_ForBlockBodyIsInlinedNotMarkered(t *testing.T) {
	out, specs := buildHTML(t, "let items = [];", "{#for it in items} #span {it} /span {/for}")
	assert.Contains(t, out, "<!--a0-->")
	require.Len(t, specs, 1)
	assert.Contains(t, specs[0].Then, "${it}")
	assert.NotContains(t, specs[0].Then, "<!--a")
}

func TestPrintHTML_ConstOnlyInterpolationFoldsToLiteralTextWithNoAnchorMarker(t *testing.T) {
	out, specs := buildHTML(t, "const greeting = 'hi';", "#p {greeting} /p")
	assert.Contains(t, out, ">hi<")
	assert.NotContains(t, out, "<!--a0-->")
	assert.NotContains(t, out, "<!--a")
	assert.Empty(t, specs)
}

func TestPrintHTML_NestedInterpolationInsideForIsInlined(t *testing.T) {
	_, specs := buildHTML(t, "let counter = 0;\nlet items = [];\nconst onClick = () => { counter = counter + 1; };",
		"{#for it in items} #span {counter} /span {/for}")
	require.Len(t, specs, 1)
	assert.Contains(t, specs[0].Then, "ctx[0]")
}
