package printer_test

import (
	"testing"

	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/markup"
	"github.com/dzfrias/decorous/internal/plan"
	"github.com/dzfrias/decorous/internal/printer"
	"github.com/dzfrias/decorous/internal/script"
	"github.com/dzfrias/decorous/internal/wasmbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPlan(t *testing.T, jsSrc, markupSrc string) *plan.Plan {
	t.Helper()
	h := handler.New(markupSrc, "t.decor")
	a := script.Analyze(jsSrc, h)
	doc := markup.Parse(markupSrc, h)
	p := plan.Build(doc, a, h)
	require.False(t, h.HasErrors())
	return p
}

func TestPrintJSON_ReportsReactiveBindingAndAnchorCounts(t *testing.T) {
	p := buildPlan(t, "let counter = 0;\nconst onClick = () => { counter = counter + 1; };", "#p {counter} /p")
	out, err := printer.PrintJSON(p, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"reactiveBindings":1`)
	assert.Contains(t, string(out), `"anchors":1`)
}

func TestPrintJSON_OmitsWasmSymbolsWhenNil(t *testing.T) {
	p := buildPlan(t, "", "#p Hello /p")
	out, err := printer.PrintJSON(p, nil)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "wasmSymbols")
}

func TestPrintJSON_IncludesWasmSymbols(t *testing.T) {
	p := buildPlan(t, "", "#p Hello /p")
	out, err := printer.PrintJSON(p, &wasmbuild.Manifest{
		Symbols: []wasmbuild.Symbol{{Name: "add", Params: []string{"i32", "i32"}, Results: []string{"i32"}}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"name":"add"`)
}
