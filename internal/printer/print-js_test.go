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

func buildJS(t *testing.T, jsSrc, markupSrc string, opts printer.JSOptions) string {
	t.Helper()
	h := handler.New(markupSrc, "t.decor")
	a := script.Analyze(jsSrc, h)
	doc := markup.Parse(markupSrc, h)
	p := plan.Build(doc, a, h)
	require.False(t, h.HasErrors())
	_, specs := printer.PrintHTML(doc, "tok123", a, p.ContextIndex)
	return string(printer.PrintJS(a, p, specs, opts))
}

func TestPrintJS_WrapsInDOMContentLoadedByDefault(t *testing.T) {
	out := buildJS(t, "let counter = 0;", "#p {counter} /p", printer.JSOptions{Method: printer.RenderDOM})
	assert.Contains(t, out, "document.addEventListener('DOMContentLoaded'")
}

func TestPrintJS_ModularizeExportsInitialize(t *testing.T) {
	out := buildJS(t, "let counter = 0;", "#p {counter} /p", printer.JSOptions{Method: printer.RenderDOM, Modularize: true})
	assert.Contains(t, out, "export default function initialize(element)")
}

func TestPrintJS_InertBindingIsRedeclaredNotCtxStored(t *testing.T) {
	out := buildJS(t, "let label = 'hi';\nlet counter = 0;\nfunction bump(){ counter = counter + 1; }",
		"#p {label} {counter} /p", printer.JSOptions{Method: printer.RenderDOM})
	assert.Contains(t, out, "let label = 'hi';")
}

func TestPrintJS_ConstIsRedeclared(t *testing.T) {
	out := buildJS(t, "const greeting = 'hi';", "#p {greeting} /p", printer.JSOptions{Method: printer.RenderDOM})
	assert.Contains(t, out, "const greeting = 'hi';")
}

func TestPrintJS_UnfoldableZeroDependencyAnchorGetsUnconditionalGuard(t *testing.T) {
	out := buildJS(t, "", "#p {Math.random()} /p", printer.JSOptions{Method: printer.RenderDOM})
	assert.Contains(t, out, "if (true) { anchors[0].textContent = String(Math.random()); }")
}

func TestPrintJS_HandlerRewritesAssignmentToScheduleUpdate(t *testing.T) {
	out := buildJS(t, "let counter = 0;",
		"#button[@click={() => counter = counter + 1}] {counter} /button",
		printer.JSOptions{Method: printer.RenderDOM})
	assert.Contains(t, out, "__schedule_update(0,counter + 1)")
}

func TestPrintJS_BlockRendererEmittedForIf(t *testing.T) {
	out := buildJS(t, "let show = true;", "{#if show} #p yes /p {/if}", printer.JSOptions{Method: printer.RenderDOM})
	assert.Contains(t, out, "function __block_0(){")
	assert.Contains(t, out, "__place(0, __block_0());")
}

func TestPrintJS_CSRModeBuildsTemplateAndAppendsHost(t *testing.T) {
	html, _ := printer.PrintHTML(
		markup.Parse("#p Hello /p", handler.New("#p Hello /p", "t.decor")),
		"tok123", script.Analyze("", handler.New("", "t.decor")), map[string]int{},
	)
	out := buildJS(t, "", "#p Hello /p", printer.JSOptions{Method: printer.RenderCSR, HTML: string(html)})
	assert.Contains(t, out, "function __mount()")
	assert.Contains(t, out, "__host.appendChild(__root);")
}

func TestPrintJS_WasmLoaderEmitsExportComment(t *testing.T) {
	out := buildJS(t, "", "#p Hello /p", printer.JSOptions{
		Method: printer.RenderDOM,
		Wasm: &wasmbuild.Manifest{
			Symbols: []wasmbuild.Symbol{
				{Name: "add", Params: []string{"i32", "i32"}, Results: []string{"i32"}},
			},
		},
	})
	assert.Contains(t, out, "// wasm export: add(i32, i32) -> (i32)")
	assert.Contains(t, out, "fetch('out.wasm')")
}
