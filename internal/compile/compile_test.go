package compile_test

import (
	"context"
	"testing"

	"github.com/dzfrias/decorous/internal/compile"
	"github.com/dzfrias/decorous/internal/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleComponent = "---js\n" +
	"let counter = 0;\n" +
	"---\n" +
	"---css\n" +
	"p { color: red; }\n" +
	"---\n" +
	"#button[@click={() => counter = counter + 1}] {counter} /button\n"

func TestCompile_ProducesFourArtifactsInDOMMode(t *testing.T) {
	res, h := compile.Compile(context.Background(), simpleComponent, "t.decor", compile.Options{Method: printer.RenderDOM})
	require.False(t, h.HasErrors())
	require.NotNil(t, res)
	assert.NotEmpty(t, res.HTML)
	assert.NotEmpty(t, res.JS)
	assert.NotEmpty(t, res.CSS)
	assert.NotEmpty(t, res.JSON)
	assert.Contains(t, string(res.CSS), "data-scope")
	assert.Contains(t, string(res.JS), "__schedule_update")
}

func TestCompile_CSRModeOmitsSeparateHTML(t *testing.T) {
	res, h := compile.Compile(context.Background(), simpleComponent, "t.decor", compile.Options{Method: printer.RenderCSR})
	require.False(t, h.HasErrors())
	require.NotNil(t, res)
	assert.Nil(t, res.HTML)
	assert.Contains(t, string(res.JS), "function __mount()")
}

func TestCompile_StopsEarlyOnFenceError(t *testing.T) {
	res, h := compile.Compile(context.Background(), "---python\nx\n---\n", "t.decor", compile.Options{Method: printer.RenderDOM})
	assert.True(t, h.HasErrors())
	assert.Nil(t, res)
}

func TestCheck_ReportsNoErrorsForValidComponent(t *testing.T) {
	h := compile.Check(simpleComponent, "t.decor")
	assert.False(t, h.HasErrors())
}

func TestCheck_ReportsUndefinedReactiveBinding(t *testing.T) {
	h := compile.Check("#p {missing} /p", "t.decor")
	assert.True(t, h.HasErrors())
}
