package compile_test

import (
	"context"
	"testing"

	"github.com/dzfrias/decorous/internal/compile"
	"github.com/dzfrias/decorous/internal/printer"
	"github.com/dzfrias/decorous/internal/test_utils"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T, name, source string, kind test_utils.OutputKind, output string) {
	t.Helper()
	test_utils.MakeSnapshot(&test_utils.SnapshotOptions{
		Testing:      t,
		TestCaseName: name,
		Input:        source,
		Output:       output,
		Kind:         kind,
	})
}

func TestCompile_Snapshots(t *testing.T) {
	res, h := compile.Compile(context.Background(), simpleComponent, "t.decor", compile.Options{Method: printer.RenderDOM})
	require.False(t, h.HasErrors())
	require.NotNil(t, res)

	snapshot(t, "simple component html", simpleComponent, test_utils.HtmlOutput, string(res.HTML))
	snapshot(t, "simple component js", simpleComponent, test_utils.JsOutput, string(res.JS))
	snapshot(t, "simple component css", simpleComponent, test_utils.CssOutput, string(res.CSS))
	snapshot(t, "simple component json", simpleComponent, test_utils.JsonOutput, string(res.JSON))
}
