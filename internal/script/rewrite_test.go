package script_test

import (
	"testing"

	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteHandler_SimpleAssignment(t *testing.T) {
	h := handler.New("", "t.decor")
	a := script.Analyze("let counter = 0;\nconst onClick = () => { counter = counter + 1; };", h)
	require.False(t, h.HasErrors())

	resolve := func(name string) (int, bool) {
		if name == "counter" {
			return 0, true
		}
		return 0, false
	}
	out := a.RewriteHandler("counter = counter + 1", resolve)
	assert.Equal(t, "__schedule_update(0,counter + 1)", out)
}

func TestRewriteHandler_AugmentedAssignment(t *testing.T) {
	h := handler.New("", "t.decor")
	a := script.Analyze("let counter = 0;\nconst add = (x) => { counter += x; };", h)
	require.False(t, h.HasErrors())

	resolve := func(name string) (int, bool) { return 0, name == "counter" }
	out := a.RewriteHandler("counter += 1", resolve)
	assert.Equal(t, "__schedule_update(0,counter+(1))", out)
}

func TestRewriteHandler_LeavesInertAssignmentsAlone(t *testing.T) {
	h := handler.New("", "t.decor")
	a := script.Analyze("let label = 'hi';", h)
	require.False(t, h.HasErrors())

	resolve := func(name string) (int, bool) { return 0, false }
	out := a.RewriteHandler("label = 'bye'", resolve)
	assert.Equal(t, "label = 'bye'", out)
}

func TestSubstitute_ReplacesFreeReactiveReads(t *testing.T) {
	h := handler.New("", "t.decor")
	a := script.Analyze("let counter = 0;", h)
	require.False(t, h.HasErrors())

	resolve := func(name string) (int, bool) { return 0, name == "counter" }
	out := a.Substitute("counter + 1", resolve)
	assert.Equal(t, "ctx[0] + 1", out)
}

func TestSubstitute_SkipsMemberPropertyNamesAndParams(t *testing.T) {
	h := handler.New("", "t.decor")
	a := script.Analyze("let items = [];", h)
	require.False(t, h.HasErrors())

	resolve := func(name string) (int, bool) { return 0, name == "items" }
	out := a.Substitute("items.length", resolve)
	assert.Equal(t, "ctx[0].length", out)
}
