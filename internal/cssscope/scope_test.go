package cssscope_test

import (
	"testing"

	"github.com/dzfrias/decorous/internal/cssscope"
	"github.com/stretchr/testify/assert"
)

func TestScope_SimpleSelector(t *testing.T) {
	out := cssscope.Scope(`p{color:red}`, "X")
	assert.Contains(t, out, `p[data-scope="X"]`)
	assert.Contains(t, out, `color:red`)
}

func TestScope_CompoundSelectorScopesRightmost(t *testing.T) {
	out := cssscope.Scope(`.card h1{color:blue}`, "X")
	assert.Contains(t, out, `.card h1[data-scope="X"]`)
}

func TestScope_SelectorListScopesEachEntry(t *testing.T) {
	out := cssscope.Scope(`h1,h2{color:blue}`, "X")
	assert.Contains(t, out, `h1[data-scope="X"]`)
	assert.Contains(t, out, `h2[data-scope="X"]`)
}

func TestScope_MediaQueryIsPassedThroughAndNestedRulesetScoped(t *testing.T) {
	out := cssscope.Scope(`@media (min-width: 1px){p{color:red}}`, "X")
	assert.Contains(t, out, `@media`)
	assert.Contains(t, out, `p[data-scope="X"]`)
}

func TestScope_KeyframesSelectorsAreUntouched(t *testing.T) {
	out := cssscope.Scope(`@keyframes spin{from{opacity:0}to{opacity:1}}`, "X")
	assert.Contains(t, out, `from{opacity:0;}`)
	assert.Contains(t, out, `to{opacity:1;}`)
	assert.NotContains(t, out, `data-scope`)
}

func TestScope_FontFacePassesThrough(t *testing.T) {
	out := cssscope.Scope(`@font-face{font-family:"X"}`, "X")
	assert.Contains(t, out, `@font-face`)
	assert.NotContains(t, out, `data-scope`)
}

func TestScope_UniversalSelectorBecomesQualifierAlone(t *testing.T) {
	out := cssscope.Scope(`*{margin:0}`, "X")
	assert.Contains(t, out, `[data-scope="X"]`)
	assert.NotContains(t, out, `*[data-scope`)
}
