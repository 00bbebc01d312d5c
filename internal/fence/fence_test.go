package fence_test

import (
	"testing"

	"github.com/dzfrias/decorous/internal/fence"
	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/loc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_MarkupOnly(t *testing.T) {
	h := handler.New("<p>hi</p>\n", "test.decor")
	s := fence.Split("<p>hi</p>\n", h)

	require.False(t, h.HasErrors())
	assert.Empty(t, s.Blocks)
}

func TestSplit_JSAndCSSBlocks(t *testing.T) {
	src := "---js\n" +
		"let count = 0\n" +
		"---\n" +
		"---css\n" +
		"p { color: red; }\n" +
		"---\n" +
		"<p>{count}</p>\n"
	h := handler.New(src, "test.decor")
	s := fence.Split(src, h)

	require.False(t, h.HasErrors())
	require.Len(t, s.Blocks, 2)
	assert.Equal(t, fence.LangJS, s.Blocks[0].Lang)
	assert.Equal(t, "let count = 0", s.Blocks[0].Body)
	assert.Equal(t, fence.LangCSS, s.Blocks[1].Lang)
	assert.Equal(t, "p { color: red; }", s.Blocks[1].Body)
}

func TestSplit_MultipleJSBlocksConcatenateInOrder(t *testing.T) {
	src := "---js\n" +
		"let a = 1\n" +
		"---\n" +
		"<p>{a}</p>\n" +
		"---js\n" +
		"let b = 2\n" +
		"---\n"
	h := handler.New(src, "test.decor")
	s := fence.Split(src, h)

	require.False(t, h.HasErrors())
	assert.Equal(t, "let a = 1\nlet b = 2", s.Source(fence.LangJS))
}

func TestSplit_ForeignBlockIsIdentified(t *testing.T) {
	src := "---rust\n" +
		"#[no_mangle]\n" +
		"pub fn add(a: i32, b: i32) -> i32 { a + b }\n" +
		"---\n" +
		"<p>hi</p>\n"
	h := handler.New(src, "test.decor")
	s := fence.Split(src, h)

	require.False(t, h.HasErrors())
	blk, ok := s.Foreign()
	require.True(t, ok)
	assert.Equal(t, fence.LangRust, blk.Lang)
}

func TestSplit_DuplicateForeignBlockIsAnError(t *testing.T) {
	src := "---rust\n" +
		"fn a() {}\n" +
		"---\n" +
		"---zig\n" +
		"fn b() void {}\n" +
		"---\n"
	h := handler.New(src, "test.decor")
	fence.Split(src, h)

	require.True(t, h.HasErrors())
	errs := h.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, loc.ERROR_DUPLICATE_LANG_BLOCK, errs[0].Code)
}

func TestSplit_DuplicateSameForeignLangIsAnError(t *testing.T) {
	src := "---rust\n" +
		"fn a() {}\n" +
		"---\n" +
		"---rust\n" +
		"fn b() {}\n" +
		"---\n"
	h := handler.New(src, "test.decor")
	fence.Split(src, h)

	assert.True(t, h.HasErrors())
}

func TestSplit_UnknownFenceLang(t *testing.T) {
	src := "---python\n" +
		"print('hi')\n" +
		"---\n"
	h := handler.New(src, "test.decor")
	fence.Split(src, h)

	require.True(t, h.HasErrors())
	errs := h.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, loc.ERROR_UNKNOWN_FENCE_LANG, errs[0].Code)
}

func TestSplit_UnterminatedFence(t *testing.T) {
	src := "---js\n" +
		"let count = 0\n"
	h := handler.New(src, "test.decor")
	fence.Split(src, h)

	require.True(t, h.HasErrors())
	errs := h.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, loc.ERROR_UNTERMINATED_FENCE, errs[0].Code)
}

func TestSplit_MarkupExcludesFencedBlocks(t *testing.T) {
	src := "---js\n" +
		"let count = 0\n" +
		"---\n" +
		"<p>{count}</p>\n"
	h := handler.New(src, "test.decor")
	s := fence.Split(src, h)

	require.False(t, h.HasErrors())
	assert.NotContains(t, s.MarkupText, "let count")
	assert.Contains(t, s.MarkupText, "<p>{count}</p>")
}
