// Package fence implements the source splitter (spec §4.1): it slices a
// raw .decor file into its fenced language blocks plus the markup body
// that sits outside every fence. It is grounded on the teacher's
// FrontmatterFenceToken/FrontmatterState handling in the pre-split
// internal/token.go tokenizer, narrowed to a standalone line-oriented
// scanner (Decorous splits *before* tokenizing markup, rather than
// folding fence recognition into the markup tokenizer itself, since a
// .decor file may carry several distinct fenced languages instead of a
// single frontmatter block).
package fence

import (
	"strings"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/loc"
)

// Lang is a recognized fence language identifier (spec §6 "Input format").
type Lang string

const (
	LangC     Lang = "c"
	LangCpp   Lang = "cpp"
	LangRust  Lang = "rust"
	LangGo    Lang = "go"
	LangTiny  Lang = "tinygo"
	LangWat   Lang = "wat"
	LangZig   Lang = "zig"
	LangJS    Lang = "js"
	LangCSS   Lang = "css"
)

var knownLangs = map[Lang]bool{
	LangC: true, LangCpp: true, LangRust: true, LangGo: true,
	LangTiny: true, LangWat: true, LangZig: true, LangJS: true, LangCSS: true,
}

// foreignLangs are the single-instance-only languages (spec §4.1:
// "multiple foreign-language blocks are an error").
var foreignLangs = map[Lang]bool{
	LangC: true, LangCpp: true, LangRust: true, LangGo: true,
	LangTiny: true, LangWat: true, LangZig: true,
}

// Block is one fenced language block extracted from a .decor file.
type Block struct {
	Lang Lang
	Span loc.Range
	Body string
}

// Split is the result of the source splitter: the ordered fenced blocks
// plus the markup text left over outside every fence. MarkupText is the
// concatenation of every span outside a fence, in source order — a
// .decor file can interleave markup between several fenced blocks, so
// unlike a Block's Span this has no single contiguous loc.Range into the
// original source to describe it.
type Split struct {
	Blocks     []Block
	MarkupText string
}

// Source concatenates, in source order and newline-separated, every
// block of the given lang in the split (spec §4.1: "multiple js blocks
// are concatenated in source order"); it serves the js and css blocks.
func (s *Split) Source(lang Lang) string {
	var b strings.Builder
	for _, blk := range s.Blocks {
		if blk.Lang == lang {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(blk.Body)
		}
	}
	return b.String()
}

// Foreign returns the component's single foreign-language build block, if
// any (spec §4.5 - at most one non-JS/CSS block survives Split, since a
// second one is rejected as DuplicateLangBlock during splitting).
func (s *Split) Foreign() (Block, bool) {
	for _, blk := range s.Blocks {
		if foreignLangs[blk.Lang] {
			return blk, true
		}
	}
	return Block{}, false
}

const fenceMarker = "---"

// Split scans source for `---<lang>` / `---` fenced blocks, returning
// every block found plus the markup text outside all fences. It reports
// UnterminatedFence, DuplicateLangBlock and UnknownFenceLang on h and
// keeps scanning past a malformed fence so later errors can still surface
// (spec §7: "parser and analyzer collect multiple errors per phase").
func Split(source string, h *handler.Handler) *Split {
	result := &Split{}
	seenForeign := false

	pos := 0
	markupStart := 0
	var markup strings.Builder

	for pos < len(source) {
		lineEnd := indexFrom(source, pos, '\n')
		line := source[pos:lineEnd]
		trimmed := strings.TrimRight(line, "\r")

		if strings.HasPrefix(trimmed, fenceMarker) && len(strings.TrimSpace(trimmed)) > len(fenceMarker) {
			langName := strings.TrimSpace(trimmed[len(fenceMarker):])
			lang := Lang(strings.ToLower(langName))
			openLoc := loc.Loc{Start: pos}

			if !knownLangs[lang] {
				h.AppendError(decor.UnknownFenceLang(langName, openLoc))
				pos = lineEnd + 1
				continue
			}

			markup.WriteString(source[markupStart:pos])

			bodyStart := lineEnd + 1
			closeLine, closeEnd, ok := findClosingFence(source, bodyStart)
			if !ok {
				h.AppendError(decor.UnterminatedFence(langName, openLoc))
				markupStart = len(source)
				pos = len(source)
				break
			}

			body := source[bodyStart:closeLine]
			body = strings.TrimSuffix(body, "\n")

			if foreignLangs[lang] {
				if seenForeign {
					h.AppendError(decor.DuplicateLangBlock(string(lang), openLoc))
				}
				seenForeign = true
			}

			result.Blocks = append(result.Blocks, Block{
				Lang: lang,
				Span: loc.Range{Loc: openLoc, Len: closeEnd - pos},
				Body: body,
			})

			pos = closeEnd
			markupStart = pos
			continue
		}

		pos = lineEnd + 1
	}

	markup.WriteString(source[markupStart:])
	result.MarkupText = markup.String()
	return result
}

// findClosingFence locates the bare "---" line terminating a fence opened
// at bodyStart, returning the offset of that line's start and the offset
// just past its trailing newline.
func findClosingFence(source string, bodyStart int) (closeLine, closeEnd int, ok bool) {
	pos := bodyStart
	for pos < len(source) {
		lineEnd := indexFrom(source, pos, '\n')
		line := strings.TrimRight(source[pos:lineEnd], "\r")
		if strings.TrimSpace(line) == fenceMarker {
			end := lineEnd
			if end < len(source) {
				end++
			}
			return pos, end, true
		}
		pos = lineEnd + 1
	}
	return 0, 0, false
}

// indexFrom returns the index of the next occurrence of c at or after
// pos, or len(source) if there is none (treating EOF as an implicit
// line terminator, the way the teacher's tokenizer treats EOF in
// skipWhiteSpace).
func indexFrom(source string, pos int, c byte) int {
	i := strings.IndexByte(source[pos:], c)
	if i < 0 {
		return len(source)
	}
	return pos + i
}
