package loc

import "fmt"

// ErrorWithRange is a diagnosable error carrying the byte range in the
// original source it applies to, the way the teacher's handler package
// expects every collected error to. Code is optional context used by
// callers that branch on error kind (e.g. the CLI's exit-code mapping).
type ErrorWithRange struct {
	Code       DiagnosticCode
	Text       string
	Hint       string
	Suggestion string
	Range      Range
}

func (e *ErrorWithRange) Error() string {
	return e.Text
}

// ToMessage resolves e into a DiagnosticMessage once the caller has
// computed a DiagnosticLocation for e.Range.Loc.
func (e *ErrorWithRange) ToMessage(location *DiagnosticLocation) DiagnosticMessage {
	return DiagnosticMessage{
		Code:       e.Code,
		Text:       e.Text,
		Hint:       e.Hint,
		Suggestion: e.Suggestion,
		Location:   location,
	}
}

// LineIndex resolves a byte offset into a 1-based line/column pair. It
// replaces the teacher's sourcemap.ChunkBuilder (which additionally built
// VLQ source-map chunks for emitted JS); Decorous's JS is synthesized from
// the reactive graph rather than transformed token-for-token from source,
// so there is nothing meaningful to source-map and only line/column
// resolution is kept.
type LineIndex struct {
	offsets []int
}

// NewLineIndex precomputes the byte offset of the start of every line in
// source, so repeated lookups during diagnostic rendering are O(log n).
func NewLineIndex(source string) *LineIndex {
	offsets := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return &LineIndex{offsets: offsets}
}

// Position returns the 1-based line and column for a byte offset.
func (idx *LineIndex) Position(start int) (line, col int) {
	lo, hi := 0, len(idx.offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if idx.offsets[mid] <= start {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, start - idx.offsets[lo] + 1
}

func (idx *LineIndex) String() string {
	return fmt.Sprintf("LineIndex{%d lines}", len(idx.offsets))
}
