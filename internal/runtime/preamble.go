// Package runtime holds the fixed, normative JS runtime preamble emitted
// into every compiled component (spec §4.8/§6): a dirty byte-array, the
// scheduler, and the batching microtask. It is embedded as a template
// file rather than built with the teacher's own printer.p.println(...)
// string-concatenation idiom (internal/printer/printer.go), since this
// block is verbatim and multi-line end to end — a single text/template
// execution over an embedded file reads more naturally here than a long
// chain of p.println calls, while every other, per-component generated
// section still goes through that println idiom in internal/printer.
package runtime

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed preamble.js.tmpl
var preambleSource string

var preambleTemplate = template.Must(template.New("preamble").Parse(preambleSource))

// Preamble holds the three per-component generated sections that fill
// the fixed template's placeholders (spec §4.7 "JS emission").
type Preamble struct {
	// NBytes is ⌈N/8⌉, the dirty bitset's byte length.
	NBytes int
	// Elems is the comma-separated `elems` array body.
	Elems string
	// CtxBody is `__init_ctx`'s body: a `return [...]` statement.
	CtxBody string
	// UpdateBody is `__update`'s body: one `if (dirty[...] & mask)` guard
	// per anchor, in document order.
	UpdateBody string
}

// Render fills the normative template with p's generated sections.
func Render(p Preamble) string {
	var b strings.Builder
	// template.Execute on a fixed, compile-time-checked template never
	// fails for a struct argument with no method calls in the template.
	_ = preambleTemplate.Execute(&b, struct {
		NBytes     int
		Elems      string
		CtxBody    string
		UpdateBody string
	}{p.NBytes, p.Elems, p.CtxBody, p.UpdateBody})
	return b.String()
}
