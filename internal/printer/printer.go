// Package printer implements the code emitter (spec §4.7): it turns a
// parsed component (markup tree, script analysis, plan, scoped CSS,
// optional Wasm manifest) into the four output artifacts named in spec
// §6 — out.html, out.js/out.mjs, out.css, plus a build manifest for
// tooling.
//
// It keeps the teacher's own printer idiom (a `printer` struct
// accumulating into a byte slice via `print`/`printf`/`println`) but
// drops everything downstream of that idiom that was specific to
// Astro's component-to-JSX compilation: `$$createComponent`/
// `$$renderComponent` runtime calls, hydration directive metadata,
// sourcemap chunk building. Decorous's output has no analogous
// server-render-to-string runtime to call into, and no sourcemap
// requirement in spec.md, so neither survives here.
package printer

import (
	"fmt"
	"strings"
)

// printer accumulates one output artifact's text as it is generated,
// the same append-only buffer idiom as the teacher's internal/printer.
type printer struct {
	output []byte
}

func (p *printer) print(text string) {
	p.output = append(p.output, text...)
}

func (p *printer) printf(format string, a ...interface{}) {
	p.print(fmt.Sprintf(format, a...))
}

func (p *printer) println(text string) {
	p.print(text + "\n")
}

func (p *printer) bytes() []byte {
	return p.output
}

func indent(text string, n int) string {
	pad := strings.Repeat("  ", n)
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
