package printer

import (
	"strings"

	"github.com/dzfrias/decorous/internal/cssscope"
)

// PrintCSS renders a component's out.css artifact: every `css` fence
// block's source, concatenated in source order (spec §4.1, mirroring
// the `js` blocks' concatenation) and scoped to scopeToken (spec §4.4).
// Grounded on the teacher's PrintCSS (print-css.go), trimmed down to a
// single pass over already-concatenated source since Decorous scopes
// the whole style block at once rather than per `<style>` element.
func PrintCSS(source, scopeToken string) []byte {
	p := &printer{}
	if strings.TrimSpace(source) == "" {
		return p.bytes()
	}
	p.print(cssscope.Scope(source, scopeToken))
	return p.bytes()
}
