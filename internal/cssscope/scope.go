// Package cssscope rewrites a component's style block so every selector
// is isolated to that component (spec §4.4).
package cssscope

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// neverScoped mirrors elements that CSS scoping must never touch:
// html/body act as document-wide roots, and a bare "*" inside a
// selector list is the only selector scoping turns into the qualifier
// itself rather than appending to.
var neverScoped = map[string]bool{
	"html": true,
	"body": true,
}

// Scope parses source as a single component's CSS and appends the
// attribute qualifier `[data-scope="token"]` to the right-most simple
// selector of every complex selector in every ruleset's selector list.
// `@media`/`@font-face` preludes pass through unscoped; their nested
// rulesets are scoped recursively since the underlying tokenizer
// reports them as ordinary BeginRulesetGrammar events at the same
// depth. `@keyframes` preludes pass through, and the percentage/
// from/to selectors of their nested rules are left untouched.
func Scope(source, token string) string {
	qualifier := `[data-scope="` + token + `"]`
	p := css.NewParser(parse.NewInput(strings.NewReader(source)), false)

	var out strings.Builder
	isKeyframes := false
	keyframeDepth := 0

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if len(data) > 0 {
				out.Write(data)
			}
			return out.String()
		case css.CommentGrammar:
			out.Write(data)
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			out.WriteByte('}')
		case css.AtRuleGrammar:
			out.Write(data)
			for _, v := range p.Values() {
				out.Write(v.Data)
			}
			out.WriteByte(';')
		case css.BeginAtRuleGrammar:
			out.Write(data)
			if string(data) == "@keyframes" {
				isKeyframes = true
				keyframeDepth = 0
			}
			for _, v := range p.Values() {
				out.Write(v.Data)
			}
			out.WriteByte('{')
		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			writeSelectorList(&out, p.Values(), qualifier, isKeyframes)
			switch gt {
			case css.BeginRulesetGrammar:
				out.WriteByte('{')
			case css.QualifiedRuleGrammar:
				out.WriteByte(',')
			}
		case css.DeclarationGrammar:
			out.Write(data)
			out.WriteByte(':')
			for _, v := range p.Values() {
				out.Write(v.Data)
			}
			out.WriteByte(';')
		default:
			out.Write(data)
			for _, v := range p.Values() {
				out.Write(v.Data)
			}
		}

		if isKeyframes {
			// BeginRulesetGrammar/EndRulesetGrammar bracket depth inside
			// @keyframes; the outer @keyframes block itself is closed by
			// an EndAtRuleGrammar once keyframeDepth returns to 0.
			switch gt {
			case css.BeginRulesetGrammar:
				keyframeDepth++
			case css.EndRulesetGrammar:
				keyframeDepth--
			case css.EndAtRuleGrammar:
				if keyframeDepth <= 0 {
					isKeyframes = false
				}
			}
		}
	}
}

// writeSelectorList appends qualifier to the right-most simple selector
// of every complex selector in a comma-separated selector list, unless
// inScopelessAtRule (i.e. we're inside @keyframes and these are
// percentage/from/to selectors, which are left untouched).
func writeSelectorList(out *strings.Builder, values []css.Token, qualifier string, inScopelessAtRule bool) {
	if inScopelessAtRule {
		for _, v := range values {
			out.Write(v.Data)
		}
		return
	}

	parens, brackets := 0, 0
	segmentStart := out.Len()
	isGlobalHead := false

	flushSegment := func() {
		if !isGlobalHead {
			out.WriteString(qualifier)
		}
		isGlobalHead = false
		segmentStart = out.Len()
	}
	isSeparator := func(t css.Token) bool {
		d := string(t.Data)
		return d == "," || d == ">" || d == "+" || d == "~"
	}

	for i, v := range values {
		s := string(v.Data)
		switch {
		case s == "(":
			parens++
			out.WriteString(s)
			continue
		case s == ")":
			parens--
			out.WriteString(s)
			continue
		case s == "[":
			brackets++
			out.WriteString(s)
			continue
		case s == "]":
			brackets--
			out.WriteString(s)
			continue
		}

		if parens > 0 || brackets > 0 {
			out.WriteString(s)
			continue
		}

		switch {
		case s == ",":
			flushSegment()
			out.WriteString(",")
		case v.TokenType == css.WhitespaceToken:
			// Whitespace between two compound selectors is the descendant
			// combinator: kept, and it starts a new segment without
			// qualifying the one before it. Whitespace at either end of
			// the list or beside a comma or an explicit combinator is
			// dropped.
			if i > 0 && i < len(values)-1 && !isSeparator(values[i-1]) && !isSeparator(values[i+1]) {
				out.WriteString(" ")
				isGlobalHead = false
				segmentStart = out.Len()
			}
		case s == ">" || s == "+" || s == "~":
			out.WriteString(s)
			isGlobalHead = false
			segmentStart = out.Len()
		case s == "*" && out.Len() == segmentStart:
			// bare universal selector becomes the qualifier alone, not
			// "*[data-scope=...]"
			isGlobalHead = false
		default:
			if s == "html" || s == "body" {
				if out.Len() == segmentStart && neverScoped[s] {
					isGlobalHead = true
				}
			}
			out.WriteString(s)
		}
	}
	flushSegment()
}
