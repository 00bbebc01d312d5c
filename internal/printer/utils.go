package printer

import "strings"

// escapeHTMLText escapes the characters HTML5 text content requires
// escaped (spec §4.7 "emitting static text ... verbatim" still needs
// this much, or a literal `<` in markup text would reopen a tag).
func escapeHTMLText(src string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(src)
}

// escapeHTMLAttr escapes a double-quoted HTML attribute value, the same
// minimal set the teacher's own printer.go escapes in printAttribute.
func escapeHTMLAttr(src string) string {
	r := strings.NewReplacer("&", "&amp;", `"`, "&quot;")
	return r.Replace(src)
}

// escapeBackticks escapes backtick characters for JS template literal
// text, kept from the teacher's own utils.go escapeBackticks.
func escapeBackticks(src string) string {
	return strings.ReplaceAll(src, "`", "\\`")
}

// escapeInterpolation escapes a literal `${` inside JS template literal
// text so it is not read back as an interpolation, kept from the
// teacher's own utils.go escapeInterpolation.
func escapeInterpolation(src string) string {
	return strings.ReplaceAll(src, "${", "\\${")
}

func escapeTemplateLiteralText(src string) string {
	return escapeInterpolation(escapeBackticks(src))
}

// escapeSingleQuote escapes a single-quoted JS string literal's
// contents, kept from the teacher's own utils.go escapeSingleQuote.
func escapeSingleQuote(src string) string {
	return strings.ReplaceAll(src, "'", "\\'")
}
