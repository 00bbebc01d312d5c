package script

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// FoldConstant attempts to evaluate expr to a literal string value using
// only its const/inert reads and literal syntax (spec §8 "an anchor with
// no dependencies must not exist; it would be emitted as static text").
// It supports the subset of expressions a compile-time fold can actually
// resolve without a real JS evaluator: string/number/boolean/template
// literals, a parenthesized sub-expression, string-concatenating `+`,
// and identifiers that resolve to a const or inert binding (folded
// recursively through their own initializer). Anything else — a
// function call, member access, an array/object literal, an arithmetic
// operator other than `+` — reports ok=false so the caller keeps the
// expression as a live (if trigger-less) anchor instead.
func (a *Analysis) FoldConstant(expr string) (string, bool) {
	tree := parseJS(wrapExpression(expr))
	if tree == nil {
		return "", false
	}
	defer tree.Close()
	src := []byte(wrapExpression(expr))

	root := tree.RootNode()
	if root.NamedChildCount() == 0 {
		return "", false
	}
	stmt := root.NamedChild(0)
	if stmt.NamedChildCount() == 0 {
		return "", false
	}
	return a.foldNode(stmt.NamedChild(0), src, map[string]bool{})
}

func (a *Analysis) foldNode(n *sitter.Node, src []byte, seen map[string]bool) (string, bool) {
	switch n.Type() {
	case "string":
		return unquoteJSString(text(n, src)), true
	case "number":
		return text(n, src), true
	case "true", "false", "null":
		return text(n, src), true
	case "identifier":
		return a.foldIdentifier(text(n, src), src, seen)
	case "parenthesized_expression":
		if inner := firstNamedChild(n); inner != nil {
			return a.foldNode(inner, src, seen)
		}
	case "template_string":
		return a.foldTemplateString(n, src, seen)
	case "binary_expression":
		return a.foldBinaryPlus(n, src, seen)
	}
	return "", false
}

func (a *Analysis) foldIdentifier(name string, src []byte, seen map[string]bool) (string, bool) {
	if name == "undefined" {
		return "undefined", true
	}
	b, ok := a.byName[name]
	if !ok || b.Reactive || b.Init == "" || seen[name] {
		return "", false
	}
	seen = cloneSeen(seen)
	seen[name] = true

	tree := parseJS(wrapExpression(b.Init))
	if tree == nil {
		return "", false
	}
	defer tree.Close()
	initSrc := []byte(wrapExpression(b.Init))
	root := tree.RootNode()
	if root.NamedChildCount() == 0 || root.NamedChild(0).NamedChildCount() == 0 {
		return "", false
	}
	return a.foldNode(root.NamedChild(0).NamedChild(0), initSrc, seen)
}

func (a *Analysis) foldTemplateString(n *sitter.Node, src []byte, seen map[string]bool) (string, bool) {
	var sb strings.Builder
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "`":
			continue
		case "template_substitution":
			expr := firstNamedChild(child)
			if expr == nil {
				return "", false
			}
			val, ok := a.foldNode(expr, src, seen)
			if !ok {
				return "", false
			}
			sb.WriteString(val)
		default:
			sb.WriteString(text(child, src))
		}
	}
	return sb.String(), true
}

func (a *Analysis) foldBinaryPlus(n *sitter.Node, src []byte, seen map[string]bool) (string, bool) {
	op := n.ChildByFieldName("operator")
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if op == nil || left == nil || right == nil || text(op, src) != "+" {
		return "", false
	}
	lv, ok := a.foldNode(left, src, seen)
	if !ok {
		return "", false
	}
	rv, ok := a.foldNode(right, src, seen)
	if !ok {
		return "", false
	}
	return lv + rv, true
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

func cloneSeen(seen map[string]bool) map[string]bool {
	next := make(map[string]bool, len(seen)+1)
	for k := range seen {
		next[k] = true
	}
	return next
}

// unquoteJSString strips a string literal's surrounding quotes and
// resolves the handful of escape sequences common in markup-bound
// constants; anything more exotic (unicode escapes, etc.) is passed
// through byte-for-byte rather than rejected, since a best-effort fold
// is still strictly better than the dead anchor it replaces.
func unquoteJSString(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	replacer := strings.NewReplacer(
		`\'`, `'`,
		`\"`, `"`,
		"\\`", "`",
		`\n`, "\n",
		`\t`, "\t",
		`\\`, `\`,
	)
	return replacer.Replace(inner)
}
