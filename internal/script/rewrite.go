package script

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// RewriteHandler rewrites every top-level assignment to a reactive
// binding within a handler-body expression into a
// `__schedule_update(idx, value)` call (spec §4.7 "Handler bodies are
// rewritten so every assignment to a reactive binding X becomes
// __schedule_update(<idx_X>, <new_value>)"). resolve maps a reactive
// binding name to its planner-assigned context index; names resolve
// returns false for (inert bindings, consts, globals) are left
// untouched. Walks the same wrapped-expression tree-sitter parse WriteSet
// uses, splicing byte ranges rather than re-serializing the tree, so
// untouched subexpressions keep their exact original source text.
func (a *Analysis) RewriteHandler(expr string, resolve func(name string) (int, bool)) string {
	wrapped := wrapExpression(expr)
	tree := parseJS(wrapped)
	if tree == nil {
		return expr
	}
	defer tree.Close()

	src := []byte(wrapped)
	type splice struct {
		start, end int
		text       string
	}
	var splices []splice

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "assignment_expression":
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left != nil && left.Type() == "identifier" && right != nil {
				name := text(left, src)
				if b, ok := a.byName[name]; ok && b.Reactive {
					if idx, ok := resolve(name); ok {
						splices = append(splices, splice{
							start: int(n.StartByte()),
							end:   int(n.EndByte()),
							text:  "__schedule_update(" + strconv.Itoa(idx) + "," + text(right, src) + ")",
						})
						return
					}
				}
			}
		case "augmented_assignment_expression":
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			op := n.ChildByFieldName("operator")
			if left != nil && left.Type() == "identifier" && right != nil && op != nil {
				name := text(left, src)
				if b, ok := a.byName[name]; ok && b.Reactive {
					if idx, ok := resolve(name); ok {
						binOp := augmentedToBinary(text(op, src))
						splices = append(splices, splice{
							start: int(n.StartByte()),
							end:   int(n.EndByte()),
							text:  "__schedule_update(" + strconv.Itoa(idx) + "," + name + binOp + "(" + text(right, src) + "))",
						})
						return
					}
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(tree.RootNode())

	if len(splices) == 0 {
		return expr
	}

	// Splices are collected in document order already (pre-order walk
	// visits a statement's assignment before any later one); apply them
	// back-to-front so earlier byte offsets stay valid.
	out := append([]byte{}, src...)
	for i := len(splices) - 1; i >= 0; i-- {
		s := splices[i]
		rebuilt := append([]byte{}, out[:s.start]...)
		rebuilt = append(rebuilt, []byte(s.text)...)
		rebuilt = append(rebuilt, out[s.end:]...)
		out = rebuilt
	}

	// Unwrap the "(" ... ");" wrapper applied by wrapExpression.
	result := string(out)
	result = trimWrap(result)
	return result
}

// Substitute replaces every free read of a reactive binding in expr with
// a `ctx[idx]` lookup (spec §4.7 "__update(dirty) body ... the
// recomputation"), so a printed anchor's recomputation expression reads
// live values out of the runtime's context array instead of the
// declared variable name. Non-reactive identifiers (consts, globals,
// inert bindings, locally-bound parameters) are left untouched.
func (a *Analysis) Substitute(expr string, resolve func(name string) (int, bool)) string {
	wrapped := wrapExpression(expr)
	tree := parseJS(wrapped)
	if tree == nil {
		return expr
	}
	defer tree.Close()
	src := []byte(wrapped)

	type occurrence struct{ start, end int }
	var occs []occurrence

	var walk func(n *sitter.Node, declared map[string]bool)
	walk = func(n *sitter.Node, declared map[string]bool) {
		switch n.Type() {
		case "identifier":
			name := text(n, src)
			if !declared[name] {
				if _, ok := resolve(name); ok {
					occs = append(occs, occurrence{int(n.StartByte()), int(n.EndByte())})
				}
			}
			return
		case "arrow_function", "function_expression":
			declared = cloneDeclared(declared)
			if params := n.ChildByFieldName("parameters"); params != nil {
				for i := 0; i < int(params.NamedChildCount()); i++ {
					addParamNames(params.NamedChild(i), src, declared)
				}
			} else if param := n.ChildByFieldName("parameter"); param != nil {
				addParamNames(param, src, declared)
			}
		case "member_expression":
			if obj := n.ChildByFieldName("object"); obj != nil {
				walk(obj, declared)
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i), declared)
		}
	}
	walk(tree.RootNode(), map[string]bool{})

	if len(occs) == 0 {
		return expr
	}

	out := append([]byte{}, src...)
	for i := len(occs) - 1; i >= 0; i-- {
		o := occs[i]
		name := string(src[o.start:o.end])
		idx, _ := resolve(name)
		replacement := "ctx[" + strconv.Itoa(idx) + "]"
		rebuilt := append([]byte{}, out[:o.start]...)
		rebuilt = append(rebuilt, []byte(replacement)...)
		rebuilt = append(rebuilt, out[o.end:]...)
		out = rebuilt
	}
	return trimWrap(string(out))
}

func augmentedToBinary(op string) string {
	if len(op) > 0 && op[len(op)-1] == '=' {
		return op[:len(op)-1]
	}
	return op
}

func trimWrap(s string) string {
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ");")
	return s
}
