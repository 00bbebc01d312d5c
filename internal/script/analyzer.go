// Package script implements the script analyzer (spec §4.3): classifying
// each top-level `let`/`var` declaration in a component's script block as
// reactive or inert, extracting the dependency set of every observer-site
// expression (template interpolations, attribute binds, block conditions,
// `for` iterables), and flagging reactivity cycles.
//
// Parsing is real, not heuristic: every JS block is parsed with
// smacker/go-tree-sitter's javascript grammar (the teacher's own
// js_scanner.go only scans for import/export/prop hints with a hand
// rolled byte scanner, which is not enough to resolve free identifiers
// through nested scopes). Bindings are represented as indices into
// Analysis.Bindings, never as direct tree.Node references, so the symbol
// table and the expression tree do not cyclically own one another (spec
// §9: "represent bindings as indices into a flat table").
package script

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/loc"
)

// Binding is one top-level `let`/`var` declaration tracked by the
// analyzer. Index is its position in Analysis.Bindings, which is also
// its source-declaration order (spec §9: "deterministic codegen ...
// ordered by source position").
type Binding struct {
	// Init is the declarator's initializer source text ("0" for
	// `let counter = 0`), used by the printer's ctx initializer (spec
	// §4.7 "computes initial values of every reactive binding"). Empty
	// when the declarator has no initializer or binds via a destructuring
	// pattern (the printer falls back to `undefined` in that case).
	Name     string
	Loc      loc.Loc
	Reactive bool
	Init     string
}

// Analysis is the script analyzer's output for one component's
// concatenated JS source (spec §4.1: "multiple js blocks are
// concatenated in source order" before analysis).
type Analysis struct {
	Source string
	// Bindings holds every top-level `let`/`var` declarator, in source
	// order (the reactive/inert classified subset).
	Bindings []*Binding
	// Consts holds every top-level `const` declarator, kept apart from
	// Bindings since a const can never be reactive (spec §4.3); the
	// printer still needs its name and initializer text to re-declare it
	// in generated JS, for an anchor/handler expression that reads one.
	Consts []*Binding
	byName map[string]*Binding
	// Graph relates reactive bindings by handler write/read pairs (spec
	// §4.3 "cycle check" and §9 "represent the graph with node indices
	// into a flat table").
	Graph *Graph
}

// BindingIndex returns the index of the binding named name in
// Analysis.Bindings, or -1 if name is not a tracked top-level binding.
func (a *Analysis) BindingIndex(name string) int {
	b, ok := a.byName[name]
	if !ok {
		return -1
	}
	for i, other := range a.Bindings {
		if other == b {
			return i
		}
	}
	return -1
}

// Dependencies parses a standalone expression (an anchor's interpolation
// body, an attribute's bound expression, a block's condition or
// iterable) and returns the names of every reactive binding it reads
// (spec §4.3 "dependency extraction"). Free identifiers that resolve to
// neither a tracked binding nor a JS global are reported on h as
// UndefinedReactiveBinding.
func (a *Analysis) Dependencies(expr string, at loc.Loc, h *handler.Handler) []string {
	tree := parseJS(wrapExpression(expr))
	if tree == nil {
		return nil
	}
	defer tree.Close()

	names := map[string]bool{}
	src := []byte(wrapExpression(expr))
	collectFreeIdentifiers(tree.RootNode(), src, map[string]bool{}, names)

	var deps []string
	for name := range names {
		b, ok := a.byName[name]
		switch {
		case ok && b.Reactive:
			deps = append(deps, name)
		case ok:
			// Known but inert: reads it, never a trigger.
		case knownGlobals[name]:
			// Not a component binding at all.
		default:
			h.AppendError(decor.UndefinedReactiveBinding(name, at))
		}
	}
	return deps
}

// WriteSet parses a standalone handler-body expression and returns the
// names of every reactive binding it assigns to, anywhere in the
// expression (spec §4.6 "handler write sets ... the set of context
// indices it assigns"). Unlike Dependencies, this does not descend into
// a nested function literal's own separately-analyzed body only when
// that literal is itself the handler being walked; since the handler
// expression passed in already is that literal, WriteSet walks its full
// body.
func (a *Analysis) WriteSet(expr string) []string {
	tree := parseJS(wrapExpression(expr))
	if tree == nil {
		return nil
	}
	defer tree.Close()

	src := []byte(wrapExpression(expr))
	names := map[string]bool{}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "assignment_expression", "augmented_assignment_expression":
			if left := n.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
				name := text(left, src)
				if b, ok := a.byName[name]; ok && b.Reactive {
					names[name] = true
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(tree.RootNode())

	writes := make([]string, 0, len(names))
	for name := range names {
		writes = append(writes, name)
	}
	return writes
}

// knownGlobals are identifiers Dependencies never flags as undefined
// even though they are not declared in the component's script block.
var knownGlobals = map[string]bool{
	"console": true, "window": true, "document": true, "Math": true,
	"JSON": true, "Promise": true, "Array": true, "Object": true,
	"String": true, "Number": true, "Boolean": true, "Date": true,
	"undefined": true, "NaN": true, "Infinity": true, "globalThis": true,
}

// Analyze parses source (the component's concatenated js blocks) and
// classifies every top-level `let`/`var` declaration, reporting
// UndefinedReactiveBinding, UnsupportedAssignment and ShadowedReactive on
// h. It never reports parse errors from the underlying grammar directly
// (unrecognized statements are preserved textually but simply do not
// participate in reactivity, per spec §4.3).
func Analyze(source string, h *handler.Handler) *Analysis {
	a := &Analysis{Source: source, byName: map[string]*Binding{}}

	tree := parseJS(source)
	if tree == nil {
		return a
	}
	defer tree.Close()
	root := tree.RootNode()
	src := []byte(source)

	collectTopLevelBindings(root, src, a, h)
	collectTopLevelConsts(root, src, a)
	classifyReactivity(root, src, a, h)

	a.Graph = buildDependencyGraph(root, src, a)
	if cycle, found := a.Graph.DetectCycle(); found {
		h.AppendError(decor.ReactivityCycle(cycle, loc.Loc{Start: 0}))
	}
	return a
}

// parseJS parses source with the JavaScript grammar, returning nil on a
// nil/empty buffer rather than a tree with no root.
func parseJS(source string) *sitter.Tree {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil {
		return nil
	}
	return tree
}

// wrapExpression wraps a bare expression in a parenthesized expression
// statement so the grammar accepts it as a standalone program.
func wrapExpression(expr string) string {
	return "(" + expr + ");"
}

func text(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

func nodeLoc(n *sitter.Node) loc.Loc {
	return loc.Loc{Start: int(n.StartByte())}
}

// collectTopLevelBindings is pass 1 (spec §9): find every `let`/`var`
// declarator directly inside the program, including destructuring
// patterns, and register one Binding per extracted name. `const` is
// never reactive (it cannot be reassigned) and is intentionally not
// tracked.
func collectTopLevelBindings(root *sitter.Node, src []byte, a *Analysis, h *handler.Handler) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if !isMutableDeclaration(child, src) {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			declarator := child.NamedChild(j)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			nameNode := declarator.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			collectPatternNames(nameNode, src, a, h)
			if nameNode.Type() == "identifier" {
				if value := declarator.ChildByFieldName("value"); value != nil {
					if b, ok := a.byName[text(nameNode, src)]; ok {
						b.Init = text(value, src)
					}
				}
			}
		}
	}
}

// isMutableDeclaration reports whether n is a `let ...` or `var ...`
// declaration (as opposed to `const`, which the grammar also represents
// as lexical_declaration but keyed off its own leading keyword text).
func isMutableDeclaration(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "variable_declaration":
		return true
	case "lexical_declaration":
		kw := n.Child(0)
		return kw != nil && text(kw, src) == "let"
	}
	return false
}

// collectTopLevelConsts registers `const` declarations into byName and
// Consts (never into Bindings), so Dependencies can still resolve a markup site
// reading a computed-once constant without Dependencies treating it as
// undefined, while the planner — which only ever walks Bindings — never
// sees a binding that can't possibly become reactive.
func collectTopLevelConsts(root *sitter.Node, src []byte, a *Analysis) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "lexical_declaration" {
			continue
		}
		kw := child.Child(0)
		if kw == nil || text(kw, src) != "const" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			declarator := child.NamedChild(j)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			nameNode := declarator.ChildByFieldName("name")
			if nameNode == nil || nameNode.Type() != "identifier" {
				continue
			}
			name := text(nameNode, src)
			if _, exists := a.byName[name]; exists {
				continue
			}
			b := &Binding{Name: name, Loc: nodeLoc(nameNode)}
			if value := declarator.ChildByFieldName("value"); value != nil {
				b.Init = text(value, src)
			}
			a.byName[name] = b
			a.Consts = append(a.Consts, b)
		}
	}
}

// collectPatternNames registers one Binding per name bound by a
// declarator's left-hand pattern: a bare identifier, or every leaf name
// in an object/array destructuring pattern (spec §4.3: "destructuring at
// top level introduces one binding per extracted name").
func collectPatternNames(n *sitter.Node, src []byte, a *Analysis, h *handler.Handler) {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		name := text(n, src)
		if _, exists := a.byName[name]; exists {
			return
		}
		b := &Binding{Name: name, Loc: nodeLoc(n)}
		a.Bindings = append(a.Bindings, b)
		a.byName[name] = b
	case "object_pattern", "array_pattern":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "shorthand_property_identifier_pattern", "identifier":
				collectPatternNames(child, src, a, h)
			case "pair_pattern":
				if value := child.ChildByFieldName("value"); value != nil {
					collectPatternNames(value, src, a, h)
				}
			case "assignment_pattern":
				if left := child.ChildByFieldName("left"); left != nil {
					collectPatternNames(left, src, a, h)
				}
			default:
				collectPatternNames(child, src, a, h)
			}
		}
	default:
		h.AppendError(decor.UnsupportedAssignment(text(n, src), nodeLoc(n)))
	}
}

// classifyReactivity is pass 2 (spec §4.3 "classification"): walk every
// statement looking for assignments, marking the assigned binding
// reactive only when the assignment is textually nested inside a
// function body (any function literal or declaration of the script
// block). Assignments made directly at the top level are
// initialization, not reactivity triggers. Markup event-handler
// expressions are not walked here, so an assignment made only in one
// does not make its binding reactive.
func classifyReactivity(root *sitter.Node, src []byte, a *Analysis, h *handler.Handler) {
	walkAssignments(root, src, a, h, []scope{newScope(nil)}, false)
}

// scope is one lexical scope's locally declared names, used to detect
// shadowing of a top-level reactive binding (spec §4.3: "shadowed inner
// declarations do not propagate").
type scope struct {
	names map[string]bool
}

func newScope(names map[string]bool) scope {
	if names == nil {
		names = map[string]bool{}
	}
	return scope{names: names}
}

func shadowed(stack []scope, name string) bool {
	// Skip the outermost (program) scope: a name declared there is the
	// tracked top-level binding itself, not a shadow of it.
	for i := len(stack) - 1; i >= 1; i-- {
		if stack[i].names[name] {
			return true
		}
	}
	return false
}

func walkAssignments(n *sitter.Node, src []byte, a *Analysis, h *handler.Handler, stack []scope, insideFunction bool) {
	switch n.Type() {
	case "arrow_function", "function_expression", "function_declaration", "method_definition":
		insideFunction = true
	case "statement_block", "for_statement", "for_in_statement", "catch_clause":
		stack = append(stack, newScope(localDeclarations(n, src)))
	}

	switch n.Type() {
	case "assignment_expression", "augmented_assignment_expression":
		left := n.ChildByFieldName("left")
		if left != nil && left.Type() == "identifier" {
			name := text(left, src)
			if shadowed(stack, name) {
				if _, tracked := a.byName[name]; tracked {
					h.AppendError(decor.ShadowedReactive(name, nodeLoc(left)))
				}
			} else if b, ok := a.byName[name]; ok {
				if insideFunction {
					b.Reactive = true
				}
			}
		} else if left != nil && (left.Type() == "object_pattern" || left.Type() == "array_pattern") {
			h.AppendError(decor.UnsupportedAssignment(text(left, src), nodeLoc(left)))
		}
	case "call_expression":
		checkMutationCall(n, src, a, h)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkAssignments(n.NamedChild(i), src, a, h, stack, insideFunction)
	}
}

// localDeclarations collects the names a statement_block/for-loop/catch
// clause declares directly (not recursively), for shadow detection.
func localDeclarations(n *sitter.Node, src []byte) map[string]bool {
	names := map[string]bool{}
	add := func(pattern *sitter.Node) {
		if pattern == nil {
			return
		}
		tmp := &Analysis{byName: map[string]*Binding{}}
		collectPatternNames(pattern, src, tmp, handler.New("", ""))
		for name := range tmp.byName {
			names[name] = true
		}
	}

	if n.Type() == "catch_clause" {
		if param := n.ChildByFieldName("parameter"); param != nil {
			add(param)
		}
		return names
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "lexical_declaration" && child.Type() != "variable_declaration" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			declarator := child.NamedChild(j)
			if declarator.Type() == "variable_declarator" {
				add(declarator.ChildByFieldName("name"))
			}
		}
	}
	return names
}

var mutatingMethods = map[string]bool{
	"push": true, "pop": true, "shift": true, "unshift": true,
	"splice": true, "sort": true, "reverse": true, "fill": true,
	"copyWithin": true, "set": true, "delete": true, "add": true, "clear": true,
}

// checkMutationCall reports MutationNotReassignment when a handler calls
// an in-place mutating method on a tracked binding (spec §4.3
// "assignment detection": "stuff.push(x) is not [a tracked reassignment]").
func checkMutationCall(n *sitter.Node, src []byte, a *Analysis, h *handler.Handler) {
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Type() != "member_expression" {
		return
	}
	obj := fn.ChildByFieldName("object")
	prop := fn.ChildByFieldName("property")
	if obj == nil || prop == nil || obj.Type() != "identifier" {
		return
	}
	name := text(obj, src)
	method := text(prop, src)
	if _, ok := a.byName[name]; ok && mutatingMethods[method] {
		h.AppendWarning(decor.MutationNotReassignment(name, method, nodeLoc(n)))
	}
}

// collectFreeIdentifiers walks an expression tree collecting every
// identifier not bound by a locally-declared pattern (a parameter, a
// destructured loop variable, an inner `let`). declared accumulates
// bindings introduced further up the same expression (e.g. an arrow
// function's parameters shadow an outer read).
func collectFreeIdentifiers(n *sitter.Node, src []byte, declared map[string]bool, out map[string]bool) {
	switch n.Type() {
	case "identifier":
		name := text(n, src)
		if !declared[name] {
			out[name] = true
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
			collectFreeIdentifiers(obj, src, declared, out)
		}
		// The property name of a.b is not a free identifier read.
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectFreeIdentifiers(n.NamedChild(i), src, declared, out)
	}
}

func addParamNames(n *sitter.Node, src []byte, declared map[string]bool) {
	switch n.Type() {
	case "identifier":
		declared[text(n, src)] = true
	case "object_pattern", "array_pattern", "assignment_pattern":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			addParamNames(n.NamedChild(i), src, declared)
		}
	}
}

func cloneDeclared(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
