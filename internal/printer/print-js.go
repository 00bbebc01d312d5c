package printer

import (
	"fmt"
	"strings"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/plan"
	"github.com/dzfrias/decorous/internal/runtime"
	"github.com/dzfrias/decorous/internal/script"
	"github.com/dzfrias/decorous/internal/wasmbuild"
)

// RenderMethod is the `-r/--render-method` CLI flag's value (spec §6).
type RenderMethod string

const (
	RenderDOM       RenderMethod = "dom"
	RenderCSR       RenderMethod = "csr"
	RenderPrerender RenderMethod = "prerender"
)

// JSOptions configures PrintJS's output shape (spec §4.7 "Modes").
type JSOptions struct {
	Method     RenderMethod
	Modularize bool
	// HTML is PrintHTML's output, embedded as an in-script template for
	// csr mode (spec §4.7: "csr: no HTML file; JS constructs the entire
	// tree"); unused for dom/prerender, which query the document the
	// separate out.html file already loaded.
	HTML string
	Wasm *wasmbuild.Manifest
}

// PrintJS renders a component's out.js/out.mjs artifact (spec §4.7): the
// fixed runtime preamble (internal/runtime) plus the three generated
// sections (ctx initializer, elems array, __update body), wrapped as
// either a DOMContentLoaded auto-run script or a `--modularize` ES
// module exporting `initialize(element)`.
func PrintJS(a *script.Analysis, pl *plan.Plan, blocks []BlockSpec, opts JSOptions) []byte {
	body := &printer{}
	body.println("var __host = (typeof element !== 'undefined' ? element : document);")
	printInertState(body, a)
	printBlockRenderers(body, blocks, a, pl)
	printRuntimeHelpers(body, opts)
	printHandlerTable(body, pl, a)
	if opts.Wasm != nil {
		printWasmLoader(body, *opts.Wasm)
	}

	preamble := runtime.Preamble{
		NBytes:     plan.MaskBytes(len(pl.ContextOrder)),
		Elems:      elemsExpr(opts.Method),
		CtxBody:    ctxBody(a, pl),
		UpdateBody: updateBody(a, pl, blocks),
	}
	body.print(runtime.Render(preamble))
	printBootstrapTrailer(body, opts)

	out := &printer{}
	if opts.Modularize {
		out.println("export default function initialize(element){")
		out.print(indent(string(body.bytes()), 1))
		out.println("}")
	} else {
		out.println("document.addEventListener('DOMContentLoaded', function(){")
		out.print(indent(string(body.bytes()), 1))
		out.println("});")
	}
	return out.bytes()
}

// printInertState re-declares every top-level `const` and inert
// `let`/`var` binding as a plain JS declaration (spec §4.3: an inert
// binding is "never reassigned inside a function", so it needs no ctx[]
// slot). Reactive bindings are deliberately not re-declared here — their
// only storage is ctx[], per the runtime contract (spec §4.8).
func printInertState(p *printer, a *script.Analysis) {
	for _, b := range a.Bindings {
		if b.Reactive {
			continue
		}
		p.printf("let %s = %s;\n", b.Name, initOrUndefined(b.Init))
	}
	for _, c := range a.Consts {
		p.printf("const %s = %s;\n", c.Name, initOrUndefined(c.Init))
	}
}

func initOrUndefined(init string) string {
	if init == "" {
		return "undefined"
	}
	return init
}

// printBlockRenderers emits one `__block_<N>()` function per top-level
// BlockSpec, returning the HTML string its anchor's current value
// produces (spec §4.7 "a block anchor's recomputation rebuilds its
// subtree"). IfNode bodies were captured without template-literal
// escaping (print-html.go only backtick-escapes text rendered inline
// inside an enclosing #for), so it is applied here instead; ForNode
// bodies already carry it, along with their own `${...}` holes, from
// being captured with inline rendering turned on.
func printBlockRenderers(p *printer, blocks []BlockSpec, a *script.Analysis, pl *plan.Plan) {
	for _, b := range blocks {
		anchor := findAnchor(pl, b.Anchor)
		expr := "false"
		if anchor != nil {
			expr = a.Substitute(anchor.Expr, ctxResolveFn(pl, nil))
		}
		p.printf("function __block_%d(){\n", b.Anchor)
		switch b.Type {
		case decor.IfNode:
			p.printf("  return (%s) ? `%s` : `%s`;\n", expr, escapeTemplateLiteralText(b.Then), escapeTemplateLiteralText(b.Else))
		case decor.ForNode:
			p.printf("  return (%s).map(function(%s){ return `%s`; }).join('');\n", expr, b.Pattern, b.Then)
		}
		p.println("}")
	}
}

// printRuntimeHelpers emits the bootstrap scan/placement machinery that
// sits alongside the fixed preamble: `__scan` walks a root node's
// comment anchors (`<!--a<N>-->`) and `[data-a]` elements into the flat
// `anchors[]` array (copied once into the preamble's `elems[]`), wiring
// any registered handler as it goes; `__place` swaps a block anchor's
// previously rendered subtree for a freshly built one, registers the new
// subtree's own anchors in `anchors[]`, and runs one full `__update` pass
// over it (a `__place` reached from inside that pass does not start
// another one).
// In csr mode it also builds the in-memory document fragment PrintHTML
// would otherwise have written to a separate out.html file.
func printRuntimeHelpers(p *printer, opts JSOptions) {
	p.println(`var anchors = [];
function __scan(root){
  var out = anchors;
  var walker = document.createTreeWalker(root, NodeFilter.SHOW_COMMENT);
  var n;
  while ((n = walker.nextNode())) {
    var m = /^a(\d+)$/.exec(n.data);
    if (m) { out[+m[1]] = n; if (handlers[+m[1]]) handlers[+m[1]](n); }
  }
  root.querySelectorAll('[data-a]').forEach(function(el){
    el.getAttribute('data-a').split(' ').forEach(function(tok){
      var idx = +tok;
      out[idx] = el;
      if (handlers[idx]) handlers[idx](el);
    });
  });
  return out;
}
var blockNodes = {};
var __placing = false;
function __place(idx, html){
  (blockNodes[idx] || []).forEach(function(n){ n.remove(); });
  var tmpl = document.createElement('template');
  tmpl.innerHTML = html;
  var frag = tmpl.content;
  __scan(frag);
  blockNodes[idx] = Array.prototype.slice.call(frag.childNodes);
  anchors[idx].after(frag);
  if (__placing) return;
  __placing = true;
  dirty.fill(0xff); __update(dirty); dirty.fill(0);
  __placing = false;
}`)
	if opts.Method == RenderCSR {
		p.printf("function __mount(){ var t = document.createElement('template'); t.innerHTML = `%s`; return t.content; }\n", escapeTemplateLiteralText(opts.HTML))
		p.println("const __root = __mount();")
	}
}

// printHandlerTable declares one `handlers[idx]` entry per event
// binding, keyed by the binding's own attribute-anchor index so `__scan`
// can attach it the moment it finds the owning element — both at
// bootstrap and every time a block anchor re-renders its subtree (spec
// §4.7 "Handler bodies are rewritten so every assignment to a reactive
// binding X becomes __schedule_update(idx, new_value)").
func printHandlerTable(p *printer, pl *plan.Plan, a *script.Analysis) {
	p.println("var handlers = {};")
	for _, hw := range pl.HandlerWrites {
		idx, ok := findHandlerAnchorIndex(pl, hw)
		if !ok {
			continue
		}
		rewritten := a.RewriteHandler(hw.Expr, ctxResolveFn(pl, nil))
		p.printf("handlers[%d] = function(el){ el.addEventListener(%q, function(event){ var __h = (%s); if (typeof __h === 'function') __h(event); }); };\n", idx, hw.Event, rewritten)
	}
}

func printWasmLoader(p *printer, m wasmbuild.Manifest) {
	for _, sym := range m.Symbols {
		p.printf("// wasm export: %s(%s) -> (%s)\n", sym.Name, strings.Join(sym.Params, ", "), strings.Join(sym.Results, ", "))
	}
	p.println(`var wasmExports = {};
fetch('out.wasm').then(function(r){ return r.arrayBuffer(); })
  .then(function(buf){ return WebAssembly.instantiate(buf, {}); })
  .then(function(result){
    var inst = result.instance || result;
    Object.keys(inst.exports).forEach(function(k){ wasmExports[k] = inst.exports[k]; });
  });`)
}

func printBootstrapTrailer(p *printer, opts JSOptions) {
	if opts.Method == RenderCSR {
		p.println("__host.appendChild(__root);")
	}
	// No JS expression evaluator exists at compile time, so every
	// anchor's initial content is computed the same way a later
	// reactive update is: one forced full pass through __update right
	// after bootstrap (DESIGN.md "Initial dynamic content without a JS
	// expression evaluator").
	p.println("dirty.fill(0xff); __update(dirty); dirty.fill(0);")
}

func elemsExpr(method RenderMethod) string {
	if method == RenderCSR {
		return "...__scan(__root)"
	}
	return "...__scan(__host)"
}

// ctxBody builds `__init_ctx`'s body: one initializer expression per
// reactive binding, in context-index order, copied verbatim from the
// user's own declarator (script.Binding.Init) since the compiler cannot
// evaluate it itself.
func ctxBody(a *script.Analysis, pl *plan.Plan) string {
	initByName := make(map[string]string, len(a.Bindings))
	for _, b := range a.Bindings {
		initByName[b.Name] = b.Init
	}
	parts := make([]string, len(pl.ContextOrder))
	for i, name := range pl.ContextOrder {
		parts[i] = initOrUndefined(initByName[name])
	}
	return "return [" + strings.Join(parts, ", ") + "];"
}

// updateBody builds __update's per-anchor guards in document order
// (spec §4.7 "the ordering of anchors within __update is document
// order"). An anchor whose owning node sits inside a #for is skipped: it
// was compiled inline into its enclosing block's template instead (see
// print-html.go and DESIGN.md), so it has no persistent flat-array slot
// to patch.
func updateBody(a *script.Analysis, pl *plan.Plan, blocks []BlockSpec) string {
	registered := make(map[int]bool, len(blocks))
	for _, b := range blocks {
		registered[b.Anchor] = true
	}

	var sb strings.Builder
	for _, an := range pl.Anchors {
		if isInsideFor(an.Node) {
			continue
		}
		guard := maskGuard(an.TriggerMask, an.Static)
		switch an.Kind {
		case plan.TextAnchor:
			// The first pass swaps the `<!--aN-->` comment for a live text node.
			fmt.Fprintf(&sb, "if (anchors[%[1]d] && anchors[%[1]d].nodeType === 8) { anchors[%[1]d] = replace(anchors[%[1]d]); }\n", an.Index)
			fmt.Fprintf(&sb, "if (%s) { anchors[%d].textContent = String(%s); }\n", guard, an.Index, a.Substitute(an.Expr, ctxResolveFn(pl, nil)))
		case plan.AttrAnchor:
			attr := attrByAnchor(an.Node, an.Index)
			if attr == nil || attr.Type == decor.EventAttribute {
				continue
			}
			fmt.Fprintf(&sb, "if (%s) { anchors[%d].setAttribute(%q, String(%s)); }\n", guard, an.Index, attr.Key, a.Substitute(an.Expr, ctxResolveFn(pl, nil)))
		case plan.BlockAnchor:
			if !registered[an.Index] {
				continue
			}
			fmt.Fprintf(&sb, "if (%s) { __place(%d, __block_%d()); }\n", guard, an.Index, an.Index)
		}
	}
	return sb.String()
}

// maskGuard renders a trigger mask as the `dirty[...] & m` disjunction
// the fixed preamble's __update signature expects one of per anchor. An
// anchor the planner marked Static has no reactive dependency to ever
// set a bit in the first place (plan.Anchor's doc comment) — guarding it
// on an always-empty mask would permanently skip it, so it gets an
// unconditional guard instead and simply recomputes every __update call.
func maskGuard(mask []byte, static bool) string {
	var parts []string
	for i, b := range mask {
		if b == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("(dirty[%d] & %d)", i, b))
	}
	if len(parts) == 0 {
		if static {
			return "true"
		}
		return "false"
	}
	return strings.Join(parts, " || ")
}

func ctxResolveFn(pl *plan.Plan, locals map[string]bool) func(string) (int, bool) {
	return func(name string) (int, bool) {
		if locals[name] {
			return 0, false
		}
		idx, ok := pl.ContextIndex[name]
		return idx, ok
	}
}

func findAnchor(pl *plan.Plan, idx int) *plan.Anchor {
	for i := range pl.Anchors {
		if pl.Anchors[i].Index == idx {
			return &pl.Anchors[i]
		}
	}
	return nil
}

func findHandlerAnchorIndex(pl *plan.Plan, hw plan.HandlerWrite) (int, bool) {
	for _, an := range pl.Anchors {
		if an.Kind == plan.AttrAnchor && an.Node == hw.Node && an.AttrKey == hw.Event {
			return an.Index, true
		}
	}
	return 0, false
}

func attrByAnchor(node *decor.Node, anchorIdx int) *decor.Attribute {
	for i := range node.Attr {
		if node.Attr[i].AnchorIndex == anchorIdx {
			return &node.Attr[i]
		}
	}
	return nil
}

// isInsideFor reports whether n descends from a ForNode (crossing an
// {:else} branch's Parent link too), the condition under which its own
// anchor (if any) is inlined rather than independently registered.
func isInsideFor(n *decor.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == decor.ForNode {
			return true
		}
	}
	return false
}
