package plan

import (
	"sort"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/script"
)

// Build computes a Plan from a component's parsed markup tree and its
// script analysis (spec §4.6). Context indices follow source-declaration
// order (a.Bindings is already ordered that way; only the reactive subset
// participates, per spec §9 "hash-based ordering is forbidden" — slices
// only, never a map iteration order).
func Build(root *decor.Node, a *script.Analysis, h *handler.Handler) *Plan {
	contextOrder := reactiveOrder(a)
	contextIndex := make(map[string]int, len(contextOrder))
	for i, name := range contextOrder {
		contextIndex[name] = i
	}
	n := len(contextOrder)

	var anchors []Anchor
	var writes []HandlerWrite

	decor.Walk(root, func(node *decor.Node) {
		switch node.Type {
		case decor.InterpolationNode:
			deps := a.Dependencies(node.Data, node.Loc, h)
			if len(deps) == 0 {
				if val, ok := a.FoldConstant(node.Data); ok {
					node.Type = decor.TextNode
					node.Data = val
					node.AnchorIndex = -1
					return
				}
			}
			anchors = append(anchors, buildAnchor(TextAnchor, node, "", node.Data, node.AnchorIndex, deps, a, contextIndex, n))
		case decor.IfNode, decor.ForNode:
			deps := a.Dependencies(node.Data, node.Loc, h)
			// Folding a block into pure static HTML would mean choosing
			// (#if) or unrolling (#for) its body at plan time, which
			// needs real evaluation of the condition/iterable this
			// compiler doesn't have (see script.Analysis.FoldConstant's
			// doc comment). Left un-folded, but still not permanently
			// dead: buildAnchor's zero-dep Static flag keeps its guard
			// unconditional instead of `if (false)`.
			anchors = append(anchors, buildAnchor(BlockAnchor, node, "", node.Data, node.AnchorIndex, deps, a, contextIndex, n))
		case decor.ElementNode:
			for i := range node.Attr {
				attr := &node.Attr[i]
				if attr.AnchorIndex < 0 {
					continue
				}
				switch attr.Type {
				case decor.ExpressionAttribute:
					deps := a.Dependencies(attr.Val, attr.ValLoc, h)
					if len(deps) == 0 {
						if val, ok := a.FoldConstant(attr.Val); ok {
							attr.Type = decor.QuotedAttribute
							attr.Val = val
							attr.AnchorIndex = -1
							continue
						}
					}
					anchors = append(anchors, buildAnchor(AttrAnchor, node, attr.Key, attr.Val, attr.AnchorIndex, deps, a, contextIndex, n))
				case decor.EventAttribute:
					deps := a.Dependencies(attr.Val, attr.ValLoc, h)
					anchors = append(anchors, buildAnchor(AttrAnchor, node, attr.Key, attr.Val, attr.AnchorIndex, deps, a, contextIndex, n))
					writes = append(writes, buildHandlerWrite(node, attr.Key, attr.Val, a, contextIndex))
				}
			}
		}
	})

	sort.SliceStable(anchors, func(i, j int) bool { return anchors[i].Index < anchors[j].Index })

	return &Plan{
		ContextOrder:  contextOrder,
		ContextIndex:  contextIndex,
		Anchors:       anchors,
		HandlerWrites: writes,
	}
}

// reactiveOrder extracts the reactive subset of a.Bindings in
// declaration order, discarding inert/const bindings which never occupy
// a context slot (spec §3 "every reactive binding has exactly one
// context index").
func reactiveOrder(a *script.Analysis) []string {
	var names []string
	for _, b := range a.Bindings {
		if b.Reactive {
			names = append(names, b.Name)
		}
	}
	return names
}

// buildAnchor computes one anchor's trigger mask from its already
// extracted dependency set. The dependency set is widened one level
// through the reactivity graph: if a direct dependency D is itself a
// derived reactive binding (it has its own write/read edges), D's own
// dependencies also trigger this anchor (spec §4.6 "derived reactive
// bindings contribute both their own bit and their dependencies' bits").
// An anchor whose deps is empty gets Static set, so its printed guard
// stays correct instead of folding to a permanently-false `if` (spec §8
// "an anchor with no dependencies must not exist" — the cases that can
// be resolved to a literal value are folded away entirely before this is
// ever called; this covers the rest).
func buildAnchor(kind AnchorKind, node *decor.Node, attrKey, expr string, index int, deps []string, a *script.Analysis, contextIndex map[string]int, n int) Anchor {
	mask := make([]byte, MaskBytes(n))
	for _, d := range deps {
		if idx, ok := contextIndex[d]; ok {
			setBit(mask, idx)
		}
		if a.Graph != nil {
			for _, derived := range a.Graph.Neighbors(d) {
				if idx, ok := contextIndex[derived]; ok {
					setBit(mask, idx)
				}
			}
		}
	}
	return Anchor{
		Index:       index,
		Kind:        kind,
		Node:        node,
		AttrKey:     attrKey,
		Expr:        expr,
		Deps:        deps,
		TriggerMask: mask,
		Static:      len(deps) == 0,
	}
}

// buildHandlerWrite resolves an event handler's write set to context
// indices (spec §4.6 "handler write sets").
func buildHandlerWrite(node *decor.Node, event, expr string, a *script.Analysis, contextIndex map[string]int) HandlerWrite {
	writes := []int{}
	for _, name := range a.WriteSet(expr) {
		if idx, ok := contextIndex[name]; ok {
			writes = append(writes, idx)
		}
	}
	sort.Ints(writes)
	return HandlerWrite{Node: node, Event: event, Expr: expr, Indices: writes}
}
