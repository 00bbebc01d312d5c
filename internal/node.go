// Package decor holds the data model shared across every compiler stage:
// the component tree, attribute/token shapes, and the error kinds a
// Component's diagnostics handler reports. It is deliberately free of
// parsing or codegen logic so that internal/markup, internal/script,
// internal/cssscope, internal/plan and internal/printer can all depend on
// it without importing each other.
package decor

import (
	"github.com/dzfrias/decorous/internal/loc"
)

// NodeType is the variant tag of a markup tree Node (spec "Markup node").
type NodeType uint32

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	InterpolationNode
	IfNode
	ForNode
	ElseNode
)

func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "Document"
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case InterpolationNode:
		return "Interpolation"
	case IfNode:
		return "If"
	case ForNode:
		return "For"
	case ElseNode:
		return "Else"
	}
	return "Invalid"
}

// AttributeType is the syntactic form an attribute was written in.
type AttributeType uint32

const (
	QuotedAttribute AttributeType = iota
	EmptyAttribute
	ExpressionAttribute
	EventAttribute
)

func (t AttributeType) String() string {
	switch t {
	case QuotedAttribute:
		return "quoted"
	case EmptyAttribute:
		return "empty"
	case ExpressionAttribute:
		return "expression"
	case EventAttribute:
		return "event"
	}
	return "invalid"
}

// Attribute is a key/value pair on an Element node. Event bindings
// (`@click={...}`) are represented as attributes of Type EventAttribute
// whose Key is the event name ("click"). AnchorIndex is this attribute's
// own mutable-site position (spec §4.2: "{expr} in attribute value" is
// its own anchor, separate from any other dynamic attribute on the same
// element); it is -1 for QuotedAttribute/EmptyAttribute.
type Attribute struct {
	Key    string
	KeyLoc loc.Loc
	Val    string
	ValLoc loc.Loc
	Type   AttributeType

	AnchorIndex int
}

// Node is a member of the typed markup tree (spec §3 "Markup node").
// AnchorIndex is -1 until the parser assigns a stable position to a
// mutable site; static nodes never receive one, and the planner resets
// it to -1 on a site it folds into static text.
type Node struct {
	Type NodeType
	// Data holds the tag name for ElementNode, the literal text for
	// TextNode, and the raw expression source for InterpolationNode,
	// IfNode (the condition) and ForNode (the iterable).
	Data string
	// Pattern is the `for pat in expr` binding pattern; only set on ForNode.
	Pattern string
	Attr    []Attribute
	Loc     loc.Loc

	AnchorIndex int
	ScopeToken  string

	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node

	// Else is the Node chain attached to an IfNode's {:else} clause, if any.
	Else *Node
}

// NewNode allocates a Node with no anchor assigned yet.
func NewNode(t NodeType) *Node {
	return &Node{Type: t, AnchorIndex: -1}
}

// AppendChild adds c as the final child of n, wiring sibling pointers the
// way a hand-rolled tree builder does instead of reaching for a generic
// container; every markup Node is built this way during parsing.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil || c.PrevSibling != nil || c.NextSibling != nil {
		panic("decor: AppendChild called on an attached Node")
	}
	last := n.LastChild
	if last != nil {
		last.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
	c.Parent = n
	c.PrevSibling = last
}

// Walk visits n and every descendant in document order.
func Walk(n *Node, cb func(*Node)) {
	if n == nil {
		return
	}
	cb(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, cb)
	}
	if n.Else != nil {
		Walk(n.Else, cb)
	}
}

// Attribute returns the attribute named key, or nil.
func (n *Node) Attribute(key string) *Attribute {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			return &n.Attr[i]
		}
	}
	return nil
}

// HasAnchor reports whether n was assigned a stable anchor index; purely
// static nodes (spec §4.2: "Elements that are purely static ... receive
// no anchor") never have one.
func (n *Node) HasAnchor() bool {
	return n.AnchorIndex >= 0
}
