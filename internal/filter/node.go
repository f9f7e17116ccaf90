package filter

import (
	"strings"

	"github.com/roach88/mangaq/internal/ir"
)

// Node is a filter tree node: Leaf or *Group.
type Node interface {
	filterNode() // Sealed - only Leaf and *Group implement it
	String() string
}

// Leaf is one field condition, optionally negated.
type Leaf struct {
	Negate bool
	Field  string
	Value  ir.Value
}

func (Leaf) filterNode() {}

// String renders the leaf in the filter grammar, e.g. `title:!"one piece"`.
func (l Leaf) String() string {
	var b strings.Builder
	b.WriteString(l.Field)
	b.WriteByte(':')
	if l.Negate {
		b.WriteByte('!')
	}
	b.WriteString(ir.Literal(l.Value))
	return b.String()
}

// Group combines children with AND (Or == false) or OR (Or == true).
type Group struct {
	Or       bool
	Children []Node
}

func (*Group) filterNode() {}

// Operator returns "OR" or "AND".
func (g *Group) Operator() string {
	if g.Or {
		return "OR"
	}
	return "AND"
}

// String renders the group in the filter grammar, e.g. `and:(title:"a" or:(status:1))`.
func (g *Group) String() string {
	var b strings.Builder
	if g.Or {
		b.WriteString("or:(")
	} else {
		b.WriteString("and:(")
	}
	for i, child := range g.Children {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(child.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Walk calls fn for every leaf under n in depth-first input order.
func Walk(n Node, fn func(Leaf)) {
	switch node := n.(type) {
	case Leaf:
		fn(node)
	case *Group:
		for _, child := range node.Children {
			Walk(child, fn)
		}
	}
}

// Leaves returns every leaf under n in depth-first input order.
func Leaves(n Node) []Leaf {
	var out []Leaf
	Walk(n, func(l Leaf) { out = append(out, l) })
	return out
}

// Encode converts n into the map form used for canonical JSON.
func Encode(n Node) map[string]any {
	switch node := n.(type) {
	case Leaf:
		return map[string]any{
			"type":   "leaf",
			"negate": node.Negate,
			"field":  node.Field,
			"value":  ir.Encode(node.Value),
		}
	case *Group:
		children := make([]any, len(node.Children))
		for i, child := range node.Children {
			children[i] = Encode(child)
		}
		return map[string]any{
			"type":     "group",
			"or":       node.Or,
			"children": children,
		}
	default:
		return map[string]any{"type": "unknown"}
	}
}

// MarshalJSON encodes the leaf as canonical JSON.
func (l Leaf) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(Encode(l))
}

// MarshalJSON encodes the group as canonical JSON.
func (g *Group) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(Encode(g))
}

// Fingerprint returns a stable hash of the tree's canonical encoding.
func Fingerprint(n Node) (string, error) {
	return ir.Fingerprint(Encode(n))
}
