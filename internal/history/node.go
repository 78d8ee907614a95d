package history

import (
	"time"

	"github.com/apetrov/orderflow/internal/domain"
)

// Node wraps one approval step for hierarchical display. Nodes are
// rebuilt from scratch on every BuildTree call and carry no identity
// beyond the wrapped step's ID.
type Node struct {
	Step     domain.ApprovalStep
	Parent   *Node
	Children []*Node

	// Level is the nesting depth; roots are 0.
	Level int

	// IsLastChild marks the final element of its sibling list.
	IsLastChild bool

	// Prefix is the box-drawing connector string rendered before the
	// node's label.
	Prefix string

	// EffectiveResult is the rolled-up approve/reject outcome of the
	// subtree, not the step's own stored result.
	EffectiveResult domain.StepResult

	// EffectiveCompletionDate is the latest completion date anywhere in
	// the subtree; nil if nothing below has completed.
	EffectiveCompletionDate *time.Time
}

// HasChildren reports whether any rework nests under this node.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Walk visits the node and its descendants depth-first in child order.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Flatten returns the forest in display order: each root followed by its
// descendants depth-first.
func Flatten(forest []*Node) []*Node {
	var out []*Node
	for _, root := range forest {
		root.Walk(func(n *Node) {
			out = append(out, n)
		})
	}
	return out
}
