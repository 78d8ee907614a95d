// Package history rebuilds the hierarchical "who reworked what, under
// whom" forest from an order's flat approval trail. The builder is pure:
// it never fails on malformed input, it only degrades — unresolvable or
// cyclic parent links silently become roots.
package history

import (
	"sort"

	"github.com/apetrov/orderflow/internal/domain"
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// BuildTree converts a flat approval trail into a forest of display
// nodes with computed levels, rolled-up results and rendering hints.
// Deterministic for any permutation of the same records.
func BuildTree(records []domain.ApprovalStep) []*Node {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]domain.ApprovalStep, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ReceiptDate.Equal(sorted[j].ReceiptDate) {
			return sorted[i].ReceiptDate.Before(sorted[j].ReceiptDate)
		}
		return sorted[i].ID < sorted[j].ID
	})

	nodes := make(map[int64]*Node, len(sorted))
	for i := range sorted {
		nodes[sorted[i].ID] = &Node{Step: sorted[i]}
	}

	parentOf := resolveParents(sorted, nodes)

	var roots []*Node
	for i := range sorted {
		n := nodes[sorted[i].ID]
		if p := parentOf[n.Step.ID]; p != nil {
			n.Parent = p
			p.Children = append(p.Children, n)
		} else {
			roots = append(roots, n)
		}
	}

	// Levels need a second top-down pass: attachment is by ParentID, so
	// a child can be wired before its parent's own level is known.
	for _, root := range roots {
		assignLevels(root, 0)
	}

	for _, root := range roots {
		computeEffectiveCompletion(root)
	}
	computeEffectiveResults(roots)
	computeRenderHints(roots)

	return roots
}

// resolveParents maps each step to its parent node, dropping links that
// point at the step itself, at unknown records, or into a cycle. Records
// are processed in trail order so that breaking one link is enough to
// untangle a whole cycle.
func resolveParents(sorted []domain.ApprovalStep, nodes map[int64]*Node) map[int64]*Node {
	parentID := make(map[int64]*int64, len(sorted))
	for i := range sorted {
		parentID[sorted[i].ID] = sorted[i].ParentID
	}

	out := make(map[int64]*Node, len(sorted))
	for i := range sorted {
		id := sorted[i].ID
		pid := parentID[id]
		if pid == nil || *pid == id {
			parentID[id] = nil
			continue
		}
		if _, known := nodes[*pid]; !known {
			parentID[id] = nil
			continue
		}
		// Walk the ancestor chain; reaching ourselves means this link
		// closes a cycle, so this record becomes a root instead.
		cur := pid
		for steps := 0; cur != nil && steps <= len(sorted); steps++ {
			if *cur == id {
				parentID[id] = nil
				break
			}
			cur = parentID[*cur]
		}
		if parentID[id] != nil {
			out[id] = nodes[*parentID[id]]
		}
	}
	return out
}

func assignLevels(n *Node, level int) {
	n.Level = level
	for _, c := range n.Children {
		assignLevels(c, level+1)
	}
}

func computeEffectiveCompletion(n *Node) {
	maxDate := n.Step.CompletionDate
	for _, c := range n.Children {
		computeEffectiveCompletion(c)
		if c.EffectiveCompletionDate != nil &&
			(maxDate == nil || c.EffectiveCompletionDate.After(*maxDate)) {
			maxDate = c.EffectiveCompletionDate
		}
	}
	n.EffectiveCompletionDate = maxDate
}

// computeEffectiveResults rolls up the displayed outcome. A leaf shows
// its own result. A nested node with children is an unresolved rework
// iteration and shows rejected. A root with children shows approved only
// if a later root exists — the flow moved past its rework cycle.
func computeEffectiveResults(roots []*Node) {
	for i, root := range roots {
		hasLaterRoot := i < len(roots)-1
		root.Walk(func(n *Node) {
			switch {
			case !n.HasChildren():
				n.EffectiveResult = n.Step.Result
			case n.Parent != nil:
				n.EffectiveResult = domain.ResultRejected
			case hasLaterRoot:
				n.EffectiveResult = domain.ResultApproved
			default:
				n.EffectiveResult = domain.ResultRejected
			}
		})
	}
}

func computeRenderHints(roots []*Node) {
	markLast(roots)
	for _, root := range roots {
		root.Walk(func(n *Node) {
			n.Prefix = buildPrefix(n)
		})
	}
}

func markLast(siblings []*Node) {
	for i, n := range siblings {
		n.IsLastChild = i == len(siblings)-1
		markLast(n.Children)
	}
}

// buildPrefix walks root→node emitting a continuation bar for every
// ancestor still followed by siblings, then the node's own connector.
func buildPrefix(n *Node) string {
	if n.Level == 0 {
		return ""
	}
	ancestors := make([]*Node, 0, n.Level)
	for p := n.Parent; p != nil && p.Level > 0; p = p.Parent {
		ancestors = append(ancestors, p)
	}
	prefix := ""
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].IsLastChild {
			prefix += treeBlank
		} else {
			prefix += treePipe
		}
	}
	if n.IsLastChild {
		return prefix + treeCorner
	}
	return prefix + treeBranch
}
