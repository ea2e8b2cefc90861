// Package commenttree turns the flat comment list of a post into a reply forest.
//
// Build is pure and total: every input comment appears exactly once in the
// output, whatever the parent references look like.
package commenttree

import (
	"cmp"
	"slices"

	"campusfeed/internal/model"
)

// DefaultMaxDepth is the reply depth at which replying is no longer offered.
const DefaultMaxDepth = 3

// Node is one comment in the forest.
type Node struct {
	Comment model.Comment
	Replies []*Node
	Depth   int

	index  int
	parent *Node
}

// Build groups comments under their parents, keeping input order among
// siblings and among roots.
//
// A comment whose parent is missing, is itself, or lies on a cycle that no
// root reaches becomes a root. When an id appears twice, replies attach to its
// first occurrence.
func Build(comments []model.Comment) []*Node {
	nodes := make([]*Node, len(comments))
	byID := make(map[int64]*Node, len(comments))
	for i, c := range comments {
		n := &Node{Comment: c, index: i}
		nodes[i] = n
		if _, dup := byID[c.ID]; !dup {
			byID[c.ID] = n
		}
	}

	var roots []*Node
	for _, n := range nodes {
		p := resolveParent(n, byID)
		if p == nil {
			roots = append(roots, n)
			continue
		}
		n.parent = p
		p.Replies = append(p.Replies, n)
	}

	reached := make(map[*Node]bool, len(nodes))
	for _, r := range roots {
		mark(r, reached)
	}

	// Whatever is still unreached hangs off a cycle. Each cycle is cut at its
	// member that comes first in the input.
	for _, n := range nodes {
		if reached[n] {
			continue
		}
		head := cycleHead(n)
		detach(head)
		roots = append(roots, head)
		mark(head, reached)
	}

	slices.SortStableFunc(roots, func(x, y *Node) int { return cmp.Compare(x.index, y.index) })
	Walk(roots, func(*Node) {})
	return roots
}

func resolveParent(n *Node, byID map[int64]*Node) *Node {
	pid := n.Comment.ParentID
	if pid == nil {
		return nil
	}
	p, ok := byID[*pid]
	if !ok || p == n {
		return nil
	}
	return p
}

func mark(n *Node, reached map[*Node]bool) {
	if reached[n] {
		return
	}
	reached[n] = true
	for _, r := range n.Replies {
		mark(r, reached)
	}
}

// cycleHead follows parents from n until a node repeats and returns the cycle
// member with the lowest input index.
func cycleHead(n *Node) *Node {
	seen := make(map[*Node]bool)
	for !seen[n] {
		seen[n] = true
		n = n.parent
	}
	head := n
	for c := n.parent; c != n; c = c.parent {
		if c.index < head.index {
			head = c
		}
	}
	return head
}

func detach(n *Node) {
	p := n.parent
	if p == nil {
		return
	}
	p.Replies = slices.DeleteFunc(p.Replies, func(r *Node) bool { return r == n })
	n.parent = nil
}

// Walk visits the forest depth-first, parents before replies, and sets Depth
// on every node (roots are at 0).
func Walk(forest []*Node, fn func(*Node)) {
	for _, r := range forest {
		walk(r, 0, fn)
	}
}

func walk(n *Node, depth int, fn func(*Node)) {
	n.Depth = depth
	fn(n)
	for _, r := range n.Replies {
		walk(r, depth+1, fn)
	}
}

// Count returns the number of nodes in the forest.
func Count(forest []*Node) int {
	var n int
	Walk(forest, func(*Node) { n++ })
	return n
}

// Flatten returns the comments of the forest in display order.
func Flatten(forest []*Node) []model.Comment {
	var out []model.Comment
	Walk(forest, func(n *Node) { out = append(out, n.Comment) })
	return out
}

// CanReply reports whether a comment at depth still accepts replies.
// A non-positive maxDepth means DefaultMaxDepth.
func CanReply(depth, maxDepth int) bool {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return depth < maxDepth
}
