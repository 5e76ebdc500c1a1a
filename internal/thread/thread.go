// Package thread rebuilds comment trees from the flat, time-ordered lists
// returned by the comment repository.
package thread

import (
	"moodmate/internal/models"

	"github.com/google/uuid"
)

// Node is one comment with its direct replies.
type Node struct {
	Comment models.Comment `json:"comment"`
	Depth   int            `json:"depth"`
	IsReply bool           `json:"is_reply"`
	Replies []*Node        `json:"replies"`
}

// Tree is the reconstructed thread for a single playlist.
//
// Orphans holds comments whose parent is not in the input; they are kept
// rather than dropped or promoted to roots. MaxDepth reports the deepest
// nesting actually present, since the data model does not cap it.
type Tree struct {
	Roots    []*Node `json:"roots"`
	Orphans  []*Node `json:"orphans"`
	MaxDepth int     `json:"max_depth"`
}

// Build reconstructs the tree in a single pass plus a linking pass.
// Input order is preserved among siblings.
func Build(comments []models.Comment) Tree {
	nodes := make(map[uuid.UUID]*Node, len(comments))
	ordered := make([]*Node, 0, len(comments))
	for i := range comments {
		n := &Node{Comment: comments[i], Replies: []*Node{}}
		if _, dup := nodes[n.Comment.ID]; dup {
			continue
		}
		nodes[n.Comment.ID] = n
		ordered = append(ordered, n)
	}

	tree := Tree{Roots: []*Node{}, Orphans: []*Node{}}
	for _, n := range ordered {
		pid := n.Comment.ParentID
		if pid == nil {
			tree.Roots = append(tree.Roots, n)
			continue
		}
		parent, ok := nodes[*pid]
		if !ok || parent == n {
			tree.Orphans = append(tree.Orphans, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}

	visited := make(map[*Node]bool, len(ordered))
	for _, r := range tree.Roots {
		tree.assignDepth(r, 0, visited)
	}
	for _, o := range tree.Orphans {
		tree.assignDepth(o, 0, visited)
	}
	// Anything still unvisited sits on a parent cycle in bad data.
	for _, n := range ordered {
		if visited[n] {
			continue
		}
		tree.Orphans = append(tree.Orphans, n)
		tree.assignDepth(n, 0, visited)
	}
	return tree
}

func (t *Tree) assignDepth(n *Node, depth int, visited map[*Node]bool) {
	visited[n] = true
	n.Depth = depth
	n.IsReply = depth > 0
	if depth > t.MaxDepth {
		t.MaxDepth = depth
	}
	kept := n.Replies[:0]
	for _, child := range n.Replies {
		if visited[child] {
			continue
		}
		kept = append(kept, child)
		t.assignDepth(child, depth+1, visited)
	}
	n.Replies = kept
}

// Len returns the number of comments reachable from roots and orphans.
func (t Tree) Len() int {
	count := 0
	Walk(t, func(*Node) { count++ })
	return count
}

// Walk visits every node depth-first in pre-order, roots before orphans.
func Walk(t Tree, fn func(*Node)) {
	var visit func(n *Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.Replies {
			visit(c)
		}
	}
	for _, r := range t.Roots {
		visit(r)
	}
	for _, o := range t.Orphans {
		visit(o)
	}
}

// Flatten returns the comments in display order.
func Flatten(t Tree) []models.Comment {
	out := make([]models.Comment, 0, len(t.Roots))
	Walk(t, func(n *Node) { out = append(out, n.Comment) })
	return out
}

// Descendants returns the ids of every comment below root in comments,
// following parent links to any depth. root itself is not included.
func Descendants(comments []models.Comment, root uuid.UUID) []uuid.UUID {
	children := make(map[uuid.UUID][]uuid.UUID, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	var out []uuid.UUID
	seen := map[uuid.UUID]bool{root: true}
	queue := []uuid.UUID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}
