package views

import (
	"github.com/i5heu/pinforest/pkg/graph"
	"github.com/i5heu/pinforest/pkg/types"
)

// Node is one row of the browsable forest. Children are loaded from the
// graph on first expansion.
type Node struct {
	ID       types.ContentID
	Name     string
	Size     uint64
	Parent   *Node
	Children []*Node

	IsExpanded bool
	Loaded     bool
	// Cycle is set when the node already appears among its ancestors and
	// so is never expanded.
	Cycle bool
}

// EdgeSource returns the out-edges of a node in insertion order.
type EdgeSource interface {
	OutEdges(id types.ContentID) []graph.Edge
}

// NewForestRoot builds an invisible root holding one node per forest root.
func NewForestRoot(roots []types.ContentID) *Node {
	top := &Node{IsExpanded: true, Loaded: true}
	for _, r := range roots {
		top.Children = append(top.Children, &Node{ID: r, Parent: top})
	}
	return top
}

func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil && p.Parent != nil; p = p.Parent {
		d++
	}
	return d
}

func (n *Node) hasAncestor(id types.ContentID) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Load reads the children of n once.
func (n *Node) Load(src EdgeSource) {
	if n.Loaded {
		return
	}
	n.Loaded = true
	if n.hasAncestor(n.ID) {
		n.Cycle = true
		return
	}
	for _, e := range src.OutEdges(n.ID) {
		n.Children = append(n.Children, &Node{ID: e.Target, Name: e.Name, Size: e.Size, Parent: n})
	}
}

// Expandable reports whether n has or may have children.
func (n *Node) Expandable() bool {
	return !n.Cycle && (!n.Loaded || len(n.Children) > 0)
}

func (n *Node) Expand(src EdgeSource) {
	n.Load(src)
	n.IsExpanded = n.Expandable()
}

func (n *Node) Collapse() {
	n.IsExpanded = false
}

// Flatten lists n and its expanded descendants in display order.
func (n *Node) Flatten() []*Node {
	out := []*Node{n}
	if !n.IsExpanded {
		return out
	}
	for _, c := range n.Children {
		out = append(out, c.Flatten()...)
	}
	return out
}

// Path returns the ids from the top-level root down to n.
func (n *Node) Path() []types.ContentID {
	var path []types.ContentID
	for p := n; p != nil && p.Parent != nil; p = p.Parent {
		path = append([]types.ContentID{p.ID}, path...)
	}
	return path
}
