package pinforest

import (
	"fmt"
	"io"
	"strings"

	"github.com/i5heu/pinforest/pkg/graph"
	"github.com/i5heu/pinforest/pkg/types"
)

// TreeNode is one entry of a projected tree. Name and Size describe the edge
// from the parent and are empty for the root.
type TreeNode struct {
	ID       types.ContentID
	Name     string
	Size     uint64
	Children []*TreeNode
	// Truncated marks a node whose children were cut by the depth limit.
	Truncated bool
	// Cycle marks a node that already appears among its own ancestors.
	Cycle bool
}

// Tree projects the subtree under root following out-edges in insertion
// order. Shared children appear under every parent. depth 0 is unlimited.
func (f *Forest) Tree(root types.ContentID, depth int) (*TreeNode, error) {
	var tree *TreeNode
	f.graph.View(func(g *graph.Graph) {
		if !g.HasNode(root) {
			return
		}
		tree = &TreeNode{ID: root}
		expand(g, tree, map[types.ContentID]bool{root: true}, 1, depth)
	})
	if tree == nil {
		return nil, fmt.Errorf("error projecting tree %s: %w", root, types.ErrNotFound)
	}
	return tree, nil
}

func expand(g *graph.Graph, n *TreeNode, ancestors map[types.ContentID]bool, level, depth int) {
	edges := g.OutEdges(n.ID)
	if len(edges) == 0 {
		return
	}
	if depth > 0 && level > depth {
		n.Truncated = true
		return
	}

	for _, e := range edges {
		child := &TreeNode{ID: e.Target, Name: e.Name, Size: e.Size}
		n.Children = append(n.Children, child)
		if ancestors[e.Target] {
			child.Cycle = true
			continue
		}
		ancestors[e.Target] = true
		expand(g, child, ancestors, level+1, depth)
		delete(ancestors, e.Target)
	}
}

// WriteTree prints n indented by depth, one node per line.
func WriteTree(w io.Writer, n *TreeNode) error {
	return writeTree(w, n, 0)
}

func writeTree(w io.Writer, n *TreeNode, level int) error {
	line := strings.Repeat("  ", level) + n.ID.String()
	if n.Name != "" {
		line += "  " + n.Name
	}
	if level > 0 {
		line += fmt.Sprintf("  (%d B)", n.Size)
	}
	switch {
	case n.Cycle:
		line += "  [cycle]"
	case n.Truncated:
		line += "  [...]"
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := writeTree(w, c, level+1); err != nil {
			return err
		}
	}
	return nil
}
