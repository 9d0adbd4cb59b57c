// Package mcp exposes the forest as tools of an MCP server.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/i5heu/pinforest"
	"github.com/i5heu/pinforest/pkg/dagbuilder"
	"github.com/i5heu/pinforest/pkg/graph"
	"github.com/i5heu/pinforest/pkg/types"
)

// Forest is the part of *pinforest.Forest the tools use.
type Forest interface {
	Refresh(ctx context.Context) (dagbuilder.Result, error)
	Roots() []types.ContentID
	OutEdges(id types.ContentID) []graph.Edge
	Tree(root types.ContentID, depth int) (*pinforest.TreeNode, error)
	Unpin(ctx context.Context, root types.ContentID) ([]types.ContentID, error)
	Stats() pinforest.Stats
}

var _ Forest = (*pinforest.Forest)(nil)

// NewServer returns a server with every forest tool registered.
func NewServer(f Forest, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pinforest",
		version,
		server.WithToolCapabilities(true),
	)
	RegisterReadTools(s, f)
	RegisterWriteTools(s, f)
	return s
}

// RegisterReadTools adds the tools that never change the pin set.
func RegisterReadTools(s *server.MCPServer, f Forest) {
	s.AddTool(rootsTool(), rootsHandler(f))
	s.AddTool(childrenTool(), childrenHandler(f))
	s.AddTool(treeTool(), treeHandler(f))
	s.AddTool(statusTool(), statusHandler(f))
}

// RegisterWriteTools adds refresh and unpin.
func RegisterWriteTools(s *server.MCPServer, f Forest) {
	s.AddTool(refreshTool(), refreshHandler(f))
	s.AddTool(unpinTool(), unpinHandler(f))
}

// --- roots ---

func rootsTool() mcp.Tool {
	return mcp.NewTool("roots",
		mcp.WithDescription("List the roots of the pinned forest: directories no other pinned directory links to."),
	)
}

func rootsHandler(f Forest) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		roots := f.Roots()
		if len(roots) == 0 {
			return mcp.NewToolResultText("No roots. Run refresh first."), nil
		}
		var sb strings.Builder
		for _, r := range roots {
			sb.WriteString(r.String())
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- children ---

func childrenTool() mcp.Tool {
	return mcp.NewTool("children",
		mcp.WithDescription("List the named links of a directory in the forest."),
		mcp.WithString("cid",
			mcp.Description("CID of the directory"),
			mcp.Required(),
		),
	)
}

func childrenHandler(f Forest) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("cid", "")
		if id == "" {
			return toolError(fmt.Errorf("cid is required"))
		}

		edges := f.OutEdges(types.ContentID(id))
		if len(edges) == 0 {
			return mcp.NewToolResultText("No children."), nil
		}
		var sb strings.Builder
		for _, e := range edges {
			fmt.Fprintf(&sb, "%s  %s  %d\n", e.Target, e.Name, e.Size)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Show the tree under a root, one node per line."),
		mcp.WithString("cid",
			mcp.Description("CID of the root"),
			mcp.Required(),
		),
		mcp.WithNumber("depth",
			mcp.Description("Maximum depth, 0 for unlimited"),
		),
	)
}

func treeHandler(f Forest) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("cid", "")
		if id == "" {
			return toolError(fmt.Errorf("cid is required"))
		}

		tree, err := f.Tree(types.ContentID(id), req.GetInt("depth", 0))
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		if err := pinforest.WriteTree(&sb, tree); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- status ---

func statusTool() mcp.Tool {
	return mcp.NewTool("status",
		mcp.WithDescription("Report pin, node, edge and cache counts."),
	)
}

func statusHandler(f Forest) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(formatStats(f.Stats())), nil
	}
}

// --- refresh ---

func refreshTool() mcp.Tool {
	return mcp.NewTool("refresh",
		mcp.WithDescription("Re-read the pin set from the node and extend the forest."),
	)
}

func refreshHandler(f Forest) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := f.Refresh(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"refs %d, directories %d, leaves %d, skipped %d, failed %d\n%s",
			res.Refs, res.Directories, res.Leaves, res.Skipped, res.Failed, formatStats(f.Stats()),
		)), nil
	}
}

// --- unpin ---

func unpinTool() mcp.Tool {
	return mcp.NewTool("unpin",
		mcp.WithDescription("Unpin a root recursively on the node and drop it and every orphaned descendant from the forest."),
		mcp.WithString("cid",
			mcp.Description("CID to unpin"),
			mcp.Required(),
		),
	)
}

func unpinHandler(f Forest) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("cid", "")
		if id == "" {
			return toolError(fmt.Errorf("cid is required"))
		}

		removed, err := f.Unpin(ctx, types.ContentID(id))
		if errors.Is(err, types.ErrNotFound) {
			return toolError(fmt.Errorf("%s is not in the forest", id))
		}
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "unpinned %s, removed %d nodes\n", id, len(removed))
		for _, r := range removed {
			sb.WriteString(r.String())
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatStats(s pinforest.Stats) string {
	return fmt.Sprintf("pinned %d, nodes %d, edges %d, roots %d, cached directories %d, cached non-directories %d",
		s.PinnedRefs, s.Nodes, s.Edges, s.Roots, s.CachedDirectories, s.CachedNonDirectories)
}
