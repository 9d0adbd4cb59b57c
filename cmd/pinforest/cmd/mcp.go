package cmd

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest"
	mcpadapter "github.com/i5heu/pinforest/internal/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve forest tools over MCP on stdio",
	Long: `Serve the roots, children, tree, status, refresh and unpin tools to an
MCP client on stdin/stdout. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForest(false, func(ctx context.Context, f *pinforest.Forest) error {
			return server.ServeStdio(mcpadapter.NewServer(f, version))
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
