package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest"
	"github.com/i5heu/pinforest/pkg/types"
)

var unpinCmd = &cobra.Command{
	Use:   "unpin <cid>",
	Short: "Unpin a tree and drop its orphaned descendants",
	Long: `Remove the recursive pin on cid from the node, then drop cid and every
descendant no other remaining directory links to from the forest.

The node is asked first. If it refuses, nothing is dropped locally.

Example:
  pinforest unpin bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForest(true, func(ctx context.Context, f *pinforest.Forest) error {
			removed, err := f.Unpin(ctx, types.ContentID(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("Unpinned %s, removed %d nodes:\n", args[0], len(removed))
			for _, id := range removed {
				fmt.Printf("  %s\n", id)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(unpinCmd)
}
