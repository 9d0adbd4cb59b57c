package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest"
	"github.com/i5heu/pinforest/pkg/types"
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree [cid]",
	Short: "Print the forest, or the tree under one root",
	Long: `Print every tree of the forest, or only the tree under cid.
Each line shows the CID, the link name and the link size. Shared
directories are printed under every parent.

Examples:
  pinforest tree
  pinforest tree --depth 2 bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForest(true, func(ctx context.Context, f *pinforest.Forest) error {
			roots := f.Roots()
			if len(args) == 1 {
				roots = []types.ContentID{types.ContentID(args[0])}
			}
			for _, r := range roots {
				tree, err := f.Tree(r, treeDepth)
				if err != nil {
					return err
				}
				if err := pinforest.WriteTree(os.Stdout, tree); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "List the roots of the forest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForest(true, func(ctx context.Context, f *pinforest.Forest) error {
			for _, r := range f.Roots() {
				fmt.Println(r)
			}
			return nil
		})
	},
}

func init() {
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 0, "maximum depth, 0 for unlimited")
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(rootsCmd)
}
