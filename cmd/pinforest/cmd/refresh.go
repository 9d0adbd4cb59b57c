package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Read all pins and print forest statistics",
	Long: `Read the pin set of the node, classify every pinned block and print
what was built. Non-directory verdicts are kept in the durable cache, so a
second run only fetches directories.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForest(false, func(ctx context.Context, f *pinforest.Forest) error {
			res, err := f.Refresh(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Refs:         %d\n", res.Refs)
			fmt.Printf("Directories:  %d\n", res.Directories)
			fmt.Printf("Leaves:       %d\n", res.Leaves)
			fmt.Printf("Cached:       %d\n", res.Skipped)
			fmt.Printf("Failed:       %d\n", res.Failed)
			printStats(f.Stats())
			return nil
		})
	},
}

func printStats(s pinforest.Stats) {
	fmt.Println("Forest:")
	fmt.Printf("  Pinned refs:             %d\n", s.PinnedRefs)
	fmt.Printf("  Nodes:                   %d\n", s.Nodes)
	fmt.Printf("  Edges:                   %d\n", s.Edges)
	fmt.Printf("  Roots:                   %d\n", s.Roots)
	fmt.Printf("  Cached directories:      %d\n", s.CachedDirectories)
	fmt.Printf("  Cached non-directories:  %d\n", s.CachedNonDirectories)
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
