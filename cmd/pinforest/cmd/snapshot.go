package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Refresh and write the forest to a compressed snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForest(true, func(ctx context.Context, f *pinforest.Forest) error {
			out, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("error creating snapshot: %w", err)
			}
			if err := f.Export(out); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("error closing snapshot: %w", err)
			}
			fmt.Printf("Wrote %d nodes and %d edges to %s\n", f.NodeCount(), f.EdgeCount(), args[0])
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a snapshot and print the forest it describes",
	Long: `Load a snapshot written by export without contacting the node for
pins, then print its trees.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForest(false, func(ctx context.Context, f *pinforest.Forest) error {
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("error opening snapshot: %w", err)
			}
			defer in.Close()

			if err := f.Import(in); err != nil {
				return err
			}
			for _, r := range f.Roots() {
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

func init() {
	importCmd.Flags().IntVarP(&treeDepth, "depth", "d", 0, "maximum depth, 0 for unlimited")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
