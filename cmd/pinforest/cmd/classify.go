package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest"
	"github.com/i5heu/pinforest/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <cid>",
	Short: "Show how a block is classified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForest(false, func(ctx context.Context, f *pinforest.Forest) error {
			id := types.ContentID(args[0])
			res := f.Classify(ctx, id)

			fmt.Printf("CID:    %s\n", id)
			fmt.Printf("Codec:  %s\n", id.Codec())
			fmt.Printf("State:  %s\n", res.State)
			if res.Err != nil {
				fmt.Printf("Error:  %s (%v)\n", types.ErrorKind(res.Err), res.Err)
			}
			if res.Record != nil {
				fmt.Printf("Kind:   %s\n", res.Record.Kind)
				fmt.Printf("Links:  %d\n", len(res.Record.Links))
				for _, l := range res.Record.Links {
					fmt.Printf("  %s  %s  %d\n", l.Target, l.Name, l.Size)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
