package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest"
	"github.com/i5heu/pinforest/pkg/types"
)

var providersCmd = &cobra.Command{
	Use:   "providers <cid>...",
	Short: "Find peers providing the given blocks",
	Long: `Ask the routing system of the node for providers of each cid. The
lookups run concurrently; results are printed in argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]types.ContentID, len(args))
		for i, a := range args {
			ids[i] = types.ContentID(a)
		}

		return withForest(false, func(ctx context.Context, f *pinforest.Forest) error {
			results, err := f.Providers(ctx, ids)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("%s  error: %v\n", r.ID, r.Err)
					continue
				}
				fmt.Printf("%s  %d providers\n", r.ID, len(r.Peers))
				for _, p := range r.Peers {
					fmt.Printf("  %s  %s\n", p.ID, strings.Join(p.Addrs, " "))
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
