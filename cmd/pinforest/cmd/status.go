package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest"
	"github.com/i5heu/pinforest/internal/procStats"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Refresh and report forest, cache and process statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForest(true, func(ctx context.Context, f *pinforest.Forest) error {
			fmt.Printf("API:      %s\n", conf.API)
			fmt.Printf("Data dir: %s (%s)\n", conf.DataDir, conf.DurableBackend)
			printStats(f.Stats())

			usage, err := procStats.Current()
			if err != nil {
				logger.WithError(err).Warn("could not read process statistics")
			} else {
				fmt.Println("Process:")
				fmt.Printf("  RSS:      %s\n", procStats.HumanBytes(usage.RSS))
				fmt.Printf("  CPU:      %.1f%%\n", usage.CPUPercent)
				fmt.Printf("  Threads:  %d\n", usage.Threads)
			}

			fmt.Println("Recent log:")
			for _, e := range events.Recent() {
				fmt.Printf("  %s\n", e)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
