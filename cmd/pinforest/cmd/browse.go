package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/i5heu/pinforest"
	"github.com/i5heu/pinforest/internal/adapters/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the forest interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The screen belongs to the browser; log lines reach the log panel
		// through the hook only.
		logger.SetOutput(io.Discard)
		return withForest(false, func(ctx context.Context, f *pinforest.Forest) error {
			return tui.Run(f, events)
		})
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
