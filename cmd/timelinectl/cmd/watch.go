// ABOUTME: Watch subcommand
// ABOUTME: Opens the live status screen
package cmd

import (
	"context"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/internal/ui"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live transport, region and realtime statistics view",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		c, err := connect(ctx)
		cancel()
		if err != nil {
			return err
		}
		defer c.Close()

		return ui.Run(c, c.Server().Name, watchInterval)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 250*time.Millisecond, "Refresh interval")
	rootCmd.AddCommand(watchCmd)
}
