// ABOUTME: Bounce subcommand
// ABOUTME: Renders a beat range on the daemon into a WAV file in its export directory
package cmd

import (
	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/spf13/cobra"
)

var (
	bounceFrom float64
	bounceTo   float64
)

var bounceCmd = &cobra.Command{
	Use:   "bounce <file>",
	Short: "Render a beat range to a WAV file on the daemon host",
	Long: `Render the current timeline between --from and --to (in beats) through the
same mixer used for playback and write a 16-bit WAV into the daemon's export
directory. Live playback is not affected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(command.Bounce{From: bounceFrom, To: bounceTo, File: args[0]})
	},
}

func init() {
	bounceCmd.Flags().Float64Var(&bounceFrom, "from", 0, "First beat")
	bounceCmd.Flags().Float64Var(&bounceTo, "to", 16, "End beat (exclusive)")
	rootCmd.AddCommand(bounceCmd)
}
