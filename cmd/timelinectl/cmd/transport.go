// ABOUTME: Transport subcommands: play, pause, stop, seek and tempo
// ABOUTME: Each prints the resulting transport status
package cmd

import (
	"fmt"
	"strconv"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start playback from the play head",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(command.Play{})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback, keeping the play head",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(command.Pause{})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(command.Stop{})
	},
}

var seekCmd = &cobra.Command{
	Use:   "seek <beat>",
	Short: "Move the play head to a beat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		beat, err := parseFloat("beat", args[0])
		if err != nil {
			return err
		}
		return run(command.Seek{Beat: beat})
	},
}

var tempoCmd = &cobra.Command{
	Use:   "tempo <bpm>",
	Short: "Set the tempo in beats per minute",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bpm, err := parseFloat("bpm", args[0])
		if err != nil {
			return err
		}
		return run(command.SetTempo{BPM: bpm})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show transport state, play head and tempo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(command.GetStatus{})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show realtime, render and cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(command.GetStats{})
	},
}

func init() {
	rootCmd.AddCommand(playCmd, pauseCmd, stopCmd, seekCmd, tempoCmd, statusCmd, statsCmd)
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}
