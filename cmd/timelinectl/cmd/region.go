// ABOUTME: Region subcommands: create, delete, move and list
// ABOUTME: Positions and durations are given in beats
package cmd

import (
	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
	"github.com/spf13/cobra"
)

var (
	createAt       float64
	createLength   float64
	createContent  string
	createBehavior string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Schedule a region on the timeline",
	Long: `Schedule a region on the timeline and print its id.

The content is fetched and decoded before the region is added, so a
missing or undecodable content id leaves the timeline unchanged. Without
--content the region is a silent placeholder.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(&command.CreateRegion{
			Position:  createAt,
			Duration:  createLength,
			Behavior:  createBehavior,
			ContentID: createContent,
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <region-id>",
	Short: "Remove a region",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(command.DeleteRegion{RegionID: args[0]})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <region-id> <beat>",
	Short: "Move a region to a new start beat",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		beat, err := parseFloat("beat", args[1])
		if err != nil {
			return err
		}
		return run(command.MoveRegion{RegionID: args[0], Position: beat})
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List regions in start order",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(command.ListRegions{})
	},
}

func init() {
	createCmd.Flags().Float64Var(&createAt, "at", 0, "Start beat")
	createCmd.Flags().Float64Var(&createLength, "length", 4, "Duration in beats")
	createCmd.Flags().StringVarP(&createContent, "content", "c", "", "Content id")
	createCmd.Flags().StringVar(&createBehavior, "behavior", timeline.PlayContent.String(), "Region behavior")

	rootCmd.AddCommand(createCmd, deleteCmd, moveCmd, listCmd)
}
