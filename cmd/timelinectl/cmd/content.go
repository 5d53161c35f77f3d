// ABOUTME: Content subcommands: put and discover
// ABOUTME: put decodes files locally and stores them by digest in a content directory
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/internal/discovery"
	"github.com/Resonate-Protocol/resonate-timeline/internal/version"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/content"
	"github.com/spf13/cobra"
)

var contentDir string

var putCmd = &cobra.Command{
	Use:   "put <file>...",
	Short: "Add audio files to a content directory and print their ids",
	Long: `Decode each file to check it is usable, then store it in --content-dir under
its sha256 digest. The printed id is what region create --content expects.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := content.NewFSStore(contentDir)
		if err != nil {
			return err
		}
		registry := decode.DefaultRegistry()

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			decoded, err := registry.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			id, err := store.Put(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Printf("%s  %s %dHz %dch %d frames  %s\n",
				id, decode.Detect(data), decoded.SampleRate(), decoded.Channels(), decoded.Frames(), path)
		}
		return nil
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List timeline daemons on the local network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		servers, err := discovery.Lookup(ctx, 3*time.Second)
		if err != nil {
			return err
		}
		if len(servers) == 0 {
			fmt.Println("no daemons found")
			return nil
		}
		for _, s := range servers {
			fmt.Printf("%-24s %s  %dHz\n", s.Name, s.Addr(), s.SampleRate)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

func init() {
	putCmd.Flags().StringVar(&contentDir, "content-dir", "./content", "Content directory shared with the daemon")
	rootCmd.AddCommand(putCmd, discoverCmd, versionCmd)
}
