// ABOUTME: Root command and shared connection helpers for timelinectl
// ABOUTME: Resolves the daemon address, connects, and prints command results
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/internal/client"
	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/internal/discovery"
	"github.com/spf13/cobra"
)

var (
	serverAddr string
	timeout    time.Duration
	jsonOutput bool
	debug      bool
)

var errCommandFailed = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:   "timelinectl",
	Short: "Control a timeline daemon",
	Long: `timelinectl drives a running timelined over its WebSocket control endpoint.

Without --server the daemon is located with mDNS (_timeline._tcp).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !debug {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute runs the command tree
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errCommandFailed) {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", "", "Daemon address host:port (default: discover via mDNS)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON results")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log protocol traffic")
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// resolveAddr returns --server or the first daemon found on the network
func resolveAddr(ctx context.Context) (string, error) {
	if serverAddr != "" {
		return serverAddr, nil
	}

	servers, err := discovery.Lookup(ctx, 2*time.Second)
	if err != nil {
		return "", err
	}
	if len(servers) == 0 {
		return "", fmt.Errorf("no timeline daemon found via mDNS; use --server")
	}
	if debug {
		log.Printf("Discovered %s at %s", servers[0].Name, servers[0].Addr())
	}
	return servers[0].Addr(), nil
}

// connect opens a client to the daemon
func connect(ctx context.Context) (*client.Client, error) {
	addr, err := resolveAddr(ctx)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	c := client.NewClient(client.Config{
		ServerAddr: addr,
		Name:       fmt.Sprintf("timelinectl@%s", hostname),
		Debug:      debug,
	})
	if err := c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return c, nil
}

// run sends one command and prints its result
func run(cmd command.Command) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c, err := connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.Do(ctx, cmd)
	if err != nil {
		return err
	}
	return printResult(os.Stdout, res)
}

func printResult(w io.Writer, res command.Result) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		writeResult(w, res)
	}

	if !res.OK {
		return errCommandFailed
	}
	return nil
}
