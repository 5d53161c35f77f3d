// ABOUTME: Entry point for the timeline control CLI
// ABOUTME: Delegates to the cobra command tree
package main

import (
	"os"

	"github.com/Resonate-Protocol/resonate-timeline/cmd/timelinectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
