// ABOUTME: Human-readable rendering of command results
// ABOUTME: Used when --json is not given
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
)

func writeResult(w io.Writer, res command.Result) {
	if !res.OK {
		fmt.Fprintf(w, "%s: %s\n", res.Code, res.Error)
		return
	}

	switch {
	case res.Status != nil:
		fmt.Fprintf(w, "%-8s beat %.3f  %.2f BPM\n", res.Status.State, res.Status.Position, res.Status.Tempo)
	case res.Regions != nil || res.RegionID == "" && res.Stats == nil && res.Bounce == nil:
		writeRegions(w, res.Regions)
	case res.RegionID != "":
		fmt.Fprintln(w, res.RegionID)
	case res.Stats != nil:
		data, _ := json.MarshalIndent(res.Stats, "", "  ")
		fmt.Fprintln(w, string(data))
	case res.Bounce != nil:
		fmt.Fprintf(w, "wrote %s (%d frames, %d bytes)\n", res.Bounce.Path, res.Bounce.Frames, res.Bounce.Bytes)
	}
}

func writeRegions(w io.Writer, regions []timeline.Info) {
	if len(regions) == 0 {
		fmt.Fprintln(w, "no regions")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPOSITION\tDURATION\tBEHAVIOR\tCONTENT\tFRAMES")
	for _, r := range regions {
		contentID := r.ContentID
		if contentID == "" {
			contentID = "-"
		} else if !r.Resolved {
			contentID += " (unresolved)"
		}
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%s\t%s\t%d\n", r.ID, r.Position, r.Duration, r.Behavior, contentID, r.Frames)
	}
	tw.Flush()
}
