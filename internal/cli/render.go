package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"modelfetch/pkg/types"
)

// renderReport writes a per-entry table plus a one-line summary.
func renderReport(w io.Writer, rep types.RunReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tMODEL\tFILE\tFETCHED\tERROR")
	for _, e := range rep.Entries {
		detail := ""
		if e.Status == types.StatusFailed {
			detail = e.ErrorKind
			if e.ErrorDetail != "" {
				detail += ": " + e.ErrorDetail
			}
		}
		fetched := "-"
		if e.BytesFetched > 0 {
			fetched = humanize.IBytes(uint64(e.BytesFetched))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Status, e.Model, e.RelativePath, fetched, detail)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d succeeded, %d skipped, %d failed, %s fetched in %s\n",
		rep.Succeeded, rep.Skipped, rep.Failed,
		humanize.IBytes(uint64(rep.BytesFetched)),
		rep.FinishedAt.Sub(rep.StartedAt).Round(10*time.Millisecond))
}
