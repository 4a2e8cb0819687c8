package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"modelfetch/internal/manifest"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List models declared by the manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			descs, err := manifest.LoadDir(a.cfg.ManifestDir)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFRAMEWORK\tTASK\tFILES\tSIZE")
			for _, d := range descs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					d.Name, d.Framework, d.TaskType, len(d.Files),
					humanize.Bytes(uint64(d.TotalSize())))
			}
			return w.Flush()
		},
	}
}
