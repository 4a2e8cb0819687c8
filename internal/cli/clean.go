package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"modelfetch/internal/common/fsutil"
	"modelfetch/internal/runner"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove parked partial downloads and orphaned temp files under the destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			destRoot, err := fsutil.ExpandHome(a.cfg.DestDir)
			if err != nil {
				return err
			}
			n, err := runner.CleanPartials(destRoot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d stale files\n", n)
			return nil
		},
	}
}
