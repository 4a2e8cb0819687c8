package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"modelfetch/internal/common/fsutil"
	"modelfetch/internal/manifest"
	"modelfetch/internal/runner"
)

func newVerifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check existing local artifacts against the manifests without any network work",
		RunE: func(cmd *cobra.Command, args []string) error {
			descs, err := manifest.LoadDir(a.cfg.ManifestDir)
			if err != nil {
				return err
			}
			destRoot, err := fsutil.ExpandHome(a.cfg.DestDir)
			if err != nil {
				return err
			}
			report := a.newRunner(0).Run(cmd.Context(), descs, runner.Config{
				DestRoot:   destRoot,
				VerifyOnly: true,
			})
			renderReport(cmd.OutOrStdout(), report)
			if !report.OK() {
				return fmt.Errorf("%d of %d entries invalid or missing", report.Failed, len(report.Entries))
			}
			return nil
		},
	}
	return cmd
}
