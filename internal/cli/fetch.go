package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"modelfetch/internal/common/fsutil"
	"modelfetch/internal/manifest"
	"modelfetch/internal/runner"
)

func newFetchCmd(a *app) *cobra.Command {
	var concurrency, maxAttempts int
	var reportPath string
	cmd := &cobra.Command{
		Use:     "fetch",
		Short:   "Download and verify every artifact declared by the manifests",
		Example: "  modelfetch fetch --manifest-dir ./manifests --dest-dir ~/models",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("concurrency") && a.cfg.Concurrency > 0 {
				concurrency = a.cfg.Concurrency
			}
			if !cmd.Flags().Changed("max-attempts") && a.cfg.MaxAttempts > 0 {
				maxAttempts = a.cfg.MaxAttempts
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			descs, err := manifest.LoadDir(a.cfg.ManifestDir)
			if err != nil {
				return err
			}
			destRoot, err := fsutil.ExpandHome(a.cfg.DestDir)
			if err != nil {
				return err
			}

			a.log.Info().Int("models", len(descs)).Str("dest", destRoot).Msg("starting run")
			report := a.newRunner(maxAttempts).Run(ctx, descs, runner.Config{
				DestRoot:    destRoot,
				Concurrency: concurrency,
			})
			renderReport(cmd.OutOrStdout(), report)

			if reportPath != "" {
				b, merr := json.MarshalIndent(report, "", "  ")
				if merr != nil {
					return merr
				}
				if werr := fsutil.AtomicWriteFile(reportPath, b, 0o644); werr != nil {
					return fmt.Errorf("write report: %w", werr)
				}
			}
			if !report.OK() {
				return fmt.Errorf("%d of %d entries failed", report.Failed, len(report.Entries))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Concurrent downloads (0 = default)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Fetch attempts per file before giving up (0 = default)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the run report as JSON to this path")
	return cmd
}
