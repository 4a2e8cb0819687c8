// Package cli wires the cobra command tree: fetch, verify, list, clean,
// serve, version.
package cli

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modelfetch/internal/config"
	"modelfetch/internal/fetch"
	"modelfetch/internal/runner"
)

// app carries resolved configuration and the logger into subcommands.
type app struct {
	cfg config.Config
	log zerolog.Logger
}

// Execute runs the CLI. A non-nil error means the process should exit
// non-zero.
func Execute() error {
	a := &app{}
	return newRootCmd(a).Execute()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd(a *app) *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "modelfetch",
		Short:         "Fetch and verify pretrained model artifacts from YAML manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "Config file (.yaml/.json/.toml); flags override file values")
	pf.String("manifest-dir", envOr("MODELFETCH_MANIFEST_DIR", "./manifests"), "Directory containing model manifests (*.yml/*.yaml)")
	pf.String("dest-dir", envOr("MODELFETCH_DEST_DIR", "~/models"), "Directory downloaded artifacts land under")
	pf.String("log-level", envOr("MODELFETCH_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgPath != "" {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
		}
		// Flags win over file values; file values win over flag defaults.
		flags := cmd.Flags()
		if f := flags.Lookup("manifest-dir"); f != nil && (f.Changed || a.cfg.ManifestDir == "") {
			a.cfg.ManifestDir = f.Value.String()
		}
		if f := flags.Lookup("dest-dir"); f != nil && (f.Changed || a.cfg.DestDir == "") {
			a.cfg.DestDir = f.Value.String()
		}
		if f := flags.Lookup("log-level"); f != nil && (f.Changed || a.cfg.LogLevel == "") {
			a.cfg.LogLevel = f.Value.String()
		}
		a.log = newLogger(a.cfg.LogLevel)
		return nil
	}

	root.AddCommand(
		newFetchCmd(a),
		newVerifyCmd(a),
		newListCmd(a),
		newCleanCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

// newRunner builds the orchestrator from resolved config.
func (a *app) newRunner(maxAttempts int) *runner.Runner {
	policy := fetch.RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Duration(a.cfg.RetryBaseMS) * time.Millisecond,
		MaxDelay:    time.Duration(a.cfg.RetryMaxMS) * time.Millisecond,
	}
	return runner.New(fetch.NewClient(a.log, policy), a.log)
}
