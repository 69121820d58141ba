// Package cmd provides the CLI commands for applogs.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/applogs/internal/config"
	apperrors "github.com/Aman-CERP/applogs/internal/errors"
	"github.com/Aman-CERP/applogs/internal/logging"
	"github.com/Aman-CERP/applogs/internal/logstore"
	"github.com/Aman-CERP/applogs/internal/profiling"
	"github.com/Aman-CERP/applogs/pkg/version"
)

// Global flags
var (
	configPath string
	debugMode  bool
)

// Profiling flags
var (
	profileOpts    profiling.Options
	profileSession *profiling.Session
)

// NewRootCmd creates the root command for the applogs CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applogs",
		Short: "File-based log store for server and client logs",
		Long: `applogs keeps rotating, size and age bounded log files for a server
process and for browser clients that report over HTTP.

Run 'applogs serve' to start the HTTP API, then use list, read and tail
to inspect the stored files.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("applogs version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./applogs.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Write debug diagnostics")

	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Mem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startProfiling
	cmd.PersistentPostRunE = stopProfiling

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newReadCmd())
	cmd.AddCommand(newTailCmd())
	cmd.AddCommand(newSweepCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startProfiling(_ *cobra.Command, _ []string) error {
	if !profileOpts.Enabled() {
		return nil
	}
	s, err := profiling.Start(profileOpts)
	if err != nil {
		return err
	}
	profileSession = s
	return nil
}

func stopProfiling(_ *cobra.Command, _ []string) error {
	if profileSession == nil {
		return nil
	}
	err := profileSession.Stop()
	profileSession = nil
	return err
}

// Execute runs the root command.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	// PersistentPostRunE is skipped when a command fails.
	if profileSession != nil {
		_ = profileSession.Stop()
	}
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), apperrors.FormatForUser(err, debugMode))
	}
	return err
}

// env is what every store-backed command needs: the loaded config, the
// diagnostics logger and an open store.
type env struct {
	cfg   *config.Config
	log   *slog.Logger
	store *logstore.Store

	cleanup func()
}

// openEnv loads the config, sets up diagnostics and opens the store without
// its startup sweep. Commands must not delete files as a side effect of
// looking at them; serve sweeps itself once it owns the root.
func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	diag := cfg.DiagnosticsLogging()
	if debugMode {
		diag.Level = "debug"
	}
	logger, cleanup, err := logging.Setup(diag)
	if err != nil {
		return nil, fmt.Errorf("failed to setup diagnostics: %w", err)
	}
	logger.Debug("config loaded",
		slog.String("path", cfg.Path),
		slog.String("root", cfg.Logs.Root))

	store, err := logstore.Open(cfg.StoreConfig(),
		logstore.WithLogger(logger),
		logstore.WithStartupSweep(false))
	if err != nil {
		cleanup()
		return nil, err
	}

	return &env{cfg: cfg, log: logger, store: store, cleanup: cleanup}, nil
}

// Close releases the store and flushes diagnostics.
func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("store close failed", slog.String("error", err.Error()))
	}
	e.cleanup()
}
