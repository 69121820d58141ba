// Package main provides applogs-logs, a terminal viewer for applogs files.
//
// Usage:
//
//	applogs-logs [flags]
//
// Flags:
//
//	-f, --follow          Follow log output (like tail -f)
//	-n, --lines int       Number of lines to show (default 50)
//	    --level string    Minimum level (debug|info|success|warn|error|fatal)
//	    --filter string   Filter by pattern (regex)
//	    --no-color        Disable colored output
//	    --origin string   server or client (default: server)
//	    --file string     Custom log file path
//	    --root string     Logs root (default: logs.root from config)
//	    --config string   Config file (default ./applogs.yaml)
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/applogs/internal/config"
	apperrors "github.com/Aman-CERP/applogs/internal/errors"
	"github.com/Aman-CERP/applogs/internal/logging"
	"github.com/Aman-CERP/applogs/internal/logstore"
	"github.com/Aman-CERP/applogs/pkg/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, apperrors.FormatForCLI(err))
		os.Exit(1)
	}
}

type logsOptions struct {
	follow     bool
	lines      int
	level      string
	filter     string
	noColor    bool
	origin     string
	logFile    string
	root       string
	configPath string
}

func newRootCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "applogs-logs",
		Short: "View applogs server and client logs",
		Long: `View and tail the files written by applogs.

By default, shows the last 50 lines of the newest server log. Use -f to
follow new entries in real time (like 'tail -f').

Examples:
  applogs-logs                     # Last 50 lines of the newest server log
  applogs-logs --origin client     # Newest client log instead
  applogs-logs -n 200 --level warn # Warnings and worse
  applogs-logs -f                  # Follow in real time
  applogs-logs --filter "Auth"     # Filter by pattern`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", logging.DefaultViewerLines, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level (debug|info|success|warn|error|fatal)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter by keyword/pattern (regex)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.origin, "origin", "server", "Log origin: server or client")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file (overrides --origin)")
	cmd.Flags().StringVar(&opts.root, "root", "", "Logs root (default: logs.root from config)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file (default ./applogs.yaml)")

	return cmd
}

func runLogs(ctx context.Context, out, errOut io.Writer, opts logsOptions) error {
	origin, err := logstore.ParseOrigin(opts.origin)
	if err != nil {
		return err
	}

	root := opts.root
	if root == "" && opts.logFile == "" {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		root = cfg.Logs.Root
	}

	path, err := logging.FindLogFile(root, origin, opts.logFile)
	if err != nil {
		return err
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	noColor := opts.noColor || logging.DetectNoColor() || !logging.IsTTY(out)
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: noColor,
	}, out)

	fmt.Fprintf(errOut, "Log file: %s\n", path)
	if opts.follow {
		fmt.Fprintf(errOut, "Following... (Ctrl+C to stop)\n")
	}
	fmt.Fprintln(errOut, "---")

	if opts.follow {
		return runFollow(ctx, out, errOut, viewer, path)
	}

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)
	return nil
}

func runFollow(ctx context.Context, out, errOut io.Writer, viewer *logging.Viewer, path string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	entries := make(chan logging.ParsedLine, 100)
	errCh := make(chan error, 1)

	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			fmt.Fprintln(out, viewer.FormatEntry(entry))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			fmt.Fprintln(errOut, "\n---")
			fmt.Fprintln(errOut, "Stopped.")
			return nil
		}
	}
}
