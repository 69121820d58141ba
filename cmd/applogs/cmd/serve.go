package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/applogs/internal/config"
	"github.com/Aman-CERP/applogs/internal/daemon"
	"github.com/Aman-CERP/applogs/internal/httpserver"
	"github.com/Aman-CERP/applogs/internal/logging"
	"github.com/Aman-CERP/applogs/internal/logstore"
	"github.com/Aman-CERP/applogs/internal/output"
	"github.com/Aman-CERP/applogs/pkg/version"
)

func newServeCmd() *cobra.Command {
	var addr string
	var requestLogging bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP log API",
		Long: `Start the HTTP API that accepts client log reports and serves the
stored files.

The server runs until it receives SIGINT or SIGTERM.`,
		Example: `  # Listen on the configured address
  applogs serve

  # Override the address and log every request
  applogs serve --addr 0.0.0.0:5000 --request-logging`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr, requestLogging)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&requestLogging, "request-logging", false, "Log every HTTP request")

	return cmd
}

func runServe(cmd *cobra.Command, addr string, requestLogging bool) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	// Claim the root before the startup sweep so a second server never
	// deletes files it does not own.
	pidFile := daemon.ForRoot(e.store.Config().Root)
	if err := pidFile.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := pidFile.Release(); err != nil {
			e.log.Warn("release PID file failed", "error", err)
		}
	}()
	for _, o := range logstore.Origins {
		e.store.SweepRetention(o)
	}

	if addr != "" {
		e.cfg.Server.Addr = addr
	}
	if requestLogging {
		e.cfg.Server.RequestLogging = true
	}

	out := cmd.OutOrStdout()
	logger := logging.NewLogger(
		logging.WithMinLevel(logging.ParseLevel(e.cfg.Server.LogLevel)),
		logging.WithSink(e.store),
		logging.WithConsole(out, logging.ColorEnabled(out)),
		logging.WithRequestLogging(e.cfg.Server.RequestLogging),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.NewServer(e.cfg.Server.Addr, e.store,
		httpserver.WithLogger(logger),
		httpserver.WithCORSOrigin(e.cfg.Server.CORSOrigin))
	if err := srv.Start(); err != nil {
		return err
	}

	printStartupBanner(out, e.cfg, srv.Addr())
	logger.Success("Server", "listening on "+srv.Addr(), nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Serve)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Server", "shutting down", nil)
		return srv.Stop()
	})
	if err := g.Wait(); err != nil {
		e.log.Error("serve: exited with error", "error", err)
		return err
	}
	return nil
}

func printStartupBanner(w io.Writer, cfg *config.Config, addr string) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╔═╗╔═╗╦  ╔═╗╔═╗╔═╗
    ╠═╣╠═╝╠═╝║  ║ ║║ ╦╚═╗
    ╩ ╩╩  ╩  ╩═╝╚═╝╚═╝╚═╝`)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+dim.Render("v"+version.Version))
	lines = append(lines, "")
	lines = append(lines, dim.Render("    ─────────────────────────────────"))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Server"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render("http://"+addr)))
	lines = append(lines, fmt.Sprintf("    %s  CORS Origin    %s", check, dim.Render(cfg.Server.CORSOrigin)))
	lines = append(lines, fmt.Sprintf("    %s  Log Level      %s", check, dim.Render(cfg.Server.LogLevel)))
	if cfg.Server.RequestLogging {
		lines = append(lines, fmt.Sprintf("    %s  Request Log    %s", check, dim.Render("enabled")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Request Log    %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Storage"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Log Root       %s", check, dim.Render(cfg.Logs.Root)))
	lines = append(lines, fmt.Sprintf("    %s  Rotation       %s", check,
		dim.Render(fmt.Sprintf("%s per file, keep %d, max age %s",
			output.HumanSize(cfg.Logs.MaxFileSize), cfg.Logs.MaxFiles, cfg.Logs.MaxAge))))
	if cfg.Logs.CrossProcessLock {
		lines = append(lines, fmt.Sprintf("    %s  File Lock      %s", check, dim.Render("cross-process")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  File Lock      %s", dot, dim.Render("in-process only")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.Path != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(cfg.Path)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("defaults")))
	}
	lines = append(lines, "")
	lines = append(lines, "    "+yellow.Render("Press Ctrl+C to stop"))
	lines = append(lines, "")

	_, _ = fmt.Fprintln(w, strings.Join(lines, "\n"))
}
