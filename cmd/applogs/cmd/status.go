package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/applogs/internal/config"
	"github.com/Aman-CERP/applogs/internal/daemon"
	"github.com/Aman-CERP/applogs/internal/logstore"
	"github.com/Aman-CERP/applogs/internal/output"
)

// StatusInfo is the JSON form of 'applogs status'.
type StatusInfo struct {
	Running bool            `json:"running"`
	PID     int             `json:"pid,omitempty"`
	Root    string          `json:"root"`
	Origins []OriginSummary `json:"origins"`
}

// OriginSummary totals one origin's files.
type OriginSummary struct {
	Origin logstore.Origin `json:"origin"`
	Files  int             `json:"files"`
	Bytes  int64           `json:"bytes"`
	Newest string          `json:"newest,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the server is running and what is stored",
		Long: `Show whether an applogs server holds the logs root and summarise the
stored files. Nothing is opened for writing and nothing is swept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			info, err := collectStatus(cfg.Logs.Root)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			out := output.New(cmd.OutOrStdout())
			if info.Running {
				out.Successf("Server running (pid %d)", info.PID)
			} else {
				out.Warning("Server not running")
			}
			out.Statusf("📁", "Logs root: %s", info.Root)
			out.Newline()
			for _, o := range info.Origins {
				if o.Files == 0 {
					out.Statusf("📂", "%s: no log files", o.Origin)
					continue
				}
				out.Statusf("📂", "%s: %d files, %s, newest %s",
					o.Origin, o.Files, output.HumanSize(o.Bytes), o.Newest)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// collectStatus scans both origins concurrently without opening a Store.
func collectStatus(root string) (StatusInfo, error) {
	info := StatusInfo{Root: root}
	info.PID, info.Running = daemon.ForRoot(root).Running()
	if !info.Running {
		info.PID = 0
	}

	summaries := make([]OriginSummary, len(logstore.Origins))
	var g errgroup.Group
	for i, o := range logstore.Origins {
		g.Go(func() error {
			files, err := logstore.ScanOrigin(root, o)
			if err != nil {
				return err
			}
			s := OriginSummary{Origin: o, Files: len(files)}
			for _, f := range files {
				s.Bytes += f.Size
			}
			if latest, ok := logstore.Latest(files); ok {
				s.Newest = latest.Name
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StatusInfo{}, err
	}
	info.Origins = summaries
	return info, nil
}

func newStopCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running server",
		Long:  `Send SIGTERM to the server that holds the logs root and wait for it to exit.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			pid, err := daemon.ForRoot(cfg.Logs.Root).Stop(timeout)
			if err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("Stopped server (pid %d)", pid)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "How long to wait for the server to exit")

	return cmd
}
