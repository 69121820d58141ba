package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/applogs/internal/logstore"
	"github.com/Aman-CERP/applogs/internal/output"
)

func newListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored log files",
		Long:  `List the log files of both origins, newest first, with their sizes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			listing, err := e.store.List()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), listing)
			}

			out := output.New(cmd.OutOrStdout())
			out.Files(logstore.OriginServer, listing.Server)
			out.Newline()
			out.Files(logstore.OriginClient, listing.Client)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <origin> <file>",
		Short: "Print a whole log file",
		Example: `  applogs read server server-2026-10-19.log
  applogs read client client-2026-10-19.log`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := logstore.ParseOrigin(args[0])
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			content, err := e.store.Read(origin, args[1])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}
}

func newTailCmd() *cobra.Command {
	var lines int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tail <origin> <file>",
		Short: "Print the last lines of a log file",
		Long: `Print the last lines of a log file.

A non-positive --lines falls back to the default of 100. Use applogs-logs -f
to follow a file as it grows.`,
		Example: `  applogs tail server server-2026-10-19.log -n 20`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := logstore.ParseOrigin(args[0])
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.store.Tail(origin, args[1], lines)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			w := cmd.OutOrStdout()
			if res.Content != "" {
				if _, err := io.WriteString(w, res.Content); err != nil {
					return err
				}
				if !strings.HasSuffix(res.Content, "\n") {
					_, _ = fmt.Fprintln(w)
				}
			}
			output.New(cmd.ErrOrStderr()).Statusf("📄", "%d lines in %s", res.TotalLines, args[1])
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", logstore.DefaultTailLines, "Number of lines to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep [origin]",
		Short: "Apply the retention policy now",
		Long: `Delete log files older than logs.max_age, then all but the
logs.max_files most recent. Without an origin both are swept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			origins := logstore.Origins
			if len(args) == 1 {
				origin, err := logstore.ParseOrigin(args[0])
				if err != nil {
					return err
				}
				origins = []logstore.Origin{origin}
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			out := output.New(cmd.OutOrStdout())
			failed := 0
			for _, o := range origins {
				res := e.store.SweepRetention(o)
				out.Sweep(res)
				failed += res.Failed
			}
			if failed > 0 {
				return fmt.Errorf("%d log files could not be deleted", failed)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
