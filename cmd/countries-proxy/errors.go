package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/countries-proxy/pkg/errorlog"
	"github.com/Sternrassler/countries-proxy/pkg/health"
)

func newErrorsCmd(opts *rootOptions) *cobra.Command {
	var (
		output     string
		recentOnly bool
	)

	cmd := &cobra.Command{
		Use:   "errors",
		Short: "Show the persisted error log",
		Long: `Reads the error log snapshot from the configured backend and prints the
recorded failures together with the request counter and 24h error rate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "table" && output != "json" {
				return fmt.Errorf("unsupported output format: %s", output)
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			setupLogging(cmd, cfg)

			store, closeStore, err := openSnapshotter(cmd.Context(), cfg.ErrorLog)
			if err != nil {
				return err
			}
			defer closeStore()

			state, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load error log: %w", err)
			}

			now := time.Now()
			if recentOnly {
				state.Errors = errorlog.Prune(state.Errors, now)
			}

			if output == "json" {
				return writeErrorsJSON(cmd.OutOrStdout(), state)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderErrors(state, now)+"\n")
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
	cmd.Flags().BoolVar(&recentOnly, "recent", false, "only show errors from the last 24h")

	return cmd
}

// renderErrors renders the error log as a table with a summary footer.
func renderErrors(state *errorlog.State, now time.Time) string {
	recent := errorlog.Prune(state.Errors, now)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"#", "Timestamp", "Age", "Message"})

	for i, e := range state.Errors {
		t.AppendRow(table.Row{
			i + 1,
			e.Timestamp.UTC().Format(time.RFC3339),
			now.Sub(e.Timestamp).Truncate(time.Second).String(),
			e.Message,
		})
	}

	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d requests", state.TotalRequests),
		fmt.Sprintf("%d in 24h", len(recent)),
		"error rate " + health.FormatRate(errorlog.ErrorRate(len(recent), state.TotalRequests)),
	})

	return t.Render()
}

func writeErrorsJSON(w io.Writer, state *errorlog.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}
