package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/loykin/httpstep/internal/config"
	"github.com/loykin/httpstep/internal/store"
	"github.com/loykin/httpstep/internal/util"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded step runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := newViper(cmd)
			f := &config.StepFile{}
			if path, ok := util.TrimEmptyCheck(v.GetString("file")); ok {
				loaded, err := config.Load(path)
				if err != nil {
					return err
				}
				f = loaded
			}
			st, err := store.Open(f.History.StoreConfig())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			runs, err := st.ListRuns(cmd.Context(), v.GetInt("limit"))
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				return printRunsJSON(cmd.OutOrStdout(), runs)
			}
			printRunsTable(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	addFileFlag(cmd)
	cmd.Flags().Int("limit", 20, "maximum number of runs to show (0 = all)")
	cmd.Flags().Bool("json", false, "print runs as JSON")
	return cmd
}

func printRunsTable(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "no runs recorded")
		return
	}
	headers := []string{"ID", "RAN AT", "NAME", "METHOD", "STATUS", "OUTCOME", "DURATION", "URL"}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range runs {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.RanAt.Local().Format(time.RFC3339),
			util.TrimWithDefault(r.Name, "-"),
			r.Method,
			strconv.Itoa(r.StatusCode),
			r.Outcome,
			(time.Duration(r.DurationMs) * time.Millisecond).String(),
			r.URL,
		}
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

type runJSON struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	Name       string    `json:"name,omitempty"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	RanAt      time.Time `json:"ran_at"`
}

func printRunsJSON(w io.Writer, runs []store.Run) error {
	out := make([]runJSON, 0, len(runs))
	for _, r := range runs {
		out = append(out, runJSON{
			ID: r.ID, RunID: r.RunID, Name: r.Name, Method: r.Method, URL: r.URL,
			StatusCode: r.StatusCode, Outcome: r.Outcome, Error: r.Error,
			DurationMs: r.DurationMs, RanAt: r.RanAt,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
