package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"transplant/internal/migration"
	"transplant/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one migration run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := findRun(cmd, st, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, newRunView(run))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s\n", run.ID)
			fmt.Fprintf(out, "  Status:    %s\n", run.Status)
			fmt.Fprintf(out, "  Mode:      %s\n", runMode(run))
			if run.Source != "" {
				fmt.Fprintf(out, "  Source:    %s\n", run.Source)
			}
			fmt.Fprintf(out, "  Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
			if run.FinishedAt != nil {
				fmt.Fprintf(out, "  Finished:  %s\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "  Rows:      %d total, %d valid, %d skipped, %d processed, %d failed\n",
				run.TotalRows, run.ValidRows, run.SkippedRows, run.ProcessedRows, run.FailedRows)
			fmt.Fprintf(out, "  Created:   %d users, %d schools\n", run.UsersCreated, run.SchoolsCreated)

			if run.ErrorsJSON != "" {
				var failures []migration.RowError
				if err := json.Unmarshal([]byte(run.ErrorsJSON), &failures); err == nil && len(failures) > 0 {
					fmt.Fprintln(out)
					rows := make([][]string, 0, len(failures))
					for _, failure := range failures {
						rows = append(rows, []string{strconv.Itoa(failure.Row), failure.Email, failure.Reason})
					}
					fmt.Fprintln(out, renderTable([]string{"Row", "Email", "Reason"}, rows, 1))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the run as JSON")
	return cmd
}

// findRun resolves a full run id or a unique id prefix, so ids truncated
// in the runs table still work.
func findRun(cmd *cobra.Command, st *store.Store, id string) (*store.Run, error) {
	if id == "" {
		return nil, fmt.Errorf("run id is required")
	}

	run, err := st.GetRun(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	if run != nil {
		return run, nil
	}

	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var match *store.Run
	for _, candidate := range runs {
		if !strings.HasPrefix(candidate.ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run id prefix %s is ambiguous", id)
		}
		match = candidate
	}
	if match == nil {
		return nil, fmt.Errorf("no run with id %s", id)
	}
	return match, nil
}
