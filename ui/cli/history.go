// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/cloudmine/cmpurge/internal/db"
	"github.com/cloudmine/cmpurge/internal/i18n"
	"github.com/cloudmine/cmpurge/internal/model"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// withStore opens the journal for a history command. Unlike purges, a
// journal that cannot be opened is an error here.
func (a *app) withStore(fn func(st db.Store) error) error {
	st, err := a.openStore(a.cfg.Database.Type, a.cfg.Database.Dsn)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = st.Close() }()
	return fn(st)
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st db.Store) error {
				runs, err := st.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := newPrinter(cmd.OutOrStdout())
				if len(runs) == 0 {
					out.dim(i18n.T("history.empty"))
					return nil
				}
				t := table.New().
					Border(lipgloss.NormalBorder()).
					StyleFunc(func(row, col int) lipgloss.Style {
						if row == table.HeaderRow {
							return headerStyle.Padding(0, 1)
						}
						return plainStyle.Padding(0, 1)
					}).
					Headers(
						i18n.T("history.col_id"),
						i18n.T("history.col_started"),
						i18n.T("history.col_operation"),
						i18n.T("history.col_app"),
						i18n.T("history.col_status"),
						i18n.T("history.col_users"),
						i18n.T("history.col_failed"),
						i18n.T("history.col_calls"),
					)
				for _, r := range runs {
					calls, err := st.CountCalls(cmd.Context(), r.ID)
					if err != nil {
						return err
					}
					t.Row(
						r.ID,
						r.StartedAt.Local().Format(historyTimeLayout),
						operationLabel(r),
						r.AppID,
						string(r.Status),
						strconv.Itoa(r.UsersTotal),
						strconv.Itoa(r.UsersFailed),
						strconv.Itoa(calls),
					)
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.String())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	cmd.AddCommand(newHistoryShowCmd(a), newHistoryExportCmd(a), newHistoryPruneCmd(a))
	return cmd
}

func operationLabel(r model.Run) string {
	if r.DryRun {
		return string(r.Operation) + " (" + i18n.T("history.dry_run_marker") + ")"
	}
	return string(r.Operation)
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <runId>",
		Short: "Show one run and the calls it made",
		Args:  a.requireArgs(1, 1, "usage.history_show"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st db.Store) error {
				out := newPrinter(cmd.OutOrStdout())
				run, err := st.GetRun(cmd.Context(), args[0])
				if errors.Is(err, db.ErrNotFound) {
					out.fail(i18n.T("history.not_found", args[0]))
					return reported(err)
				}
				if err != nil {
					return err
				}
				calls, err := st.CallsForRun(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				printRun(out, *run, calls)
				return nil
			})
		},
	}
}

func printRun(out *printer, r model.Run, calls []model.CallRecord) {
	field := func(name, value string) {
		out.plain(i18n.T("history.show_field", name, value))
	}
	out.line(headerStyle, i18n.T("history.show_run", r.ID))
	field("operation", operationLabel(r))
	field("app", r.AppID)
	field("base url", r.BaseURL)
	field("started", r.StartedAt.Local().Format(historyTimeLayout))
	if !r.FinishedAt.IsZero() {
		field("finished", r.FinishedAt.Local().Format(historyTimeLayout))
		field("duration", r.Duration().Round(time.Millisecond).String())
	}
	field("status", string(r.Status))
	field("users", fmt.Sprintf("%d (%d failed)", r.UsersTotal, r.UsersFailed))
	field("app data", strconv.FormatBool(r.AppDataDeleted))
	if r.Error != "" {
		field("error", r.Error)
	}

	if len(calls) == 0 {
		return
	}
	out.line(headerStyle, i18n.T("history.calls_header"))
	for _, c := range calls {
		line := fmt.Sprintf("  #%-3d %-6s %s -> %d (%dms)", c.Seq, c.Method, c.Path, c.StatusCode, c.DurationMs)
		if c.Error != "" {
			line += " " + c.Error
		}
		if c.OK() {
			out.plain(line)
		} else {
			out.fail(line)
		}
	}
}

func newHistoryExportCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export runs and calls as zstd-compressed JSON",
		Long: `Writes the journal as Zstandard-compressed JSON. '.zst' is appended to the
file name when missing.`,
		Args: a.requireArgs(1, 1, "usage.history_export"),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFile := args[0]
			if !strings.HasSuffix(outputFile, ".zst") {
				outputFile += ".zst"
			}
			return a.withStore(func(st db.Store) error {
				data, err := db.BuildExport(cmd.Context(), st, limit)
				if err != nil {
					return err
				}
				f, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return fmt.Errorf("could not create file: %w", err)
				}
				if err := db.WriteExport(f, data); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).ok(i18n.T("history.export_success", len(data.Runs), outputFile))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of runs to export (0 for all)")
	return cmd
}

func newHistoryPruneCmd(a *app) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return usageError(errors.New("--older-than must be positive"))
			}
			cutoff := a.now().Add(-olderThan)
			return a.withStore(func(st db.Store) error {
				n, err := st.PruneBefore(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				newPrinter(cmd.OutOrStdout()).plain(i18n.T("history.pruned", n, cutoff.Local().Format(historyTimeLayout)))
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Age of the runs to delete")
	return cmd
}
