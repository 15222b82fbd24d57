// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudmine/cmpurge/internal/cloudmine"
	"github.com/cloudmine/cmpurge/internal/db"
	"github.com/cloudmine/cmpurge/internal/i18n"
	"github.com/cloudmine/cmpurge/internal/logging"
	"github.com/cloudmine/cmpurge/internal/model"
	"github.com/cloudmine/cmpurge/internal/purge"
)

// requireArgs is the usage guard shared by all commands taking positionals.
// It runs before any other setup: when a required positional is missing or
// empty, or more than atMost are given, the localized usage line is the only
// output.
func (a *app) requireArgs(n, atMost int, usageKey string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := cobra.RangeArgs(n, atMost)(cmd, args)
		for i := 0; err == nil && i < n; i++ {
			if strings.TrimSpace(args[i]) == "" {
				err = fmt.Errorf("argument %d is empty", i+1)
			}
		}
		if err == nil {
			return nil
		}
		a.initLanguage(cmd)
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T(usageKey))
		return reported(usageError(err))
	}
}

// flagArg reports whether the optional positional at i is the literal "true".
func flagArg(args []string, i int) bool {
	return len(args) > i && args[i] == "true"
}

func newDeleteDataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-data <appId> <masterKey>",
		Short: "Delete all data objects of an application",
		Long: `Permanently deletes every data object of the application at the configured
base URL (default https://api.cloudmine.me/). User accounts are kept.`,
		Args: a.requireArgs(2, 2, "usage.delete_data"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := purge.Request{
				BaseURL:     a.cfg.API.BaseURL,
				AppID:       args[0],
				MasterKey:   args[1],
				Parallelism: a.cfg.Purge.Parallelism,
				DryRun:      a.dryRun,
			}
			return a.runDeleteData(cmd, req)
		},
	}
}

func newDeleteUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-users <appId> <masterKey> [deleteAppDataAlso]",
		Short: "Delete every user account and its data",
		Long: `Lists all user accounts of the application, then deletes each account and the
user's private data. Pass "true" as the third argument to also wipe all
application data afterwards.`,
		Args: a.requireArgs(2, 3, "usage.delete_users"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := purge.Request{
				BaseURL:           a.cfg.API.BaseURL,
				AppID:             args[0],
				MasterKey:         args[1],
				AlsoDeleteAppData: flagArg(args, 2),
				Parallelism:       a.cfg.Purge.Parallelism,
				DryRun:            a.dryRun,
			}
			return a.runDeleteUsers(cmd, req)
		},
	}
}

func newDeleteUsersAtCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-users-at <domain> <appId> <masterKey> [deleteAppDataAlso]",
		Short: "Delete every user account and its data on a given API host",
		Long: `Same as delete-users, against the API host given as first argument. A bare
host name is contacted over https; an explicit http:// is kept.`,
		Args: a.requireArgs(3, 4, "usage.delete_users_at"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := purge.Request{
				BaseURL:           args[0],
				AppID:             args[1],
				MasterKey:         args[2],
				AlsoDeleteAppData: flagArg(args, 3),
				Parallelism:       a.cfg.Purge.Parallelism,
				DryRun:            a.dryRun,
			}
			return a.runDeleteUsers(cmd, req)
		},
	}
}

// confirm asks the operator to type the app id. It is skipped for --yes,
// dry runs and non-interactive stdin.
func (a *app) confirm(cmd *cobra.Command, out *printer, appID, baseURL string) error {
	if a.assumeYes || a.dryRun || !a.isTerminal() {
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), i18n.T("purge.confirm_prompt", appID, baseURL))
	answer, _ := bufio.NewReader(a.stdin).ReadString('\n')
	if strings.TrimSpace(answer) != appID {
		out.fail(i18n.T("purge.confirm_aborted"))
		return reported(errAborted)
	}
	return nil
}

// startRun normalizes the base URL, confirms and opens the journal. The
// returned cleanup closes the journal.
func (a *app) startRun(cmd *cobra.Command, out *printer, op model.Operation, req purge.Request) (*db.Recorder, model.Run, func(), error) {
	base, err := cloudmine.NormalizeBaseURL(req.BaseURL)
	if err != nil {
		return nil, model.Run{}, nil, usageError(err)
	}
	if err := a.confirm(cmd, out, req.AppID, base); err != nil {
		return nil, model.Run{}, nil, err
	}

	st := a.openJournal()
	cleanup := func() {
		if st != nil {
			if err := st.Close(); err != nil {
				logging.Warnf("closing journal: %v", err)
			}
		}
	}
	rec := db.NewRecorder(st)
	run := model.Run{
		ID:        a.newRunID(),
		Operation: op,
		AppID:     req.AppID,
		BaseURL:   base,
		StartedAt: a.now().UTC(),
		Status:    model.StatusRunning,
		DryRun:    req.DryRun,
	}
	rec.Start(cmd.Context(), run)
	if rec.Enabled() {
		logging.Infof("%s", i18n.T("purge.run_id", run.ID))
	}
	return rec, run, cleanup, nil
}

func (a *app) runDeleteData(cmd *cobra.Command, req purge.Request) error {
	out := newPrinter(cmd.OutOrStdout())
	rec, run, cleanup, err := a.startRun(cmd, out, model.OpDeleteData, req)
	if err != nil {
		return err
	}
	defer cleanup()

	p := purge.New(purge.WithClientFactory(a.clientFactory(rec)))
	res, err := p.DeleteAllApplicationData(cmd.Context(), req)

	switch {
	case req.DryRun:
		out.dim(i18n.T("purge.dry_run_app_data", req.AppID))
	case err == nil:
		out.ok(i18n.T("purge.deleted_app_data", res.String()))
	case res != nil:
		out.fail(i18n.T("purge.response", res.String()))
	}

	run.FinishedAt = a.now().UTC()
	run.Status = model.StatusOK
	run.AppDataDeleted = err == nil && !req.DryRun
	if err != nil {
		run.Status = model.StatusFailed
		run.Error = err.Error()
	}
	rec.Finish(run)
	return err
}

func (a *app) runDeleteUsers(cmd *cobra.Command, req purge.Request) error {
	out := newPrinter(cmd.OutOrStdout())
	rec, run, cleanup, err := a.startRun(cmd, out, model.OpDeleteUsers, req)
	if err != nil {
		return err
	}
	defer cleanup()

	p := purge.New(
		purge.WithClientFactory(a.clientFactory(rec)),
		purge.WithListingHook(func(listing *cloudmine.Result, users []string) {
			out.plain(i18n.T("purge.response", listing.String()))
			if len(users) == 0 {
				out.dim(i18n.T("purge.no_users", req.AppID))
			}
		}),
		purge.WithProgress(func(o purge.UserOutcome) {
			printUserOutcome(out, o)
		}),
	)
	report, err := p.DeleteAllUsersAndTheirData(cmd.Context(), req)
	printReport(out, req, report, err)

	run.FinishedAt = a.now().UTC()
	finishRunFromReport(&run, report, err)
	rec.Finish(run)

	if err != nil {
		return err
	}
	return report.Err()
}

func printUserOutcome(out *printer, o purge.UserOutcome) {
	if o.Account.Err != nil {
		out.fail(i18n.T("purge.user_failed", o.Username, o.Account.Err))
	} else {
		out.ok(i18n.T("purge.deleted_user", o.Username))
	}
	if o.Data.Err != nil {
		out.fail(i18n.T("purge.user_failed", o.Username, o.Data.Err))
	} else {
		out.plain(i18n.T("purge.user_data", o.Data.Result.String()))
	}
}

func printReport(out *printer, req purge.Request, report *purge.Report, err error) {
	if report == nil {
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) && report.Users == nil {
		if report.Listing != nil {
			out.fail(i18n.T("purge.response", report.Listing.String()))
		}
		out.fail(i18n.T("purge.listing_failed"))
		return
	}
	if report.DryRun {
		for _, u := range report.Users {
			out.dim(i18n.T("purge.dry_run_user", u.Username))
		}
		if req.AlsoDeleteAppData {
			out.dim(i18n.T("purge.dry_run_app_data", req.AppID))
		}
		return
	}
	if report.AppData != nil {
		if report.AppData.Err == nil {
			out.ok(i18n.T("purge.deleted_app_data", report.AppData.Result.String()))
		} else if report.AppData.Result != nil {
			out.fail(i18n.T("purge.response", report.AppData.Result.String()))
		}
	}
	processed := report.Processed()
	failed := report.Failed()
	line := i18n.T("purge.summary", processed, processed-failed, failed)
	if failed > 0 {
		out.fail(line)
	} else {
		out.line(headerStyle, line)
	}
}

// finishRunFromReport fills the final state of a delete-users run.
func finishRunFromReport(run *model.Run, report *purge.Report, err error) {
	if report != nil {
		run.UsersTotal = len(report.Users)
		run.UsersFailed = report.Failed()
		run.AppDataDeleted = report.AppData != nil && report.AppData.Err == nil
	}
	switch {
	case err != nil:
		run.Status = model.StatusFailed
		run.Error = err.Error()
	case report != nil && report.Err() != nil:
		run.Status = model.StatusPartial
		run.Error = report.Err().Error()
	default:
		run.Status = model.StatusOK
	}
}
