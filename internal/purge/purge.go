// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

// Package purge implements the two bulk-deletion operations on top of the
// cloudmine client: wiping an application's data, and sweeping every user
// account together with that user's private data.
//
// The user sweep is best effort. A failure deleting one user's account or
// data is recorded in that user's outcome and the sweep moves on; only a
// failed account listing aborts the operation.
package purge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cloudmine/cmpurge/internal/cloudmine"
	"github.com/cloudmine/cmpurge/internal/logging"
)

// errEmptyUsername marks a listing entry whose key is the empty string. No
// request can address such a user, so both deletes fail without a call.
var errEmptyUsername = fmt.Errorf("%w: empty username in account listing", cloudmine.ErrResponseParse)

// Request holds the inputs of one bulk operation.
type Request struct {
	BaseURL   string
	AppID     string
	MasterKey string

	// AlsoDeleteAppData wipes application data after the user sweep.
	AlsoDeleteAppData bool
	// Parallelism above 1 sweeps that many users at once. Zero or one
	// keeps the sweep strictly sequential.
	Parallelism int
	// DryRun performs the listing only and reports what would be deleted.
	DryRun bool
}

// Validate reports ErrUsage when a required input is missing.
func (r Request) Validate() error {
	if strings.TrimSpace(r.BaseURL) == "" || r.AppID == "" || r.MasterKey == "" {
		return cloudmine.ErrUsage
	}
	return nil
}

// ClientFactory builds the API client for a request. Tests inject one
// that routes to a fake server.
type ClientFactory func(baseURL, masterKey string) (*cloudmine.Client, error)

// Purger runs bulk operations. The zero value is not usable; use New.
type Purger struct {
	newClient ClientFactory
	progress  func(UserOutcome)
	onListing func(listing *cloudmine.Result, users []string)
}

// Option configures a Purger.
type Option func(*Purger)

// WithClientFactory overrides how API clients are built.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Purger) {
		if f != nil {
			p.newClient = f
		}
	}
}

// WithProgress registers a callback invoked once per finished user. It is
// called from the sweeping goroutine(s); with Parallelism > 1 calls may be
// concurrent and arrive out of listing order.
func WithProgress(fn func(UserOutcome)) Option {
	return func(p *Purger) { p.progress = fn }
}

// WithListingHook registers a callback run once the account listing has
// been decoded and before any user is deleted.
func WithListingHook(fn func(listing *cloudmine.Result, users []string)) Option {
	return func(p *Purger) { p.onListing = fn }
}

// New returns a Purger. Without options it uses cloudmine.NewClient with
// default settings.
func New(opts ...Option) *Purger {
	p := &Purger{newClient: func(baseURL, masterKey string) (*cloudmine.Client, error) {
		return cloudmine.NewClient(baseURL, masterKey)
	}}
	for _, o := range opts {
		o(p)
	}
	return p
}

// DeleteAllApplicationData permanently deletes all data objects of the
// application. Missing inputs fail with ErrUsage before any request.
func (p *Purger) DeleteAllApplicationData(ctx context.Context, req Request) (*cloudmine.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	client, err := p.newClient(req.BaseURL, req.MasterKey)
	if err != nil {
		return nil, err
	}
	if req.DryRun {
		return &cloudmine.Result{Empty: true}, nil
	}
	return client.DeleteAppData(ctx, req.AppID)
}

// DeleteAllUsersAndTheirData lists the application's accounts, then for
// each user deletes the account and the user's private data. Both deletes
// are attempted for every user regardless of earlier failures. When
// req.AlsoDeleteAppData is set the application data is wiped once after all
// users have been processed.
//
// The returned error is non-nil only for usage errors, a failed listing, or
// context cancellation. Per-user and app-data failures live in the report.
func (p *Purger) DeleteAllUsersAndTheirData(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	client, err := p.newClient(req.BaseURL, req.MasterKey)
	if err != nil {
		return nil, err
	}

	users, listing, err := client.ListAccounts(ctx, req.AppID)
	report := &Report{AppID: req.AppID, BaseURL: client.BaseURL(), Listing: listing, DryRun: req.DryRun}
	if err != nil {
		return report, err
	}
	logging.Debugf("listing for app %s returned %d user(s)", req.AppID, len(users))
	if p.onListing != nil {
		p.onListing(listing, users)
	}

	report.Users = make([]UserOutcome, len(users))
	if req.DryRun {
		for i, u := range users {
			report.Users[i] = UserOutcome{Username: u, Skipped: true}
		}
		return report, nil
	}

	if err := p.sweep(ctx, client, req, users, report.Users); err != nil {
		return report, err
	}

	if req.AlsoDeleteAppData {
		res, err := client.DeleteAppData(ctx, req.AppID)
		report.AppData = &CallOutcome{Result: res, Err: err}
		if err != nil {
			logging.Warnf("deleting app data of %s failed: %v", req.AppID, err)
		}
	}
	return report, ctx.Err()
}

// sweep fills out[i] for users[i]. Sequential unless req.Parallelism > 1.
func (p *Purger) sweep(ctx context.Context, client *cloudmine.Client, req Request, users []string, out []UserOutcome) error {
	if req.Parallelism <= 1 {
		for i, u := range users {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = p.deleteUser(ctx, client, req.AppID, u)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(req.Parallelism)
	for i, u := range users {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out[i] = p.deleteUser(gctx, client, req.AppID, u)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// deleteUser deletes the account, then the user's data. The data delete is
// attempted even if the account delete failed.
func (p *Purger) deleteUser(ctx context.Context, client *cloudmine.Client, appID, username string) UserOutcome {
	o := UserOutcome{Username: username, attempted: true}
	if username == "" {
		o.Account = CallOutcome{Err: errEmptyUsername}
		o.Data = CallOutcome{Err: errEmptyUsername}
		logging.Warnf("skipping listing entry of app %s: %v", appID, errEmptyUsername)
		if p.progress != nil {
			p.progress(o)
		}
		return o
	}

	res, err := client.DeleteAccount(ctx, appID, username)
	o.Account = CallOutcome{Result: res, Err: err}
	if err != nil {
		logging.Warnf("deleting account %s failed: %v", username, err)
	}

	res, err = client.DeleteUserData(ctx, appID, username)
	o.Data = CallOutcome{Result: res, Err: err}
	if err != nil {
		logging.Warnf("deleting data of %s failed: %v", username, err)
	}

	if p.progress != nil {
		p.progress(o)
	}
	return o
}

// IsUsage reports whether err is a usage error.
func IsUsage(err error) bool {
	return errors.Is(err, cloudmine.ErrUsage)
}
