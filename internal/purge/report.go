// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package purge

import (
	"errors"

	"github.com/cloudmine/cmpurge/internal/cloudmine"
)

// CallOutcome is the result of one API call.
type CallOutcome struct {
	Result *cloudmine.Result
	Err    error
}

// Failed reports whether the call errored.
func (c CallOutcome) Failed() bool {
	return c.Err != nil
}

// UserOutcome collects both deletes issued for one user.
type UserOutcome struct {
	Username string
	Account  CallOutcome
	Data     CallOutcome
	// Skipped is set for dry runs, where nothing was issued.
	Skipped bool

	// attempted is set once the sweep reached this user. Entries left
	// behind by a cancelled sweep stay zero.
	attempted bool
}

// Failed reports whether either delete for the user failed.
func (u UserOutcome) Failed() bool {
	return u.Account.Failed() || u.Data.Failed()
}

// Err joins the user's call errors.
func (u UserOutcome) Err() error {
	return errors.Join(u.Account.Err, u.Data.Err)
}

// Report is the outcome of DeleteAllUsersAndTheirData.
type Report struct {
	AppID   string
	BaseURL string
	// Listing is the initial account listing response.
	Listing *cloudmine.Result
	// Users holds one entry per listed username, in listing order.
	Users []UserOutcome
	// AppData is set when the app-data wipe was requested and issued.
	AppData *CallOutcome
	DryRun  bool
}

// Failed counts users whose account or data delete failed.
func (r *Report) Failed() int {
	n := 0
	for _, u := range r.Users {
		if u.attempted && u.Failed() {
			n++
		}
	}
	return n
}

// Processed counts users that were actually attempted. Failed is always a
// subset of it.
func (r *Report) Processed() int {
	n := 0
	for _, u := range r.Users {
		if u.attempted {
			n++
		}
	}
	return n
}

// Err returns the first failure recorded in the report, or nil. It lets
// callers map a partially failed sweep to an exit status.
func (r *Report) Err() error {
	for _, u := range r.Users {
		if err := u.Err(); err != nil {
			return err
		}
	}
	if r.AppData != nil && r.AppData.Err != nil {
		return r.AppData.Err
	}
	return nil
}
