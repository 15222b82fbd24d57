// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the records cmpurge keeps about its own runs. None of
// these are sent to the API; they back the local run journal.
package model

import (
	"fmt"
	"time"
)

// Operation names the bulk operation a run performed.
type Operation string

const (
	OpDeleteData  Operation = "delete-data"
	OpDeleteUsers Operation = "delete-users"
)

// RunStatus is the final state of a run.
type RunStatus string

const (
	StatusRunning RunStatus = "running"
	StatusOK      RunStatus = "ok"
	// StatusPartial means the listing succeeded but at least one per-user
	// or app-data call failed.
	StatusPartial RunStatus = "partial"
	StatusFailed  RunStatus = "failed"
)

// Run is one invocation of a bulk operation against one application.
type Run struct {
	ID             string
	Operation      Operation
	AppID          string
	BaseURL        string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         RunStatus
	UsersTotal     int
	UsersFailed    int
	AppDataDeleted bool
	DryRun         bool
	Error          string
}

// String returns a short single-line description.
func (r Run) String() string {
	return fmt.Sprintf("%s %s app=%s status=%s", r.ID, r.Operation, r.AppID, r.Status)
}

// Duration is the wall time of a finished run, zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CallRecord is one HTTP call issued during a run. Path holds the request
// path and query only; credentials are never recorded.
type CallRecord struct {
	RunID      string
	Seq        int
	Method     string
	Path       string
	StatusCode int
	Error      string
	DurationMs int64
	At         time.Time
}

// OK reports whether the call reached the API and got a 2xx status.
func (c CallRecord) OK() bool {
	return c.Error == "" && c.StatusCode >= 200 && c.StatusCode < 300
}

// RunExport bundles a run with its calls for export files.
type RunExport struct {
	Run   Run          `json:"run"`
	Calls []CallRecord `json:"calls"`
}

// ExportData is the document written by `history export`.
type ExportData struct {
	SchemaVersion int         `json:"schema_version"`
	ExportedAt    time.Time   `json:"exported_at"`
	Runs          []RunExport `json:"runs"`
}
