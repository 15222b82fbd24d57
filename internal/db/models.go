// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/cloudmine/cmpurge/internal/model"
)

// RunModel is the bun mapping of the runs table.
type RunModel struct {
	bun.BaseModel `bun:"table:runs"`

	ID             string       `bun:"id,pk"`
	Operation      string       `bun:"operation"`
	AppID          string       `bun:"app_id"`
	BaseURL        string       `bun:"base_url"`
	StartedAt      time.Time    `bun:"started_at"`
	FinishedAt     bun.NullTime `bun:"finished_at"`
	Status         string       `bun:"status"`
	UsersTotal     int          `bun:"users_total"`
	UsersFailed    int          `bun:"users_failed"`
	AppDataDeleted bool         `bun:"app_data_deleted"`
	DryRun         bool         `bun:"dry_run"`
	Error          string       `bun:"error"`
}

// CallModel is the bun mapping of the calls table.
type CallModel struct {
	bun.BaseModel `bun:"table:calls"`

	ID         int64     `bun:"id,pk,autoincrement"`
	RunID      string    `bun:"run_id"`
	Seq        int       `bun:"seq"`
	Method     string    `bun:"method"`
	Path       string    `bun:"path"`
	StatusCode int       `bun:"status_code"`
	Error      string    `bun:"error"`
	DurationMs int64     `bun:"duration_ms"`
	At         time.Time `bun:"at"`
}

func runToModel(r model.Run) RunModel {
	m := RunModel{
		ID:             r.ID,
		Operation:      string(r.Operation),
		AppID:          r.AppID,
		BaseURL:        r.BaseURL,
		StartedAt:      r.StartedAt.UTC(),
		Status:         string(r.Status),
		UsersTotal:     r.UsersTotal,
		UsersFailed:    r.UsersFailed,
		AppDataDeleted: r.AppDataDeleted,
		DryRun:         r.DryRun,
		Error:          r.Error,
	}
	if !r.FinishedAt.IsZero() {
		m.FinishedAt = bun.NullTime{Time: r.FinishedAt.UTC()}
	}
	return m
}

func runFromModel(m RunModel) model.Run {
	return model.Run{
		ID:             m.ID,
		Operation:      model.Operation(m.Operation),
		AppID:          m.AppID,
		BaseURL:        m.BaseURL,
		StartedAt:      m.StartedAt.UTC(),
		FinishedAt:     m.FinishedAt.Time.UTC(),
		Status:         model.RunStatus(m.Status),
		UsersTotal:     m.UsersTotal,
		UsersFailed:    m.UsersFailed,
		AppDataDeleted: m.AppDataDeleted,
		DryRun:         m.DryRun,
		Error:          m.Error,
	}
}

func callToModel(c model.CallRecord) CallModel {
	return CallModel{
		RunID:      c.RunID,
		Seq:        c.Seq,
		Method:     c.Method,
		Path:       c.Path,
		StatusCode: c.StatusCode,
		Error:      c.Error,
		DurationMs: c.DurationMs,
		At:         c.At.UTC(),
	}
}

func callFromModel(m CallModel) model.CallRecord {
	return model.CallRecord{
		RunID:      m.RunID,
		Seq:        m.Seq,
		Method:     m.Method,
		Path:       m.Path,
		StatusCode: m.StatusCode,
		Error:      m.Error,
		DurationMs: m.DurationMs,
		At:         m.At.UTC(),
	}
}
