// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/cloudmine/cmpurge/internal/model"
)

// Store is the run journal. Implementations must be safe for concurrent use.
type Store interface {
	StartRun(ctx context.Context, run model.Run) error
	FinishRun(ctx context.Context, run model.Run) error
	RecordCall(ctx context.Context, call model.CallRecord) error

	// ListRuns returns runs newest first. A limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	GetRun(ctx context.Context, id string) (*model.Run, error)
	CallsForRun(ctx context.Context, runID string) ([]model.CallRecord, error)
	CountCalls(ctx context.Context, runID string) (int, error)
	// PruneBefore removes runs started before cutoff together with their calls.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// BunStore implements Store on top of bun.
type BunStore struct {
	bun    *bun.DB
	dbType string
}

var _ Store = (*BunStore)(nil)

// BunDB exposes the underlying handle for raw helpers and tests.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

// Type returns the configured database type.
func (s *BunStore) Type() string { return s.dbType }

func (s *BunStore) StartRun(ctx context.Context, run model.Run) error {
	if run.ID == "" {
		return fmt.Errorf("start run: empty id")
	}
	m := runToModel(run)
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	dbLogf("started run %s (%s)", run.ID, run.Operation)
	return nil
}

// FinishRun overwrites the mutable columns of an existing run.
func (s *BunStore) FinishRun(ctx context.Context, run model.Run) error {
	m := runToModel(run)
	res, err := s.bun.NewUpdate().Model(&m).
		Column("finished_at", "status", "users_total", "users_failed", "app_data_deleted", "error").
		WherePK().
		Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	dbLogf("finished run %s status=%s", run.ID, run.Status)
	return nil
}

func (s *BunStore) RecordCall(ctx context.Context, call model.CallRecord) error {
	m := callToModel(call)
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	return nil
}

func (s *BunStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	var rows []RunModel
	q := s.bun.NewSelect().Model(&rows).OrderExpr("started_at DESC").OrderExpr("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	out := make([]model.Run, 0, len(rows))
	for _, r := range rows {
		out = append(out, runFromModel(r))
	}
	return out, nil
}

func (s *BunStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var m RunModel
	if err := s.bun.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	r := runFromModel(m)
	return &r, nil
}

// CallsForRun returns the calls of a run in issue order.
func (s *BunStore) CallsForRun(ctx context.Context, runID string) ([]model.CallRecord, error) {
	var rows []CallModel
	if err := s.bun.NewSelect().Model(&rows).Where("run_id = ?", runID).OrderExpr("seq ASC").Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	out := make([]model.CallRecord, 0, len(rows))
	for _, c := range rows {
		out = append(out, callFromModel(c))
	}
	return out, nil
}

// CountCalls is a small raw-SQL helper used by history listings.
func (s *BunStore) CountCalls(ctx context.Context, runID string) (int, error) {
	var n int
	if err := QueryRawInto(ctx, s.bun, &n, "SELECT COUNT(*) FROM calls WHERE run_id = ?", runID); err != nil {
		return 0, MapDBError(err)
	}
	return n, nil
}

// PruneBefore returns how many runs were removed.
func (s *BunStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := ExecRaw(ctx, tx, "DELETE FROM calls WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)", cutoff.UTC()); err != nil {
			return err
		}
		res, err := ExecRaw(ctx, tx, "DELETE FROM runs WHERE started_at < ?", cutoff.UTC())
		if err != nil {
			return err
		}
		total, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, MapDBError(err)
	}
	return total, nil
}

func (s *BunStore) Close() error {
	if s == nil || s.bun == nil {
		return nil
	}
	return s.bun.Close()
}
