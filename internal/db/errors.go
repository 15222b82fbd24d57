// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"strings"
)

var (
	// ErrDuplicate is returned when inserting a run or call that already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned when a run id is unknown.
	ErrNotFound = errors.New("record not found")
)

// MapDBError maps driver errors onto the package sentinels. Matching is
// string-based so this file needs no driver imports.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	le := strings.ToLower(err.Error())
	// MySQL 1062, Postgres 23505, SQLite "UNIQUE constraint failed"
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}
