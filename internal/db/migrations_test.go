// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"
)

func appliedVersions(t *testing.T, conn *sql.DB) []string {
	t.Helper()
	rows, err := conn.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		t.Fatalf("query schema_migrations failed: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			t.Fatalf("scan version failed: %v", err)
		}
		versions = append(versions, v)
	}
	return versions
}

func TestRunMigrationsSqlite(t *testing.T) {
	conn, err := sql.Open("sqlite", "file:test_migrations?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if err := RunMigrations(conn, "sqlite"); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	want := []string{"000001_create_runs", "000002_create_calls"}
	if got := appliedVersions(t, conn); !reflect.DeepEqual(got, want) {
		t.Fatalf("applied versions = %v, want %v", got, want)
	}

	// Second run is a no-op.
	if err := RunMigrations(conn, "sqlite"); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
	if got := appliedVersions(t, conn); len(got) != len(want) {
		t.Fatalf("migrations re-applied: %v", got)
	}
}

func TestRunMigrations_UnknownType(t *testing.T) {
	conn, err := sql.Open("sqlite", "file:test_migrations_unknown?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if err := RunMigrations(conn, "oracle"); err == nil {
		t.Fatalf("expected error for unknown database type")
	}
}

func TestEmbeddedMigrationsPerDialect(t *testing.T) {
	for _, typ := range SupportedTypes {
		entries, err := embeddedMigrations.ReadDir("migrations/" + typ)
		if err != nil {
			t.Fatalf("no migrations for %s: %v", typ, err)
		}
		if len(entries) != 2 {
			t.Fatalf("%s: expected 2 migration files, got %d", typ, len(entries))
		}
	}
}

func TestSplitStatements(t *testing.T) {
	src := "-- comment\nCREATE TABLE a (x INT);\n\nCREATE INDEX i ON a (x);\n"
	got := splitStatements(src)
	want := []string{"CREATE TABLE a (x INT);", "CREATE INDEX i ON a (x);"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitStatements = %q, want %q", got, want)
	}
}
