// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudmine/cmpurge/internal/db"
)

func TestHistory_Empty(t *testing.T) {
	h := newHarness(t)
	code := h.run("history")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, h.out.String(), "No runs recorded.")
}

func TestHistory_ListAndShow(t *testing.T) {
	h := newHarness(t)
	h.fake.SetListingUsers("alice")
	require.Equal(t, ExitOK, h.run("delete-data", "app1", "k", "--base-url", h.fake.URL()))
	require.Equal(t, ExitOK, h.run("delete-users", "app2", "k", "--base-url", h.fake.URL()))

	require.Equal(t, ExitOK, h.run("history"))
	out := h.out.String()
	assert.Contains(t, out, "RUN ID")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "delete-data")
	assert.Contains(t, out, "delete-users")

	require.Equal(t, ExitOK, h.run("history", "--limit", "1"))
	assert.NotContains(t, h.out.String(), "run-1")

	require.Equal(t, ExitOK, h.run("history", "show", "run-2"))
	out = h.out.String()
	assert.Contains(t, out, "Run run-2")
	assert.Contains(t, out, "Calls:")
	assert.Contains(t, out, "GET    /v1/app/app2/account -> 200")
	assert.Contains(t, out, "DELETE /v1/app/app2/user/alice/data?all=true -> 200")
}

func TestHistory_ShowUnknownRun(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ExitFailure, h.run("history", "show", "nope"))
	assert.Contains(t, h.out.String(), "No run with id nope.")

	assert.Equal(t, ExitUsage, h.run("history", "show"))
	assert.Equal(t, "usage: 'cmpurge history show run-id'\n", h.out.String())
}

func TestHistory_Export(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitOK, h.run("delete-data", "app1", "k", "--base-url", h.fake.URL()))

	target := filepath.Join(t.TempDir(), "journal.json")
	require.Equal(t, ExitOK, h.run("history", "export", target))
	assert.Contains(t, h.out.String(), "Exported 1 run(s)")

	f, err := os.Open(target + ".zst")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	data, err := db.ReadExport(f)
	require.NoError(t, err)
	require.Len(t, data.Runs, 1)
	assert.Equal(t, "run-1", data.Runs[0].Run.ID)
	require.Len(t, data.Runs[0].Calls, 1)
	assert.Equal(t, "/v1/app/app1/data?all=true", data.Runs[0].Calls[0].Path)
}

func TestHistory_Prune(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitOK, h.run("delete-data", "app1", "k", "--base-url", h.fake.URL()))

	h.app.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	require.Equal(t, ExitOK, h.run("history", "prune", "--older-than", "24h"))
	assert.Contains(t, h.out.String(), "Removed 1 run(s)")
	assert.Empty(t, h.storedRuns())

	assert.Equal(t, ExitUsage, h.run("history", "prune", "--older-than", "0s"))
}
