// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"
	"time"

	"github.com/cloudmine/cmpurge/internal/model"
)

// WithTestStore opens a fresh in-memory sqlite journal for fn and closes it
// afterwards.
func WithTestStore(t *testing.T, fn func(s *BunStore)) {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	fn(s)
}

func testRun(id string, started time.Time) model.Run {
	return model.Run{
		ID:        id,
		Operation: model.OpDeleteUsers,
		AppID:     "app-" + id,
		BaseURL:   "https://api.cloudmine.me/",
		StartedAt: started,
		Status:    model.StatusRunning,
	}
}

func mustStart(t *testing.T, s Store, run model.Run) {
	t.Helper()
	if err := s.StartRun(context.Background(), run); err != nil {
		t.Fatalf("StartRun(%s) failed: %v", run.ID, err)
	}
}
