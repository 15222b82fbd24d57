// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"net/url"
	"sync"

	"github.com/cloudmine/cmpurge/internal/cloudmine"
	"github.com/cloudmine/cmpurge/internal/logging"
	"github.com/cloudmine/cmpurge/internal/model"
)

// Recorder journals one run and the calls made during it. A Recorder with a
// nil Store does nothing. Store failures are logged as warnings and never
// returned, so a broken journal cannot interrupt a purge.
type Recorder struct {
	store Store

	mu      sync.Mutex
	ctx     context.Context
	run     model.Run
	seq     int
	started bool
}

// NewRecorder returns a Recorder writing to st.
func NewRecorder(st Store) *Recorder {
	return &Recorder{store: st}
}

// Enabled reports whether calls are actually persisted.
func (r *Recorder) Enabled() bool {
	return r != nil && r.store != nil
}

// Start inserts the run row. Later calls are recorded only if it succeeded.
func (r *Recorder) Start(ctx context.Context, run model.Run) {
	if !r.Enabled() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Journal writes must outlive a cancelled purge.
	r.ctx = context.WithoutCancel(ctx)
	r.run = run
	r.seq = 0
	if err := r.store.StartRun(r.ctx, run); err != nil {
		logging.Warnf("journal: could not record run %s: %v", run.ID, err)
		r.started = false
		return
	}
	r.started = true
}

// Observe records one finished API call. It has the cloudmine.Observer
// signature and is safe for concurrent use.
func (r *Recorder) Observe(c cloudmine.Call) {
	if !r.Enabled() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	r.seq++
	rec := model.CallRecord{
		RunID:      r.run.ID,
		Seq:        r.seq,
		Method:     c.Method,
		Path:       requestPath(c.URL),
		StatusCode: c.StatusCode,
		DurationMs: c.Duration.Milliseconds(),
		At:         c.At,
	}
	if c.Err != nil {
		rec.Error = c.Err.Error()
	}
	if err := r.store.RecordCall(r.ctx, rec); err != nil {
		logging.Warnf("journal: could not record call %d of run %s: %v", rec.Seq, rec.RunID, err)
	}
}

// Finish updates the run row with its final state.
func (r *Recorder) Finish(run model.Run) {
	if !r.Enabled() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	if err := r.store.FinishRun(r.ctx, run); err != nil {
		logging.Warnf("journal: could not finish run %s: %v", run.ID, err)
	}
	r.run = run
}

// Calls returns how many calls were recorded for the current run.
func (r *Recorder) Calls() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// requestPath keeps only the path and query of raw.
func requestPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.RequestURI()
}
