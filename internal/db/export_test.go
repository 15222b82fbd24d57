// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudmine/cmpurge/internal/model"
)

func TestExportRoundTrip(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		ctx := context.Background()
		base := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
		mustStart(t, s, testRun("e1", base))
		mustStart(t, s, testRun("e2", base.Add(time.Minute)))
		require.NoError(t, s.RecordCall(ctx, model.CallRecord{RunID: "e1", Seq: 1, Method: "GET", Path: "/v1/app/app-e1/account", StatusCode: 200, At: base}))

		data, err := BuildExport(ctx, s, 0)
		require.NoError(t, err)
		require.Len(t, data.Runs, 2)

		var buf bytes.Buffer
		require.NoError(t, WriteExport(&buf, data))

		// The payload really is zstd.
		zr, err := zstd.NewReader(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		zr.Close()

		back, err := ReadExport(&buf)
		require.NoError(t, err)
		assert.Equal(t, ExportSchemaVersion, back.SchemaVersion)
		require.Len(t, back.Runs, 2)
		assert.Equal(t, "e2", back.Runs[0].Run.ID)
		assert.Equal(t, "e1", back.Runs[1].Run.ID)
		require.Len(t, back.Runs[1].Calls, 1)
		assert.Equal(t, "/v1/app/app-e1/account", back.Runs[1].Calls[0].Path)
	})
}

func TestReadExport_Garbage(t *testing.T) {
	if _, err := ReadExport(bytes.NewReader([]byte("not zstd"))); err == nil {
		t.Fatalf("expected error reading garbage")
	}
}

func TestReadExport_NewerSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, &model.ExportData{SchemaVersion: ExportSchemaVersion + 1}))
	_, err := ReadExport(&buf)
	assert.Error(t, err)
}
