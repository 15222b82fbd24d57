// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/cloudmine/cmpurge/internal/model"
)

// ExportSchemaVersion is written into every export file.
const ExportSchemaVersion = 1

// BuildExport collects up to limit runs (newest first, <= 0 for all) with
// their calls.
func BuildExport(ctx context.Context, st Store, limit int) (*model.ExportData, error) {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	data := &model.ExportData{
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    time.Now().UTC(),
		Runs:          make([]model.RunExport, 0, len(runs)),
	}
	for _, r := range runs {
		calls, err := st.CallsForRun(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("calls for run %s: %w", r.ID, err)
		}
		data.Runs = append(data.Runs, model.RunExport{Run: r, Calls: calls})
	}
	return data, nil
}

// WriteExport writes data as zstd-compressed, indented JSON.
func WriteExport(w io.Writer, data *model.ExportData) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode export: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush zstd writer: %w", err)
	}
	return nil
}

// ReadExport decodes a file produced by WriteExport.
func ReadExport(r io.Reader) (*model.ExportData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	var data model.ExportData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if data.SchemaVersion > ExportSchemaVersion {
		return nil, fmt.Errorf("unsupported export schema version %d", data.SchemaVersion)
	}
	return &data, nil
}
