// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the cmpurge command-line interface using Cobra.
// It wires configuration, the run journal and the API client, and leaves the
// deletion logic to internal/purge.
package cli
