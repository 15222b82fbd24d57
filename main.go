// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for cmpurge.
//
// Usage:
//
//	go run . delete-data <appId> <masterKey>
//	./cmpurge delete-users <appId> <masterKey> [true|false]
//
// See --help for all commands and flags.
package main

import (
	"os"

	"github.com/cloudmine/cmpurge/ui/cli"
)

func main() {
	os.Exit(cli.Execute())
}
