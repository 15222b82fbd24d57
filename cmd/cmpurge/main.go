// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

// Package main is the cmpurge binary built by the release pipeline.
package main

import (
	"os"

	"github.com/cloudmine/cmpurge/ui/cli"
)

func main() {
	os.Exit(cli.Execute())
}
