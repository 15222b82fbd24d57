// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"io"
	"strings"

	clog "github.com/charmbracelet/log"
)

// SetDebug switches the logger between debug and info level.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
		return
	}
	L.SetLevel(clog.InfoLevel)
}

// SetLevel parses a level name ("debug", "info", "warn", "error"). Unknown
// names leave the current level untouched and report false.
func SetLevel(name string) bool {
	lvl, err := clog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return false
	}
	L.SetLevel(lvl)
	return true
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer) {
	L.SetOutput(w)
}
