// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/cloudmine/cmpurge/buildvars"
)

func TestResolveBuildVersion_MainVersion(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: modulePath, Version: "v1.2.3"},
	}
	v, c, d := resolveBuildVersion(info)
	if v != "v1.2.3" {
		t.Fatalf("expected v1.2.3 got %s", v)
	}
	if c != gitCommit {
		t.Fatalf("expected commit to equal package gitCommit (default) got %s", c)
	}
	if d != buildDate {
		t.Fatalf("expected date to equal package buildDate (default) got %s", d)
	}
}

func TestResolveBuildVersion_DependencyFallback(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "example.com/wrapper", Version: "(devel)"},
		Deps: []*debug.Module{{Path: modulePath, Version: "v0.3.1"}},
	}
	if v, _, _ := resolveBuildVersion(info); v != "v0.3.1" {
		t.Fatalf("expected dependency version fallback got %s", v)
	}
}

func TestResolveBuildVersion_VCSSettings(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: modulePath, Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-05-01T10:00:00Z"},
		},
	}
	_, c, d := resolveBuildVersion(info)
	if c != "abc123" || d != "2026-05-01T10:00:00Z" {
		t.Fatalf("unexpected commit/date %q %q", c, d)
	}
}

func TestResolveBuildVersion_LinkedVersion(t *testing.T) {
	orig := buildvars.Version
	defer func() { buildvars.Version = orig }()
	buildvars.Version = "v9.9.9"

	info := &debug.BuildInfo{Main: debug.Module{Path: modulePath, Version: "(devel)"}}
	if v, _, _ := resolveBuildVersion(info); v != "v9.9.9" {
		t.Fatalf("expected linked version got %s", v)
	}
}

func TestResolveBuildVersion_GitCommitFallback(t *testing.T) {
	orig := gitCommit
	defer func() { gitCommit = orig }()
	gitCommit = "deadbeef"

	info := &debug.BuildInfo{Main: debug.Module{Path: modulePath, Version: "(devel)"}}
	if v, _, _ := resolveBuildVersion(info); v != "deadbeef" {
		t.Fatalf("expected gitCommit fallback got %s", v)
	}
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	if code := h.run("version"); code != ExitOK {
		t.Fatalf("version exited %d", code)
	}
	if !strings.HasPrefix(h.out.String(), "version: ") {
		t.Fatalf("unexpected output %q", h.out.String())
	}
}
