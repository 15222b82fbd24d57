// Copyright (c) 2026 CloudMine Team
// cmpurge - bulk deletion tool for CloudMine applications
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the locale files against the Go sources: every key
// passed to i18n.T must exist in the primary locale, every other locale must
// carry all primary keys, and primary keys nothing refers to are reported as
// orphaned.
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	projectRoot   = "."
)

var (
	// i18n.T("purge.summary", ...)
	callRe = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	// Keys handed around as plain literals, e.g. usage keys.
	literalRe = regexp.MustCompile(`"([a-z_]+\.[a-z_.]+)"`)
)

// Report is the outcome of one lint pass.
type Report struct {
	// Undefined keys are used with i18n.T but absent from the primary locale.
	Undefined []string
	// Missing maps a secondary locale file to the primary keys it lacks.
	Missing map[string][]string
	// Orphaned keys exist in the primary locale but appear nowhere in code.
	Orphaned []string
}

// Failed reports whether the report contains errors. Orphans only warn.
func (r Report) Failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, keys := range r.Missing {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

func main() {
	rep, err := lint(projectRoot, localesDir)
	if err != nil {
		fmt.Printf("i18n-linter: %v\n", err)
		os.Exit(1)
	}
	printReport(os.Stdout, rep)
	if rep.Failed() {
		os.Exit(1)
	}
}

func lint(root, locales string) (Report, error) {
	rep := Report{Missing: map[string][]string{}}

	called, literals, err := scanSources(root)
	if err != nil {
		return rep, fmt.Errorf("scan sources: %w", err)
	}
	primary, err := loadKeysFromLocale(filepath.Join(locales, primaryLocale))
	if err != nil {
		return rep, fmt.Errorf("load primary locale: %w", err)
	}

	for key := range called {
		if _, ok := primary[key]; !ok {
			rep.Undefined = append(rep.Undefined, key)
		}
	}
	for key := range primary {
		_, c := called[key]
		_, l := literals[key]
		if !c && !l {
			rep.Orphaned = append(rep.Orphaned, key)
		}
	}

	files, err := filepath.Glob(filepath.Join(locales, "*.yaml"))
	if err != nil {
		return rep, err
	}
	for _, f := range files {
		if filepath.Base(f) == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(f)
		if err != nil {
			return rep, fmt.Errorf("load %s: %w", f, err)
		}
		var missing []string
		for key := range primary {
			if _, ok := keys[key]; !ok {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)
		rep.Missing[filepath.Base(f)] = missing
	}

	sort.Strings(rep.Undefined)
	sort.Strings(rep.Orphaned)
	return rep, nil
}

// scanSources collects keys from non-test Go files outside tools/.
func scanSources(root string) (called, literals map[string]struct{}, err error) {
	called = map[string]struct{}{}
	literals = map[string]struct{}{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range callRe.FindAllStringSubmatch(string(content), -1) {
			called[m[1]] = struct{}{}
		}
		for _, m := range literalRe.FindAllStringSubmatch(string(content), -1) {
			literals[m[1]] = struct{}{}
		}
		return nil
	})
	return called, literals, err
}

// loadKeysFromLocale reads a locale file and returns its keys, flattening
// nested maps into dotted keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}

func printReport(w io.Writer, rep Report) {
	section := func(title string, items []string) {
		fmt.Fprintf(w, "--- %s ---\n", title)
		if len(items) == 0 {
			fmt.Fprintln(w, "  none")
			return
		}
		for _, it := range items {
			fmt.Fprintf(w, "  - %s\n", it)
		}
	}
	section("Undefined keys (used in code, absent from "+primaryLocale+")", rep.Undefined)
	names := make([]string, 0, len(rep.Missing))
	for name := range rep.Missing {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		section("Missing in "+name, rep.Missing[name])
	}
	section("Orphaned keys", rep.Orphaned)
}
