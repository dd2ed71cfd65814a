// Package environment derives the environment to base-URL table from test rows.
package environment

import (
	"fmt"
	"path"
	"regexp"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// Defaults applied when Options leaves a field unset.
const (
	DefaultScreenshotRoot = "__screenshots__"
	DefaultTimeoutMs      = 30000
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Options controls the derived per-environment settings.
type Options struct {
	ScreenshotRoot string
	TimeoutMs      int
}

// Build returns one entry per distinct test_env value in first-seen row order.
// The first URL seen for an environment wins; rows with an empty environment or
// URL are skipped. It returns nil when flags.HasTestEnv is false. Warnings
// report ignored duplicates and environment names that are not valid keys.
func Build(table *domain.ParsedTable, flags domain.FeatureFlags, opts Options) ([]domain.EnvironmentEntry, []string) {
	if table == nil || !flags.HasTestEnv {
		return nil, nil
	}

	root := opts.ScreenshotRoot
	if root == "" {
		root = DefaultScreenshotRoot
	}
	timeout := opts.TimeoutMs
	if timeout <= 0 {
		timeout = DefaultTimeoutMs
	}

	var (
		entries  []domain.EnvironmentEntry
		warnings []string
	)
	seen := make(map[string]string)

	for _, row := range table.Rows {
		name, url := row.Env(), row.URL()
		if name == "" || url == "" {
			continue
		}
		if first, ok := seen[name]; ok {
			if first != url {
				warnings = append(warnings, fmt.Sprintf(
					"line %d: environment %q already uses %s, ignoring %s", row.Line, name, first, url))
			}
			continue
		}
		seen[name] = url
		if !ValidName(name) {
			warnings = append(warnings, fmt.Sprintf(
				"line %d: environment name %q should contain only letters, digits and hyphens", row.Line, name))
		}
		entries = append(entries, domain.EnvironmentEntry{
			Name:          name,
			BaseURL:       url,
			ScreenshotDir: path.Join(root, name),
			TimeoutMs:     timeout,
		})
	}

	return entries, warnings
}

// ValidName reports whether name is usable as an environment key.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// Names returns the entry names in order.
func Names(entries []domain.EnvironmentEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
