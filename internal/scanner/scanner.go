// Package scanner discovers CSV test case files for batch generation.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// DefaultPatterns matches the CSV files picked up when no pattern is given.
var DefaultPatterns = []string{"*.csv"}

// Scanner discovers input files under a directory.
type Scanner interface {
	Scan(rootDir string, patterns []string, excludes []string) ([]string, error)
}

// FileScanner implements Scanner using filepath.WalkDir.
type FileScanner struct {
	Recursive bool
}

// NewScanner creates a new FileScanner.
func NewScanner(recursive bool) *FileScanner {
	return &FileScanner{Recursive: recursive}
}

// Scan returns the sorted paths under rootDir matching any pattern and no
// exclude. Patterns are matched against the slash-separated path relative to
// rootDir and against the base name; "**" matches any number of directories.
func (s *FileScanner) Scan(rootDir string, patterns []string, excludes []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	var files []string
	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if !s.Recursive || matchAny(rel, excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchAny(rel, excludes) || !matchAny(rel, patterns) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("scan", rootDir, 0,
			"failed to scan directory",
			"check that the directory exists and is readable",
			err)
	}

	sort.Strings(files)
	return files, nil
}

func matchAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(rel, filepath.ToSlash(p)) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-separated relative path against pattern.
func matchGlob(rel, pattern string) bool {
	if prefix, suffix, ok := strings.Cut(pattern, "**"); ok {
		prefix = strings.TrimSuffix(prefix, "/")
		suffix = strings.TrimPrefix(suffix, "/")
		if prefix != "" {
			if rel != prefix && !strings.HasPrefix(rel, prefix+"/") {
				return false
			}
			rel = strings.TrimPrefix(strings.TrimPrefix(rel, prefix), "/")
		}
		if suffix == "" {
			return true
		}
		parts := strings.Split(rel, "/")
		for i := range parts {
			if ok, _ := filepath.Match(suffix, strings.Join(parts[i:], "/")); ok {
				return true
			}
		}
		return false
	}

	if ok, _ := filepath.Match(pattern, filepath.Base(rel)); ok {
		return true
	}
	ok, _ := filepath.Match(pattern, rel)
	return ok
}
