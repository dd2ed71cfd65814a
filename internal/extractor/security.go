package extractor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePath rejects module paths that would escape the output directory.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("module path is empty")
	}
	slashed := strings.ReplaceAll(path, `\`, "/")
	if filepath.IsAbs(path) || strings.HasPrefix(slashed, "/") || filepath.VolumeName(path) != "" {
		return fmt.Errorf("module path %q is absolute; only paths relative to the output directory are written", path)
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return fmt.Errorf("module path %q leaves the output directory", path)
		}
	}
	return nil
}
