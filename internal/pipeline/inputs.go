package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"autosub/internal/services"
)

// ResolveInputs expands glob patterns into regular files. Patterns that
// match nothing are dropped, directories are ignored, and a file named by
// several patterns appears once, at its first position.
func ResolveInputs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var inputs []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "resolve", "glob", fmt.Sprintf("pattern %q", pattern), err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			abs, err := filepath.Abs(match)
			if err != nil {
				abs = filepath.Clean(match)
			}
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			inputs = append(inputs, match)
		}
	}
	if len(inputs) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "resolve", "inputs", "no valid input files found", nil)
	}
	return inputs, nil
}
