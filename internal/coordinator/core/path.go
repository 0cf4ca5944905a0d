package core

import "github.com/perfinsights/mre/pkg/local"

// FindLocalFiles expands every glob pattern and merges the matched regular
// files, preserving pattern order.
func FindLocalFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := local.FindFiles(pattern)
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}
