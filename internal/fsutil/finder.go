// Package fsutil provides file system utility functions.
package fsutil

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ListFilesByExtension returns the full paths of the regular files directly
// inside dir whose name ends with extension, compared case-insensitively.
// Subdirectories are not searched. Paths are sorted.
func ListFilesByExtension(dir string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(extension)
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
