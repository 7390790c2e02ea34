package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// listInputFiles returns the files to read for path: the file itself, or
// every regular file directly inside a directory, sorted by name.
func listInputFiles(path string, info os.FileInfo) ([]string, error) {
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			return []string{path}, nil
		}
		return nil, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		// Stat follows symlinks, so a link to a regular file counts.
		st, err := os.Stat(full)
		if err != nil || !st.Mode().IsRegular() {
			continue
		}
		files = append(files, full)
	}
	return files, nil
}
