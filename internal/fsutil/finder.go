// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FindFiles recursively collects the files under rootPath whose names end in
// one of the given extensions, compared case-insensitively. Hidden
// directories are skipped. Paths are returned in lexical order so callers
// that merge the files see a stable block order.
func FindFiles(rootPath string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		return nil, errors.New("at least one extension is required")
	}
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		if e == "" {
			return nil, errors.New("extension must not be empty")
		}
		exts[i] = strings.ToLower(e)
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		for _, e := range exts {
			if strings.HasSuffix(name, e) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
