package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mcncl/mapdata/internal/errors"
)

// Discover walks root and returns the slash-separated relative paths of the
// regular files matching any of patterns, sorted.
func Discover(root string, patterns []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("cannot read source directory '%s'", root), err)
	}
	if !info.IsDir() {
		return nil, errors.NewInputError(fmt.Sprintf("source '%s' is not a directory", root), errors.ErrInvalidFilePath)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if Match(patterns, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("failed to walk '%s'", root), err)
	}

	sort.Strings(files)
	return files, nil
}

// Match reports whether the slash-separated relative path matches any pattern.
func Match(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
