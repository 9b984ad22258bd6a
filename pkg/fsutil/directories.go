// Package fsutil provides the file system helpers used to lay out the install tree.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// MakeParentDirs creates every missing parent directory of the file path name,
// one component at a time. Components that already exist are not an error;
// any other failure is returned. It reports whether at least one directory was
// created by the last component.
func MakeParentDirs(name string) (bool, error) {
	dir := filepath.Dir(filepath.Clean(name))
	if dir == "." || dir == string(filepath.Separator) {
		return false, nil
	}

	var (
		current string
		created bool
	)
	if filepath.IsAbs(dir) {
		current = filepath.VolumeName(dir) + string(filepath.Separator)
	}
	for _, comp := range strings.Split(strings.TrimPrefix(dir, current), string(filepath.Separator)) {
		if comp == "" {
			continue
		}
		current = filepath.Join(current, comp)
		err := os.Mkdir(current, DirModeDefault)
		switch {
		case err == nil:
			created = true
		case isExistErr(err):
			created = false
		default:
			return false, fmt.Errorf("failed to create directory %s: %w", current, err)
		}
	}
	return created, nil
}

func isExistErr(err error) bool {
	return errors.Is(err, fs.ErrExist) || errors.Is(err, syscall.EISDIR)
}

// IsDir reports whether path exists and is a directory. A missing path is not
// an error.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// PurgeDir removes every entry inside dir but keeps dir itself.
func PurgeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// WithinDir joins name onto root and reports whether the result stays inside
// root. Absolute names and names escaping through ".." are rejected.
func WithinDir(root, name string) (string, bool) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", false
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}
