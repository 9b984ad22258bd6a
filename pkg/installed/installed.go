// Package installed reads and writes the per-package records kept in the
// install tree: one directory per package holding its files and a version
// file with the installed version string.
package installed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/glorpus-work/woezel/pkg/errors"
	"github.com/glorpus-work/woezel/pkg/fsutil"
	"github.com/glorpus-work/woezel/pkg/model"
)

// VersionFile is the name of the version marker inside a package directory.
const VersionFile = "version"

// Dir returns the directory of a package under root. Names that are not a
// single path element directly below root are rejected.
func Dir(root, name string) (string, error) {
	if err := model.ValidatePackageName(name); err != nil {
		return "", err
	}
	dir, ok := fsutil.WithinDir(root, name)
	if !ok || filepath.Dir(dir) != filepath.Clean(root) {
		return "", errors.Kindf(errors.ErrProtocol, "package %q resolves outside %s", name, root)
	}
	return dir, nil
}

// Read returns the record of name. The bool is false when no package
// directory exists. A directory without a version file yields a record with
// an empty Version.
func Read(root, name string) (*model.InstalledRecord, bool, error) {
	dir, err := Dir(root, name)
	if err != nil {
		return nil, false, err
	}
	exists, err := fsutil.IsDir(dir)
	if err != nil {
		return nil, false, errors.Join(errors.ErrFilesystem, err)
	}
	if !exists {
		return nil, false, nil
	}

	rec := &model.InstalledRecord{Name: name, Path: dir}
	data, err := os.ReadFile(filepath.Join(dir, VersionFile))
	switch {
	case err == nil:
		rec.Version = strings.TrimSpace(string(data))
	case os.IsNotExist(err):
	default:
		return nil, true, errors.Join(errors.ErrFilesystem, fmt.Errorf("reading version of %s: %w", name, err))
	}
	return rec, true, nil
}

// Write records version as the installed version of name.
func Write(root, name, version string) error {
	dir, err := Dir(root, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, fsutil.DirModeDefault); err != nil {
		return errors.Join(errors.ErrFilesystem, err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(dir, VersionFile), []byte(version), fsutil.FileModeDefault); err != nil {
		return errors.Join(errors.ErrFilesystem, err)
	}
	return nil
}

// Purge removes everything inside the package directory, keeping the
// directory itself.
func Purge(root, name string) error {
	dir, err := Dir(root, name)
	if err != nil {
		return err
	}
	if err := fsutil.PurgeDir(dir); err != nil {
		return errors.Join(errors.ErrFilesystem, err)
	}
	return nil
}

// Scan lists the package directories under root sorted by name. A missing
// root yields no records.
func Scan(root string) ([]*model.InstalledRecord, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Join(errors.ErrFilesystem, err)
	}

	records := make([]*model.InstalledRecord, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || model.ValidatePackageName(entry.Name()) != nil {
			continue
		}
		rec, ok, err := Read(root, entry.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}
