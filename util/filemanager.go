package keautil

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/renameio"
	"github.com/pkg/errors"
)

// Default permissions of the rendered files and directories. The Kea
// configuration may contain secrets (e.g., database passwords) but the
// daemons run as a dedicated user, so the files remain world-readable
// like the ones installed by the Kea packages.
const (
	DefaultFileMode      os.FileMode = 0o644
	DefaultDirectoryMode os.FileMode = 0o755
)

// Performs the file operations required to converge the rendered files.
// The writes are atomic and happen only when the content differs from
// the existing one, so the repeated runs don't touch the files.
type FileManager struct {
	FileMode      os.FileMode
	DirectoryMode os.FileMode
}

// Creates a file manager using the default permissions.
func NewFileManager() *FileManager {
	return &FileManager{
		FileMode:      DefaultFileMode,
		DirectoryMode: DefaultDirectoryMode,
	}
}

func (*FileManager) IsExist(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else {
		return false, errors.Wrapf(err, "cannot stat the file: %s", path)
	}
}

func (fm *FileManager) RemoveIfExist(path string) error {
	ok, err := fm.IsExist(path)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err = os.Remove(path); err != nil {
		return errors.Wrapf(err, "cannot remove the file: %s", path)
	}

	return nil
}

// Reads the file content. The error wraps os.ErrNotExist if the file
// doesn't exist.
func (*FileManager) Read(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read the file: %s", path)
	}
	return content, nil
}

// Creates the directory and its parents if they don't exist. It returns
// true if the directory has been created.
func (fm *FileManager) EnsureDirectory(path string) (bool, error) {
	ok, err := fm.IsExist(path)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := os.MkdirAll(path, fm.DirectoryMode); err != nil {
		return false, errors.Wrapf(err, "cannot create a directory tree: %s", path)
	}
	return true, nil
}

// Writes the content to the file unless the file already has the same
// content. The file is replaced atomically. It returns true if the file
// has been written.
func (fm *FileManager) WriteIfChanged(path string, content []byte) (bool, error) {
	current, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(current, content) {
			return false, nil
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return false, errors.Wrapf(err, "cannot read the file: %s", path)
	}

	if _, err := fm.EnsureDirectory(filepath.Dir(path)); err != nil {
		return false, err
	}

	// The replaced file keeps its permissions.
	mode := fm.FileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := renameio.WriteFile(path, content, mode); err != nil {
		return false, errors.Wrapf(err, "cannot write the file: %s", path)
	}
	return true, nil
}

// Returns the sorted regular files that PurgeDirectory would remove from
// the directory, including the files inside the stale subdirectories. A
// missing directory has no stale files.
func (*FileManager) ListStaleFiles(directory string, keep map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "cannot list the directory: %s", directory)
	}
	var stale []string
	for _, entry := range entries {
		path := filepath.Join(directory, entry.Name())
		if keep[path] {
			continue
		}
		err := filepath.WalkDir(path, func(nested string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				stale = append(stale, nested)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "cannot list the stale entry: %s", path)
		}
	}
	sort.Strings(stale)
	return stale, nil
}

// Removes all entries from the directory except the ones listed in the
// keep set. The keep set contains the absolute paths. It returns the
// sorted list of the removed paths. A missing directory is not an error.
func (*FileManager) PurgeDirectory(directory string, keep map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "cannot list the directory: %s", directory)
	}
	var removed []string
	for _, entry := range entries {
		path := filepath.Join(directory, entry.Name())
		if keep[path] {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, errors.Wrapf(err, "cannot remove the stale entry: %s", path)
		}
		removed = append(removed, path)
	}
	sort.Strings(removed)
	return removed, nil
}
