// Package filesys provides the small set of filesystem primitives
// ioadapter needs to lay out segment files on disk: directory creation,
// existence checks, and whole-file read/write.
package filesys

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrIsNotDir = errors.New("path isn't a directory")

// CreateDir creates dirPath with permission, creating parents as needed.
// If the path already exists as a file rather than a directory, it
// returns ErrIsNotDir; an existing directory is left as it is.
func CreateDir(dirPath string, permission os.FileMode) error {
	stat, err := os.Stat(dirPath)
	if err == nil && !stat.IsDir() {
		return ErrIsNotDir
	}
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dirPath, permission)
}

// Exists reports whether path exists, distinguishing a genuine stat
// failure from a clean "not found".
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadFile reads the entire content of path.
func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes contents to path with permission, creating or
// truncating the file as needed.
func WriteFile(path string, permission os.FileMode, contents []byte) error {
	return os.WriteFile(path, contents, permission)
}

// RemoveFile removes path. It is not an error for path to already be gone.
func RemoveFile(path string) error {
	err := os.Remove(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ListDir lists the base names of every regular file directly inside dir.
// A missing dir is reported as an empty list, not an error.
func ListDir(dir string) ([]string, error) {
	return listDir(dir, false)
}

// ListSubdirs lists the base names of every subdirectory directly inside
// dir. A missing dir is reported as an empty list, not an error. Used to
// enumerate the value subdirectories ioadapter lays out under
// dataDir/partition/bucket/field/.
func ListSubdirs(dir string) ([]string, error) {
	return listDir(dir, true)
}

func listDir(dir string, wantDirs bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() == wantDirs {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Join is a thin re-export of filepath.Join so callers only need this
// package for path construction within ioadapter.
func Join(elem ...string) string {
	return filepath.Join(elem...)
}
