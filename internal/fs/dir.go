package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NotADirectoryError is returned when a path exists but is not a directory.
type NotADirectoryError struct {
	Path string
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("%s is not a directory", e.Path)
}

// EscapesRootError is returned when a relative path climbs out of its root.
type EscapesRootError struct {
	Root string
	Rel  string
}

func (e *EscapesRootError) Error() string {
	return fmt.Sprintf("%s escapes root %s", e.Rel, e.Root)
}

// IsWithin reports whether rel, joined onto a root, stays inside that root.
// Absolute paths are never within.
func IsWithin(rel string) bool {
	if filepath.IsAbs(rel) {
		return false
	}
	clean := filepath.Clean(rel)
	return clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

// StepDir joins rel onto root and checks that the result is an existing, readable directory.
func StepDir(root, rel string) (string, error) {
	if !IsWithin(rel) {
		return "", &EscapesRootError{Root: root, Rel: rel}
	}

	dir := filepath.Join(root, rel)
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &NotADirectoryError{Path: dir}
	}

	// A directory we cannot list is one a child process cannot work in either.
	f, err := os.Open(dir)
	if err != nil {
		return "", err
	}
	_ = f.Close()

	return dir, nil
}
