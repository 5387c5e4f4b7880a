package request

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when the named request file is not a regular file inside the temp dir.
var ErrNotFound = errors.New("File not found")

// Resolve joins name under tempDir and returns the path of an existing regular file.
// Names that are absolute, climb out with "..", or resolve through a symlink to
// somewhere outside tempDir are treated as missing.
func Resolve(tempDir, name string) (string, error) {
	if name == "" || !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q is not a local name", ErrNotFound, name)
	}
	target := filepath.Join(tempDir, name)

	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q is not a regular file", ErrNotFound, name)
	}

	if err := within(tempDir, target); err != nil {
		return "", err
	}
	return target, nil
}

func within(dir, target string) error {
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	realTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	rel, err := filepath.Rel(realDir, realTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q escapes the temp dir", ErrNotFound, target)
	}
	return nil
}
