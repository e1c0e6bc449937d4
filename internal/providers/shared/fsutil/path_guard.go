package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// IsPathUnderRoot reports whether candidate stays inside root once the
// symlinks of both paths are followed. Candidate may not exist yet.
func IsPathUnderRoot(root string, candidate string) bool {
	resolvedRoot, err := resolveExisting(root)
	if err != nil {
		return false
	}
	resolvedCandidate, err := resolveExisting(candidate)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(resolvedRoot, resolvedCandidate)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

// RemoveTreeUnderRoot deletes target and everything below it after checking
// that target resolves inside root and is not root itself. A missing target is
// not an error. Empty parents up to root are removed afterwards.
func RemoveTreeUnderRoot(root string, target string) error {
	if filepath.Clean(root) == filepath.Clean(target) {
		return fmt.Errorf("refusing to remove root directory %q", root)
	}
	if !IsPathUnderRoot(root, target) {
		return fmt.Errorf("path %q escapes base directory %q", target, root)
	}
	if err := os.RemoveAll(target); err != nil {
		return err
	}
	return CleanupEmptyParents(filepath.Dir(target), root)
}

// CleanupEmptyParents removes startDir and its parents while they are empty,
// stopping at rootDir.
func CleanupEmptyParents(startDir string, rootDir string) error {
	root := filepath.Clean(rootDir)
	for dir := filepath.Clean(startDir); dir != root && dir != "." && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return nil
		}
		if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// resolveExisting follows the symlinks of the longest existing prefix of path
// and appends the remaining, not yet created, elements unchanged.
func resolveExisting(path string) (string, error) {
	current := filepath.Clean(path)
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return filepath.Clean(path), nil
		}
		missing = append([]string{filepath.Base(current)}, missing...)
		current = parent
	}
}
