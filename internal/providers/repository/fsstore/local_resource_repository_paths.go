package fsstore

import (
	"fmt"
	"path/filepath"

	"github.com/crmarques/reason/internal/providers/shared/fsutil"
)

// recordDirPath validates that dir is a record directory inside the base
// directory and returns it cleaned.
func (r *LocalRecordRepository) recordDirPath(dir string) (string, error) {
	if r.baseDir == "" {
		return "", validationError("repository base directory must not be empty", nil)
	}

	cleaned := filepath.Clean(dir)
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(r.baseDir, cleaned)
	}
	if cleaned == r.baseDir {
		return "", validationError("record path must target a record directory, not the base directory", nil)
	}
	if !fsutil.IsPathUnderRoot(r.baseDir, cleaned) {
		return "", validationError(fmt.Sprintf("record path %q escapes repository base directory", dir), nil)
	}
	return cleaned, nil
}

// collectionDirPath validates a kind folder. The base directory itself is
// allowed.
func (r *LocalRecordRepository) collectionDirPath(dir string) (string, error) {
	if r.baseDir == "" {
		return "", validationError("repository base directory must not be empty", nil)
	}

	cleaned := filepath.Clean(dir)
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(r.baseDir, cleaned)
	}
	if !fsutil.IsPathUnderRoot(r.baseDir, cleaned) {
		return "", validationError(fmt.Sprintf("collection path %q escapes repository base directory", dir), nil)
	}
	return cleaned, nil
}
