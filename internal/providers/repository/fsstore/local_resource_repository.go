package fsstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/repository"
)

var _ repository.RecordStore = (*LocalRecordRepository)(nil)

// LocalRecordRepository stores one record per directory below baseDir. The
// record file carries the directory name and a .json, .yaml or .yml extension.
type LocalRecordRepository struct {
	baseDir        string
	resourceFormat repository.ResourceFormat
}

func NewLocalRecordRepository(baseDir string, resourceFormat string) *LocalRecordRepository {
	format, err := repository.ParseResourceFormat(resourceFormat)
	if err != nil {
		format = repository.ResourceFormatJSON
	}

	return &LocalRecordRepository{
		baseDir:        filepath.Clean(baseDir),
		resourceFormat: format,
	}
}

func (r *LocalRecordRepository) BaseDir() string {
	return r.baseDir
}

func (r *LocalRecordRepository) Init(_ context.Context) error {
	if r.baseDir == "" || r.baseDir == "." {
		return validationError("repository base directory must not be empty", nil)
	}
	if err := os.MkdirAll(r.baseDir, 0o755); err != nil {
		return internalError("failed to initialize repository directory", err)
	}
	return nil
}

func (r *LocalRecordRepository) Check(_ context.Context) error {
	info, err := os.Stat(r.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return notFoundError("repository base directory does not exist")
		}
		return internalError("failed to inspect repository base directory", err)
	}
	if !info.IsDir() {
		return validationError("repository base directory is not a directory", nil)
	}
	return nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
