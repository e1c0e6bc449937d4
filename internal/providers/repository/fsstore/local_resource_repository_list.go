package fsstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/record"
	"github.com/crmarques/reason/repository"
)

// List reads the record directories directly below dir in name order. Files
// that cannot be decoded are logged and skipped. Record paths keep the form of
// dir, so a workspace-relative dir yields workspace-relative record paths.
func (r *LocalRecordRepository) List(ctx context.Context, dir string) ([]record.LocalRecord, error) {
	collectionPath, err := r.collectionDirPath(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(collectionPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			debugctx.Printf(ctx, "record fs list miss dir=%q", collectionPath)
			return []record.LocalRecord{}, nil
		}
		return nil, internalError("failed to list record directory", err)
	}

	logger := debugctx.Logger(ctx)
	items := make([]record.LocalRecord, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		recordDir := filepath.Join(collectionPath, entry.Name())
		item, found, readErr := r.readRecord(recordDir, filepath.Join(filepath.Clean(dir), entry.Name()))
		if readErr != nil {
			logger.Error(readErr, "skipping unreadable record", "dir", recordDir)
			continue
		}
		if !found {
			continue
		}
		items = append(items, item)
	}

	debugctx.Printf(ctx, "record fs list done dir=%q count=%d", collectionPath, len(items))
	return items, nil
}

func (r *LocalRecordRepository) Exists(_ context.Context, filePath string) (bool, error) {
	dir, err := r.recordDirPath(filePath)
	if err != nil {
		return false, err
	}

	for _, extension := range repository.ReadExtensions {
		candidate := filepath.Join(dir, filepath.Base(dir)+extension)
		if _, err := os.Stat(candidate); err == nil {
			return true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return false, internalError("failed to check record file", err)
		}
	}

	if info, err := os.Stat(dir); err == nil {
		return info.IsDir(), nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else {
		return false, internalError("failed to check record directory", err)
	}
}
