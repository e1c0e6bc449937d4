package fsstore

import (
	"context"
	"fmt"

	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/internal/providers/shared/fsutil"
)

// Remove deletes the record directory and any empty parents up to the base
// directory. A missing directory is not an error.
func (r *LocalRecordRepository) Remove(ctx context.Context, filePath string) error {
	dir, err := r.recordDirPath(filePath)
	if err != nil {
		return err
	}

	if err := fsutil.RemoveTreeUnderRoot(r.baseDir, dir); err != nil {
		return internalError(fmt.Sprintf("failed to remove record directory %q", dir), err)
	}
	debugctx.Printf(ctx, "record fs remove dir=%q", dir)
	return nil
}
