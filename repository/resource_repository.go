package repository

import (
	"context"

	"github.com/crmarques/reason/record"
)

// RecordStore manages the local record directories of one workspace. Paths
// passed to it are record directory paths, the record file lives inside.
type RecordStore interface {
	// List reads every record directory directly below dir. A missing dir
	// yields an empty list.
	List(ctx context.Context, dir string) ([]record.LocalRecord, error)
	// Write stores content as the record file of the directory filePath,
	// creating the directory when needed.
	Write(ctx context.Context, filePath string, content map[string]any) error
	// Remove deletes the record directory filePath and everything in it.
	Remove(ctx context.Context, filePath string) error
	Exists(ctx context.Context, filePath string) (bool, error)
}

// Committer records a snapshot of the workspace after a mutating command.
type Committer interface {
	// Commit stages all workspace changes and commits them. It reports false
	// when there was nothing to commit.
	Commit(ctx context.Context, message string) (bool, error)
}
