package fsmetadata

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/internal/providers/shared/fsutil"
	metadatadomain "github.com/crmarques/reason/metadata"
)

// Init writes an empty cache when none exists yet. An existing cache is left
// untouched.
func (s *FSMetadataService) Init(ctx context.Context) error {
	if _, err := os.Stat(s.Path()); err == nil {
		debugctx.Printf(ctx, "metadata fs init skip file=%q exists", s.Path())
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return internalError("failed to inspect metadata cache", err)
	}
	return s.Save(ctx, metadatadomain.NewSnapshot())
}

func (s *FSMetadataService) Load(ctx context.Context) (*metadatadomain.Snapshot, error) {
	targetPath := s.Path()
	debugctx.Printf(ctx, "metadata fs load start file=%q", targetPath)

	data, err := os.ReadFile(targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			debugctx.Printf(ctx, "metadata fs load miss file=%q", targetPath)
			return metadatadomain.NewSnapshot(), nil
		}
		return nil, internalError("failed to read metadata cache", err)
	}

	snapshot := metadatadomain.NewSnapshot()
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, validationError("invalid metadata cache "+targetPath, err)
	}
	debugctx.Printf(ctx, "metadata fs load done file=%q", targetPath)
	return snapshot, nil
}

func (s *FSMetadataService) Save(ctx context.Context, snapshot *metadatadomain.Snapshot) error {
	if snapshot == nil {
		snapshot = metadatadomain.NewSnapshot()
	}

	encoded, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return internalError("failed to encode metadata cache", err)
	}
	encoded = append(encoded, '\n')

	targetPath := s.Path()
	if err := fsutil.WriteFileAtomic(targetPath, encoded, 0o644, ".reason-meta-*"); err != nil {
		debugctx.Printf(ctx, "metadata fs save failed file=%q error=%v", targetPath, err)
		return internalError("failed to write metadata cache", err)
	}
	debugctx.Printf(ctx, "metadata fs save done file=%q bytes=%d", targetPath, len(encoded))
	return nil
}
