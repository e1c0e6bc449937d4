package metadata

import "context"

// Store persists the metadata cache. Save rewrites the complete snapshot.
type Store interface {
	Init(ctx context.Context) error
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}
