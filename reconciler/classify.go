package reconciler

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/crmarques/reason/record"
)

// Classify compares the cached snapshot, the local records and the remote
// listing of one kind. Three passes run in order (remote, local, cached) and a
// later pass overwrites the status an earlier pass gave to the same key, except
// that a missing local copy never hides an upstream update.
func Classify(meta []record.MetaRecord, local []record.LocalRecord, remote []record.RemoteRecord) *StatusTable {
	table := NewStatusTable()

	metaByID := make(map[string]record.MetaRecord, len(meta))
	metaByPath := make(map[string]record.MetaRecord, len(meta))
	for _, item := range meta {
		metaByID[item.ID] = item
		metaByPath[item.FilePath] = item
	}

	remoteByID := make(map[string]record.RemoteRecord, len(remote))
	newerInCache := make([]string, 0)
	for _, item := range remote {
		remoteByID[item.ID] = item

		cached, ok := metaByID[item.ID]
		switch {
		case !ok:
			table.Set(item.ID, item.Name, StatusCreatedUpstream)
		case cached.LastUpdated < item.LastUpdated:
			table.Set(item.ID, item.Name, StatusUpdatedUpstream)
		case cached.LastUpdated == item.LastUpdated:
			table.Set(item.ID, item.Name, StatusUnchanged)
		default:
			newerInCache = append(newerInCache, item.ID)
		}
	}

	localByPath := make(map[string]record.LocalRecord, len(local))
	for _, item := range local {
		localByPath[item.FilePath] = item

		cached, ok := metaByPath[item.FilePath]
		if !ok {
			table.Set(item.FilePath, item.Name, StatusCreatedLocal)
			continue
		}
		if !sameContent(item.Content(), cached.LocalContent()) {
			table.Set(cached.ID, cached.Name, StatusUpdatedLocal)
		}
	}

	for _, item := range meta {
		if _, ok := remoteByID[item.ID]; !ok {
			table.Set(item.ID, item.Name, StatusDeletedUpstream)
			continue
		}
		if _, ok := localByPath[item.FilePath]; ok {
			continue
		}
		// A server-side update to a record removed locally stays an upstream
		// change so push keeps refusing until it is pulled.
		if current, ok := table.Get(item.ID); ok && current.Status.IsUpstream() {
			continue
		}
		table.Set(item.ID, item.Name, StatusDeletedLocal)
	}

	for _, id := range newerInCache {
		if _, ok := table.Get(id); !ok {
			table.unclassified = append(table.unclassified, id)
		}
	}
	return table
}

func sameContent(local map[string]any, cached map[string]any) bool {
	return cmp.Equal(local, cached, cmpopts.EquateEmpty())
}
