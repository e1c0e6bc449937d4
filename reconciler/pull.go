package reconciler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/metadata"
	"github.com/crmarques/reason/record"
)

type PullAction string

const (
	PullActionWritten PullAction = "written"
	PullActionRemoved PullAction = "removed"
)

type PullOptions struct {
	DryRun bool
}

type PullEntry struct {
	Name     string     `json:"name" yaml:"name"`
	FilePath string     `json:"filePath" yaml:"filePath"`
	Action   PullAction `json:"action" yaml:"action"`
}

type PullReport struct {
	Kind    string      `json:"kind" yaml:"kind"`
	DryRun  bool        `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Entries []PullEntry `json:"entries" yaml:"entries"`
}

// Pull makes the local records of kind and the cached snapshot match the
// remote listing.
func (e *Engine) Pull(ctx context.Context, kind record.Kind, opts PullOptions) (PullReport, error) {
	if err := e.requireDependencies(); err != nil {
		return PullReport{}, err
	}
	defer e.flushMetrics(ctx)

	snapshot, err := e.Cache.Load(ctx)
	if err != nil {
		return PullReport{}, err
	}

	remote, err := e.listRemote(ctx, kind)
	if err != nil {
		return PullReport{}, err
	}

	if opts.DryRun {
		snapshot = snapshot.Clone()
	}

	entries, err := e.pullRecords(ctx, kind, localDir(kind), snapshot, remote, opts.DryRun)
	report := PullReport{Kind: kind.Name, DryRun: opts.DryRun, Entries: entries}
	if err != nil {
		return report, err
	}

	if !opts.DryRun {
		e.commit(ctx, commitMessage("pull", kind))
	}
	return report, nil
}

// pullRecords writes every remote record below targetDir and drops records
// that disappeared remotely. The cache is persisted after each change, so an
// interrupted pull leaves a cache consistent with the files written so far.
// Running it twice with the same listing changes nothing.
func (e *Engine) pullRecords(
	ctx context.Context,
	kind record.Kind,
	targetDir string,
	snapshot *metadata.Snapshot,
	remote []record.RemoteRecord,
	dryRun bool,
) ([]PullEntry, error) {
	remoteIDs := make(map[string]struct{}, len(remote))
	for _, item := range remote {
		remoteIDs[item.ID] = struct{}{}
	}

	entries := make([]PullEntry, 0, len(remote))
	recorder := e.recorder()

	for _, item := range remote {
		filePath := targetPathFor(kind, targetDir, snapshot, remoteIDs, item)

		if !dryRun {
			if err := e.Store.Write(ctx, filePath, item.LocalContent()); err != nil {
				recorder.RecordAction(kind.Name, "pull", "failed")
				return entries, faults.Wrap(err, fmt.Sprintf("failed to write %s %q", kind.Label, item.Name))
			}
		}

		snapshot.Upsert(kind, record.NewMetaRecord(filePath, item))
		if !dryRun {
			if err := e.persist(ctx, snapshot); err != nil {
				return entries, err
			}
		}

		recorder.RecordAction(kind.Name, "pull", string(PullActionWritten))
		entries = append(entries, PullEntry{Name: item.Name, FilePath: filePath, Action: PullActionWritten})
		debugctx.Printf(ctx, "pull wrote kind=%q id=%q path=%q dry_run=%t", kind.Name, item.ID, filePath, dryRun)
	}

	for _, cached := range snapshot.Records(kind) {
		if _, ok := remoteIDs[cached.ID]; ok {
			continue
		}

		if !dryRun && !pathClaimedBySurvivor(snapshot, kind, remoteIDs, cached) {
			if err := e.Store.Remove(ctx, cached.FilePath); err != nil {
				recorder.RecordAction(kind.Name, "pull", "failed")
				return entries, faults.Wrap(err, fmt.Sprintf("failed to remove %s %q", kind.Label, cached.Name))
			}
		}

		snapshot.Remove(kind, cached.ID)
		if !dryRun {
			if err := e.persist(ctx, snapshot); err != nil {
				return entries, err
			}
		}

		recorder.RecordAction(kind.Name, "pull", string(PullActionRemoved))
		entries = append(entries, PullEntry{Name: cached.Name, FilePath: cached.FilePath, Action: PullActionRemoved})
		debugctx.Printf(ctx, "pull removed kind=%q id=%q path=%q dry_run=%t", kind.Name, cached.ID, cached.FilePath, dryRun)
	}

	return entries, nil
}

// targetPathFor keeps the directory already mapped to the record id. New
// records get targetDir/<name>, or targetDir/<name>-<id> when that directory
// belongs to another record that still exists remotely.
func targetPathFor(
	kind record.Kind,
	targetDir string,
	snapshot *metadata.Snapshot,
	remoteIDs map[string]struct{},
	item record.RemoteRecord,
) string {
	if cached, ok := snapshot.FindByID(kind, item.ID); ok && cached.FilePath != "" {
		return cached.FilePath
	}

	dirName := recordDirName(item.Name, item.ID)
	candidate := filepath.Join(targetDir, dirName)
	if owner, ok := snapshot.FindByFilePath(kind, candidate); ok && owner.ID != item.ID {
		if _, alive := remoteIDs[owner.ID]; alive {
			return filepath.Join(targetDir, recordDirName(dirName+"-"+item.ID, item.ID))
		}
	}
	return candidate
}

// recordDirName turns a record name into a single directory name.
func recordDirName(name string, fallback string) string {
	for _, candidate := range []string{name, fallback} {
		cleaned := strings.TrimLeft(dirNameReplacer.Replace(strings.TrimSpace(candidate)), ".")
		if cleaned != "" {
			return cleaned
		}
	}
	return "record"
}

var dirNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

func pathClaimedBySurvivor(
	snapshot *metadata.Snapshot,
	kind record.Kind,
	remoteIDs map[string]struct{},
	stale record.MetaRecord,
) bool {
	for _, item := range snapshot.Records(kind) {
		if item.ID == stale.ID || item.FilePath != stale.FilePath {
			continue
		}
		if _, ok := remoteIDs[item.ID]; ok {
			return true
		}
	}
	return false
}
