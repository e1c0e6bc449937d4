package reconciler

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-logr/logr"

	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/metadata"
	"github.com/crmarques/reason/metrics"
	"github.com/crmarques/reason/record"
	"github.com/crmarques/reason/repository"
	"github.com/crmarques/reason/server"
)

// Engine reconciles the records of one workspace against the remote
// collections. Every operation is sequential; concurrent invocations against
// the same workspace are not coordinated.
type Engine struct {
	Store     repository.RecordStore
	Cache     metadata.Store
	Server    server.RecordServer
	Runner    server.Runner
	Committer repository.Committer
	Metrics   metrics.Recorder
	Logger    logr.Logger
}

// Status classifies the records of kind without changing anything.
func (e *Engine) Status(ctx context.Context, kind record.Kind) (*StatusTable, error) {
	state, err := e.observe(ctx, kind)
	if err != nil {
		return nil, err
	}

	table := Classify(state.snapshot.Records(kind), state.local, state.remote)
	e.reportClassification(ctx, kind, table)
	return table, nil
}

type observedState struct {
	snapshot *metadata.Snapshot
	local    []record.LocalRecord
	remote   []record.RemoteRecord
}

func (e *Engine) observe(ctx context.Context, kind record.Kind) (observedState, error) {
	if err := e.requireDependencies(); err != nil {
		return observedState{}, err
	}

	snapshot, err := e.Cache.Load(ctx)
	if err != nil {
		return observedState{}, err
	}

	remote, err := e.listRemote(ctx, kind)
	if err != nil {
		return observedState{}, err
	}

	local, err := e.Store.List(ctx, localDir(kind))
	if err != nil {
		return observedState{}, err
	}

	return observedState{snapshot: snapshot, local: local, remote: remote}, nil
}

func (e *Engine) listRemote(ctx context.Context, kind record.Kind) ([]record.RemoteRecord, error) {
	items, err := e.Server.List(ctx, kind)
	e.recorder().RecordRemoteCall(kind.Name, "list", err)
	if err != nil {
		return nil, err
	}
	debugctx.Printf(ctx, "remote list kind=%q count=%d", kind.Name, len(items))
	return items, nil
}

func (e *Engine) reportClassification(ctx context.Context, kind record.Kind, table *StatusTable) {
	logger := e.logger(ctx)
	for _, id := range table.Unclassified() {
		logger.Info(
			"warning: cached snapshot is newer than the server copy, record left unclassified",
			"kind", kind.Name,
			"id", id,
		)
	}

	recorder := e.recorder()
	for status, count := range table.Counts() {
		recorder.RecordStatus(kind.Name, string(status), count)
	}
}

func (e *Engine) commit(ctx context.Context, message string) {
	if e.Committer == nil {
		return
	}
	committed, err := e.Committer.Commit(ctx, message)
	if err != nil {
		e.logger(ctx).Error(err, "failed to commit workspace changes")
		return
	}
	debugctx.Printf(ctx, "workspace commit message=%q committed=%t", message, committed)
}

func (e *Engine) flushMetrics(ctx context.Context) {
	if err := e.recorder().Flush(ctx); err != nil {
		e.logger(ctx).Error(err, "failed to write metrics")
	}
}

func (e *Engine) persist(ctx context.Context, snapshot *metadata.Snapshot) error {
	if err := e.Cache.Save(ctx, snapshot); err != nil {
		return faults.Wrap(err, "failed to persist metadata cache")
	}
	return nil
}

func (e *Engine) requireDependencies() error {
	if e == nil {
		return internalError("reconciler engine is nil", nil)
	}
	if e.Store == nil {
		return internalError("record store is not configured", nil)
	}
	if e.Cache == nil {
		return internalError("metadata cache is not configured", nil)
	}
	if e.Server == nil {
		return internalError("record server is not configured", nil)
	}
	return nil
}

func (e *Engine) recorder() metrics.Recorder {
	if e == nil {
		return metrics.Noop{}
	}
	return metrics.OrNoop(e.Metrics)
}

func (e *Engine) logger(ctx context.Context) logr.Logger {
	if e != nil && e.Logger.GetSink() != nil {
		return e.Logger
	}
	return debugctx.Logger(ctx)
}

// localDir is the workspace-relative folder holding the records of kind.
func localDir(kind record.Kind) string {
	return filepath.Clean(kind.LocalFolder)
}

func commitMessage(operation string, kind record.Kind) string {
	return fmt.Sprintf("reason: %s %s", operation, kind.Name)
}
