package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/crmarques/reason/metadata"
	"github.com/crmarques/reason/record"
)

type PushOutcome string

const (
	PushOutcomeCreated PushOutcome = "created"
	PushOutcomeUpdated PushOutcome = "updated"
	PushOutcomeDeleted PushOutcome = "deleted"
	PushOutcomeSkipped PushOutcome = "skipped"
	PushOutcomeFailed  PushOutcome = "failed"
	PushOutcomePlanned PushOutcome = "planned"
)

const (
	operationCreate = "create"
	operationUpdate = "update"
	operationDelete = "delete"
)

type PushOptions struct {
	DryRun bool
}

type PushAction struct {
	Key       string      `json:"key" yaml:"key"`
	Name      string      `json:"name" yaml:"name"`
	Status    Status      `json:"status" yaml:"status"`
	Operation string      `json:"operation" yaml:"operation"`
	Outcome   PushOutcome `json:"outcome" yaml:"outcome"`
	Message   string      `json:"message,omitempty" yaml:"message,omitempty"`
}

type PushReport struct {
	Kind    string       `json:"kind" yaml:"kind"`
	DryRun  bool         `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Actions []PushAction `json:"actions" yaml:"actions"`
	// Final is the classification after the closing pull. It is nil for dry
	// runs and failed pushes.
	Final *StatusTable `json:"final,omitempty" yaml:"final,omitempty"`
}

// Push sends local changes of kind to the server. It refuses to run while the
// server holds changes the workspace has not pulled. Actions run one at a time
// in classification order; a failed create or update stops the push, a failed
// delete is reported and skipped. A successful push ends with a pull so the
// workspace and the cache reflect the server.
func (e *Engine) Push(ctx context.Context, kind record.Kind, opts PushOptions) (PushReport, error) {
	report := PushReport{Kind: kind.Name, DryRun: opts.DryRun, Actions: []PushAction{}}

	state, err := e.observe(ctx, kind)
	if err != nil {
		return report, err
	}
	defer e.flushMetrics(ctx)

	table := Classify(state.snapshot.Records(kind), state.local, state.remote)
	e.reportClassification(ctx, kind, table)

	if upstream := table.UpstreamEntries(); len(upstream) > 0 {
		return report, upstreamConflictError(kind, upstream)
	}

	localByPath := make(map[string]record.LocalRecord, len(state.local))
	for _, item := range state.local {
		localByPath[item.FilePath] = item
	}

	for _, entry := range table.Entries() {
		action, err := e.pushEntry(ctx, kind, state.snapshot, localByPath, entry, opts.DryRun)
		if action.Operation != "" {
			e.recorder().RecordAction(kind.Name, action.Operation, string(action.Outcome))
			report.Actions = append(report.Actions, action)
		}
		if err != nil {
			return report, err
		}
	}

	if opts.DryRun {
		return report, nil
	}

	final, err := e.refreshAfterPush(ctx, kind, state.snapshot)
	if err != nil {
		return report, err
	}
	report.Final = final

	e.commit(ctx, commitMessage("push", kind))
	return report, nil
}

func (e *Engine) pushEntry(
	ctx context.Context,
	kind record.Kind,
	snapshot *metadata.Snapshot,
	localByPath map[string]record.LocalRecord,
	entry Entry,
	dryRun bool,
) (PushAction, error) {
	logger := e.logger(ctx)
	action := PushAction{Key: entry.Key, Name: entry.Name, Status: entry.Status}

	switch entry.Status {
	case StatusCreatedLocal:
		action.Operation = operationCreate
		local, ok := localByPath[entry.Key]
		if !ok {
			action.Outcome = PushOutcomeSkipped
			action.Message = "local record disappeared"
			logger.Info("warning: local record disappeared before create", "kind", kind.Name, "path", entry.Key)
			return action, nil
		}
		if dryRun {
			action.Outcome = PushOutcomePlanned
			return action, nil
		}

		created, err := e.Server.Create(ctx, kind, local)
		e.recorder().RecordRemoteCall(kind.Name, operationCreate, err)
		if err != nil {
			action.Outcome = PushOutcomeFailed
			action.Message = err.Error()
			return action, err
		}

		snapshot.Prepend(kind, record.NewMetaRecord(local.FilePath, created))
		if err := e.persist(ctx, snapshot); err != nil {
			action.Outcome = PushOutcomeFailed
			action.Message = err.Error()
			return action, err
		}
		action.Outcome = PushOutcomeCreated
		logger.Info(fmt.Sprintf("%s %q created", kind.Label, local.Name), "id", created.ID)
		return action, nil

	case StatusDeletedLocal:
		action.Operation = operationDelete
		cached, ok := snapshot.FindByID(kind, entry.Key)
		if !ok {
			action.Outcome = PushOutcomeSkipped
			action.Message = "no cached record to delete"
			logger.Info("warning: no cached record for deleted local record", "kind", kind.Name, "id", entry.Key)
			return action, nil
		}
		if dryRun {
			action.Outcome = PushOutcomePlanned
			return action, nil
		}

		err := e.Server.Delete(ctx, kind, cached.ID)
		e.recorder().RecordRemoteCall(kind.Name, operationDelete, err)
		if err != nil {
			action.Outcome = PushOutcomeFailed
			action.Message = err.Error()
			logger.Info(fmt.Sprintf("warning: %s %q could not be removed", kind.Label, cached.Name), "error", err.Error())
			return action, nil
		}
		action.Outcome = PushOutcomeDeleted
		logger.Info(fmt.Sprintf("%s %q removed", kind.Label, cached.Name))
		return action, nil

	case StatusUpdatedLocal:
		action.Operation = operationUpdate
		cached, ok := snapshot.FindByID(kind, entry.Key)
		if !ok {
			action.Outcome = PushOutcomeSkipped
			action.Message = "no cached record to update"
			logger.Info("warning: no cached record for updated local record", "kind", kind.Name, "id", entry.Key)
			return action, nil
		}
		local, ok := localByPath[cached.FilePath]
		if !ok {
			action.Outcome = PushOutcomeSkipped
			action.Message = "local record not found"
			logger.Info(fmt.Sprintf("%s %q not found locally", kind.Label, cached.Name), "path", cached.FilePath)
			return action, nil
		}
		if dryRun {
			action.Outcome = PushOutcomePlanned
			return action, nil
		}

		_, err := e.Server.Update(ctx, kind, entry.Key, local)
		e.recorder().RecordRemoteCall(kind.Name, operationUpdate, err)
		if err != nil {
			action.Outcome = PushOutcomeFailed
			action.Message = err.Error()
			return action, err
		}
		action.Outcome = PushOutcomeUpdated
		logger.Info(fmt.Sprintf("%s %q updated", kind.Label, local.Name))
		return action, nil

	default:
		return action, nil
	}
}

func (e *Engine) refreshAfterPush(ctx context.Context, kind record.Kind, snapshot *metadata.Snapshot) (*StatusTable, error) {
	remote, err := e.listRemote(ctx, kind)
	if err != nil {
		return nil, err
	}

	if _, err := e.pullRecords(ctx, kind, localDir(kind), snapshot, remote, false); err != nil {
		return nil, err
	}

	// Classify what the next status run will read, not the in-memory copy.
	persisted, err := e.Cache.Load(ctx)
	if err != nil {
		return nil, err
	}
	local, err := e.Store.List(ctx, localDir(kind))
	if err != nil {
		return nil, err
	}

	final := Classify(persisted.Records(kind), local, remote)
	e.reportClassification(ctx, kind, final)
	return final, nil
}

func upstreamConflictError(kind record.Kind, entries []Entry) error {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, fmt.Sprintf("%s (%s)", entry.Name, strings.ToLower(entry.Status.Text())))
	}
	return conflictError(
		fmt.Sprintf(
			"there are upstream changes to %s: %s; pull before pushing",
			kind.Plural(),
			strings.Join(names, ", "),
		),
		nil,
	)
}
