package reconciler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/record"
)

// pulledWorkspace returns a workspace whose functions were pulled once.
func pulledWorkspace(t *testing.T, items ...record.RemoteRecord) *testWorkspace {
	t.Helper()

	ws := newTestWorkspace(t)
	ws.server.seed(record.Functions, items...)
	if _, err := ws.engine.Pull(context.Background(), record.Functions, PullOptions{}); err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	return ws
}

func TestPushRefusesWhileUpstreamChangesArePending(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t,
		remoteRecord("1", "f1", 5, nil),
		remoteRecord("42", "f2", 5, nil),
	)
	ws.server.touch(record.Functions, "42", record.Fields{"x": int64(9)})
	ws.writeLocal(t, filepath.Join("functions", "f3"), `{"name": "f3"}`)
	listCallsBefore := ws.server.listCalls
	cacheBefore := ws.cacheBytes(t)

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{})
	assertCategory(t, err, faults.ConflictError)
	if !strings.Contains(err.Error(), "f2 (updated upstream)") {
		t.Fatalf("expected conflict message to name f2, got %v", err)
	}

	if ws.server.mutations() != 0 {
		t.Fatalf("expected no remote mutations, got %d", ws.server.mutations())
	}
	if ws.server.listCalls != listCallsBefore+1 {
		t.Fatalf("expected exactly one list call, got %d", ws.server.listCalls-listCallsBefore)
	}
	if len(report.Actions) != 0 {
		t.Fatalf("expected no actions, got %#v", report.Actions)
	}
	if !bytes.Equal(cacheBefore, ws.cacheBytes(t)) {
		t.Fatal("expected metadata cache to stay untouched")
	}
}

func TestPushCreatesLocalRecord(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t, remoteRecord("1", "f1", 5, nil))
	ws.writeLocal(t, filepath.Join("functions", "fresh"), `{"name": "fresh", "x": 1}`)

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{})
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	want := []PushAction{{
		Key:       filepath.Join("functions", "fresh"),
		Name:      "fresh",
		Status:    StatusCreatedLocal,
		Operation: operationCreate,
		Outcome:   PushOutcomeCreated,
	}}
	if diff := cmp.Diff(want, report.Actions); diff != "" {
		t.Fatalf("Push() actions mismatch (-want +got):\n%s", diff)
	}
	if ws.server.createCalls != 1 || ws.server.mutations() != 1 {
		t.Fatalf("expected exactly one create, got create=%d total=%d", ws.server.createCalls, ws.server.mutations())
	}

	snapshot, err := ws.cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	records := snapshot.Records(record.Functions)
	if len(records) != 2 || records[0].ID != "new-1" || records[0].FilePath != filepath.Join("functions", "fresh") {
		t.Fatalf("expected created record at the head of the cache, got %#v", records)
	}

	if report.Final == nil || report.Final.Len() != 2 || !report.Final.AllUnchanged() {
		t.Fatalf("expected final classification to be all unchanged, got %#v", report.Final)
	}
}

func TestPushUpdatesLocalEdits(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t, remoteRecord("1", "f1", 5, record.Fields{"x": int64(1)}))
	ws.writeLocal(t, filepath.Join("functions", "f1"), `{"name": "f1", "x": 2}`)

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{})
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if len(report.Actions) != 1 || report.Actions[0].Outcome != PushOutcomeUpdated {
		t.Fatalf("expected one update action, got %#v", report.Actions)
	}

	remote := ws.server.records[record.Functions.Name][0]
	if remote.Fields["x"] != int64(2) {
		t.Fatalf("expected server copy to carry the edit, got %#v", remote.Fields)
	}

	snapshot, err := ws.cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cached, _ := snapshot.FindByID(record.Functions, "1")
	if cached.LastUpdated != remote.LastUpdated {
		t.Fatalf("expected cache to follow the server timestamp %d, got %d", remote.LastUpdated, cached.LastUpdated)
	}
	if !report.Final.AllUnchanged() {
		t.Fatalf("expected final classification to be all unchanged, got %#v", report.Final.Entries())
	}
}

func TestPushDeletesRemovedLocalRecord(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t, remoteRecord("1", "f1", 5, nil), remoteRecord("2", "f2", 5, nil))
	ws.removeLocal(t, filepath.Join("functions", "f2"))

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{})
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if len(report.Actions) != 1 || report.Actions[0].Outcome != PushOutcomeDeleted || report.Actions[0].Key != "2" {
		t.Fatalf("expected one delete action, got %#v", report.Actions)
	}
	if len(ws.server.records[record.Functions.Name]) != 1 {
		t.Fatalf("expected server to keep one record, got %#v", ws.server.records[record.Functions.Name])
	}

	snapshot, err := ws.cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, ok := snapshot.FindByID(record.Functions, "2"); ok {
		t.Fatal("expected deleted record to leave the cache")
	}
	if report.Final.Len() != 1 || !report.Final.AllUnchanged() {
		t.Fatalf("unexpected final classification %#v", report.Final.Entries())
	}
}

func TestPushReportsFailedDeleteAndContinues(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t, remoteRecord("1", "f1", 5, nil), remoteRecord("2", "f2", 5, record.Fields{"x": int64(1)}))
	ws.removeLocal(t, filepath.Join("functions", "f1"))
	ws.writeLocal(t, filepath.Join("functions", "f2"), `{"name": "f2", "x": 2}`)
	ws.server.deleteErr = faults.NewTypedError(faults.TransportError, "connection reset", nil)

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{})
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	outcomes := make(map[string]PushOutcome, len(report.Actions))
	for _, action := range report.Actions {
		outcomes[action.Key] = action.Outcome
	}
	want := map[string]PushOutcome{"1": PushOutcomeFailed, "2": PushOutcomeUpdated}
	if diff := cmp.Diff(want, outcomes); diff != "" {
		t.Fatalf("Push() outcomes mismatch (-want +got):\n%s", diff)
	}

	// The closing pull restores the record the server kept.
	if _, err := os.Stat(filepath.Join(ws.baseDir, "functions", "f1", "f1.json")); err != nil {
		t.Fatalf("expected f1 to be restored by the closing pull: %v", err)
	}
}

func TestPushStopsOnCreateFailure(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t)
	ws.writeLocal(t, filepath.Join("functions", "fresh"), `{"name": "fresh"}`)
	ws.server.createErr = faults.NewTypedError(faults.ValidationError, "name is required", nil)

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{})
	assertCategory(t, err, faults.ValidationError)

	if len(report.Actions) != 1 || report.Actions[0].Outcome != PushOutcomeFailed {
		t.Fatalf("expected one failed action, got %#v", report.Actions)
	}
	if report.Final != nil {
		t.Fatal("expected no final classification after a failed push")
	}

	snapshot, err := ws.cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := len(snapshot.Records(record.Functions)); got != 0 {
		t.Fatalf("expected empty cache, got %d records", got)
	}
}

func TestPushStopsOnUpdateFailure(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t,
		remoteRecord("1", "f1", 5, record.Fields{"x": int64(1)}),
		remoteRecord("2", "f2", 5, record.Fields{"x": int64(1)}),
	)
	ws.writeLocal(t, filepath.Join("functions", "f1"), `{"name": "f1", "x": 2}`)
	ws.writeLocal(t, filepath.Join("functions", "f2"), `{"name": "f2", "x": 2}`)
	ws.writeLocal(t, filepath.Join("functions", "fresh"), `{"name": "fresh"}`)
	ws.server.updateErr = faults.NewTypedError(faults.ValidationError, "invalid function", nil).WithIssues([]faults.Issue{
		{Code: "too_small", Message: "x must be at least 3", Path: []string{"x"}},
	})
	cacheBefore := ws.cacheBytes(t)

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{})
	assertCategory(t, err, faults.ValidationError)
	if issues := faults.IssuesOf(err); len(issues) != 1 || issues[0].Code != "too_small" {
		t.Fatalf("expected the server issues on the error, got %#v", issues)
	}

	if len(report.Actions) != 1 || report.Actions[0].Key != "1" || report.Actions[0].Outcome != PushOutcomeFailed {
		t.Fatalf("expected only the first update to run and fail, got %#v", report.Actions)
	}
	if report.Final != nil {
		t.Fatal("expected no final classification after a failed push")
	}
	if ws.server.updateCalls != 1 || ws.server.createCalls != 0 || ws.server.deleteCalls != 0 {
		t.Fatalf("expected no remote calls after the failure, got updates=%d creates=%d deletes=%d",
			ws.server.updateCalls, ws.server.createCalls, ws.server.deleteCalls)
	}
	if !bytes.Equal(cacheBefore, ws.cacheBytes(t)) {
		t.Fatal("expected metadata cache to stay untouched")
	}
}

func TestPushFinalTableMatchesNextStatus(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t)
	ws.writeLocal(t, filepath.Join("functions", "fresh"), `{"name": "fresh"}`)
	// Someone adds a record with a whole float attribute while the push runs.
	ws.server.afterCreate = func(s *fakeServer) {
		s.seed(record.Functions, remoteRecord("other", "other", s.clock, record.Fields{"retries": 1.0}))
		s.afterCreate = nil
	}

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{})
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if !report.Final.AllUnchanged() {
		t.Fatalf("expected final classification to be all unchanged, got %#v", report.Final.Entries())
	}

	status, err := ws.engine.Status(context.Background(), record.Functions)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if diff := cmp.Diff(report.Final.Entries(), status.Entries()); diff != "" {
		t.Fatalf("final table differs from the next status (-push +status):\n%s", diff)
	}
}

func TestPushDryRunPlansWithoutCallingServer(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t, remoteRecord("1", "f1", 5, nil), remoteRecord("2", "f2", 5, nil))
	ws.writeLocal(t, filepath.Join("functions", "f1"), `{"name": "f1", "x": 2}`)
	ws.removeLocal(t, filepath.Join("functions", "f2"))
	ws.writeLocal(t, filepath.Join("functions", "f3"), `{"name": "f3"}`)
	cacheBefore := ws.cacheBytes(t)

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	operations := make([]string, 0, len(report.Actions))
	for _, action := range report.Actions {
		if action.Outcome != PushOutcomePlanned {
			t.Fatalf("expected planned outcome, got %#v", action)
		}
		operations = append(operations, action.Operation)
	}
	if diff := cmp.Diff([]string{operationUpdate, operationDelete, operationCreate}, operations); diff != "" {
		t.Fatalf("planned operations mismatch (-want +got):\n%s", diff)
	}

	if ws.server.mutations() != 0 {
		t.Fatalf("expected no remote mutations, got %d", ws.server.mutations())
	}
	if !bytes.Equal(cacheBefore, ws.cacheBytes(t)) {
		t.Fatal("expected metadata cache to stay untouched")
	}
	if report.Final != nil {
		t.Fatal("expected no final classification for a dry run")
	}
}

func TestPushWithNothingToDo(t *testing.T) {
	t.Parallel()

	ws := pulledWorkspace(t, remoteRecord("1", "f1", 5, nil))

	report, err := ws.engine.Push(context.Background(), record.Functions, PushOptions{})
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if len(report.Actions) != 0 || ws.server.mutations() != 0 {
		t.Fatalf("expected no actions, got %#v", report.Actions)
	}
	if !report.Final.AllUnchanged() {
		t.Fatalf("expected unchanged final classification, got %#v", report.Final.Entries())
	}
}
