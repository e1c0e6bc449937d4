package reconciler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crmarques/reason/record"
)

func TestPullWritesRecordsAndCache(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	ws.server.seed(record.Functions,
		remoteRecord("1", "weather", 10, record.Fields{"description": "forecast", "retries": int64(3)}),
		remoteRecord("2", "geo", 11, nil),
	)

	report, err := ws.engine.Pull(context.Background(), record.Functions, PullOptions{})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}

	want := []PullEntry{
		{Name: "weather", FilePath: filepath.Join("functions", "weather"), Action: PullActionWritten},
		{Name: "geo", FilePath: filepath.Join("functions", "geo"), Action: PullActionWritten},
	}
	if diff := cmp.Diff(want, report.Entries); diff != "" {
		t.Fatalf("Pull() entries mismatch (-want +got):\n%s", diff)
	}

	content := ws.readLocal(t, filepath.Join("functions", "weather"))
	for _, serverField := range []string{"lastUpdated", "organizationId", "createdAt", `"id"`} {
		if strings.Contains(content, serverField) {
			t.Fatalf("expected %s to be stripped from local file, got %s", serverField, content)
		}
	}
	if !strings.Contains(content, `"description": "forecast"`) {
		t.Fatalf("expected open field in local file, got %s", content)
	}

	snapshot, err := ws.cache.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cached, ok := snapshot.FindByID(record.Functions, "1")
	if !ok || cached.FilePath != filepath.Join("functions", "weather") || cached.LastUpdated != 10 || cached.OrganizationID != "org" {
		t.Fatalf("unexpected cached record %#v", cached)
	}
}

func TestPullTwiceIsByteIdentical(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	ws.server.seed(record.Integrals,
		remoteRecord("a", "chat", 10, record.Fields{"model": "small", "temperature": 0.5}),
		remoteRecord("b", "summary", 12, record.Fields{"steps": []any{"one", "two"}}),
	)
	ctx := context.Background()

	if _, err := ws.engine.Pull(ctx, record.Integrals, PullOptions{}); err != nil {
		t.Fatalf("first Pull returned error: %v", err)
	}
	first := ws.cacheBytes(t)
	firstRecord := ws.readLocal(t, filepath.Join("integrals", "chat"))

	if _, err := ws.engine.Pull(ctx, record.Integrals, PullOptions{}); err != nil {
		t.Fatalf("second Pull returned error: %v", err)
	}
	second := ws.cacheBytes(t)

	if !bytes.Equal(first, second) {
		t.Fatalf("metadata cache changed between pulls:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	if got := ws.readLocal(t, filepath.Join("integrals", "chat")); got != firstRecord {
		t.Fatalf("record file changed between pulls:\nfirst:\n%s\nsecond:\n%s", firstRecord, got)
	}
}

func TestPullThenStatusIsUnchanged(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	ws.server.seed(record.Functions,
		remoteRecord("1", "f1", 10, record.Fields{"x": int64(1), "nested": map[string]any{"ratio": 0.25}}),
		remoteRecord("2", "f2", 11, nil),
	)
	ctx := context.Background()

	if _, err := ws.engine.Pull(ctx, record.Functions, PullOptions{}); err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}

	table, err := ws.engine.Status(ctx, record.Functions)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if table.Len() != 2 || !table.AllUnchanged() {
		t.Fatalf("expected every record to be unchanged, got %#v", table.Entries())
	}
}

func TestPullRemovesRecordsDeletedUpstream(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	ws.server.seed(record.Functions, remoteRecord("1", "f1", 10, nil), remoteRecord("2", "f2", 10, nil))
	ctx := context.Background()

	if _, err := ws.engine.Pull(ctx, record.Functions, PullOptions{}); err != nil {
		t.Fatalf("first Pull returned error: %v", err)
	}

	if err := ws.server.Delete(ctx, record.Functions, "2"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	report, err := ws.engine.Pull(ctx, record.Functions, PullOptions{})
	if err != nil {
		t.Fatalf("second Pull returned error: %v", err)
	}

	last := report.Entries[len(report.Entries)-1]
	if last.Action != PullActionRemoved || last.Name != "f2" {
		t.Fatalf("expected removal entry for f2, got %#v", report.Entries)
	}
	if _, err := os.Stat(filepath.Join(ws.baseDir, "functions", "f2")); !os.IsNotExist(err) {
		t.Fatalf("expected f2 directory to be removed, stat err=%v", err)
	}

	snapshot, err := ws.cache.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if _, ok := snapshot.FindByID(record.Functions, "2"); ok {
		t.Fatal("expected f2 to be dropped from the metadata cache")
	}
}

func TestPullOverwritesUpdatedUpstreamRecord(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	ws.server.seed(record.Functions, remoteRecord("42", "f2", 5, record.Fields{"x": int64(1)}))
	ctx := context.Background()

	if _, err := ws.engine.Pull(ctx, record.Functions, PullOptions{}); err != nil {
		t.Fatalf("first Pull returned error: %v", err)
	}
	ws.removeLocal(t, filepath.Join("functions", "f2"))
	ws.server.records[record.Functions.Name][0].LastUpdated = 7
	ws.server.records[record.Functions.Name][0].Fields = record.Fields{"x": int64(2)}

	table, err := ws.engine.Status(ctx, record.Functions)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	entry, _ := table.Get("42")
	if entry.Status != StatusUpdatedUpstream {
		t.Fatalf("expected UPDATED_UPSTREAM, got %#v", entry)
	}

	if _, err := ws.engine.Pull(ctx, record.Functions, PullOptions{}); err != nil {
		t.Fatalf("second Pull returned error: %v", err)
	}
	if content := ws.readLocal(t, filepath.Join("functions", "f2")); !strings.Contains(content, `"x": 2`) {
		t.Fatalf("expected local file to carry the upstream update, got %s", content)
	}

	snapshot, err := ws.cache.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cached, _ := snapshot.FindByID(record.Functions, "42")
	if cached.LastUpdated != 7 {
		t.Fatalf("expected cached lastUpdated 7, got %d", cached.LastUpdated)
	}
}

func TestPullKeepsPathOfRecreatedRecord(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	ws.server.seed(record.Functions, remoteRecord("old", "f1", 5, record.Fields{"v": "old"}))
	ctx := context.Background()

	if _, err := ws.engine.Pull(ctx, record.Functions, PullOptions{}); err != nil {
		t.Fatalf("first Pull returned error: %v", err)
	}

	ws.server.records[record.Functions.Name] = []record.RemoteRecord{
		remoteRecord("new", "f1", 9, record.Fields{"v": "new"}),
	}
	if _, err := ws.engine.Pull(ctx, record.Functions, PullOptions{}); err != nil {
		t.Fatalf("second Pull returned error: %v", err)
	}

	if content := ws.readLocal(t, filepath.Join("functions", "f1")); !strings.Contains(content, `"v": "new"`) {
		t.Fatalf("expected recreated record file to survive, got %s", content)
	}
	snapshot, err := ws.cache.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	records := snapshot.Records(record.Functions)
	if len(records) != 1 || records[0].ID != "new" {
		t.Fatalf("unexpected cached records %#v", records)
	}
}

func TestPullDisambiguatesDuplicateNames(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	ws.server.seed(record.Functions, remoteRecord("1", "same", 5, nil), remoteRecord("2", "same", 5, nil))

	report, err := ws.engine.Pull(context.Background(), record.Functions, PullOptions{})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}

	got := []string{report.Entries[0].FilePath, report.Entries[1].FilePath}
	want := []string{filepath.Join("functions", "same"), filepath.Join("functions", "same-2")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record paths mismatch (-want +got):\n%s", diff)
	}
}

func TestPullDryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace(t)
	ws.server.seed(record.Functions, remoteRecord("1", "f1", 5, nil))

	report, err := ws.engine.Pull(context.Background(), record.Functions, PullOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if !report.DryRun || len(report.Entries) != 1 || report.Entries[0].Action != PullActionWritten {
		t.Fatalf("unexpected dry-run report %#v", report)
	}

	if _, err := os.Stat(filepath.Join(ws.baseDir, "functions")); !os.IsNotExist(err) {
		t.Fatalf("expected dry run to leave the workspace untouched, stat err=%v", err)
	}
	if _, err := os.Stat(ws.cache.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected dry run to leave the metadata cache untouched, stat err=%v", err)
	}
}

func TestRecordDirName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		fallback string
		want     string
	}{
		{name: "weather", fallback: "1", want: "weather"},
		{name: "a/b", fallback: "1", want: "a_b"},
		{name: "..", fallback: "7", want: "7"},
		{name: "  ", fallback: "9", want: "9"},
		{name: ".hidden", fallback: "1", want: "hidden"},
		{name: "", fallback: "", want: "record"},
	}
	for _, test := range testCases {
		if got := recordDirName(test.name, test.fallback); got != test.want {
			t.Fatalf("recordDirName(%q, %q) = %q, want %q", test.name, test.fallback, got, test.want)
		}
	}
}
