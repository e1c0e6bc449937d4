package reconciler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"testing"

	"github.com/crmarques/reason/faults"
	fsmetadata "github.com/crmarques/reason/internal/providers/metadata/fs"
	"github.com/crmarques/reason/internal/providers/repository/fsstore"
	"github.com/crmarques/reason/record"
	"github.com/crmarques/reason/server"
)

// fakeServer is an in-memory record server. Every mutation bumps a global
// clock used as lastUpdated.
type fakeServer struct {
	records map[string][]record.RemoteRecord
	clock   int64
	nextID  int

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	createErr error
	updateErr error
	deleteErr error

	// afterCreate runs once a create succeeded, to simulate concurrent
	// server-side edits.
	afterCreate func(s *fakeServer)

	runRequests []server.RunRequest
}

func newFakeServer() *fakeServer {
	return &fakeServer{records: map[string][]record.RemoteRecord{}, clock: 100}
}

func (s *fakeServer) seed(kind record.Kind, items ...record.RemoteRecord) {
	s.records[kind.Name] = append(s.records[kind.Name], items...)
}

func (s *fakeServer) mutations() int {
	return s.createCalls + s.updateCalls + s.deleteCalls
}

func (s *fakeServer) List(_ context.Context, kind record.Kind) ([]record.RemoteRecord, error) {
	s.listCalls++
	return slices.Clone(s.records[kind.Name]), nil
}

func (s *fakeServer) Create(_ context.Context, kind record.Kind, local record.LocalRecord) (record.RemoteRecord, error) {
	s.createCalls++
	if s.createErr != nil {
		return record.RemoteRecord{}, s.createErr
	}
	s.nextID++
	s.clock++
	created := record.RemoteRecord{
		ID:             "new-" + strconv.Itoa(s.nextID),
		Name:           local.Name,
		LastUpdated:    s.clock,
		OrganizationID: "org",
		CreatedAt:      "2024-01-01T00:00:00Z",
		Fields:         local.Fields.Clone(),
	}
	s.records[kind.Name] = append(s.records[kind.Name], created)
	if s.afterCreate != nil {
		s.afterCreate(s)
	}
	return created, nil
}

func (s *fakeServer) Update(_ context.Context, kind record.Kind, id string, local record.LocalRecord) (record.RemoteRecord, error) {
	s.updateCalls++
	if s.updateErr != nil {
		return record.RemoteRecord{}, s.updateErr
	}
	items := s.records[kind.Name]
	for idx := range items {
		if items[idx].ID == id {
			s.clock++
			items[idx].Name = local.Name
			items[idx].Fields = local.Fields.Clone()
			items[idx].LastUpdated = s.clock
			return items[idx], nil
		}
	}
	return record.RemoteRecord{}, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("record %q not found", id), nil)
}

func (s *fakeServer) Delete(_ context.Context, kind record.Kind, id string) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	items := s.records[kind.Name]
	idx := slices.IndexFunc(items, func(item record.RemoteRecord) bool { return item.ID == id })
	if idx < 0 {
		return faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("record %q not found", id), nil)
	}
	s.records[kind.Name] = slices.Delete(items, idx, idx+1)
	return nil
}

func (s *fakeServer) Run(_ context.Context, request server.RunRequest) (server.RunResult, error) {
	s.runRequests = append(s.runRequests, request)
	return server.RunResult{ID: "run-1", Body: map[string]any{"id": "run-1"}}, nil
}

// touch bumps a remote record as if someone edited it on the server.
func (s *fakeServer) touch(kind record.Kind, id string, fields record.Fields) {
	items := s.records[kind.Name]
	for idx := range items {
		if items[idx].ID == id {
			s.clock++
			items[idx].Fields = fields
			items[idx].LastUpdated = s.clock
		}
	}
}

type testWorkspace struct {
	baseDir string
	server  *fakeServer
	engine  *Engine
	cache   *fsmetadata.FSMetadataService
}

func newTestWorkspace(t *testing.T) *testWorkspace {
	t.Helper()

	baseDir := t.TempDir()
	remote := newFakeServer()
	cache := fsmetadata.NewFSMetadataService(baseDir, "")
	engine := &Engine{
		Store:  fsstore.NewLocalRecordRepository(baseDir, "json"),
		Cache:  cache,
		Server: remote,
		Runner: remote,
	}
	return &testWorkspace{baseDir: baseDir, server: remote, engine: engine, cache: cache}
}

func (w *testWorkspace) cacheBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(w.cache.Path())
	if err != nil {
		t.Fatalf("failed to read metadata cache: %v", err)
	}
	return data
}

func (w *testWorkspace) writeLocal(t *testing.T, relativeDir string, content string) {
	t.Helper()
	dir := filepath.Join(w.baseDir, relativeDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create record dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filepath.Base(dir)+".json"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write record file: %v", err)
	}
}

func (w *testWorkspace) removeLocal(t *testing.T, relativeDir string) {
	t.Helper()
	if err := os.RemoveAll(filepath.Join(w.baseDir, relativeDir)); err != nil {
		t.Fatalf("failed to remove record dir: %v", err)
	}
}

func (w *testWorkspace) readLocal(t *testing.T, relativeDir string) string {
	t.Helper()
	dir := filepath.Join(w.baseDir, relativeDir)
	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(dir)+".json"))
	if err != nil {
		t.Fatalf("failed to read record file: %v", err)
	}
	return string(data)
}

func remoteRecord(id string, name string, lastUpdated int64, fields record.Fields) record.RemoteRecord {
	if fields == nil {
		fields = record.Fields{}
	}
	return record.RemoteRecord{
		ID:             id,
		Name:           name,
		LastUpdated:    lastUpdated,
		OrganizationID: "org",
		CreatedAt:      "2024-01-01T00:00:00Z",
		Fields:         fields,
	}
}

func assertCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !faults.IsCategory(err, category) {
		t.Fatalf("expected %q category, got %v", category, err)
	}
}
