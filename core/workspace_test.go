package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/faults"
	promrecorder "github.com/crmarques/reason/internal/providers/metrics/prom"
	fsstore "github.com/crmarques/reason/internal/providers/repository/fsstore"
	gitrepository "github.com/crmarques/reason/internal/providers/repository/git"
	httpserver "github.com/crmarques/reason/internal/providers/server/http"
)

func noEnv(string) (string, bool) { return "", false }

func TestInitWorkspacePreparesDirectoryAndCache(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	baseDir := filepath.Join(tempDir, "ws")
	opts := BootstrapConfig{ConfigPath: filepath.Join(tempDir, "config.yaml"), LookupEnv: noEnv}

	resolved, err := InitWorkspace(context.Background(), opts, config.Workspace{
		BaseDir:    baseDir,
		Repository: config.Repository{Git: config.GitRepository{AutoInit: true}},
	})
	if err != nil {
		t.Fatalf("InitWorkspace returned error: %v", err)
	}

	if resolved.BaseDir != baseDir || resolved.MetadataFile != config.DefaultMetadataFile {
		t.Fatalf("unexpected resolved config %#v", resolved)
	}
	if _, err := os.Stat(filepath.Join(baseDir, config.DefaultMetadataFile)); err != nil {
		t.Fatalf("expected empty metadata cache: %v", err)
	}
	if _, err := os.Stat(filepath.Join(baseDir, ".git")); err != nil {
		t.Fatalf("expected git repository: %v", err)
	}
	if _, err := os.Stat(opts.ConfigPath); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	_, err = InitWorkspace(context.Background(), opts, config.Workspace{BaseDir: baseDir})
	assertTypedCategory(t, err, faults.ValidationError)
}

func TestNewWorkspaceRequiresAPIKey(t *testing.T) {
	t.Parallel()

	opts := initTestWorkspace(t, config.Workspace{})

	_, err := NewWorkspace(context.Background(), opts)
	assertTypedCategory(t, err, faults.ConfigMissingError)
}

func TestNewWorkspaceMissingConfigIsConfigMissing(t *testing.T) {
	t.Parallel()

	_, err := NewWorkspace(context.Background(), BootstrapConfig{
		ConfigPath: filepath.Join(t.TempDir(), "missing.json"),
		LookupEnv:  noEnv,
	})
	assertTypedCategory(t, err, faults.ConfigMissingError)
}

func TestNewWorkspaceWiresProviders(t *testing.T) {
	t.Parallel()

	metricsPath := filepath.Join(t.TempDir(), "reason.prom")
	opts := initTestWorkspace(t, config.Workspace{
		Auth:       config.Auth{APIKey: "secret"},
		Repository: config.Repository{Git: config.GitRepository{AutoInit: true, AutoCommit: true}},
		Metrics:    config.Metrics{File: metricsPath},
	})

	workspace, err := NewWorkspace(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewWorkspace returned error: %v", err)
	}
	t.Cleanup(func() { _ = workspace.Close() })

	engine := workspace.Engine
	if _, ok := engine.Store.(*fsstore.LocalRecordRepository); !ok {
		t.Fatalf("expected LocalRecordRepository, got %T", engine.Store)
	}
	if _, ok := engine.Server.(*httpserver.HTTPRecordServerGateway); !ok {
		t.Fatalf("expected HTTPRecordServerGateway, got %T", engine.Server)
	}
	if _, ok := engine.Committer.(*gitrepository.GitCommitter); !ok {
		t.Fatalf("expected GitCommitter, got %T", engine.Committer)
	}
	recorder, ok := engine.Metrics.(*promrecorder.TextfileRecorder)
	if !ok || recorder.Path() != metricsPath {
		t.Fatalf("expected TextfileRecorder for %q, got %#v", metricsPath, engine.Metrics)
	}
	if engine.Logger.GetSink() == nil {
		t.Fatal("expected engine logger")
	}
}

func TestNewWorkspaceSkipsOptionalProviders(t *testing.T) {
	t.Parallel()

	opts := initTestWorkspace(t, config.Workspace{})
	opts.LookupEnv = func(key string) (string, bool) {
		if key == config.APIKeyEnvVar {
			return "from-env", true
		}
		return "", false
	}

	workspace, err := NewWorkspace(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewWorkspace returned error: %v", err)
	}
	t.Cleanup(func() { _ = workspace.Close() })

	if workspace.Config.Auth.APIKey != "from-env" {
		t.Fatalf("expected env API key, got %q", workspace.Config.Auth.APIKey)
	}
	if workspace.Engine.Committer != nil {
		t.Fatalf("expected no committer, got %T", workspace.Engine.Committer)
	}
	if workspace.Engine.Metrics != nil {
		t.Fatalf("expected no metrics recorder, got %T", workspace.Engine.Metrics)
	}
}

func TestNewWorkspaceLogsToStderr(t *testing.T) {
	t.Parallel()

	opts := initTestWorkspace(t, config.Workspace{Auth: config.Auth{APIKey: "secret"}})
	var stderr bytes.Buffer
	opts.Stderr = &stderr

	workspace, err := NewWorkspace(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewWorkspace returned error: %v", err)
	}
	t.Cleanup(func() { _ = workspace.Close() })

	workspace.Logger.Info("hello")
	if !bytes.Contains(stderr.Bytes(), []byte(`"msg"="hello"`)) {
		t.Fatalf("expected log line on stderr, got %q", stderr.String())
	}
}

func initTestWorkspace(t *testing.T, cfg config.Workspace) BootstrapConfig {
	t.Helper()

	tempDir := t.TempDir()
	cfg.BaseDir = filepath.Join(tempDir, "ws")
	opts := BootstrapConfig{ConfigPath: filepath.Join(tempDir, "config.json"), LookupEnv: noEnv}
	if _, err := InitWorkspace(context.Background(), opts, cfg); err != nil {
		t.Fatalf("InitWorkspace returned error: %v", err)
	}
	return opts
}

func assertTypedCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !faults.IsCategory(err, category) {
		t.Fatalf("expected %q category, got %v", category, err)
	}
}
