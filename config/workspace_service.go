package config

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/crmarques/reason/faults"
)

type WorkspaceWriter interface {
	// Init creates the base directory and writes the first config file. It
	// fails when the workspace is already initialized.
	Init(ctx context.Context, cfg Workspace) error
	Save(ctx context.Context, cfg Workspace) error
	// Delete removes the whole workspace base directory.
	Delete(ctx context.Context) error
}

type WorkspaceReader interface {
	// Load returns the persisted config without env overrides or defaults.
	Load(ctx context.Context) (Workspace, error)
}

type WorkspaceResolver interface {
	// Resolve returns the effective config: persisted values, env overrides,
	// selection overrides and defaults, validated.
	Resolve(ctx context.Context, selection WorkspaceSelection) (Workspace, error)
}

type WorkspaceService interface {
	WorkspaceWriter
	WorkspaceReader
	WorkspaceResolver
}

func joinBase(baseDir string, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(baseDir, name)
}

// RequireAPIKey fails with ConfigMissingError when no API key is configured.
func RequireAPIKey(cfg Workspace) error {
	if strings.TrimSpace(cfg.Auth.APIKey) == "" {
		return faults.NewTypedError(faults.ConfigMissingError, "no API key configured, please login first", nil)
	}
	return nil
}
