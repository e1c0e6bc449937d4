package core

import (
	"context"
	"path/filepath"

	"github.com/crmarques/reason/config"
	debugctx "github.com/crmarques/reason/debugctx"
	configfile "github.com/crmarques/reason/internal/providers/config/file"
	fsmetadata "github.com/crmarques/reason/internal/providers/metadata/fs"
	fsstore "github.com/crmarques/reason/internal/providers/repository/fsstore"
	gitrepository "github.com/crmarques/reason/internal/providers/repository/git"
)

func NewWorkspaceService(opts BootstrapConfig) config.WorkspaceService {
	serviceOptions := []configfile.Option{}
	if opts.LookupEnv != nil {
		serviceOptions = append(serviceOptions, configfile.WithEnvLookup(opts.LookupEnv))
	}
	return configfile.NewFileWorkspaceService(opts.ConfigPath, serviceOptions...)
}

// NewWorkspace resolves the workspace config and wires the engine. It fails
// with ConfigMissingError before any remote call when no API key is set.
func NewWorkspace(ctx context.Context, opts BootstrapConfig) (*Workspace, error) {
	service := NewWorkspaceService(opts)

	cfg, err := service.Resolve(ctx, config.WorkspaceSelection{
		ConfigPath: opts.ConfigPath,
		Overrides:  opts.Overrides,
	})
	if err != nil {
		return nil, err
	}
	if err := config.RequireAPIKey(cfg); err != nil {
		return nil, err
	}

	logger, closeLog := buildLogger(opts, cfg)
	workspace := &Workspace{
		Config:  cfg,
		Configs: service,
		Logger:  logger,
		closers: []func() error{closeLog},
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		_ = workspace.Close()
		return nil, err
	}
	workspace.Engine = engine
	return workspace, nil
}

// InitWorkspace writes the first config file and prepares the workspace
// directory, the empty metadata cache and, when auto-init is set, the git
// repository.
func InitWorkspace(ctx context.Context, opts BootstrapConfig, cfg config.Workspace) (config.Workspace, error) {
	service := NewWorkspaceService(opts)
	if err := service.Init(ctx, cfg); err != nil {
		return config.Workspace{}, err
	}

	resolved, err := service.Resolve(ctx, config.WorkspaceSelection{ConfigPath: opts.ConfigPath})
	if err != nil {
		return config.Workspace{}, err
	}

	if err := fsstore.NewLocalRecordRepository(resolved.BaseDir, resolved.ResourceFormat).Init(ctx); err != nil {
		return config.Workspace{}, err
	}
	if err := newMetadataStore(resolved).Init(ctx); err != nil {
		return config.Workspace{}, err
	}
	if resolved.Repository.Git.AutoInit {
		if err := gitrepository.NewGitCommitter(resolved.BaseDir, resolved.Repository.Git).Init(ctx); err != nil {
			return config.Workspace{}, err
		}
	}

	debugctx.Printf(ctx, "workspace initialized base_dir=%q", resolved.BaseDir)
	return resolved, nil
}

func newMetadataStore(cfg config.Workspace) *fsmetadata.FSMetadataService {
	metadataPath := cfg.MetadataPath()
	return fsmetadata.NewFSMetadataService(filepath.Dir(metadataPath), filepath.Base(metadataPath))
}
