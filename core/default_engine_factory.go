package core

import (
	"github.com/go-logr/logr"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/internal/logging"
	promrecorder "github.com/crmarques/reason/internal/providers/metrics/prom"
	fsstore "github.com/crmarques/reason/internal/providers/repository/fsstore"
	gitrepository "github.com/crmarques/reason/internal/providers/repository/git"
	httpserver "github.com/crmarques/reason/internal/providers/server/http"
	"github.com/crmarques/reason/reconciler"
)

func buildEngine(cfg config.Workspace, logger logr.Logger) (*reconciler.Engine, error) {
	gateway, err := httpserver.NewHTTPRecordServerGateway(cfg.Remote, cfg.Auth)
	if err != nil {
		return nil, err
	}

	engine := &reconciler.Engine{
		Store:  fsstore.NewLocalRecordRepository(cfg.BaseDir, cfg.ResourceFormat),
		Cache:  newMetadataStore(cfg),
		Server: gateway,
		Runner: gateway,
		Logger: logger,
	}

	if cfg.Repository.Git.AutoCommit {
		engine.Committer = gitrepository.NewGitCommitter(cfg.BaseDir, cfg.Repository.Git)
	}

	if cfg.Metrics.File != "" {
		recorder, err := promrecorder.NewTextfileRecorder(cfg.Metrics.File)
		if err != nil {
			return nil, err
		}
		engine.Metrics = recorder
	}

	return engine, nil
}

func buildLogger(opts BootstrapConfig, cfg config.Workspace) (logr.Logger, func() error) {
	return logging.New(logging.Options{
		Debug:      opts.Debug,
		Stderr:     opts.Stderr,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}
