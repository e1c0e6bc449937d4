package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/core"
	"github.com/crmarques/reason/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, newDependencies())
	stop()

	if err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}

func newDependencies() cli.Dependencies {
	return cli.Dependencies{
		OpenWorkspace: openWorkspace,
		InitWorkspace: func(ctx context.Context, opts cli.WorkspaceOptions, cfg config.Workspace) (config.Workspace, error) {
			return core.InitWorkspace(ctx, bootstrapConfig(opts), cfg)
		},
		Workspaces: func(opts cli.WorkspaceOptions) config.WorkspaceService {
			return core.NewWorkspaceService(bootstrapConfig(opts))
		},
	}
}

func openWorkspace(ctx context.Context, opts cli.WorkspaceOptions) (cli.Session, error) {
	workspace, err := core.NewWorkspace(ctx, bootstrapConfig(opts))
	if err != nil {
		return cli.Session{}, err
	}

	return cli.Session{
		Config: workspace.Config,
		Engine: workspace.Engine,
		Logger: workspace.Logger,
		Close:  workspace.Close,
	}, nil
}

func bootstrapConfig(opts cli.WorkspaceOptions) core.BootstrapConfig {
	return core.BootstrapConfig{
		ConfigPath: opts.ConfigPath,
		Overrides:  opts.Overrides,
		Debug:      opts.Debug,
		Stderr:     opts.Stderr,
	}
}
