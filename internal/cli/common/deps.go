package common

import (
	"context"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/crmarques/reason/config"
	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/reconciler"
)

type WorkspaceOptions struct {
	ConfigPath string
	Overrides  map[string]string
	Debug      bool
	Stderr     io.Writer
}

// Session is an opened workspace. Close must be called when the command is
// done with it.
type Session struct {
	Config config.Workspace
	Engine *reconciler.Engine
	Logger logr.Logger
	Close  func() error
}

type CommandDependencies struct {
	OpenWorkspace func(ctx context.Context, opts WorkspaceOptions) (Session, error)
	InitWorkspace func(ctx context.Context, opts WorkspaceOptions, cfg config.Workspace) (config.Workspace, error)
	Workspaces    func(opts WorkspaceOptions) config.WorkspaceService
}

func NewWorkspaceOptions(command *cobra.Command, flags *GlobalFlags) WorkspaceOptions {
	opts := WorkspaceOptions{Stderr: command.ErrOrStderr()}
	if flags != nil {
		opts.ConfigPath = flags.Config
		opts.Overrides = flags.Overrides
		opts.Debug = flags.Debug
	}
	return opts
}

// OpenSession opens the workspace and attaches its logger to the command
// context.
func OpenSession(command *cobra.Command, deps CommandDependencies, flags *GlobalFlags) (Session, error) {
	if deps.OpenWorkspace == nil {
		return Session{}, internalError("workspace bootstrap is not configured", nil)
	}

	session, err := deps.OpenWorkspace(command.Context(), NewWorkspaceOptions(command, flags))
	if err != nil {
		return Session{}, err
	}
	if session.Engine == nil {
		return Session{}, internalError("workspace engine is not configured", nil)
	}
	if session.Close == nil {
		session.Close = func() error { return nil }
	}
	if session.Logger.GetSink() != nil {
		command.SetContext(debugctx.WithLogger(command.Context(), session.Logger))
	}
	return session, nil
}

func RequireWorkspaces(command *cobra.Command, deps CommandDependencies, flags *GlobalFlags) (config.WorkspaceService, error) {
	if deps.Workspaces == nil {
		return nil, internalError("workspace config service is not configured", nil)
	}
	return deps.Workspaces(NewWorkspaceOptions(command, flags)), nil
}
