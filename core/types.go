package core

import (
	"errors"
	"io"

	"github.com/go-logr/logr"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/reconciler"
)

// Workspace is a bootstrapped workspace: its effective config and an engine
// wired to the configured providers.
type Workspace struct {
	Config  config.Workspace
	Configs config.WorkspaceService
	Engine  *reconciler.Engine
	Logger  logr.Logger

	closers []func() error
}

// Close releases resources opened during bootstrap, such as the log file.
func (w *Workspace) Close() error {
	if w == nil {
		return nil
	}
	var errs []error
	for idx := len(w.closers) - 1; idx >= 0; idx-- {
		if err := w.closers[idx](); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	return errors.Join(errs...)
}

type BootstrapConfig struct {
	// ConfigPath points at an explicit workspace config file.
	ConfigPath string
	// Overrides are dotted config keys applied on top of the persisted file.
	Overrides map[string]string
	Debug     bool
	Stderr    io.Writer
	// LookupEnv replaces os.LookupEnv.
	LookupEnv func(string) (string, bool)
}
