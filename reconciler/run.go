package reconciler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crmarques/reason/record"
	"github.com/crmarques/reason/server"
)

type RunOptions struct {
	// API is the integral name as cached by the last pull.
	API     string
	Message string
}

// Run invokes a pulled integral by name.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (server.RunResult, error) {
	if e == nil || e.Cache == nil {
		return server.RunResult{}, internalError("metadata cache is not configured", nil)
	}
	if e.Runner == nil {
		return server.RunResult{}, internalError("request runner is not configured", nil)
	}

	name := strings.TrimSpace(opts.API)
	if name == "" {
		return server.RunResult{}, validationError("an integral name is required", nil)
	}

	snapshot, err := e.Cache.Load(ctx)
	if err != nil {
		return server.RunResult{}, err
	}

	target, ok := findByName(snapshot.Records(record.Integrals), name)
	if !ok {
		return server.RunResult{}, lookupError(fmt.Sprintf("Integral %q not found, pull integrals first", name))
	}

	started := time.Now()
	result, err := e.Runner.Run(ctx, server.RunRequest{APIID: target.ID, Message: opts.Message})
	e.recorder().RecordRemoteCall(record.Integrals.Name, "run", err)
	if err != nil {
		return server.RunResult{}, err
	}

	e.logger(ctx).Info("request completed", "integral", target.Name, "elapsed", time.Since(started).Round(time.Millisecond).String())
	return result, nil
}

func findByName(items []record.MetaRecord, name string) (record.MetaRecord, bool) {
	for _, item := range items {
		if item.Name == name {
			return item, true
		}
	}
	return record.MetaRecord{}, false
}
