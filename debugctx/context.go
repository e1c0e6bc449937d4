package debugctx

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
)

// DebugLevel is the logr verbosity used for debug traces.
const DebugLevel = 1

// WithLogger attaches logger to ctx so providers deeper in the call chain can
// emit debug traces without an explicit logger parameter.
func WithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

func Logger(ctx context.Context) logr.Logger {
	if ctx == nil {
		return logr.Discard()
	}
	return logr.FromContextOrDiscard(ctx)
}

func Enabled(ctx context.Context) bool {
	return Logger(ctx).V(DebugLevel).Enabled()
}

func Printf(ctx context.Context, format string, args ...any) {
	logger := Logger(ctx).V(DebugLevel)
	if !logger.Enabled() {
		return
	}

	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}

	logger.Info(message)
}
