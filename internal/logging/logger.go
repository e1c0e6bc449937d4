package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
)

type Options struct {
	Debug      bool
	Stderr     io.Writer
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New returns a logger writing one line per entry to stderr and, when File is
// set, to a rotating log file. The returned close func releases the file.
func New(opts Options) (logr.Logger, func() error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	writer := stderr
	closeFn := func() error { return nil }

	if path := strings.TrimSpace(opts.File); path != "" {
		rotating := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    positiveOr(opts.MaxSizeMB, defaultMaxSizeMB),
			MaxBackups: positiveOr(opts.MaxBackups, defaultMaxBackups),
		}
		writer = io.MultiWriter(stderr, rotating)
		closeFn = rotating.Close
	}

	verbosity := 0
	if opts.Debug {
		verbosity = 1
	}

	logger := funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(writer, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(writer, args)
	}, funcr.Options{
		Verbosity:    verbosity,
		LogTimestamp: opts.Debug,
	})
	return logger, closeFn
}

func positiveOr(value int, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
