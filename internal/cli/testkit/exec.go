// Package testkit runs reason commands in tests with captured streams.
package testkit

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

// Cobra mutates flag annotations while serving help, and CLI tests run in
// parallel.
var runMu sync.Mutex

// Run executes command with args and stdin and returns what it wrote to
// stdout and stderr.
func Run(ctx context.Context, command *cobra.Command, stdin string, args ...string) (string, string, error) {
	runMu.Lock()
	defer runMu.Unlock()

	var stdout, stderr bytes.Buffer
	command.SetOut(&stdout)
	command.SetErr(&stderr)
	command.SetIn(strings.NewReader(stdin))
	command.SetArgs(args)

	_, err := command.ExecuteContextC(ctx)
	return stdout.String(), stderr.String(), err
}

// CommandPaths lists every user-facing command below root as space joined
// paths, without the root name.
func CommandPaths(root *cobra.Command) []string {
	return collectPaths(root, "")
}

func collectPaths(command *cobra.Command, prefix string) []string {
	var paths []string
	for _, child := range command.Commands() {
		name := child.Name()
		if name == "help" || strings.HasPrefix(name, "__") {
			continue
		}
		path := strings.TrimSpace(prefix + " " + name)
		paths = append(paths, path)
		paths = append(paths, collectPaths(child, path)...)
	}
	return paths
}
