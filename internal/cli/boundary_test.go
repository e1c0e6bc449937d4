package cli

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// The CLI talks to the engine and the workspace interfaces only; provider
// implementations are wired in core.
func TestCLIImportsFollowProjectBoundaries(t *testing.T) {
	t.Parallel()

	const modulePrefix = "github.com/crmarques/reason/"

	allowedPrefixes := []string{
		modulePrefix + "internal/cli/",
		modulePrefix + "config",
		modulePrefix + "faults",
		modulePrefix + "metadata",
		modulePrefix + "reconciler",
		modulePrefix + "record",
		modulePrefix + "repository",
		modulePrefix + "server",
	}
	allowedExact := []string{
		modulePrefix + "debugctx",
		modulePrefix + "internal/logging",
		modulePrefix + "yamlutil",
	}

	fset := token.NewFileSet()
	err := filepath.WalkDir(".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil || entry.IsDir() {
			return walkErr
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}

		for _, imported := range file.Imports {
			importPath := strings.Trim(imported.Path.Value, `"`)
			switch {
			case !strings.HasPrefix(importPath, modulePrefix), slices.Contains(allowedExact, importPath):
				continue
			case strings.HasPrefix(importPath, modulePrefix+"internal/providers/"):
				t.Errorf("provider import %q in %s", importPath, path)
			case !slices.ContainsFunc(allowedPrefixes, func(prefix string) bool { return strings.HasPrefix(importPath, prefix) }):
				t.Errorf("forbidden project import %q in %s", importPath, path)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("boundary scan failed: %v", err)
	}
}
