package core

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

const modulePrefix = "github.com/crmarques/reason/"

func TestOnlyCoreAndProvidersImportProviderImplementations(t *testing.T) {
	t.Parallel()

	const providersPrefix = modulePrefix + "internal/providers/"

	scanImports(t, func(relPath string, importPath string) {
		if !strings.HasPrefix(importPath, providersPrefix) {
			return
		}
		if strings.HasPrefix(relPath, "core/") || strings.HasPrefix(relPath, "internal/providers/") {
			return
		}
		t.Errorf("forbidden provider import %q in %s", importPath, relPath)
	})
}

func TestDomainPackagesDoNotImportInternalPackages(t *testing.T) {
	t.Parallel()

	domainPrefixes := []string{
		"config/",
		"debugctx/",
		"faults/",
		"metadata/",
		"metrics/",
		"record/",
		"reconciler/",
		"repository/",
		"server/",
		"yamlutil/",
	}

	scanImports(t, func(relPath string, importPath string) {
		if !strings.HasPrefix(importPath, modulePrefix+"internal/") {
			return
		}
		for _, prefix := range domainPrefixes {
			if strings.HasPrefix(relPath, prefix) {
				t.Errorf("domain package file %s imports internal package %q", relPath, importPath)
				return
			}
		}
	})
}

// scanImports calls visit for every import of every non-test Go file in the
// module, with the file path relative to the module root.
func scanImports(t *testing.T, visit func(relPath string, importPath string)) {
	t.Helper()

	repoRoot := filepath.Clean("..")
	fset := token.NewFileSet()
	err := filepath.WalkDir(repoRoot, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if path != repoRoot && isIgnoredDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		relPath, err := filepath.Rel(repoRoot, path)
		if err != nil {
			return err
		}
		parsed, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imported := range parsed.Imports {
			visit(filepath.ToSlash(relPath), strings.Trim(imported.Path.Value, `"`))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("import scan failed: %v", err)
	}
}

// isIgnoredDir mirrors the go tool, which skips directories starting with
// "." or "_".
func isIgnoredDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata"
}
