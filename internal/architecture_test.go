package internal_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// outerPackages are the surfaces built on top of the core
var outerPackages = []string{
	"codonvm/internal/cli",
	"codonvm/internal/tui",
	"codonvm/internal/store",
	"codonvm/internal/config",
	"codonvm/internal/trace",
}

// TestGenomeImportRestrictions keeps the genome packages free of the VM and its surfaces
func TestGenomeImportRestrictions(t *testing.T) {
	forbidden := append([]string{
		"codonvm/internal/vm",
		"codonvm/internal/render",
	}, outerPackages...)

	checkImports(t, "./genome", nil, forbidden)
}

// TestCoreImportRestrictions ensures the VM and renderers never reach outward
func TestCoreImportRestrictions(t *testing.T) {
	checkImports(t, "./vm", nil, outerPackages)
	checkImports(t, "./render", nil, append([]string{"codonvm/internal/vm"}, outerPackages...))
}

// TestTUIImportRestrictions ensures the scrubber only replays snapshots
func TestTUIImportRestrictions(t *testing.T) {
	allowedPrefixes := []string{
		"codonvm/internal/vm",
		"codonvm/internal/trace",
		"codonvm/internal/genome/codon",
		"codonvm/internal/render",
		"codonvm/internal/log",
	}
	checkImports(t, "./tui", allowedPrefixes, []string{"codonvm/internal/store", "codonvm/internal/cli"})
}

func checkImports(t *testing.T, packageDir string, allowedPrefixes, forbiddenPrefixes []string) {
	err := filepath.Walk(packageDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			return nil
		}

		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)

			// only project packages are restricted
			if !strings.HasPrefix(importPath, "codonvm/internal") {
				continue
			}

			for _, forbidden := range forbiddenPrefixes {
				if strings.HasPrefix(importPath, forbidden) {
					t.Errorf("FORBIDDEN import in %s: %s", path, importPath)
				}
			}

			if len(allowedPrefixes) > 0 {
				allowed := false
				for _, prefix := range allowedPrefixes {
					if strings.HasPrefix(importPath, prefix) {
						allowed = true
						break
					}
				}
				if !allowed {
					t.Errorf("DISALLOWED import in %s: %s (not in allowed list)", path, importPath)
				}
			}
		}

		return nil
	})

	if err != nil {
		t.Errorf("Failed to walk directory %s: %v", packageDir, err)
	}
}
