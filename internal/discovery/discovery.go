// Package discovery classifies the import targets of a code context graph
// into stdlib, external, and internal-but-unanalyzed modules, and proposes
// the on-disk files an incremental analysis pass should visit next.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codegenius/internal/graph"
)

// stdlibModules is the fixed allow-list of Python standard-library roots.
var stdlibModules = map[string]bool{
	"os": true, "sys": true, "re": true, "json": true, "time": true,
	"datetime": true, "collections": true, "itertools": true,
	"functools": true, "pathlib": true, "typing": true, "abc": true,
	"enum": true, "logging": true, "argparse": true, "configparser": true,
	"io": true, "shutil": true, "subprocess": true, "threading": true,
	"multiprocessing": true, "asyncio": true, "contextlib": true,
	"traceback": true, "unittest": true, "pytest": true, "math": true,
	"random": true, "string": true, "copy": true, "pickle": true,
}

// Report is the result of one discovery pass.
type Report struct {
	TotalImports            int      `json:"totalImports"`
	AnalyzedModules         int      `json:"analyzedModules"`
	UnanalyzedInternal      []string `json:"unanalyzedInternal"`
	ExternalDependencies    []string `json:"externalDependencies"`
	StdlibImports           []string `json:"stdlibImports"`
	PotentialFilesToAnalyze []string `json:"potentialFilesToAnalyze"`
	DiscoveryComplete       bool     `json:"discoveryComplete"`
}

// MaxIterations bounds the analyze-discover loop run by the pipeline.
// Import cycles and unresolvable references would otherwise never drain
// the unanalyzed set.
const MaxIterations = 3

// Discover classifies every import target in g against the repository
// rooted at repoPath. The repository's base name is treated as the root
// package name for internal-module detection. A module counts as analyzed
// when a scanned file defines it; the dotted name is derived from the
// node's file path, so an import target is classified even when its root
// identifier appears as a module node elsewhere in the graph.
func Discover(g *graph.Graph, repoPath string) Report {
	snap := g.Serialize()
	repoName := filepath.Base(repoPath)

	analyzed := make(map[string]bool)
	for _, n := range snap.Nodes {
		if name := fileModule(n.File, repoName); name != "" {
			analyzed[name] = true
		}
	}

	imported := make(map[string]bool)
	for _, e := range snap.Edges {
		if e.Type != graph.EdgeImports {
			continue
		}
		module := e.Target
		if i := strings.Index(module, ":"); i >= 0 {
			module = module[:i]
		}
		if module != "" {
			imported[module] = true
		}
	}

	internal := []string{}
	external := []string{}
	stdlib := []string{}
	for module := range imported {
		if analyzed[module] {
			continue
		}
		root := strings.SplitN(module, ".", 2)[0]
		switch {
		case stdlibModules[root]:
			stdlib = append(stdlib, module)
		case strings.HasPrefix(module, repoName) || strings.HasPrefix(module, "."):
			internal = append(internal, module)
		default:
			external = append(external, module)
		}
	}
	sort.Strings(internal)
	sort.Strings(external)
	sort.Strings(stdlib)

	files := []string{}
	for _, module := range internal {
		rel := strings.ReplaceAll(strings.TrimPrefix(module, "."), ".", string(filepath.Separator))
		direct := filepath.Join(repoPath, rel+".py")
		index := filepath.Join(repoPath, rel, "__init__.py")
		if fileExists(direct) {
			files = append(files, direct)
		} else if fileExists(index) {
			files = append(files, index)
		}
	}

	return Report{
		TotalImports:            len(imported),
		AnalyzedModules:         len(analyzed),
		UnanalyzedInternal:      internal,
		ExternalDependencies:    external,
		StdlibImports:           stdlib,
		PotentialFilesToAnalyze: files,
		DiscoveryComplete:       len(internal) == 0,
	}
}

// fileModule converts a scanned file's repository-relative path into the
// dotted module name it defines. A package index file names its directory;
// an index at the repository root names the repository itself. Paths with
// a non-analyzable extension map to no module.
func fileModule(path, repoName string) string {
	path = filepath.ToSlash(path)
	switch ext := filepath.Ext(path); ext {
	case ".py", ".jac":
		path = strings.TrimSuffix(path, ext)
	default:
		return ""
	}
	path = strings.TrimSuffix(path, "/__init__")
	if path == "__init__" {
		return repoName
	}
	return strings.ReplaceAll(path, "/", ".")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
