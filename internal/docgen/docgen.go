// Package docgen renders the analysis output as a single Markdown
// document with mermaid diagrams.
package docgen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codegenius/internal/graph"
	"codegenius/internal/repo"
	"codegenius/internal/stats"
)

// Input carries everything one documentation render needs.
type Input struct {
	RepoURL       string
	RepoName      string
	FileTree      repo.TreeNode
	ReadmeSummary string
	Snapshot      graph.Snapshot
	Stats         stats.Report
}

// Render produces the full Markdown document.
func Render(in Input) string {
	var b strings.Builder

	name := in.RepoName
	if name == "" && in.RepoURL != "" {
		name = repo.RepoName(in.RepoURL)
	}
	fmt.Fprintf(&b, "# %s - Documentation\n\n", name)
	if in.RepoURL != "" {
		fmt.Fprintf(&b, "*Auto-generated documentation for [%s](%s)*\n\n", in.RepoURL, in.RepoURL)
	}
	b.WriteString("---\n\n")

	b.WriteString("## Overview\n\n")
	summary := in.ReadmeSummary
	if summary == "" {
		summary = "No README content found."
	}
	b.WriteString(summary + "\n\n")

	writeInstallation(&b, in)
	writeUsage(&b, in)
	writeArchitecture(&b, in)
	writeAPIReference(&b, in)
	writeProjectStructure(&b, in.FileTree)

	b.WriteString("---\n\n")
	b.WriteString("*Generated by CodeGenius*\n")
	return b.String()
}

// WriteFile renders the document and writes it to outDir/docs.md.
func WriteFile(in Input, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(outDir, "docs.md")
	if err := os.WriteFile(path, []byte(Render(in)), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func writeInstallation(b *strings.Builder, in Input) {
	b.WriteString("## Installation\n\n")
	if in.RepoURL != "" {
		b.WriteString("Clone the repository:\n\n")
		b.WriteString("```bash\n")
		fmt.Fprintf(b, "git clone %s\n", in.RepoURL)
		fmt.Fprintf(b, "cd %s\n", repo.RepoName(in.RepoURL))
		b.WriteString("```\n\n")
	}
	switch {
	case hasFile(in.FileTree, "requirements.txt"):
		b.WriteString("Install dependencies:\n\n```bash\npip install -r requirements.txt\n```\n\n")
	case hasFile(in.FileTree, "setup.py"):
		b.WriteString("Install the package:\n\n```bash\npip install -e .\n```\n\n")
	case hasFile(in.FileTree, "pyproject.toml"):
		b.WriteString("Install using poetry or pip:\n\n```bash\npoetry install\n# or\npip install .\n```\n\n")
	}
}

func writeUsage(b *strings.Builder, in Input) {
	b.WriteString("## Usage\n\n")
	entries := repo.FindImportantFiles(in.FileTree)
	if len(entries) == 0 {
		b.WriteString("Please refer to the repository documentation for usage instructions.\n\n")
		return
	}
	b.WriteString("Entry points detected:\n\n")
	if len(entries) > 3 {
		entries = entries[:3]
	}
	for _, ep := range entries {
		fmt.Fprintf(b, "- `%s`\n", ep)
	}
	b.WriteString("\n")
}

func writeArchitecture(b *strings.Builder, in Input) {
	rep := in.Stats
	b.WriteString("## Architecture\n\n")
	fmt.Fprintf(b, "- **Total Symbols**: %d\n", rep.TotalSymbols)
	fmt.Fprintf(b, "- **Classes**: %d\n", rep.Classes)
	fmt.Fprintf(b, "- **Functions**: %d\n", rep.Functions)
	fmt.Fprintf(b, "- **Modules**: %d\n", rep.Modules)
	fmt.Fprintf(b, "- **Call Relationships**: %d\n", rep.CallEdges)
	fmt.Fprintf(b, "- **Inheritance Relationships**: %d\n\n", rep.InheritanceEdges)

	if len(rep.BaseClasses) > 0 {
		b.WriteString("### Base Classes\n\n")
		b.WriteString("Classes that serve as base classes for others:\n\n")
		for i, bc := range rep.BaseClasses {
			if i == 10 {
				break
			}
			fmt.Fprintf(b, "- `%s`\n", symbolName(bc))
		}
		b.WriteString("\n")
	}

	wroteDiagramHeader := false
	if diagram := ClassDiagram(in.Snapshot); diagram != "" {
		b.WriteString("### Code Diagrams\n\n")
		wroteDiagramHeader = true
		b.WriteString("#### Class Hierarchy\n\n")
		b.WriteString("```mermaid\n" + diagram + "```\n\n")
	}
	if diagram := CallGraph(in.Snapshot); diagram != "" {
		if !wroteDiagramHeader {
			b.WriteString("### Code Diagrams\n\n")
		}
		b.WriteString("#### Call Graph\n\n")
		b.WriteString("```mermaid\n" + diagram + "```\n\n")
	}
}

func writeAPIReference(b *strings.Builder, in Input) {
	rep := in.Stats
	b.WriteString("## API Reference\n\n")

	classesByFile := make(map[string][]graph.Node)
	var fileOrder []string
	for _, n := range in.Snapshot.Nodes {
		if n.Kind != graph.KindClass {
			continue
		}
		if _, ok := classesByFile[n.File]; !ok {
			fileOrder = append(fileOrder, n.File)
		}
		classesByFile[n.File] = append(classesByFile[n.File], n)
	}
	if len(fileOrder) > 0 {
		b.WriteString("### Classes\n\n")
		sort.Strings(fileOrder)
		if len(fileOrder) > 10 {
			fileOrder = fileOrder[:10]
		}
		for _, file := range fileOrder {
			fmt.Fprintf(b, "#### %s\n\n", filepath.Base(file))
			classes := classesByFile[file]
			if len(classes) > 5 {
				classes = classes[:5]
			}
			for _, cls := range classes {
				fmt.Fprintf(b, "- **`%s`**\n", cls.Name)
			}
			b.WriteString("\n")
		}
	}

	if len(rep.HighComplexity) > 0 {
		b.WriteString("### High-Complexity Functions\n\n")
		fmt.Fprintf(b, "Functions with complexity > %d (may need refactoring):\n\n", stats.HighComplexityThreshold)
		for _, fn := range rep.HighComplexity {
			fmt.Fprintf(b, "- `%s` in `%s` (complexity: %d)\n", fn.Name, filepath.Base(fn.File), fn.Complexity)
		}
		b.WriteString("\n")
	}

	if len(rep.Hotspots) > 0 {
		b.WriteString("### Most-Called Functions (Hotspots)\n\n")
		b.WriteString("Functions frequently called by others:\n\n")
		for _, h := range rep.Hotspots {
			fmt.Fprintf(b, "- `%s` (%d calls)\n", symbolName(h.Target), h.Count)
		}
		b.WriteString("\n")
	}
}

func writeProjectStructure(b *strings.Builder, tree repo.TreeNode) {
	b.WriteString("## Project Structure\n\n")
	b.WriteString("```\n")
	if tree.Type == "" {
		b.WriteString("<empty>\n")
	} else {
		writeTree(b, tree, 0)
	}
	b.WriteString("```\n\n")
}

func writeTree(b *strings.Builder, n repo.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	label := n.Path
	if label == "" {
		label = "."
	}
	if n.Type == "dir" {
		fmt.Fprintf(b, "%s%s/\n", indent, label)
	} else {
		fmt.Fprintf(b, "%s%s\n", indent, label)
	}
	for _, child := range n.Children {
		writeTree(b, child, depth+1)
	}
}

// hasFile reports whether name exists at the repository root.
func hasFile(tree repo.TreeNode, name string) bool {
	for _, child := range tree.Children {
		if child.Type == "file" && child.Path == name {
			return true
		}
	}
	return false
}
