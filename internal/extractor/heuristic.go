package extractor

import (
	"strings"

	"codegenius/internal/graph"
)

// decisionKeywords drive the branch-counting complexity estimate. This is
// deliberately not true cyclomatic complexity; keyword hits inside string
// literals are miscounted and accepted as a precision trade-off.
var decisionKeywords = []string{"if ", "elif ", "for ", "while ", " and ", " or ", " except "}

// HeuristicBackend is the always-available fallback: a line-oriented scan
// with no lookahead, no nesting awareness, and no string/comment handling.
// Nested defs are treated as sequential, not hierarchical.
type HeuristicBackend struct{}

// NewHeuristicBackend creates the line-scanning backend.
func NewHeuristicBackend() *HeuristicBackend {
	return &HeuristicBackend{}
}

func (h *HeuristicBackend) Name() string { return "heuristic" }

// Parse scans the content line by line. Class-definition lines open class
// symbols and emit one inherits tuple per base (skipping object); def
// lines finalize the previously open function and open a new one; import
// lines emit a module symbol per imported root identifier; every other
// non-blank line accumulates toward the open function's complexity.
// The error is always nil.
func (h *HeuristicBackend) Parse(content []byte) (Result, error) {
	var res Result
	var currentFunc string
	var funcOpen bool
	var funcLines []string

	finalize := func() {
		if !funcOpen {
			return
		}
		res.Symbols = append(res.Symbols, Symbol{
			Name:       currentFunc,
			Kind:       graph.KindFunction,
			Complexity: estimateComplexity(funcLines),
		})
		funcOpen = false
		funcLines = nil
	}

	for _, line := range strings.Split(string(content), "\n") {
		stripped := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(stripped, "class "):
			finalize()
			rest := strings.TrimPrefix(stripped, "class ")
			if open := strings.Index(rest, "("); open >= 0 {
				name := strings.TrimSpace(rest[:open])
				res.Symbols = append(res.Symbols, Symbol{Name: name, Kind: graph.KindClass})
				basesStr := rest[open+1:]
				if close := strings.Index(basesStr, ")"); close >= 0 {
					basesStr = basesStr[:close]
				}
				for _, base := range strings.Split(basesStr, ",") {
					base = strings.TrimSpace(base)
					if base != "" && base != "object" {
						res.Edges = append(res.Edges, Tuple{Source: name, Target: base, Kind: graph.EdgeInherits})
					}
				}
			} else {
				name := strings.TrimSpace(strings.SplitN(rest, ":", 2)[0])
				res.Symbols = append(res.Symbols, Symbol{Name: name, Kind: graph.KindClass})
			}

		case strings.HasPrefix(stripped, "def "):
			finalize()
			currentFunc = funcName(strings.TrimPrefix(stripped, "def "))
			funcOpen = true

		case strings.HasPrefix(stripped, "import "), strings.HasPrefix(stripped, "from "):
			if imp, ok := parseImportLine(stripped); ok {
				if imp.Root != "" {
					res.Symbols = append(res.Symbols, Symbol{Name: imp.Root, Kind: graph.KindModule})
				}
				res.Imports = append(res.Imports, imp)
			}

		default:
			if funcOpen && stripped != "" {
				funcLines = append(funcLines, stripped)
			}
		}
	}
	finalize()

	return res, nil
}

// funcName extracts the identifier from the remainder of a def line.
func funcName(rest string) string {
	if open := strings.Index(rest, "("); open >= 0 {
		rest = rest[:open]
	} else if colon := strings.Index(rest, ":"); colon >= 0 {
		rest = rest[:colon]
	}
	return strings.TrimSpace(rest)
}

// parseImportLine extracts the imported module from an import or from
// statement. Only the first module on the line is captured.
func parseImportLine(line string) (Import, bool) {
	var rest string
	switch {
	case strings.HasPrefix(line, "import "):
		rest = strings.TrimPrefix(line, "import ")
	case strings.HasPrefix(line, "from "):
		rest = strings.TrimPrefix(line, "from ")
	default:
		return Import{}, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Import{}, false
	}
	path := fields[0]
	root := strings.SplitN(path, ".", 2)[0]
	return Import{Root: root, Path: path}, true
}

// estimateComplexity counts decision-keyword lines on top of a base of 1.
func estimateComplexity(lines []string) int {
	score := 1
	for _, line := range lines {
		for _, kw := range decisionKeywords {
			if strings.Contains(line, kw) {
				score++
				break
			}
		}
	}
	return score
}
