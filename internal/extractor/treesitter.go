package extractor

import (
	"context"
	"errors"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"codegenius/internal/graph"
)

// TreeSitterBackend extracts exact symbol names via syntax-tree traversal.
// It tracks the enclosing function during a depth-first walk and emits a
// calls tuple from it to every call expression's resolved callee. Callers
// route failures to the heuristic backend; this type never degrades on
// its own.
type TreeSitterBackend struct{}

// NewTreeSitterBackend creates the grammar-based backend for Python.
func NewTreeSitterBackend() *TreeSitterBackend {
	return &TreeSitterBackend{}
}

func (b *TreeSitterBackend) Name() string { return "tree-sitter" }

// Parse builds a syntax tree for the content and walks it.
func (b *TreeSitterBackend) Parse(content []byte) (Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return Result{}, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return Result{}, errors.New("tree-sitter returned nil root node")
	}

	w := &tsWalker{content: content}
	w.walk(root)
	return w.res, nil
}

type tsWalker struct {
	content      []byte
	res          Result
	currentFunc  string
	currentClass string
}

func (w *tsWalker) walk(node *sitter.Node) {
	switch node.Type() {
	case "function_definition":
		if name := w.identChild(node); name != "" {
			w.res.Symbols = append(w.res.Symbols, Symbol{
				Name:       name,
				Kind:       graph.KindFunction,
				Complexity: w.bodyComplexity(node),
			})
			if w.currentClass != "" {
				w.res.Edges = append(w.res.Edges, Tuple{Source: w.currentClass, Target: name, Kind: graph.EdgeContains})
			}
			prev := w.currentFunc
			w.currentFunc = name
			w.walkChildren(node)
			w.currentFunc = prev
			return
		}

	case "class_definition":
		if name := w.identChild(node); name != "" {
			w.res.Symbols = append(w.res.Symbols, Symbol{Name: name, Kind: graph.KindClass})
			for _, base := range w.baseClasses(node) {
				w.res.Edges = append(w.res.Edges, Tuple{Source: name, Target: base, Kind: graph.EdgeInherits})
			}
			prev := w.currentClass
			w.currentClass = name
			w.walkChildren(node)
			w.currentClass = prev
			return
		}

	case "call":
		if callee := w.calleeName(node); callee != "" && w.currentFunc != "" {
			w.res.Edges = append(w.res.Edges, Tuple{Source: w.currentFunc, Target: callee, Kind: graph.EdgeCalls})
		}

	case "import_statement":
		w.collectImports(node)
		return

	case "import_from_statement":
		w.collectFromImport(node)
		return
	}

	w.walkChildren(node)
}

func (w *tsWalker) walkChildren(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			w.walk(child)
		}
	}
}

// identChild returns the text of the first identifier child, the name
// position for both function and class definitions.
func (w *tsWalker) identChild(node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == "identifier" {
			return child.Content(w.content)
		}
	}
	return ""
}

// bodyComplexity estimates the function's complexity from its block text
// using the same branch-counting heuristic as the line scanner.
func (w *tsWalker) bodyComplexity(node *sitter.Node) int {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || child.Type() != "block" {
			continue
		}
		var lines []string
		for _, line := range strings.Split(child.Content(w.content), "\n") {
			if s := strings.TrimSpace(line); s != "" {
				lines = append(lines, s)
			}
		}
		return estimateComplexity(lines)
	}
	return 1
}

// baseClasses extracts base identifiers from the class argument list.
// Qualified bases keep only the leaf name; the universal root base is
// skipped.
func (w *tsWalker) baseClasses(node *sitter.Node) []string {
	var bases []string
	for i := 0; i < int(node.ChildCount()); i++ {
		args := node.Child(i)
		if args == nil || args.Type() != "argument_list" {
			continue
		}
		for j := 0; j < int(args.ChildCount()); j++ {
			arg := args.Child(j)
			if arg == nil {
				continue
			}
			var base string
			switch arg.Type() {
			case "identifier":
				base = arg.Content(w.content)
			case "attribute":
				full := arg.Content(w.content)
				if dot := strings.LastIndex(full, "."); dot >= 0 {
					base = full[dot+1:]
				} else {
					base = full
				}
			}
			if base != "" && base != "object" {
				bases = append(bases, base)
			}
		}
	}
	return bases
}

// calleeName resolves a call expression to a bare callee identifier: the
// plain identifier, or the attribute leaf for obj.method() calls.
func (w *tsWalker) calleeName(node *sitter.Node) string {
	if node.ChildCount() == 0 {
		return ""
	}
	fn := node.Child(0)
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return fn.Content(w.content)
	case "attribute":
		for i := int(fn.ChildCount()) - 1; i >= 0; i-- {
			child := fn.Child(i)
			if child != nil && child.Type() == "identifier" {
				return child.Content(w.content)
			}
		}
	}
	return ""
}

// collectImports handles "import foo" and "import foo as bar".
func (w *tsWalker) collectImports(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			w.addImport(child.Content(w.content))
		case "aliased_import":
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc != nil && gc.Type() == "dotted_name" {
					w.addImport(gc.Content(w.content))
					break
				}
			}
		}
	}
}

// collectFromImport handles "from x import y"; only the module path before
// the import keyword is recorded.
func (w *tsWalker) collectFromImport(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			w.addImport(child.Content(w.content))
			return
		case "relative_import":
			w.addImport(child.Content(w.content))
			return
		case "import":
			return
		}
	}
}

func (w *tsWalker) addImport(path string) {
	if path == "" {
		return
	}
	root := strings.SplitN(path, ".", 2)[0]
	if root != "" {
		w.res.Symbols = append(w.res.Symbols, Symbol{Name: root, Kind: graph.KindModule})
	}
	w.res.Imports = append(w.res.Imports, Import{Root: root, Path: path})
}
