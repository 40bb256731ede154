package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// newPythonParser creates a tree-sitter parser configured for Python.
func newPythonParser() (*sitter.Parser, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return parser, nil
}

// Import is one imported module. For "from a.b import c" Module is "a.b"
// and Names holds "c".
type Import struct {
	Module string
	Names  []string
	Line   uint32
}

// Top returns the first segment of the module path.
func (i Import) Top() string {
	top, _, _ := strings.Cut(i.Module, ".")
	return top
}

// Decorator is a decorator applied to a function definition.
type Decorator struct {
	// Object is the receiver of an attribute decorator ("router" in
	// @router.get(...)), empty for plain names.
	Object string
	// Name is the attribute or function name ("get").
	Name string
	// Call is true when the decorator is called (@app.get("/") vs @cache).
	Call bool
	// Async is true when the decorated function is async.
	Async bool
	Line  uint32
}

// PythonImports returns the absolute imports of a module in source order.
// Relative imports ("from . import x") are skipped.
func (r *ParseResult) PythonImports() []Import {
	var out []Import
	r.WalkNodes(func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if name := importedName(r, n.NamedChild(i)); name != "" {
					out = append(out, Import{Module: name, Line: n.StartPoint().Row + 1})
				}
			}
			return false
		case "import_from_statement":
			mod := n.ChildByFieldName("module_name")
			if mod == nil || mod.Type() != "dotted_name" {
				return false
			}
			imp := Import{Module: r.NodeText(mod), Line: n.StartPoint().Row + 1}
			for i := 0; i < int(n.NamedChildCount()); i++ {
				c := n.NamedChild(i)
				if c.Equal(mod) {
					continue
				}
				if name := importedName(r, c); name != "" {
					imp.Names = append(imp.Names, name)
				}
			}
			out = append(out, imp)
			return false
		}
		return true
	})
	return out
}

func importedName(r *ParseResult, n *sitter.Node) string {
	switch n.Type() {
	case "dotted_name", "identifier":
		return r.NodeText(n)
	case "aliased_import":
		return r.NodeText(n.ChildByFieldName("name"))
	}
	return ""
}

// PythonDecorators returns the decorators on every function definition,
// including methods and nested functions.
func (r *ParseResult) PythonDecorators() []Decorator {
	var out []Decorator
	for _, def := range r.FindNodesByType("decorated_definition") {
		target := def.ChildByFieldName("definition")
		if target == nil || target.Type() != "function_definition" {
			continue
		}
		async := strings.HasPrefix(r.NodeText(target), "async")
		for i := 0; i < int(def.NamedChildCount()); i++ {
			dec := def.NamedChild(i)
			if dec.Type() != "decorator" || dec.NamedChildCount() == 0 {
				continue
			}
			d := Decorator{Async: async, Line: dec.StartPoint().Row + 1}
			expr := dec.NamedChild(0)
			if expr.Type() == "call" {
				d.Call = true
				expr = expr.ChildByFieldName("function")
			}
			if expr == nil {
				continue
			}
			switch expr.Type() {
			case "attribute":
				d.Object = r.NodeText(expr.ChildByFieldName("object"))
				d.Name = r.NodeText(expr.ChildByFieldName("attribute"))
			case "identifier":
				d.Name = r.NodeText(expr)
			default:
				continue
			}
			out = append(out, d)
		}
	}
	return out
}

// PythonCallees returns the callee text of every call expression
// ("APIRouter", "redis.Redis", "celery.task").
func (r *ParseResult) PythonCallees() []string {
	var out []string
	for _, call := range r.FindNodesByType("call") {
		fn := call.ChildByFieldName("function")
		if fn == nil {
			continue
		}
		switch fn.Type() {
		case "identifier", "attribute":
			out = append(out, r.NodeText(fn))
		}
	}
	return out
}
