package parser

import (
	"context"
	"iter"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// ExtractUnits parses source and returns every function definition in it.
//
// The returned sequence is lazy and restartable: each range walks the
// retained syntax tree again and yields the units in source order. Source
// that does not parse fails with an error matching domain.ErrParse.
func ExtractUnits(filePath string, source []byte) (iter.Seq[domain.CodeUnit], error) {
	p := Acquire()
	defer Release(p)
	return p.ExtractUnits(context.Background(), filePath, source)
}

// ExtractUnits is the context-aware variant of the package function that
// reuses this parser.
func (p *Parser) ExtractUnits(ctx context.Context, filePath string, source []byte) (iter.Seq[domain.CodeUnit], error) {
	result, err := p.parseTolerant(ctx, source)
	if err != nil {
		return nil, err
	}
	if result.RootNode.HasError() {
		return nil, domain.NewParseError(filePath, firstErrorPosition(result.RootNode))
	}
	return Units(filePath, result), nil
}

// Units walks an already parsed tree.
func Units(filePath string, result *ParseResult) iter.Seq[domain.CodeUnit] {
	return func(yield func(domain.CodeUnit) bool) {
		w := &unitWalker{
			filePath: filePath,
			source:   result.SourceCode,
			yield:    yield,
		}
		w.walk(result.RootNode, nil, 0, nil)
	}
}

type unitWalker struct {
	filePath string
	source   []byte
	yield    func(domain.CodeUnit) bool
}

// walk returns false once the consumer stopped ranging.
func (w *unitWalker) walk(node *sitter.Node, scope []string, depth int, decorators []string) bool {
	if node == nil {
		return true
	}

	switch node.Type() {
	case "decorated_definition":
		var decs []string
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "decorator" {
				decs = append(decs, strings.TrimSpace(strings.TrimPrefix(child.Content(w.source), "@")))
			}
		}
		return w.walk(node.ChildByFieldName("definition"), scope, depth, decs)

	case "function_definition":
		unit := w.buildUnit(node, scope, depth, decorators)
		if !w.yield(unit) {
			return false
		}
		return w.walkChildren(node.ChildByFieldName("body"), append(scope, unit.Name), depth+1)

	case "class_definition":
		name := w.text(node.ChildByFieldName("name"))
		return w.walkChildren(node.ChildByFieldName("body"), append(scope, name), depth)

	case "lambda":
		return true
	}

	return w.walkChildren(node, scope, depth)
}

func (w *unitWalker) walkChildren(node *sitter.Node, scope []string, depth int) bool {
	if node == nil {
		return true
	}
	// Clip so sibling recursions never share a backing array.
	scope = scope[:len(scope):len(scope)]
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if !w.walk(node.NamedChild(i), scope, depth, nil) {
			return false
		}
	}
	return true
}

func (w *unitWalker) buildUnit(node *sitter.Node, scope []string, depth int, decorators []string) domain.CodeUnit {
	name := w.text(node.ChildByFieldName("name"))
	qualified := name
	if len(scope) > 0 {
		qualified = strings.Join(scope, ".") + "." + name
	}

	start, end := node.StartPoint(), node.EndPoint()
	return domain.CodeUnit{
		FilePath:      w.filePath,
		Name:          name,
		QualifiedName: qualified,
		StartLine:     int(start.Row) + 1,
		EndLine:       int(end.Row) + 1,
		StartCol:      int(start.Column),
		EndCol:        int(end.Column),
		Parameters:    w.parameters(node.ChildByFieldName("parameters")),
		Decorators:    decorators,
		Async:         isAsync(node),
		Depth:         depth,
		Body:          node.Content(w.source),
	}
}

func (w *unitWalker) parameters(params *sitter.Node) []string {
	names := []string{}
	if params == nil {
		return names
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		if name := w.parameterName(params.NamedChild(i)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// parameterName returns "" for separators and anything that is not a
// named parameter.
func (w *unitWalker) parameterName(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier":
		return w.text(node)
	case "default_parameter", "typed_default_parameter":
		return w.parameterName(node.ChildByFieldName("name"))
	case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
		if node.NamedChildCount() == 0 {
			return ""
		}
		return w.parameterName(node.NamedChild(0))
	default:
		return ""
	}
}

func (w *unitWalker) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Content(w.source)
}

func isAsync(node *sitter.Node) bool {
	if node.ChildCount() == 0 {
		return false
	}
	return node.Child(0).Type() == "async"
}
