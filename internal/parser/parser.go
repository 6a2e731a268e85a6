package parser

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// Parser provides Python code parsing capabilities using tree-sitter.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// New creates a new Parser instance with Python grammar
func New() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Parser{
		parser: parser,
	}
}

// Close releases the underlying tree-sitter parser
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseResult represents the result of parsing Python code
type ParseResult struct {
	Tree       *sitter.Tree
	RootNode   *sitter.Node
	SourceCode []byte
}

// Parse parses Python source code and returns the syntax tree. Source with
// syntax errors fails with domain.ErrParse.
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	result, err := p.parseTolerant(ctx, source)
	if err != nil {
		return nil, err
	}

	if result.RootNode.HasError() {
		return nil, domain.NewDomainError(domain.ErrCodeParseError,
			"syntax errors found in source code", firstErrorPosition(result.RootNode))
	}

	return result, nil
}

// parseTolerant parses source and keeps trees that contain ERROR nodes.
// An interrupted parse leaves tree-sitter ready to resume it on the next
// call, so the parser is reset before the error is returned.
func (p *Parser) parseTolerant(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		p.parser.Reset()
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	return &ParseResult{
		Tree:       tree,
		RootNode:   tree.RootNode(),
		SourceCode: source,
	}, nil
}

// WalkTree traverses the syntax tree depth-first and calls the visitor
// function for each node
func WalkTree(node *sitter.Node, visitor func(*sitter.Node) error) error {
	if err := visitor(node); err != nil {
		return err
	}

	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if err := WalkTree(child, visitor); err != nil {
			return err
		}
	}

	return nil
}

// FindNodes finds all nodes of a specific type in the tree
func FindNodes(node *sitter.Node, nodeType string) []*sitter.Node {
	var nodes []*sitter.Node

	_ = WalkTree(node, func(n *sitter.Node) error {
		if n.Type() == nodeType {
			nodes = append(nodes, n)
		}
		return nil
	})

	return nodes
}

// firstErrorPosition describes the first ERROR or MISSING node in the tree
func firstErrorPosition(root *sitter.Node) error {
	var found error
	_ = WalkTree(root, func(n *sitter.Node) error {
		if found == nil && (n.IsError() || n.IsMissing()) {
			pt := n.StartPoint()
			found = fmt.Errorf("syntax error at line %d, column %d", pt.Row+1, pt.Column+1)
		}
		return nil
	})
	return found
}

var pool = sync.Pool{
	New: func() any { return New() },
}

// Acquire returns a parser from a process-wide pool. Callers must return it
// with Release and must not share it between goroutines meanwhile.
func Acquire() *Parser {
	return pool.Get().(*Parser)
}

// Release returns a parser obtained from Acquire to the pool. The parser
// is reset so no partial parse state reaches the next borrower.
func Release(p *Parser) {
	if p != nil {
		p.parser.Reset()
		pool.Put(p)
	}
}
