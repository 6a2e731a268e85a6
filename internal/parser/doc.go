// Package parser provides Python code parsing capabilities using tree-sitter.
//
// It wraps the tree-sitter Go bindings to parse Python source code and
// extracts every nameable callable block (module functions, methods,
// nested and decorated functions) as a domain.CodeUnit. It also derives
// per-fragment profiles (token streams and normalized operation sequences)
// used by the similarity pre-filter and the structural oracle.
//
// Basic usage:
//
//	p := parser.New()
//	defer p.Close()
//	units, err := p.ExtractUnits(ctx, "pkg/mod.py", source)
//	if err != nil {
//	    // domain.ErrParse: the file is not valid Python
//	}
//	for unit := range units {
//	    fmt.Println(unit.QualifiedName, unit.LineCount())
//	}
package parser
