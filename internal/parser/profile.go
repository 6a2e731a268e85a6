package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Profile is the normalized view of one code fragment used for similarity.
type Profile struct {
	// Tokens are the leaf tokens with identifiers and literals replaced by
	// placeholders. Comments are dropped.
	Tokens []string

	// Operations is the pre-order sequence of structural operations
	// (def, if, for, call, assign, ...) with all names erased.
	Operations []string

	// BodyText is the space-joined leaf text of the first function body,
	// so two definitions that differ only in name, signature, layout or
	// comments share it. Empty when the fragment holds no function.
	BodyText string

	// HasError is set when the fragment did not parse cleanly.
	HasError bool
}

// operationKinds maps tree-sitter node types to operation labels.
var operationKinds = map[string]string{
	"function_definition":      "def",
	"class_definition":         "class",
	"if_statement":             "if",
	"elif_clause":              "elif",
	"else_clause":              "else",
	"for_statement":            "for",
	"while_statement":          "while",
	"try_statement":            "try",
	"except_clause":            "except",
	"finally_clause":           "finally",
	"with_statement":           "with",
	"match_statement":          "match",
	"case_clause":              "case",
	"return_statement":         "return",
	"raise_statement":          "raise",
	"assert_statement":         "assert",
	"delete_statement":         "del",
	"break_statement":          "break",
	"continue_statement":       "continue",
	"pass_statement":           "pass",
	"global_statement":         "global",
	"nonlocal_statement":       "nonlocal",
	"import_statement":         "import",
	"import_from_statement":    "import",
	"call":                     "call",
	"assignment":               "assign",
	"augmented_assignment":     "augassign",
	"binary_operator":          "binop",
	"boolean_operator":         "boolop",
	"comparison_operator":      "compare",
	"unary_operator":           "unary",
	"not_operator":             "not",
	"conditional_expression":   "ifexp",
	"lambda":                   "lambda",
	"list_comprehension":       "comprehension",
	"set_comprehension":        "comprehension",
	"dictionary_comprehension": "comprehension",
	"generator_expression":     "comprehension",
	"subscript":                "subscript",
	"attribute":                "attribute",
	"list":                     "list",
	"tuple":                    "tuple",
	"set":                      "set",
	"dictionary":               "dict",
	"await":                    "await",
	"yield":                    "yield",
}

// leafPlaceholders erases names and literal values from the token stream.
var leafPlaceholders = map[string]string{
	"identifier":      "ID",
	"integer":         "NUM",
	"float":           "NUM",
	"string_content":  "STR",
	"escape_sequence": "",
	"true":            "BOOL",
	"false":           "BOOL",
	"none":            "NONE",
}

// Profile parses fragment and derives its similarity profile. Fragments
// with syntax errors still produce a best-effort profile with HasError set.
func (p *Parser) Profile(ctx context.Context, fragment []byte) (*Profile, error) {
	result, err := p.parseTolerant(ctx, fragment)
	if err != nil {
		return nil, err
	}
	return ProfileOf(result), nil
}

// ProfileOf derives the profile of an already parsed fragment.
func ProfileOf(result *ParseResult) *Profile {
	root := result.RootNode
	profile := &Profile{HasError: root.HasError()}

	_ = WalkTree(root, func(n *sitter.Node) error {
		if n.Type() == "comment" {
			return nil
		}
		if op, ok := operationKinds[n.Type()]; ok && n.IsNamed() {
			profile.Operations = append(profile.Operations, op)
		}
		if n.ChildCount() == 0 {
			if tok := normalizeLeaf(n, result.SourceCode); tok != "" {
				profile.Tokens = append(profile.Tokens, tok)
			}
		}
		return nil
	})

	if defs := FindNodes(root, "function_definition"); len(defs) > 0 {
		profile.BodyText = leafText(defs[0].ChildByFieldName("body"), result.SourceCode)
	}

	return profile
}

func normalizeLeaf(n *sitter.Node, source []byte) string {
	if placeholder, ok := leafPlaceholders[n.Type()]; ok {
		return placeholder
	}
	text := n.Content(source)
	if text == "" {
		// zero-width nodes such as indent, dedent and newline
		return ""
	}
	return text
}

func leafText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	var buf []byte
	_ = WalkTree(node, func(n *sitter.Node) error {
		if n.ChildCount() != 0 || n.Type() == "comment" {
			return nil
		}
		text := n.Content(source)
		if text == "" {
			return nil
		}
		if len(buf) > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, text...)
		return nil
	})
	return string(buf)
}
