// Package parser provides tree-sitter based parsing of shell command text.
//
// The parser package wraps the tree-sitter library so the rest of scriptlint
// can work with a bash syntax tree without touching cgo types directly.
// Bash is the only grammar wired today; the Language type leaves room for
// other shells with a compatible grammar.
package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language represents a supported shell grammar.
type Language string

const (
	// Bash represents the GNU bash grammar (also used for POSIX sh).
	Bash Language = "bash"
)

// Parser wraps tree-sitter for shell parsing.
type Parser struct {
	parser *sitter.Parser
	lang   Language
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	// Tree is the complete tree-sitter parse tree.
	Tree *sitter.Tree
	// Root is the root node of the AST.
	Root *sitter.Node
	// Source is the original command text that was parsed.
	Source []byte
	// Language is the grammar used to parse the source.
	Language Language
}

// NewParser creates a parser for the given language.
// Returns an UnsupportedLanguageError if the language is not supported.
func NewParser(lang Language) (*Parser, error) {
	var (
		p   *sitter.Parser
		err error
	)

	switch lang {
	case Bash:
		p, err = newBashParser()
	default:
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}

	if err != nil {
		return nil, err
	}

	return &Parser{
		parser: p,
		lang:   lang,
	}, nil
}

// Parse parses source text and returns the AST.
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{
			Message: err.Error(),
		}
	}

	return &ParseResult{
		Tree:     tree,
		Root:     tree.RootNode(),
		Source:   source,
		Language: p.lang,
	}, nil
}

// Close releases parser resources.
// After calling Close, the parser should not be used.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Close releases the parse tree resources.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// HasErrors returns true if the parse tree contains syntax errors.
func (r *ParseResult) HasErrors() bool {
	if r.Root == nil {
		return false
	}
	return r.Root.HasError()
}

// FirstError returns a ParseError describing the first ERROR or missing
// node in the tree, or nil when the tree is clean.
func (r *ParseResult) FirstError() *ParseError {
	if !r.HasErrors() {
		return nil
	}
	var found *sitter.Node
	r.WalkNodes(func(node *sitter.Node) bool {
		if node.IsError() || node.IsMissing() {
			found = node
			return false
		}
		return true
	})
	if found == nil {
		return &ParseError{Message: "syntax error"}
	}
	pos := found.StartPoint()
	msg := "syntax error"
	if found.IsMissing() {
		msg = "missing " + found.Type()
	}
	return &ParseError{
		Message: msg,
		Line:    pos.Row + 1,
		Column:  pos.Column + 1,
	}
}

// WalkNodes traverses the AST depth-first, calling the visitor function
// for each node. If the visitor returns false, traversal stops.
func (r *ParseResult) WalkNodes(visitor func(*sitter.Node) bool) {
	if r.Root == nil {
		return
	}
	walkNode(r.Root, visitor)
}

// walkNode is a helper for depth-first AST traversal.
func walkNode(node *sitter.Node, visitor func(*sitter.Node) bool) bool {
	if !visitor(node) {
		return false
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if !walkNode(node.Child(int(i)), visitor) {
			return false
		}
	}
	return true
}

// NodeText returns the source text for a node.
func (r *ParseResult) NodeText(node *sitter.Node) string {
	if node == nil || r.Source == nil {
		return ""
	}
	return node.Content(r.Source)
}
