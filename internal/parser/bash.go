package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
)

// newBashParser creates a tree-sitter parser configured for bash.
func newBashParser() (*sitter.Parser, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(bash.GetLanguage())
	return parser, nil
}

// BashNodeTypes maps tree-sitter bash node types to the structural
// categories the command classifier cares about.
var BashNodeTypes = map[string]string{
	"command":               "command",
	"pipeline":              "pipeline",
	"list":                  "list",
	"variable_assignment":   "assignment",
	"variable_assignments":  "assignment",
	"declaration_command":   "assignment",
	"if_statement":          "conditional",
	"case_statement":        "conditional",
	"test_command":          "conditional",
	"for_statement":         "loop",
	"c_style_for_statement": "loop",
	"while_statement":       "loop",
	"file_redirect":         "redirect",
	"heredoc_redirect":      "redirect",
	"herestring_redirect":   "redirect",
	"command_substitution":  "substitution",
	"simple_expansion":      "expansion",
	"expansion":             "expansion",
}

// BashCategory returns the structural category for a tree-sitter node,
// or an empty string if the node type carries no classification meaning.
func BashCategory(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return BashNodeTypes[node.Type()]
}
