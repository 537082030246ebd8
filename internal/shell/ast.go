package shell

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/scriptlint/internal/parser"
)

var redirectOpRe = regexp.MustCompile(`^([0-9]*)(&>>|&>|>>|>&|>\||>|<&|<>|<)`)

// ASTStrategy derives command structure from a tree-sitter-bash syntax tree.
// A fresh parser is created per call, so one ASTStrategy can be shared
// between goroutines.
type ASTStrategy struct{}

// NewASTStrategy returns the tree-sitter strategy.
func NewASTStrategy() *ASTStrategy {
	return &ASTStrategy{}
}

// Name implements Strategy.
func (s *ASTStrategy) Name() string { return "ast" }

// Analyze implements Strategy. A tree containing syntax errors is returned
// as a *parser.ParseError so the caller can fall back.
func (s *ASTStrategy) Analyze(ctx context.Context, text string) (Structure, error) {
	p, err := parser.NewParser(parser.Bash)
	if err != nil {
		return Structure{}, err
	}
	defer p.Close()

	result, err := p.Parse(ctx, []byte(text))
	if err != nil {
		return Structure{}, err
	}
	defer result.Close()

	if result.HasErrors() {
		return Structure{}, result.FirstError()
	}

	w := &astWalker{result: result}
	result.WalkNodes(w.visit)

	st := Structure{
		Commands:         w.commands,
		Redirections:     w.redirections,
		UsesSudo:         w.sudo,
		VariablesRead:    sortedUnique(w.read),
		VariablesWritten: sortedUnique(w.written),
		CommandType:      w.commandType(statements(result.Root)),
	}
	if w.first != nil {
		st.CommandName = w.first.name
		st.Arguments = w.first.args
	}
	return st, nil
}

type invocation struct {
	name string
	args []string
}

type astWalker struct {
	result       *parser.ParseResult
	first        *invocation
	commands     []string
	redirections []string
	read         []string
	written      []string
	sudo         bool
}

func (w *astWalker) text(n *sitter.Node) string {
	return w.result.NodeText(n)
}

func (w *astWalker) visit(n *sitter.Node) bool {
	switch n.Type() {
	case "command":
		w.addCommand(n)
	case "test_command":
		// [ ... ] and [[ ... ]] are tests but not "command" nodes.
		if n.ChildCount() > 0 {
			w.record(invocation{name: w.text(n.Child(0))})
		}
	case "declaration_command":
		if n.ChildCount() > 0 {
			w.record(invocation{name: w.text(n.Child(0))})
		}
	case "variable_assignment":
		if name := n.ChildByFieldName("name"); name != nil {
			w.written = append(w.written, stripSubscript(w.text(name)))
		}
	case "for_statement":
		if v := n.ChildByFieldName("variable"); v != nil {
			w.written = append(w.written, w.text(v))
		}
	case "simple_expansion", "expansion":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c.Type() == "variable_name" {
				w.read = append(w.read, w.text(c))
				break
			}
		}
	case "file_redirect":
		if m := redirectOpRe.FindStringSubmatch(w.text(n)); m != nil {
			w.redirections = append(w.redirections, m[1]+m[2])
		}
	case "heredoc_redirect":
		w.redirections = append(w.redirections, "<<")
	case "herestring_redirect":
		w.redirections = append(w.redirections, "<<<")
	}
	return true
}

func (w *astWalker) addCommand(n *sitter.Node) {
	var words []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "variable_assignment", "file_redirect", "herestring_redirect", "heredoc_redirect", "comment":
			continue
		}
		words = append(words, unquote(w.text(c)))
	}
	words, sudo := unwrapSudo(words)
	if sudo {
		w.sudo = true
	}
	if len(words) == 0 {
		return
	}
	inv := invocation{name: words[0], args: words[1:]}
	w.record(inv)

	if declKeywords[inv.name] {
		for _, a := range inv.args {
			if m := assignRe.FindStringSubmatch(a); m != nil {
				w.written = append(w.written, m[1])
			}
		}
	}
}

func (w *astWalker) record(inv invocation) {
	w.commands = append(w.commands, inv.name)
	if w.first == nil {
		w.first = &inv
	}
}

// commandType classifies the top-level statements of a program.
func (w *astWalker) commandType(stmts []*sitter.Node) CommandType {
	if len(stmts) == 0 {
		return TypeUnknown
	}
	if len(stmts) > 1 {
		if w.isTest(stmts[0]) {
			return TypeConditional
		}
		return TypeList
	}
	s := unwrapStatement(stmts[0])
	switch parser.BashCategory(s) {
	case "conditional":
		return TypeConditional
	case "loop":
		return TypeLoop
	case "list":
		if w.isTest(leftmost(s)) {
			return TypeConditional
		}
		return TypeList
	case "pipeline":
		return TypePipeline
	case "assignment":
		return TypeAssignment
	case "command":
		if w.isTest(s) {
			return TypeConditional
		}
		if name := s.ChildByFieldName("name"); name == nil {
			return TypeAssignment
		}
		return TypeSimple
	}
	return TypeSimple
}

func (w *astWalker) isTest(n *sitter.Node) bool {
	n = unwrapStatement(n)
	switch n.Type() {
	case "test_command":
		return true
	case "command":
		if name := n.ChildByFieldName("name"); name != nil {
			return isTestName(w.text(name))
		}
	}
	return false
}

// statements returns the named, non-comment children of the program node.
func statements(root *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	if root == nil {
		return out
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if c := root.NamedChild(i); c.Type() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

// unwrapStatement looks through redirections and negation to the statement
// they apply to.
func unwrapStatement(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "redirected_statement":
			if body := n.ChildByFieldName("body"); body != nil {
				n = body
				continue
			}
		case "negated_command":
			if n.NamedChildCount() > 0 {
				n = n.NamedChild(0)
				continue
			}
		}
		return n
	}
	return n
}

// leftmost descends the left spine of a (left-associative) list.
func leftmost(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "list" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	return n
}

func stripSubscript(name string) string {
	if i := strings.IndexByte(name, '['); i > 0 {
		return name[:i]
	}
	return name
}
