// Package script models automation-script documents: a tree of typed nodes
// (commands, validations, conditionals, scripts) identified by string IDs.
package script

// Node types recognised in the type field.
const (
	TypeCommand     = "command"
	TypeValidation  = "validation"
	TypeConditional = "conditional"
	TypeScript      = "script"
	TypeUnknown     = "unknown"
)

// Meta holds the fields every node carries.
type Meta struct {
	ID     string `yaml:"id,omitempty" json:"id,omitempty"`
	Type   string `yaml:"type" json:"type"`
	Intent string `yaml:"intent,omitempty" json:"intent,omitempty"`
	// Path is the structural location, e.g. body.scripts.main.commands[2].
	Path string `yaml:"path" json:"path"`
	// Line is the 1-based source line, 0 if unknown.
	Line int `yaml:"line,omitempty" json:"line,omitempty"`
}

// Info returns the node's common fields.
func (m Meta) Info() Meta { return m }

// Node is one of *Command, *Validation, *Conditional, *Script or *Element.
type Node interface {
	Info() Meta
	// Nested returns the nodes directly beneath this one, in document order.
	Nested() []Node
	node()
}

// Command runs a shell command.
type Command struct {
	Meta
	Shell       string
	Destructive bool
	Children    []Node
}

// Validation runs a shell command whose exit status is a pass/fail check.
type Validation struct {
	Meta
	Shell    string
	Children []Node
}

// Conditional branches on the outcome of the command named by Source.
type Conditional struct {
	Meta
	Source     string
	SourcePath string
	SourceLine int
	Then       Branch
	Else       Branch
	Children   []Node
}

// Script groups nodes under a named sub-script.
type Script struct {
	Meta
	Children []Node
}

// Element is an id-bearing mapping whose type is missing or not one of the
// known node types. It is registered like any other node.
type Element struct {
	Meta
	Children []Node
}

func (*Command) node()     {}
func (*Validation) node()  {}
func (*Conditional) node() {}
func (*Script) node()      {}
func (*Element) node()     {}

func (c *Command) Nested() []Node    { return c.Children }
func (v *Validation) Nested() []Node { return v.Children }
func (s *Script) Nested() []Node     { return s.Children }
func (e *Element) Nested() []Node    { return e.Children }

// Nested returns the branch nodes (then before else) followed by any other
// nested nodes.
func (c *Conditional) Nested() []Node {
	out := append([]Node(nil), c.Then.Nodes()...)
	out = append(out, c.Else.Nodes()...)
	return append(out, c.Children...)
}

// ScriptRefs is a script-reference array: an ordered list of IDs denoting
// sub-script invocation order.
type ScriptRefs struct {
	Path string
	Line int
	IDs  []string
}

// BranchItem is either an embedded node or a script-reference array.
type BranchItem struct {
	Node Node
	Refs *ScriptRefs
}

// Branch is the ordered content of a conditional's then or else.
type Branch []BranchItem

// Nodes returns the embedded nodes of the branch.
func (b Branch) Nodes() []Node {
	var out []Node
	for _, item := range b {
		if item.Node != nil {
			out = append(out, item.Node)
		}
	}
	return out
}

// Refs returns the script-reference arrays of the branch.
func (b Branch) Refs() []*ScriptRefs {
	var out []*ScriptRefs
	for _, item := range b {
		if item.Refs != nil {
			out = append(out, item.Refs)
		}
	}
	return out
}

// Metadata is the document's metadata block.
type Metadata struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
	Intent  string `yaml:"intent,omitempty" json:"intent,omitempty"`
}

// Document is a decoded script. It is never modified after decoding.
type Document struct {
	// File is the path the document was loaded from, if any.
	File     string
	Metadata Metadata
	Nodes    []Node
}

// Walk visits every node depth-first in document order. If fn returns
// false the node's descendants are skipped.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if fn(n) {
			Walk(n.Nested(), fn)
		}
	}
}

// Walk visits every node of the document. See Walk.
func (d *Document) Walk(fn func(Node) bool) {
	Walk(d.Nodes, fn)
}

// Conditionals returns every conditional node in document order.
func (d *Document) Conditionals() []*Conditional {
	var out []*Conditional
	d.Walk(func(n Node) bool {
		if c, ok := n.(*Conditional); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}

// ShellNodes returns every command and validation node in document order.
func (d *Document) ShellNodes() []Node {
	var out []Node
	d.Walk(func(n Node) bool {
		switch n.(type) {
		case *Command, *Validation:
			out = append(out, n)
		}
		return true
	})
	return out
}

// ShellText returns the shell command carried by a command or validation
// node.
func ShellText(n Node) (string, bool) {
	switch v := n.(type) {
	case *Command:
		return v.Shell, true
	case *Validation:
		return v.Shell, true
	}
	return "", false
}
