package script

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DecodeError is returned when a document cannot be decoded.
type DecodeError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	loc := e.File
	if e.Line > 0 {
		if loc != "" {
			loc += ":"
		}
		loc += strconv.Itoa(e.Line)
	}
	if loc == "" {
		return e.Message
	}
	return loc + ": " + e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// Load reads and decodes the script at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.File = path
		}
		return nil, err
	}
	doc.File = path
	return doc, nil
}

// Parse decodes a script document. An empty input yields an empty document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		de := &DecodeError{Message: err.Error(), Err: err}
		if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
			de.Line, _ = strconv.Atoi(m[1])
		}
		return nil, de
	}

	doc := &Document{}
	if len(root.Content) == 0 {
		return doc, nil
	}
	top := resolve(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, &DecodeError{Line: top.Line, Message: "document root must be a mapping"}
	}

	if md := lookup(top, "metadata"); md != nil && md.Kind == yaml.MappingNode {
		doc.Metadata = Metadata{
			Name:    scalar(lookup(md, "name")),
			Version: scalar(lookup(md, "version")),
			Intent:  scalar(lookup(md, "intent")),
		}
		if doc.Metadata.Intent == "" {
			doc.Metadata.Intent = scalar(lookup(md, "description"))
		}
	}
	doc.Nodes = collect(top, "")
	return doc, nil
}

// collect returns the outermost nodes found at or beneath n.
func collect(n *yaml.Node, path string) []Node {
	n = resolve(n)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.MappingNode:
		if node, ok := decodeNode(n, path); ok {
			return []Node{node}
		}
		return collectFields(n, path, nil)
	case yaml.SequenceNode:
		var out []Node
		for i, item := range n.Content {
			out = append(out, collect(item, indexPath(path, i))...)
		}
		return out
	}
	return nil
}

func collectFields(n *yaml.Node, path string, skip map[string]bool) []Node {
	var out []Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if skip[key] {
			continue
		}
		out = append(out, collect(n.Content[i+1], keyPath(path, key))...)
	}
	return out
}

func decodeNode(n *yaml.Node, path string) (Node, bool) {
	id := scalar(lookup(n, "id"))
	typ := scalar(lookup(n, "type"))
	known := typ == TypeCommand || typ == TypeValidation || typ == TypeConditional || typ == TypeScript
	if !known && id == "" {
		return nil, false
	}
	if typ == "" {
		typ = TypeUnknown
	}
	meta := Meta{
		ID:     id,
		Type:   typ,
		Intent: scalar(lookup(n, "intent")),
		Path:   path,
		Line:   n.Line,
	}

	switch typ {
	case TypeCommand:
		return &Command{
			Meta:        meta,
			Shell:       shellField(n),
			Destructive: boolean(lookup(n, "destructive")),
			Children:    collectFields(n, path, nil),
		}, true
	case TypeValidation:
		return &Validation{
			Meta:     meta,
			Shell:    shellField(n),
			Children: collectFields(n, path, nil),
		}, true
	case TypeConditional:
		c := &Conditional{
			Meta:     meta,
			Then:     decodeBranch(lookup(n, "then"), keyPath(path, "then")),
			Else:     decodeBranch(lookup(n, "else"), keyPath(path, "else")),
			Children: collectFields(n, path, map[string]bool{"then": true, "else": true}),
		}
		if cond := resolve(lookup(n, "condition")); cond != nil && cond.Kind == yaml.MappingNode {
			if src := lookup(cond, "source"); src != nil {
				c.Source = scalar(src)
				c.SourcePath = keyPath(keyPath(path, "condition"), "source")
				c.SourceLine = src.Line
			}
		}
		return c, true
	case TypeScript:
		return &Script{Meta: meta, Children: collectFields(n, path, nil)}, true
	}
	return &Element{Meta: meta, Children: collectFields(n, path, nil)}, true
}

// decodeBranch reads a then/else value. A list of scalars inside the branch
// is a script-reference array; anything else contributes its nodes.
func decodeBranch(n *yaml.Node, path string) Branch {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return nodesToBranch(collect(n, path))
	}

	var b Branch
	for i, item := range n.Content {
		item = resolve(item)
		itemPath := indexPath(path, i)
		if item.Kind == yaml.SequenceNode && allScalars(item) {
			refs := &ScriptRefs{Path: itemPath, Line: item.Line}
			for _, s := range item.Content {
				refs.IDs = append(refs.IDs, resolve(s).Value)
			}
			b = append(b, BranchItem{Refs: refs})
			continue
		}
		b = append(b, nodesToBranch(collect(item, itemPath))...)
	}
	return b
}

func nodesToBranch(nodes []Node) Branch {
	b := make(Branch, 0, len(nodes))
	for _, n := range nodes {
		b = append(b, BranchItem{Node: n})
	}
	return b
}

func shellField(n *yaml.Node) string {
	if s := scalar(lookup(n, "shellCommand")); s != "" {
		return s
	}
	return scalar(lookup(n, "command"))
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func scalar(n *yaml.Node) string {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

func boolean(n *yaml.Node) bool {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false
	}
	return b
}

func allScalars(n *yaml.Node) bool {
	if len(n.Content) == 0 {
		return false
	}
	for _, c := range n.Content {
		if resolve(c).Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}

func keyPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
