package graph

// NodeShape is the Mermaid shape syntax used for a node type.
type NodeShape struct {
	Open  string
	Close string
}

// NodeShapes maps script node types to their diagram shapes.
var NodeShapes = map[string]NodeShape{
	// Commands - rectangles (most common)
	"command": {Open: "[", Close: "]"},

	// Validations - hexagons, they gate rather than act
	"validation": {Open: "{{", Close: "}}"},

	// Conditionals - rhombus
	"conditional": {Open: "{", Close: "}"},

	// Sub-scripts - cylinders (container-like)
	"script": {Open: "[(", Close: ")]"},

	// Default fallback
	"default": {Open: "([", Close: "])"},
}

// Edge kinds drawn by the renderer.
const (
	EdgeTriggers = "triggers"  // conditional source -> branch command
	EdgeHandsOff = "hands-off" // script -> next script in a reference array
)

// EdgeStyles maps edge kinds to Mermaid link syntax.
var EdgeStyles = map[string]string{
	EdgeTriggers: "-->",
	EdgeHandsOff: "-.->",
	"default":    "-->",
}

// GetNodeShape returns the shape for a node type, with fallback to default.
func GetNodeShape(nodeType string) NodeShape {
	if shape, ok := NodeShapes[nodeType]; ok {
		return shape
	}
	return NodeShapes["default"]
}

// GetEdgeStyle returns the link syntax for an edge kind, with fallback to default.
func GetEdgeStyle(kind string) string {
	if style, ok := EdgeStyles[kind]; ok {
		return style
	}
	return EdgeStyles["default"]
}
