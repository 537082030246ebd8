// Package shell classifies shell command text for scriptlint's safety rules.
//
// A Classifier turns one command string into an immutable Analysis: the
// structural fields (command name, arguments, command type, variables,
// redirections) come from a Strategy, either the tree-sitter AST walker or
// the regex tokenizer, and three rule passes (destructive, logic-check,
// security) run on the full text regardless of which strategy produced the
// structure. Classification never fails with an error; problems are reported
// through Analysis.Success and Analysis.Error.
package shell

// CommandType tags the overall shape of a command string.
type CommandType string

const (
	// TypeSimple is a single command invocation.
	TypeSimple CommandType = "simple"
	// TypePipeline is two or more commands joined with |.
	TypePipeline CommandType = "pipeline"
	// TypeList is a sequence joined with &&, || or ;.
	TypeList CommandType = "list"
	// TypeConditional is a test, an if/case construct, or a list led by a test.
	TypeConditional CommandType = "conditional"
	// TypeAssignment only assigns variables.
	TypeAssignment CommandType = "assignment"
	// TypeLoop is a for/while/until construct.
	TypeLoop CommandType = "loop"
	// TypeUnknown is used when no structure could be derived.
	TypeUnknown CommandType = "unknown"
)

// Analysis is the result of classifying one command string.
// It is created fresh for every call and never mutated afterwards.
type Analysis struct {
	Command  string `yaml:"command" json:"command"`
	Success  bool   `yaml:"success" json:"success"`
	Error    string `yaml:"error,omitempty" json:"error,omitempty"`
	Strategy string `yaml:"strategy,omitempty" json:"strategy,omitempty"`

	CommandName string      `yaml:"command_name,omitempty" json:"command_name,omitempty"`
	Arguments   []string    `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	Commands    []string    `yaml:"commands,omitempty" json:"commands,omitempty"`
	CommandType CommandType `yaml:"command_type,omitempty" json:"command_type,omitempty"`

	IsDestructive     bool     `yaml:"is_destructive" json:"is_destructive"`
	DestructiveReason string   `yaml:"destructive_reason,omitempty" json:"destructive_reason,omitempty"`
	HasLogicChecks    bool     `yaml:"has_logic_checks" json:"has_logic_checks"`
	LogicPatterns     []string `yaml:"logic_patterns,omitempty" json:"logic_patterns,omitempty"`
	SecurityIssues    []string `yaml:"security_issues,omitempty" json:"security_issues,omitempty"`

	VariablesRead    []string `yaml:"variables_read,omitempty" json:"variables_read,omitempty"`
	VariablesWritten []string `yaml:"variables_written,omitempty" json:"variables_written,omitempty"`
	Redirections     []string `yaml:"redirections,omitempty" json:"redirections,omitempty"`
	UsesSudo         bool     `yaml:"uses_sudo" json:"uses_sudo"`
}

// Structure is what a Strategy derives from command text before the
// rule passes run.
type Structure struct {
	CommandName      string
	Arguments        []string
	Commands         []string
	CommandType      CommandType
	VariablesRead    []string
	VariablesWritten []string
	Redirections     []string
	UsesSudo         bool
}
