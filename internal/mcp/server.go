// Package mcp provides an MCP (Model Context Protocol) server for scriptlint.
// This allows AI agents to lint scripts and classify shell commands through
// MCP tools instead of CLI commands.
package mcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/scriptlint/internal/config"
	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/lint"
	"github.com/hargabyte/scriptlint/internal/output"
	"github.com/hargabyte/scriptlint/internal/script"
	"github.com/hargabyte/scriptlint/internal/shell"
)

// Server wraps the MCP server with scriptlint functionality
type Server struct {
	mcpServer    *server.MCPServer
	cfg          *config.Config
	classifier   *shell.Classifier
	analyzer     *lint.Analyzer
	strict       *lint.Analyzer
	logger       hclog.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
	Lint    *config.Config
	Logger  hclog.Logger
}

// Version is reported to MCP clients.
const Version = "1.0.0"

// Tool names.
const (
	ToolLint     = "lint_script"
	ToolClassify = "classify_command"
	ToolGraph    = "script_graph"
)

// AllTools lists all available tools
var AllTools = []string{ToolLint, ToolClassify, ToolGraph}

// New creates a new MCP server for scriptlint
func New(cfg Config) (*Server, error) {
	lintCfg := cfg.Lint
	if lintCfg == nil {
		lintCfg = config.DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	classifier, err := lintCfg.NewClassifier(shell.WithLogger(logger.Named("classifier")))
	if err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}

	opts := lintCfg.LintOptions()
	strictOpts := opts
	strictOpts.Strict = true

	mcpServer := server.NewMCPServer(
		"scriptlint",
		Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		cfg:          lintCfg,
		classifier:   classifier,
		analyzer:     lint.NewAnalyzer(classifier, opts, logger.Named("lint")),
		strict:       lint.NewAnalyzer(classifier, strictOpts, logger.Named("lint")),
		logger:       logger,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case ToolLint:
		return s.registerLintTool()
	case ToolClassify:
		return s.registerClassifyTool()
	case ToolGraph:
		return s.registerGraphTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			s.logger.Info("shutting down after inactivity", "timeout", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tools in name order
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	ToolLint: {
		Name:        ToolLint,
		Description: "Lint an automation script. Reports structural, reference, destructive-marking and hygiene diagnostics.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "Path to the script file"},
			{Name: "content", Type: "string", Description: "Script YAML to lint instead of a file"},
			{Name: "strict", Type: "boolean", Description: "Treat warnings as errors"},
			{Name: "format", Type: "string", Description: "Output format: yaml, json, text, sarif (default: yaml)"},
		},
	},
	ToolClassify: {
		Name:        ToolClassify,
		Description: "Classify a shell command: structure, destructiveness, logic checks and security concerns.",
		Parameters: []ParameterSchema{
			{Name: "command", Type: "string", Description: "Shell command text", Required: true},
		},
	},
	ToolGraph: {
		Name:        ToolGraph,
		Description: "Render the command or script reference graph of a script as a Mermaid flowchart.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "Path to the script file"},
			{Name: "content", Type: "string", Description: "Script YAML instead of a file"},
			{Name: "kind", Type: "string", Description: "Graph kind: command or script (default: command)"},
			{Name: "from", Type: "string", Description: "Only show what is reachable from this ID"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools in name order.
func (s *Server) GetToolSchemas() []ToolSchema {
	names := s.ListTools()
	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	switch name {
	case ToolLint:
		path, _ := args["path"].(string)
		content, _ := args["content"].(string)
		strict, _ := args["strict"].(bool)
		format, _ := args["format"].(string)
		return s.executeLint(ctx, path, content, strict, format)

	case ToolClassify:
		command, _ := args["command"].(string)
		if command == "" {
			return "", fmt.Errorf("command parameter is required")
		}
		return s.executeClassify(command)

	case ToolGraph:
		path, _ := args["path"].(string)
		content, _ := args["content"].(string)
		kind, _ := args["kind"].(string)
		from, _ := args["from"].(string)
		return s.executeGraph(path, content, kind, from)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerLintTool registers the lint_script tool
func (s *Server) registerLintTool() error {
	tool := mcp.NewTool(ToolLint,
		mcp.WithDescription(toolSchemaRegistry[ToolLint].Description),
		mcp.WithString("path",
			mcp.Description("Path to the script file"),
		),
		mcp.WithString("content",
			mcp.Description("Script YAML to lint instead of a file"),
		),
		mcp.WithBoolean("strict",
			mcp.Description("Treat warnings as errors"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: yaml, json, text, sarif (default: yaml)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleLint)
	return nil
}

// registerClassifyTool registers the classify_command tool
func (s *Server) registerClassifyTool() error {
	tool := mcp.NewTool(ToolClassify,
		mcp.WithDescription(toolSchemaRegistry[ToolClassify].Description),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Shell command text"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleClassify)
	return nil
}

// registerGraphTool registers the script_graph tool
func (s *Server) registerGraphTool() error {
	tool := mcp.NewTool(ToolGraph,
		mcp.WithDescription(toolSchemaRegistry[ToolGraph].Description),
		mcp.WithString("path",
			mcp.Description("Path to the script file"),
		),
		mcp.WithString("content",
			mcp.Description("Script YAML instead of a file"),
		),
		mcp.WithString("kind",
			mcp.Description("Graph kind: command or script (default: command)"),
		),
		mcp.WithString("from",
			mcp.Description("Only show what is reachable from this ID"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleGraph)
	return nil
}

// Tool handlers

func (s *Server) handleLint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)
	strict, _ := args["strict"].(bool)
	format, _ := args["format"].(string)

	result, err := s.executeLint(ctx, path, content, strict, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	command, ok := args["command"].(string)
	if !ok || command == "" {
		return mcp.NewToolResultError("command parameter is required"), nil
	}

	result, err := s.executeClassify(command)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)
	kind, _ := args["kind"].(string)
	from, _ := args["from"].(string)

	result, err := s.executeGraph(path, content, kind, from)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// Tool implementations

// inlineName is the file name reported for content passed inline.
const inlineName = "<content>"

func (s *Server) executeLint(ctx context.Context, path, content string, strict bool, format string) (string, error) {
	if path == "" && content == "" {
		return "", fmt.Errorf("either path or content is required")
	}

	if format == "" {
		format = string(output.FormatYAML)
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return "", err
	}
	formatter, err := output.GetFormatter(f)
	if err != nil {
		return "", err
	}

	analyzer := s.analyzer
	if strict {
		analyzer = s.strict
	}

	var result *diag.Result
	if content != "" {
		result, err = analyzer.AnalyzeBytes(ctx, inlineName, []byte(content))
	} else {
		result, err = analyzer.AnalyzeFile(ctx, path)
	}
	if err != nil {
		return "", err
	}
	s.logger.Debug("lint complete", "file", result.File, "errors", len(result.Errors), "warnings", len(result.Warnings))

	return formatter.Format([]*diag.Result{result})
}

func (s *Server) executeClassify(command string) (string, error) {
	analysis := s.classifier.Classify(command)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(analysis); err != nil {
		return "", fmt.Errorf("encoding analysis: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Server) executeGraph(path, content, kind, from string) (string, error) {
	var (
		doc *script.Document
		err error
	)
	switch {
	case content != "":
		doc, err = script.Parse([]byte(content))
	case path != "":
		doc, err = script.Load(path)
	default:
		return "", fmt.Errorf("either path or content is required")
	}
	if err != nil {
		return "", err
	}

	return lint.BuildGraphs(doc).Mermaid(kind, from, "")
}
