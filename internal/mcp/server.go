// Package mcp provides an MCP (Model Context Protocol) server for exdraw.
// Agents generate diagrams through MCP tools instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jiatastic/exdraw/internal/cache"
	"github.com/jiatastic/exdraw/internal/engine"
	"github.com/jiatastic/exdraw/internal/excalidraw"
	"github.com/jiatastic/exdraw/internal/graph"
	"github.com/jiatastic/exdraw/internal/style"
)

// Tool names.
const (
	ToolGenerate   = "generate_diagram"
	ToolClassify   = "classify_label"
	ToolListThemes = "list_themes"
)

// AllTools lists all available tools.
var AllTools = []string{ToolGenerate, ToolClassify, ToolListThemes}

// Server wraps the MCP server with the diagram engine.
type Server struct {
	mcpServer    *server.MCPServer
	engine       *engine.Engine
	cache        *cache.Cache
	defaults     engine.Request
	logger       *slog.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration.
type Config struct {
	Name    string
	Version string
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)

	Engine *engine.Engine
	// Cache is optional. Generated documents are stored and reused by
	// fingerprint when set.
	Cache *cache.Cache
	// Defaults fill the type, theme, style and badges of requests that
	// leave them empty.
	Defaults engine.Request
	Logger   *slog.Logger
}

// New creates a new MCP server.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("mcp server requires an engine")
	}
	if cfg.Name == "" {
		cfg.Name = "exdraw"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		mcpServer:    server.NewMCPServer(cfg.Name, cfg.Version, server.WithToolCapabilities(false)),
		engine:       cfg.Engine,
		cache:        cfg.Cache,
		defaults:     cfg.Defaults,
		logger:       logger,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}
	for _, name := range toolsToRegister {
		if err := s.registerTool(name); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", name, err)
		}
		s.tools[name] = true
	}
	return s, nil
}

func (s *Server) registerTool(name string) error {
	switch name {
	case ToolGenerate:
		s.mcpServer.AddTool(mcp.NewTool(ToolGenerate,
			mcp.WithDescription(toolSchemaRegistry[ToolGenerate].Description),
			mcp.WithString("description",
				mcp.Description(`Diagram text: "A -> B -> C" flows, one per line or split by ';' or '|'. Mindmaps use "Root: a, b". Required unless graph is set`),
			),
			mcp.WithString("type",
				mcp.Description("Diagram type: flowchart, architecture, mindmap (default: flowchart)"),
				mcp.Enum(graph.KindNames()...),
			),
			mcp.WithString("theme",
				mcp.Description("Theme: "+strings.Join(style.ThemeNames, ", ")),
			),
			mcp.WithString("style",
				mcp.Description("Style: "+strings.Join(style.StyleNames, ", ")),
			),
			mcp.WithBoolean("badges",
				mcp.Description("Append a type badge below each node label"),
			),
			mcp.WithString("direction",
				mcp.Description("Flowchart direction: right, down"),
			),
			mcp.WithString("mindmap_layout",
				mcp.Description("Mindmap layout: radial, fan"),
			),
			mcp.WithString("graph",
				mcp.Description("Node list JSON ({nodes, edges}) used instead of description"),
			),
			mcp.WithString("output",
				mcp.Description("Write the .excalidraw file to this path instead of returning it inline"),
			),
		), s.handleGenerate)
	case ToolClassify:
		s.mcpServer.AddTool(mcp.NewTool(ToolClassify,
			mcp.WithDescription(toolSchemaRegistry[ToolClassify].Description),
			mcp.WithString("label",
				mcp.Required(),
				mcp.Description("Node label; several labels may be separated by newlines"),
			),
		), s.handleClassify)
	case ToolListThemes:
		s.mcpServer.AddTool(mcp.NewTool(ToolListThemes,
			mcp.WithDescription(toolSchemaRegistry[ToolListThemes].Description),
		), s.handleListThemes)
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
	return nil
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}
	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded.
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			s.logger.Info("mcp server idle, exiting", "timeout", s.timeout)
			os.Exit(0)
		}
	}
}

func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tools in sorted order.
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

// toolSchemaRegistry mirrors the mcp.NewTool definitions in registerTool.
var toolSchemaRegistry = map[string]ToolSchema{
	ToolGenerate: {
		Name:        ToolGenerate,
		Description: "Generate an Excalidraw diagram from a text description or a node list. Returns the .excalidraw JSON or writes it to output.",
		Parameters: []ParameterSchema{
			{Name: "description", Type: "string", Description: "Diagram text (required unless graph is set)"},
			{Name: "type", Type: "string", Description: "flowchart, architecture or mindmap"},
			{Name: "theme", Type: "string", Description: "Visual theme"},
			{Name: "style", Type: "string", Description: "pro or basic"},
			{Name: "badges", Type: "boolean", Description: "Append type badges below labels"},
			{Name: "direction", Type: "string", Description: "Flowchart direction: right, down"},
			{Name: "mindmap_layout", Type: "string", Description: "Mindmap layout: radial, fan"},
			{Name: "graph", Type: "string", Description: "Node list JSON"},
			{Name: "output", Type: "string", Description: "Destination file path"},
		},
	},
	ToolClassify: {
		Name:        ToolClassify,
		Description: "Classify node labels into component types, architecture layers and flowchart roles.",
		Parameters: []ParameterSchema{
			{Name: "label", Type: "string", Description: "Label or newline-separated labels", Required: true},
		},
	},
	ToolListThemes: {
		Name:        ToolListThemes,
		Description: "List themes, styles, diagram types and the node type palette.",
		Parameters:  []ParameterSchema{},
	},
}

// GetToolSchemas returns schemas for all registered tools in sorted order.
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
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'exdraw call --list' to see available tools)", name)
	}

	switch name {
	case ToolGenerate:
		req, outPath, err := s.generateRequest(args)
		if err != nil {
			return "", err
		}
		return s.executeGenerate(req, outPath)
	case ToolClassify:
		label, _ := args["label"].(string)
		return executeClassify(label)
	case ToolListThemes:
		return executeListThemes()
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) handleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	genReq, outPath, err := s.generateRequest(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.executeGenerate(genReq, outPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", engine.ErrorCode(err), err)), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	label, _ := req.GetArguments()["label"].(string)
	result, err := executeClassify(label)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleListThemes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := executeListThemes()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

// generateRequest builds an engine request from tool arguments, filling
// empty fields from the server defaults.
func (s *Server) generateRequest(args map[string]interface{}) (engine.Request, string, error) {
	str := func(key string) string {
		v, _ := args[key].(string)
		return strings.TrimSpace(v)
	}
	req := engine.Request{
		Description:   str("description"),
		Kind:          str("type"),
		Theme:         str("theme"),
		Style:         str("style"),
		Direction:     str("direction"),
		MindmapLayout: str("mindmap_layout"),
	}
	if b, ok := args["badges"].(bool); ok {
		req.Badges = b
	} else {
		req.Badges = s.defaults.Badges
	}
	if req.Kind == "" {
		req.Kind = s.defaults.Kind
	}
	if req.Theme == "" {
		req.Theme = s.defaults.Theme
	}
	if req.Style == "" {
		req.Style = s.defaults.Style
	}

	if raw := str("graph"); raw != "" {
		l, err := graph.ReadNodeList(strings.NewReader(raw))
		if err != nil {
			return req, "", err
		}
		req.Graph = l
	}
	if req.Description == "" && req.Graph == nil {
		return req, "", fmt.Errorf("description or graph parameter is required")
	}
	return req, str("output"), nil
}

// generateOutput is returned when the document is written to a file.
type generateOutput struct {
	Output      string         `json:"output"`
	Fingerprint string         `json:"fingerprint"`
	Cached      bool           `json:"cached"`
	Summary     engine.Summary `json:"summary"`
}

func (s *Server) executeGenerate(req engine.Request, outPath string) (string, error) {
	res, cached, err := s.engine.GenerateCached(req, s.store())
	if err != nil {
		return "", err
	}
	if outPath == "" {
		return string(res.JSON), nil
	}

	if err := excalidraw.WriteFile(outPath, res.Document); err != nil {
		return "", err
	}
	return toJSON(generateOutput{Output: outPath, Fingerprint: res.Fingerprint, Cached: cached, Summary: res.Summary})
}

// store avoids handing the engine a typed nil.
func (s *Server) store() engine.Store {
	if s.cache == nil {
		return nil
	}
	return s.cache
}

func executeClassify(label string) (string, error) {
	out := engine.ClassifyLabels(strings.Split(label, "\n"))
	if len(out.Labels) == 0 {
		return "", fmt.Errorf("label parameter is required")
	}
	return toJSON(out)
}

func executeListThemes() (string, error) {
	return toJSON(engine.ThemeCatalog())
}

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
