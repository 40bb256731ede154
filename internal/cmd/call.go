package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jiatastic/exdraw/internal/mcp"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call an MCP tool directly from the command line",
	Long: `Call any exdraw MCP tool with structured JSON input/output, without
starting a server.

Modes:
  exdraw call --list                          List all tools and parameters
  exdraw call <tool> '{"key":"value"}'        Call a tool with JSON args
  exdraw call --pipe                          Read JSON lines from stdin

Tool names accept shorthand: "generate", "classify" and "themes".`,
	Example: `  exdraw call --list
  exdraw call generate '{"description":"A -> B -> C","type":"flowchart"}'
  exdraw call classify '{"label":"Redis Cache"}'
  echo '{"tool":"list_themes"}' | exdraw call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if !callList && !callPipe && len(args) == 0 {
		return fmt.Errorf("tool name required (run 'exdraw call --list' to see available tools)")
	}

	cfg, cwd, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()
	c := openCache(cfg, cwd, logger)
	if c != nil {
		defer c.Close()
	}

	srv, err := mcp.New(mcp.Config{
		Version:  Version,
		Engine:   newEngine(cfg, logger),
		Cache:    c,
		Defaults: requestDefaults(cfg),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	switch {
	case callList:
		return printOutput(cmd.OutOrStdout(), cfg, srv.GetToolSchemas())
	case callPipe:
		return runCallPipe(srv, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	toolArgs := make(map[string]interface{})
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	}
	result, err := srv.CallTool(normalizeToolName(args[0]), toolArgs)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(result, "\n"))
	return nil
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe(srv *mcp.Server, in io.Reader, out io.Writer) error {
	enc := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)
	// Allow larger lines (1MB)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if req.Args == nil {
			req.Args = make(map[string]interface{})
		}

		result, err := srv.CallTool(normalizeToolName(req.Tool), req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Error: err.Error()})
			continue
		}

		// Results are JSON already; anything else is wrapped as a string
		var raw json.RawMessage
		if err := json.Unmarshal([]byte(result), &raw); err != nil {
			b, _ := json.Marshal(result)
			raw = b
		}
		enc.Encode(pipeResponse{Result: raw})
	}

	return scanner.Err()
}

// normalizeToolName converts shorthand names to full tool names.
func normalizeToolName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "generate", "diagram":
		return mcp.ToolGenerate
	case "classify":
		return mcp.ToolClassify
	case "themes", "list":
		return mcp.ToolListThemes
	}
	return name
}
