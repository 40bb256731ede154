package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jiatastic/exdraw/internal/config"
	"github.com/jiatastic/exdraw/internal/httpapi"
	"github.com/jiatastic/exdraw/internal/mcp"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diagram generator over MCP or HTTP",
	Long: `Serve the diagram generator to AI agents (MCP over stdio) or to other
programs (HTTP).

MCP tools:
  generate_diagram   Generate a document from a description or node list
  classify_label     Classify labels into types, layers and roles
  list_themes        List themes, styles and node type colors

HTTP routes:
  GET  /health        liveness
  POST /v1/diagrams   JSON request -> .excalidraw document
  POST /v1/classify   {"labels": [...]} -> classifications
  GET  /v1/themes     theme catalog

Requests that omit type, theme or style use the diagram defaults from
.exdraw/config.yaml. Generated documents are cached by fingerprint.`,
	Example: `  exdraw serve --mcp
  exdraw serve --mcp --tools generate,classify --timeout 30m
  exdraw serve --http
  exdraw serve --http --addr 0.0.0.0:9090
  exdraw serve --status
  exdraw serve --stop`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveMCP       bool
	serveHTTP      bool
	serveAddr      string
	serveTools     string
	serveTimeout   string
	serveStatus    bool
	serveStop      bool
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "Start HTTP server")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default from config serve.http_addr)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated MCP tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "0", "MCP inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running server")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available MCP tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Available MCP tools:")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  generate_diagram   Generate a document from a description or node list")
		fmt.Fprintln(w, "  classify_label     Classify labels into types, layers and roles")
		fmt.Fprintln(w, "  list_themes        List themes, styles and node type colors")
		return nil
	}
	if serveStatus {
		return checkServerStatus(cmd)
	}
	if serveStop {
		return stopServer(cmd)
	}
	if serveMCP == serveHTTP {
		return fmt.Errorf("use exactly one of --mcp or --http, or --help for usage")
	}

	cfg, cwd, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()
	eng := newEngine(cfg, logger)

	c := openCache(cfg, cwd, logger)
	if c != nil {
		defer c.Close()
	}

	if err := writePIDFile(); err != nil {
		logger.Warn("could not write PID file", "error", err)
	}
	defer removePIDFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveHTTP {
		addr := cfg.Serve.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv, err := httpapi.New(httpapi.Config{
			Engine:   eng,
			Store:    storeOf(c),
			Defaults: requestDefaults(cfg),
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		successColor.Fprint(cmd.ErrOrStderr(), "✓ ")
		fmt.Fprintf(cmd.ErrOrStderr(), "serving HTTP on http://%s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	var tools []string
	if serveTools != "" {
		for _, t := range strings.Split(serveTools, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tools = append(tools, normalizeToolName(t))
			}
		}
	}

	server, err := mcp.New(mcp.Config{
		Name:     "exdraw",
		Version:  Version,
		Tools:    tools,
		Timeout:  timeout,
		Engine:   eng,
		Cache:    c,
		Defaults: requestDefaults(cfg),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	go func() {
		<-ctx.Done()
		logger.Info("mcp server shutting down")
		if c != nil {
			c.Close()
		}
		removePIDFile()
		os.Exit(0)
	}()

	// stdout carries the MCP protocol
	logger.Info("starting MCP server", "tools", server.ListTools(), "timeout", timeout)
	return server.ServeStdio()
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func getPIDFilePath() (string, error) {
	dir, err := config.FindConfigDir(".")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "serve.pid"), nil
}

func writePIDFile() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return err
	}
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile() {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return
	}
	os.Remove(pidPath)
}

// readPID returns the PID recorded by a running server, or 0.
func readPID() int {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return 0
	}
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

func checkServerStatus(cmd *cobra.Command) error {
	pid := readPID()
	if pid == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Status: not running")
		return nil
	}

	// On Unix, FindProcess always succeeds, so we need to send signal 0 to check
	process, err := os.FindProcess(pid)
	if err != nil || process.Signal(syscall.Signal(0)) != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Status: not running (stale PID file)")
		removePIDFile()
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Status: running (PID %d)\n", pid)
	return nil
}

func stopServer(cmd *cobra.Command) error {
	pid := readPID()
	if pid == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No server running")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil || process.Signal(syscall.SIGTERM) != nil {
		removePIDFile()
		fmt.Fprintln(cmd.OutOrStdout(), "Server already stopped")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stopped server (PID %d)\n", pid)
	return nil
}
