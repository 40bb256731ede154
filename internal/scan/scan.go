// Package scan walks a Python backend project and turns the components it
// detects into a node list for the architecture diagram.
package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jiatastic/exdraw/internal/exclude"
	"github.com/jiatastic/exdraw/internal/graph"
	"github.com/jiatastic/exdraw/internal/parser"
)

// Focus values.
const (
	FocusBackend = "backend"
	FocusAll     = "all"
)

// maxTopImports bounds the import list recorded in the node list meta.
const maxTopImports = 30

// SignalCache stores per-file signals keyed by path and content hash.
// *cache.Cache satisfies it.
type SignalCache interface {
	FileSignals(path, hash string) ([]byte, bool, error)
	SetFileSignals(path, hash string, signals []byte) error
}

// Options configures a scan.
type Options struct {
	// Focus is "backend" (default) or "all".
	Focus string
	// Exclude holds extra directory patterns to skip.
	Exclude []string
	Cache   SignalCache
	Logger  *slog.Logger
}

// Result is the outcome of a project scan.
type Result struct {
	Root       string
	Files      int
	Skipped    int
	CacheHits  int
	Signals    Signals
	TopImports []string
	NodeList   *graph.NodeList
}

// Project scans the Python files under root.
func Project(root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %s: not a directory", root)
	}
	focus := opts.Focus
	if focus == "" {
		focus = FocusBackend
	}
	if focus != FocusBackend && focus != FocusAll {
		return nil, fmt.Errorf("unknown scan focus %q (want %s or %s)", focus, FocusBackend, FocusAll)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	auto := exclude.DetectAutoExcludes(root)
	for _, dir := range auto.Directories {
		logger.Debug("auto-excluded directory", "dir", dir, "reason", auto.Reasons[dir])
	}
	matcher := exclude.NewMatcher(opts.Exclude, auto)

	p, err := parser.NewParser()
	if err != nil {
		return nil, err
	}
	defer p.Close()

	res := &Result{Root: root}
	imports := make(map[string]struct{})

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && matcher.SkipDir(rel) {
				return filepath.SkipDir
			}
			if rel != "." {
				res.Signals.pathHints(rel)
			}
			return nil
		}
		if !parser.IsPython(path) {
			return nil
		}

		fsig, hit, ok := fileSignals(p, path, rel, opts.Cache, logger)
		if !ok {
			res.Skipped++
			return nil
		}
		if hit {
			res.CacheHits++
		}
		res.Files++
		res.Signals.merge(fsig)
		for _, imp := range fsig.Imports {
			imports[imp] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	res.TopImports = topImports(imports)
	res.NodeList = buildNodeList(res, focus)
	logger.Info("scanned project",
		"root", root,
		"files", res.Files,
		"skipped", res.Skipped,
		"cache_hits", res.CacheHits,
		"nodes", len(res.NodeList.Nodes))
	return res, nil
}

// fileSignals parses one file, consulting the cache first. ok is false for
// unreadable or unparseable files.
func fileSignals(p *parser.Parser, path, rel string, c SignalCache, logger *slog.Logger) (fsig FileSignals, hit, ok bool) {
	src, err := parser.ReadSource(path, rel)
	if err != nil {
		logger.Warn("skipping unreadable file", "error", err)
		return fsig, false, false
	}

	if c != nil {
		if raw, found, err := c.FileSignals(rel, src.Hash); err != nil {
			logger.Debug("signal cache lookup failed", "file", rel, "error", err)
		} else if found && json.Unmarshal(raw, &fsig) == nil {
			return fsig, true, true
		}
	}

	result, err := p.ParseSource(src)
	if err != nil {
		logger.Warn("skipping unparseable file", "error", err)
		return fsig, false, false
	}
	defer result.Close()

	fsig = extractSignals(result)
	if c != nil {
		if raw, err := json.Marshal(fsig); err == nil {
			if err := c.SetFileSignals(rel, src.Hash, raw); err != nil {
				logger.Debug("signal cache store failed", "file", rel, "error", err)
			}
		}
	}
	return fsig, false, true
}

// topImports returns the first imported top-level modules in name order.
func topImports(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > maxTopImports {
		names = names[:maxTopImports]
	}
	return names
}

// buildNodeList maps detected signals onto architecture nodes.
func buildNodeList(res *Result, focus string) *graph.NodeList {
	s := res.Signals
	l := &graph.NodeList{
		Meta: map[string]any{
			"signals":     s,
			"file_count":  res.Files,
			"top_imports": res.TopImports,
			"focus":       focus,
		},
	}
	add := func(key, label, kind, layer string) {
		l.Nodes = append(l.Nodes, graph.ListNode{Key: key, Label: label, Kind: kind, Layer: layer})
	}
	link := func(src, dst, label string) {
		l.Edges = append(l.Edges, graph.ListEdge{Source: src, Target: dst, Label: label})
	}

	add("client", "Client", "external", "client")
	add("api", apiLabel(s), "api", "api")
	link("client", "api", "HTTP")

	if s.Auth {
		add("auth", "Auth / Security", "auth", "edge")
		link("api", "auth", "verify")
	}

	if focus == FocusAll {
		if s.ServicesDir {
			add("services", "Services", "service", "service")
			link("api", "services", "")
		}
		if s.RepositoriesDir {
			add("repositories", "Repositories", "service", "service")
			src := "api"
			if s.ServicesDir {
				src = "services"
			}
			link(src, "repositories", "")
		}
		if s.HTTPClient {
			add("external_apis", "External APIs", "external", "infra")
			link("api", "external_apis", "HTTP")
		}
	}

	dataSource := "api"
	if focus == FocusAll && s.RepositoriesDir {
		dataSource = "repositories"
	}
	if s.SQLAlchemy {
		add("db", "Database (SQLAlchemy)", "db", "data")
		link(dataSource, "db", "SQL")
	}
	if s.Redis {
		add("cache", "Redis Cache", "cache", "cache")
		link("api", "cache", "")
	}
	if s.Celery {
		add("workers", "Celery Workers", "worker", "queue")
		link("api", "workers", "enqueue")
		if s.SQLAlchemy {
			link("workers", "db", "")
		}
	}
	if s.Kafka {
		add("kafka", "Kafka", "queue", "queue")
		link("api", "kafka", "publish")
	}
	return l
}

func apiLabel(s Signals) string {
	switch {
	case s.FastAPI && s.RouteCount > 0:
		return fmt.Sprintf("FastAPI (%d routes)", s.RouteCount)
	case s.FastAPI:
		return "FastAPI"
	case s.Flask:
		return "Flask API"
	case s.Django:
		return "Django"
	default:
		return "API Layer"
	}
}
