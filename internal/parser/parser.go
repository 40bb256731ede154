// Package parser reads Python sources for the project scanner and parses
// them with tree-sitter.
package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
)

// IsPython reports whether path names a Python source or stub file.
func IsPython(path string) bool {
	switch filepath.Ext(path) {
	case ".py", ".pyi":
		return true
	}
	return false
}

// Source is a file read from disk together with its content hash.
type Source struct {
	// Path is the name errors and caches refer to, usually relative to
	// the scanned root.
	Path string
	Data []byte
	// Hash is the hex SHA-256 of Data.
	Hash string
}

// ReadSource reads the file at path and records it under name.
func ReadSource(path, name string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: name, Err: err}
	}
	sum := sha256.Sum256(data)
	return &Source{Path: name, Data: data, Hash: hex.EncodeToString(sum[:])}, nil
}

// Parser wraps a tree-sitter Python parser. It is not safe for concurrent
// use.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult holds a parse tree and the source it came from.
type ParseResult struct {
	Tree     *sitter.Tree
	Root     *sitter.Node
	Source   []byte
	FilePath string
}

// NewParser creates a Python parser.
func NewParser() (*Parser, error) {
	p, err := newPythonParser()
	if err != nil {
		return nil, err
	}
	return &Parser{parser: p}, nil
}

// Parse parses in-memory source.
func (p *Parser) Parse(source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, &ParseError{Message: err.Error()}
	}
	return &ParseResult{
		Tree:   tree,
		Root:   tree.RootNode(),
		Source: source,
	}, nil
}

// ParseSource parses src and locates errors under src.Path. A tree with
// syntax errors is returned as a *ParseError.
func (p *Parser) ParseSource(src *Source) (*ParseResult, error) {
	result, err := p.Parse(src.Data)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = src.Path
		}
		return nil, err
	}
	result.FilePath = src.Path
	if pe := result.FirstError(); pe != nil {
		result.Close()
		return nil, pe
	}
	return result, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Close releases the parse tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// FirstError returns a ParseError locating the first syntax error, or nil.
func (r *ParseResult) FirstError() *ParseError {
	var found *sitter.Node
	r.WalkNodes(func(n *sitter.Node) bool {
		if n.IsError() || n.IsMissing() {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	pos := found.StartPoint()
	return &ParseError{
		Message: "syntax error",
		File:    r.FilePath,
		Line:    pos.Row + 1,
		Column:  pos.Column + 1,
	}
}

// WalkNodes visits the tree depth-first until visit returns false.
func (r *ParseResult) WalkNodes(visit func(*sitter.Node) bool) {
	if r.Root != nil {
		walk(r.Root, visit)
	}
}

func walk(n *sitter.Node, visit func(*sitter.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if !walk(n.Child(i), visit) {
			return false
		}
	}
	return true
}

// FindNodesByType returns every node of the given grammar type in
// document order.
func (r *ParseResult) FindNodesByType(nodeType string) []*sitter.Node {
	var nodes []*sitter.Node
	r.WalkNodes(func(n *sitter.Node) bool {
		if n.Type() == nodeType {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

// NodeText returns the source text of n.
func (r *ParseResult) NodeText(n *sitter.Node) string {
	if n == nil || r.Source == nil {
		return ""
	}
	return n.Content(r.Source)
}
