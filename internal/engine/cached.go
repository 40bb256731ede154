package engine

import (
	"errors"
	"sort"

	"github.com/jiatastic/exdraw/internal/cache"
	"github.com/jiatastic/exdraw/internal/excalidraw"
	"github.com/jiatastic/exdraw/internal/graph"
)

// Store keeps generated documents by fingerprint. *cache.Cache satisfies it.
type Store interface {
	Get(fingerprint string) ([]byte, *cache.Entry, error)
	Put(e cache.Entry, document []byte) error
}

// GenerateCached returns the stored document for the request when one
// exists and generates and stores it otherwise. Store failures are logged
// and never fail the request. A nil store behaves like Generate.
func (e *Engine) GenerateCached(req Request, store Store) (*Result, bool, error) {
	if store == nil {
		res, err := e.Generate(req)
		return res, false, err
	}

	n, err := e.normalize(req)
	if err != nil {
		return nil, false, err
	}
	fp, err := e.fingerprint(n)
	if err != nil {
		return nil, false, err
	}

	data, _, err := store.Get(fp)
	switch {
	case err == nil:
		doc, derr := excalidraw.Unmarshal(data)
		if derr == nil {
			e.logger.Debug("cache hit", "fingerprint", fp[:12])
			return &Result{
				Fingerprint: fp,
				Document:    doc,
				JSON:        data,
				Summary:     SummarizeDocument(n.kind, n.Theme, n.Style, doc),
			}, true, nil
		}
		e.logger.Warn("discarding unreadable cached document", "fingerprint", fp[:12], "error", derr)
	case !errors.Is(err, cache.ErrNotFound):
		e.logger.Warn("cache lookup failed", "error", err)
	}

	res, err := e.Generate(req)
	if err != nil {
		return nil, false, err
	}
	entry := cache.Entry{
		Fingerprint: res.Fingerprint,
		Kind:        res.Summary.Kind,
		Theme:       res.Summary.Theme,
		Style:       res.Summary.Style,
		Description: n.Description,
		Elements:    len(res.Document.Elements),
	}
	if err := store.Put(entry, res.JSON); err != nil {
		e.logger.Warn("cache store failed", "error", err)
	}
	return res, false, nil
}

// SummarizeDocument rebuilds a summary from the metadata the assembler
// leaves on shapes and arrows.
func SummarizeDocument(kind graph.Kind, theme, style string, doc *excalidraw.Document) Summary {
	s := Summary{
		Kind:      string(kind),
		Theme:     theme,
		Style:     style,
		Elements:  doc.Count(),
		NodeTypes: make(map[string]int),
	}
	layers := make(map[graph.Layer]bool)
	for _, el := range doc.Elements {
		if el.CustomData == nil {
			continue
		}
		switch {
		case el.Type == excalidraw.TypeArrow && el.CustomData.EdgeID != "":
			s.Edges++
		case el.CustomData.NodeID != "":
			s.Nodes++
			s.NodeTypes[el.CustomData.InferredType]++
			if l, ok := graph.ParseLayer(el.CustomData.Layer); ok {
				layers[l] = true
			}
		}
	}
	if kind == graph.KindArchitecture {
		ordered := make([]graph.Layer, 0, len(layers))
		for l := range layers {
			ordered = append(ordered, l)
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
		for _, l := range ordered {
			s.Layers = append(s.Layers, l.String())
		}
	}
	return s
}
