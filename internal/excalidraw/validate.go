package excalidraw

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jiatastic/exdraw/internal/graph"
)

// ErrInvalidDocument is returned when an assembled document fails its
// reference checks or the embedded JSON schema. It wraps
// graph.ErrInconsistentGraph.
var ErrInvalidDocument = fmt.Errorf("%w: invalid document", graph.ErrInconsistentGraph)

const schemaURL = "https://exdraw.local/document.schema.json"

//go:embed document.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Validate checks that every id is unique and that every binding,
// container and bound-element reference resolves, then validates the
// serialized document against the embedded schema.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if err := checkReferences(doc); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s", ErrInvalidDocument, firstCause(ve))
		}
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

func checkReferences(doc *Document) error {
	byID := make(map[string]*Element, len(doc.Elements))
	for _, e := range doc.Elements {
		if e.ID == "" {
			return fmt.Errorf("%w: element without id", ErrInvalidDocument)
		}
		if _, dup := byID[e.ID]; dup {
			return fmt.Errorf("%w: duplicate element id %s", ErrInvalidDocument, e.ID)
		}
		byID[e.ID] = e
	}

	var problems []string
	for _, e := range doc.Elements {
		for _, b := range []*Binding{e.StartBinding, e.EndBinding} {
			if b == nil {
				continue
			}
			target, ok := byID[b.ElementID]
			if !ok || !isShape(target.Type) {
				problems = append(problems, fmt.Sprintf("arrow %s binds to missing shape %s", e.ID, b.ElementID))
			}
		}
		if e.ContainerID != nil {
			if _, ok := byID[*e.ContainerID]; !ok {
				problems = append(problems, fmt.Sprintf("text %s has missing container %s", e.ID, *e.ContainerID))
			}
		}
		for _, be := range e.BoundElements {
			target, ok := byID[be.ID]
			if !ok || target.Type != be.Type {
				problems = append(problems, fmt.Sprintf("element %s lists missing bound %s %s", e.ID, be.Type, be.ID))
			}
		}
		if e.Type == TypeArrow && len(e.Points) < 2 {
			problems = append(problems, fmt.Sprintf("arrow %s has fewer than two points", e.ID))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(problems, "; "))
	}
	return nil
}

func isShape(t string) bool {
	switch t {
	case TypeRectangle, TypeDiamond, TypeEllipse:
		return true
	}
	return false
}

// firstCause walks to the deepest validation error, which names the
// offending location.
func firstCause(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}
