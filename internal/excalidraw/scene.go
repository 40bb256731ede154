package excalidraw

import (
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/jiatastic/exdraw/internal/graph"
)

// elementVersion is the version stamped on every new element.
const elementVersion = 2

// scene collects elements while a document is assembled. Ids are UUIDv5
// values in a namespace derived from the request fingerprint, so the same
// request always yields the same ids.
type scene struct {
	namespace uuid.UUID
	elements  []*Element
	byID      map[string]*Element
}

func newScene(fingerprint string) *scene {
	return &scene{
		namespace: uuid.NewSHA1(uuid.NameSpaceURL, []byte("exdraw:"+fingerprint)),
		byID:      make(map[string]*Element),
	}
}

func (s *scene) id(local string) string {
	return uuid.NewSHA1(s.namespace, []byte(local)).String()
}

func (s *scene) add(e *Element) error {
	if _, dup := s.byID[e.ID]; dup {
		return fmt.Errorf("%w: element id collision %s", graph.ErrInconsistentGraph, e.ID)
	}
	e.Seed = seed(e.ID)
	e.VersionNonce = seed(e.ID + ":nonce")
	e.Version = elementVersion
	e.Opacity = 100
	e.Updated = 1
	if e.GroupIDs == nil {
		e.GroupIDs = []string{}
	}
	s.elements = append(s.elements, e)
	s.byID[e.ID] = e
	return nil
}

func (s *scene) get(id string) *Element {
	return s.byID[id]
}

// seed derives a positive 31-bit seed from an id.
func seed(id string) int64 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int64(h.Sum32()&0x7fffffff) + 1
}

func strPtr(s string) *string {
	return &s
}
