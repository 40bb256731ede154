package graph

import "strings"

// Layer ranks a node into a horizontal band of an architecture diagram.
// Ranks are spaced so node-list hints (api, infra) can slot in between the
// inferred layers; empty bands are compacted by the layout.
type Layer int

const (
	LayerClient  Layer = 0
	LayerEdge    Layer = 10
	LayerAPI     Layer = 20
	LayerService Layer = 30
	LayerBuffer  Layer = 40 // caches and queues
	LayerData    Layer = 50
	LayerInfra   Layer = 60
)

var layerNames = map[Layer]string{
	LayerClient:  "client",
	LayerEdge:    "edge",
	LayerAPI:     "api",
	LayerService: "service",
	LayerBuffer:  "buffer",
	LayerData:    "data",
	LayerInfra:   "infra",
}

func (l Layer) String() string {
	if s, ok := layerNames[l]; ok {
		return s
	}
	return "layer"
}

// ParseLayer reads a node-list layer hint.
func ParseLayer(s string) (Layer, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "external", "frontend":
		return LayerClient, true
	case "edge", "gateway":
		return LayerEdge, true
	case "api":
		return LayerAPI, true
	case "service", "backend":
		return LayerService, true
	case "buffer", "cache", "queue", "messaging":
		return LayerBuffer, true
	case "data", "database", "storage":
		return LayerData, true
	case "infra", "infrastructure", "monitoring":
		return LayerInfra, true
	default:
		return 0, false
	}
}

var clientKeywords = Rule{Keywords: []string{
	"client", "clients", "browser", "mobile", "frontend", "ui", "user", "users",
	"customer", "customers", "ios", "android", "spa", "desktop", "web app", "webapp",
	"web client", "website",
}}

var clientKinds = map[string]bool{"client": true, "frontend": true, "external": true, "user": true}

// InferLayer places a node into a band from its type, with label keywords
// lifting service and generic nodes into the client band.
func InferLayer(label, kindHint string, t NodeType) Layer {
	switch t {
	case TypeLoadBalancer, TypeCDN, TypeGateway:
		return LayerEdge
	case TypeCache, TypeQueue:
		return LayerBuffer
	case TypeDatabase, TypeStorage:
		return LayerData
	case TypeService, TypeGeneric:
		if clientKinds[strings.ToLower(kindHint)] || clientKeywords.matches(Tokenize(label), false) {
			return LayerClient
		}
	}
	return LayerService
}
