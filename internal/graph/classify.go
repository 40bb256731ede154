package graph

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// NodeType is the semantic role inferred from a node's label.
type NodeType string

const (
	TypeDatabase     NodeType = "database"
	TypeCache        NodeType = "cache"
	TypeQueue        NodeType = "queue"
	TypeLoadBalancer NodeType = "load-balancer"
	TypeGateway      NodeType = "gateway"
	TypeCDN          NodeType = "cdn"
	TypeAuth         NodeType = "auth"
	TypeStorage      NodeType = "storage"
	TypeService      NodeType = "service"
	TypeContainer    NodeType = "container"
	TypeFunction     NodeType = "function"
	TypeMonitoring   NodeType = "monitoring"
	TypeGeneric      NodeType = "generic"
)

// Rule maps label keywords to a type. Multi-word keywords match consecutive
// tokens.
type Rule struct {
	Type     NodeType
	Keywords []string
}

// ClassificationRules is evaluated top to bottom; the first match wins.
// Order matters: "Redis Cache Database" is a cache because the cache rule
// precedes the database rule.
var ClassificationRules = []Rule{
	{TypeLoadBalancer, []string{"load balancer", "load balancing", "loadbalancer", "lb", "elb", "alb", "nlb", "haproxy", "nginx", "traefik", "envoy"}},
	{TypeCDN, []string{"cdn", "cloudfront", "akamai", "fastly", "cloudflare"}},
	{TypeGateway, []string{"gateway", "ingress", "proxy", "kong", "apigee"}},
	{TypeAuth, []string{"auth", "oauth", "oauth2", "login", "signin", "sign in", "identity", "iam", "sso", "keycloak", "cognito", "okta", "jwt", "ldap", "permission", "permissions"}},
	{TypeQueue, []string{"queue", "kafka", "rabbitmq", "rabbit", "sqs", "sns", "pubsub", "pub sub", "nats", "celery", "broker", "mq", "activemq", "kinesis", "eventbus", "event bus", "messaging"}},
	{TypeCache, []string{"cache", "redis", "memcached", "memcache", "elasticache", "varnish"}},
	{TypeDatabase, []string{"database", "db", "sql", "nosql", "mssql", "postgres", "mysql", "mariadb", "mongo", "mongodb", "dynamodb", "cassandra", "sqlite", "oracle", "datastore", "firestore", "rds", "aurora", "cockroachdb", "neo4j", "elasticsearch", "opensearch", "bigquery", "snowflake", "redshift", "warehouse"}},
	{TypeStorage, []string{"storage", "s3", "blob", "bucket", "object store", "file system", "filesystem", "gcs", "minio", "disk", "volume", "nas"}},
	{TypeMonitoring, []string{"monitoring", "monitor", "metrics", "prometheus", "grafana", "logging", "tracing", "alerting", "alerts", "observability", "datadog", "sentry", "newrelic", "jaeger", "kibana"}},
	{TypeFunction, []string{"function", "lambda", "serverless", "faas", "worker", "workers", "job", "jobs", "cron", "scheduler"}},
	{TypeContainer, []string{"container", "docker", "kubernetes", "k8s", "pod", "ecs", "eks", "gke", "aks", "cluster", "helm"}},
	{TypeService, []string{"service", "server", "api", "backend", "microservice", "svc", "app", "application", "frontend", "web", "website", "ui", "client", "mobile", "browser", "portal"}},
}

// affixMinLen is the keyword length from which prefix and suffix matches
// count ("postgres" in "postgresql", "service" in "userservice").
const affixMinLen = 4

// Classify returns the type of the first rule matching label, or
// TypeGeneric.
func Classify(label string) NodeType {
	tokens := Tokenize(label)
	for _, r := range ClassificationRules {
		if r.matches(tokens, true) {
			return r.Type
		}
	}
	return TypeGeneric
}

func (r Rule) matches(tokens []string, affix bool) bool {
	for _, kw := range r.Keywords {
		if matchKeyword(tokens, kw, affix) {
			return true
		}
	}
	return false
}

func matchKeyword(tokens []string, keyword string, affix bool) bool {
	words := strings.Fields(keyword)
	if len(words) == 1 {
		for _, t := range tokens {
			if t == keyword {
				return true
			}
			if affix && len(keyword) >= affixMinLen &&
				(strings.HasPrefix(t, keyword) || strings.HasSuffix(t, keyword)) {
				return true
			}
		}
		return false
	}
	for i := 0; i+len(words) <= len(tokens); i++ {
		ok := true
		for j, w := range words {
			if tokens[i+j] != w {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Tokenize case-folds a label and splits it on anything that is not a
// letter or digit.
func Tokenize(label string) []string {
	folded := cases.Fold().String(label)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Role is the flowchart role of a step.
type Role string

const (
	RoleProcess  Role = "process"
	RoleTerminal Role = "terminal"
	RoleDecision Role = "decision"
)

var (
	terminalKeywords = Rule{Keywords: []string{"start", "started", "begin", "end", "finish", "finished", "complete", "completed", "done", "stop"}}
	decisionKeywords = Rule{Keywords: []string{"if", "whether", "decision", "decide", "judge"}}
)

// ClassifyRole returns the flowchart role of a label. A trailing question
// mark always makes a decision; otherwise terminal keywords are checked
// before decision keywords.
func ClassifyRole(label string) Role {
	trimmed := strings.TrimSpace(label)
	if strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "？") {
		return RoleDecision
	}
	tokens := Tokenize(trimmed)
	if terminalKeywords.matches(tokens, false) {
		return RoleTerminal
	}
	if decisionKeywords.matches(tokens, false) {
		return RoleDecision
	}
	return RoleProcess
}

// NodeTypes lists every type in rule order, generic last.
func NodeTypes() []NodeType {
	types := make([]NodeType, 0, len(ClassificationRules)+1)
	for _, r := range ClassificationRules {
		types = append(types, r.Type)
	}
	return append(types, TypeGeneric)
}

// Badges maps each type to the short text shown under its label.
var Badges = map[NodeType]string{
	TypeDatabase:     "[DB]",
	TypeCache:        "[CACHE]",
	TypeQueue:        "[QUEUE]",
	TypeLoadBalancer: "[LB]",
	TypeGateway:      "[GATEWAY]",
	TypeCDN:          "[CDN]",
	TypeAuth:         "[AUTH]",
	TypeStorage:      "[STORAGE]",
	TypeService:      "[SVC]",
	TypeContainer:    "[CONTAINER]",
	TypeFunction:     "[FN]",
	TypeMonitoring:   "[MONITOR]",
}

// Badge returns the badge text for a type; generic has none.
func Badge(t NodeType) string {
	return Badges[t]
}

// kindTypes maps node-list kind hints onto types.
var kindTypes = map[string]NodeType{
	"db":            TypeDatabase,
	"database":      TypeDatabase,
	"cache":         TypeCache,
	"queue":         TypeQueue,
	"broker":        TypeQueue,
	"lb":            TypeLoadBalancer,
	"load-balancer": TypeLoadBalancer,
	"gateway":       TypeGateway,
	"edge":          TypeGateway,
	"cdn":           TypeCDN,
	"auth":          TypeAuth,
	"storage":       TypeStorage,
	"api":           TypeService,
	"service":       TypeService,
	"container":     TypeContainer,
	"function":      TypeFunction,
	"worker":        TypeFunction,
	"monitoring":    TypeMonitoring,
}

// AnnotateOptions controls the classifier stage.
type AnnotateOptions struct {
	Badges bool
}

// Annotate runs the classifier over every node: type, flowchart role,
// layer and badge. Types already set are kept.
func Annotate(g *Graph, kind Kind, opts AnnotateOptions) {
	for i, n := range g.Nodes() {
		if n.Type == "" {
			if t, ok := kindTypes[strings.ToLower(n.KindHint)]; ok {
				n.Type = t
			} else {
				n.Type = Classify(n.Label)
			}
		}

		n.Role = RoleProcess
		if kind == KindFlowchart {
			n.Role = ClassifyRole(n.Label)
		}

		switch {
		case kind == KindMindmap && i == 0:
			n.Layer = LayerClient
		case kind == KindMindmap:
			n.Layer = LayerEdge
		default:
			if l, ok := ParseLayer(n.LayerHint); ok {
				n.Layer = l
			} else {
				n.Layer = InferLayer(n.Label, n.KindHint, n.Type)
			}
		}

		n.Badge = ""
		if opts.Badges {
			n.Badge = Badge(n.Type)
		}
	}
}
