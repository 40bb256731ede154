package scan

import (
	"strings"

	"github.com/jiatastic/exdraw/internal/parser"
)

// routeMethods are decorator attributes that register an HTTP route.
var routeMethods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true,
	"websocket": true, "route": true, "api_route": true,
}

// Module groups used to detect backend components.
var (
	fastapiModules = []string{"fastapi", "starlette"}
	flaskModules   = []string{"flask"}
	djangoModules  = []string{"django", "rest_framework"}
	sqlModules     = []string{"sqlalchemy", "alembic", "sqlmodel", "psycopg", "psycopg2", "asyncpg", "pymysql"}
	redisModules   = []string{"redis", "aioredis", "upstash_redis"}
	workerModules  = []string{"celery", "dramatiq", "rq"}
	kafkaModules   = []string{"kafka", "confluent_kafka", "aiokafka"}
	authModules    = []string{"jwt", "jose", "passlib", "authlib"}
	httpModules    = []string{"httpx", "requests", "aiohttp"}
)

// FileSignals is what one Python file contributes. It is cached per file
// content hash.
type FileSignals struct {
	Imports     []string `json:"imports"`
	AuthImports bool     `json:"auth_imports,omitempty"`
	Routes      int      `json:"routes,omitempty"`
	Routers     int      `json:"routers,omitempty"`
}

// Signals aggregates the backend patterns found across a project.
type Signals struct {
	FastAPI     bool `json:"fastapi" yaml:"fastapi"`
	Flask       bool `json:"flask" yaml:"flask"`
	Django      bool `json:"django" yaml:"django"`
	SQLAlchemy  bool `json:"sqlalchemy" yaml:"sqlalchemy"`
	Redis       bool `json:"redis" yaml:"redis"`
	Celery      bool `json:"celery" yaml:"celery"`
	Kafka       bool `json:"kafka" yaml:"kafka"`
	Auth        bool `json:"auth" yaml:"auth"`
	HTTPClient  bool `json:"http_client" yaml:"http_client"`
	RouteCount  int  `json:"route_count" yaml:"route_count"`
	RouterCount int  `json:"router_count" yaml:"router_count"`

	ServicesDir     bool `json:"services_dir" yaml:"services_dir"`
	RepositoriesDir bool `json:"repositories_dir" yaml:"repositories_dir"`
	ModelsDir       bool `json:"models_dir" yaml:"models_dir"`
}

// extractSignals reads imports, route decorators and router construction
// from a parsed file.
func extractSignals(r *parser.ParseResult) FileSignals {
	var fs FileSignals
	seen := make(map[string]bool)
	for _, imp := range r.PythonImports() {
		top := imp.Top()
		if !seen[top] {
			seen[top] = true
			fs.Imports = append(fs.Imports, top)
		}
		if imp.Module == "fastapi.security" || strings.HasPrefix(imp.Module, "fastapi.security.") {
			fs.AuthImports = true
		}
	}

	for _, d := range r.PythonDecorators() {
		if d.Call && d.Object != "" && routeMethods[d.Name] {
			fs.Routes++
		}
	}

	for _, callee := range r.PythonCallees() {
		name := callee
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		if name == "APIRouter" || name == "Blueprint" {
			fs.Routers++
		}
	}
	return fs
}

// merge folds one file into the project signals.
func (s *Signals) merge(fs FileSignals) {
	has := func(mods []string) bool {
		for _, m := range mods {
			for _, imp := range fs.Imports {
				if imp == m {
					return true
				}
			}
		}
		return false
	}
	s.FastAPI = s.FastAPI || has(fastapiModules)
	s.Flask = s.Flask || has(flaskModules)
	s.Django = s.Django || has(djangoModules)
	s.SQLAlchemy = s.SQLAlchemy || has(sqlModules)
	s.Redis = s.Redis || has(redisModules)
	s.Celery = s.Celery || has(workerModules)
	s.Kafka = s.Kafka || has(kafkaModules)
	s.Auth = s.Auth || fs.AuthImports || has(authModules)
	s.HTTPClient = s.HTTPClient || has(httpModules)
	s.RouteCount += fs.Routes
	s.RouterCount += fs.Routers
}

// pathHints marks layered-architecture directories from a relative
// directory path.
func (s *Signals) pathHints(rel string) {
	for _, part := range strings.Split(rel, "/") {
		switch strings.ToLower(part) {
		case "services", "service":
			s.ServicesDir = true
		case "repositories", "repository", "repos", "dao":
			s.RepositoriesDir = true
		case "models", "schemas", "entities":
			s.ModelsDir = true
		}
	}
}
