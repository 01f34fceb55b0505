// Package routes assembles the HTTP route table from a static registration
// list. Modules declare their routes as descriptors; the registry validates
// them, mounts them on a chi router in deterministic order, and feeds the
// same descriptors to the documentation generator.
package routes

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zlin-dev/userhub/internal/api/middleware"
	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/httperr"
)

// modulePrefixes maps a module name to the path prefix its routes mount
// under. A module with no entry here is invalid and gets skipped.
var modulePrefixes = map[string]string{
	"user":   "/api/users",
	"health": "/",
	"docs":   "/docs",
}

// Rule describes one route: its method, pattern relative to the module
// prefix, a human-readable summary for the generated docs, whether it
// requires authentication, and the handler.
type Rule struct {
	Method  string
	Pattern string
	Summary string
	Auth    bool
	Handler middleware.HandlerFunc
}

// Module is a named group of routes sharing a mount prefix.
type Module struct {
	Name   string
	Routes []Rule
}

// Registry holds the registered modules and the collaborators needed to
// mount them.
type Registry struct {
	log      *slog.Logger
	boundary *middleware.ErrorBoundary
	authn    func(http.Handler) http.Handler

	modules []Module
}

// NewRegistry creates a Registry. The boundary adapts error-returning
// handlers; authn is the middleware applied to Auth-flagged rules.
func NewRegistry(log *slog.Logger, boundary *middleware.ErrorBoundary, authn func(http.Handler) http.Handler) *Registry {
	return &Registry{
		log:      log,
		boundary: boundary,
		authn:    authn,
	}
}

// Register adds a module to the registry. Registration order does not affect
// the final route set; modules are mounted in lexical name order.
func (reg *Registry) Register(m Module) {
	reg.modules = append(reg.modules, m)
}

// Mount validates and mounts every registered module onto r. Invalid modules
// are skipped with a warning, never a startup failure. It returns the
// descriptors actually bound, in mount order, for the documentation
// generator.
func (reg *Registry) Mount(r chi.Router) []BoundRoute {
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		shared.RespondWithError(w, req, httperr.NotFound("resource not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		shared.RespondWithError(w, req, httperr.New(
			http.StatusMethodNotAllowed, httperr.CodeMethodNotAllowed, "method not allowed"))
	})

	modules := make([]Module, len(reg.modules))
	copy(modules, reg.modules)
	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })

	var bound []BoundRoute
	for _, m := range modules {
		prefix, ok := modulePrefixes[m.Name]
		if !ok {
			reg.log.Warn("skipping route module with unknown name",
				"module", m.Name)
			continue
		}

		valid := validRules(m, reg.log)
		if len(valid) == 0 {
			reg.log.Warn("skipping route module with no valid routes",
				"module", m.Name)
			continue
		}

		for _, rule := range valid {
			fullPattern := joinPattern(prefix, rule.Pattern)

			handler := http.Handler(reg.boundary.Handle(rule.Handler))
			if rule.Auth {
				handler = reg.authn(handler)
			}
			r.Method(rule.Method, fullPattern, handler)

			bound = append(bound, BoundRoute{
				Module:  m.Name,
				Method:  rule.Method,
				Pattern: fullPattern,
				Summary: rule.Summary,
				Auth:    rule.Auth,
			})

			reg.log.Debug("route mounted",
				"module", m.Name,
				"method", rule.Method,
				"pattern", fullPattern,
				"auth", rule.Auth)
		}

		reg.log.Info("route module mounted",
			"module", m.Name,
			"prefix", prefix,
			"routes", len(valid))
	}

	return bound
}

// validRules filters out rules missing a method, pattern or handler, logging
// each rejection.
func validRules(m Module, log *slog.Logger) []Rule {
	valid := make([]Rule, 0, len(m.Routes))
	for _, rule := range m.Routes {
		switch {
		case rule.Handler == nil:
			log.Warn("skipping route without handler",
				"module", m.Name, "pattern", rule.Pattern)
		case rule.Method == "":
			log.Warn("skipping route without method",
				"module", m.Name, "pattern", rule.Pattern)
		case rule.Pattern == "" || !strings.HasPrefix(rule.Pattern, "/"):
			log.Warn("skipping route with invalid pattern",
				"module", m.Name, "pattern", rule.Pattern)
		default:
			valid = append(valid, rule)
		}
	}
	return valid
}

// joinPattern combines a mount prefix with a relative pattern without
// producing double or trailing slashes.
func joinPattern(prefix, pattern string) string {
	if prefix == "/" {
		return pattern
	}
	if pattern == "/" {
		return prefix
	}
	return prefix + pattern
}

// BoundRoute is the docs-facing record of a mounted route.
type BoundRoute struct {
	Module  string
	Method  string
	Pattern string
	Summary string
	Auth    bool
}
