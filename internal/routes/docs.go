package routes

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/zlin-dev/userhub/internal/api/shared"
)

// chiParamPattern matches chi path parameters, including ones carrying a
// regex constraint like {id:[0-9]+}.
var chiParamPattern = regexp.MustCompile(`\{([^}:]+)(?::[^}]*)?\}`)

// DocsHandler serves the OpenAPI document generated from the bound route
// descriptors. The docs route is itself part of the registry, so the
// document is built after mounting, once the full descriptor list exists.
type DocsHandler struct {
	title    string
	version  string
	document map[string]any
}

// NewDocsHandler creates a DocsHandler. SetRoutes must be called with the
// mounted descriptors before the server starts accepting requests.
func NewDocsHandler(title, version string) *DocsHandler {
	return &DocsHandler{
		title:    title,
		version:  version,
		document: buildDocument(title, version, nil),
	}
}

// SetRoutes rebuilds the document from the given descriptors. Not safe to
// call once the server is serving traffic.
func (h *DocsHandler) SetRoutes(bound []BoundRoute) {
	h.document = buildDocument(h.title, h.version, bound)
}

// Serve handles GET /docs.
func (h *DocsHandler) Serve(w http.ResponseWriter, r *http.Request) error {
	shared.RespondWithJSON(w, r, http.StatusOK, h.document)
	return nil
}

func buildDocument(title, version string, bound []BoundRoute) map[string]any {
	paths := make(map[string]map[string]any)

	for _, route := range bound {
		path := chiParamPattern.ReplaceAllString(route.Pattern, "{$1}")
		ops, ok := paths[path]
		if !ok {
			ops = make(map[string]any)
			paths[path] = ops
		}

		op := map[string]any{
			"summary": route.Summary,
			"tags":    []string{route.Module},
		}
		if params := pathParameters(route.Pattern); len(params) > 0 {
			op["parameters"] = params
		}
		if route.Auth {
			op["security"] = []map[string]any{{"bearerAuth": []string{}}}
		}
		ops[strings.ToLower(route.Method)] = op
	}

	// encoding/json sorts map keys, so the serialized document is stable
	// across restarts regardless of registration order.
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   title,
			"version": version,
		},
		"paths": paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"bearerAuth": map[string]any{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
		},
	}
}

func pathParameters(pattern string) []map[string]any {
	matches := chiParamPattern.FindAllStringSubmatch(pattern, -1)
	params := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		params = append(params, map[string]any{
			"name":     m[1],
			"in":       "path",
			"required": true,
			"schema":   map[string]any{"type": "string"},
		})
	}
	return params
}
