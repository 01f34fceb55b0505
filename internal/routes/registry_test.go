package routes_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlin-dev/userhub/internal/api/middleware"
	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/routes"
)

func newTestRegistry(t *testing.T) (*routes.Registry, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	boundary := middleware.NewErrorBoundary(false)
	passthrough := func(next http.Handler) http.Handler { return next }
	return routes.NewRegistry(log, boundary, passthrough), &buf
}

func okHandler(body string) middleware.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"from": body})
		return nil
	}
}

func TestRegistry_MountsModulesInLexicalOrder(t *testing.T) {
	t.Parallel()
	reg, _ := newTestRegistry(t)

	// Registered out of order on purpose.
	reg.Register(routes.Module{Name: "user", Routes: []routes.Rule{
		routes.Get("/").Summary("list").Handle(okHandler("user")),
	}})
	reg.Register(routes.Module{Name: "health", Routes: []routes.Rule{
		routes.Get("/health").Summary("check").Handle(okHandler("health")),
	}})

	bound := reg.Mount(chi.NewRouter())

	require.Len(t, bound, 2)
	assert.Equal(t, "health", bound[0].Module)
	assert.Equal(t, "user", bound[1].Module)
}

func TestRegistry_FinalRouteSetIsOrderIndependent(t *testing.T) {
	t.Parallel()

	build := func(names []string) map[string]bool {
		reg, _ := newTestRegistry(t)
		for _, name := range names {
			reg.Register(routes.Module{Name: name, Routes: []routes.Rule{
				routes.Get("/").Summary("root").Handle(okHandler(name)),
			}})
		}
		set := make(map[string]bool)
		for _, b := range reg.Mount(chi.NewRouter()) {
			set[b.Method+" "+b.Pattern] = true
		}
		return set
	}

	forward := build([]string{"docs", "health", "user"})
	reversed := build([]string{"user", "health", "docs"})
	assert.Equal(t, forward, reversed)
}

func TestRegistry_SkipsInvalidModules(t *testing.T) {
	t.Parallel()

	t.Run("UnknownModuleName", func(t *testing.T) {
		t.Parallel()
		reg, buf := newTestRegistry(t)
		reg.Register(routes.Module{Name: "billing", Routes: []routes.Rule{
			routes.Get("/").Handle(okHandler("billing")),
		}})
		reg.Register(routes.Module{Name: "health", Routes: []routes.Rule{
			routes.Get("/health").Handle(okHandler("health")),
		}})

		bound := reg.Mount(chi.NewRouter())

		require.Len(t, bound, 1, "unknown module must be skipped, valid one mounted")
		assert.Equal(t, "health", bound[0].Module)
		assert.Contains(t, buf.String(), "unknown name")
	})

	t.Run("ModuleWithNoValidRoutes", func(t *testing.T) {
		t.Parallel()
		reg, buf := newTestRegistry(t)
		reg.Register(routes.Module{Name: "user", Routes: []routes.Rule{
			{Method: http.MethodGet, Pattern: "/"}, // no handler
			{Method: "", Pattern: "/x", Handler: okHandler("x")},
			{Method: http.MethodGet, Pattern: "no-slash", Handler: okHandler("y")},
		}})

		bound := reg.Mount(chi.NewRouter())

		assert.Empty(t, bound)
		assert.Contains(t, buf.String(), "no valid routes")
	})
}

func TestRegistry_DispatchAndAuthWrapping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	boundary := middleware.NewErrorBoundary(false)

	authApplied := false
	authn := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authApplied = true
			next.ServeHTTP(w, r)
		})
	}

	reg := routes.NewRegistry(log, boundary, authn)
	reg.Register(routes.Module{Name: "user", Routes: []routes.Rule{
		routes.Get("/{id}").Summary("fetch").Handle(okHandler("public")),
		routes.Put("/{id}").Summary("update").Auth().Handle(okHandler("protected")),
	}})

	r := chi.NewRouter()
	reg.Mount(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/7", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, authApplied, "public route must not pass through authn")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/users/7", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, authApplied, "auth-flagged route must pass through authn")
}

func TestDocsHandler_BuildsOpenAPIDocument(t *testing.T) {
	t.Parallel()
	reg, _ := newTestRegistry(t)

	docs := routes.NewDocsHandler("userhub", "1.0.0")
	reg.Register(routes.DocsModule(docs))
	reg.Register(routes.Module{Name: "user", Routes: []routes.Rule{
		routes.Get("/{id}").Summary("Fetch a user by id").Handle(okHandler("get")),
		routes.Put("/{id}").Summary("Update a user").Auth().Handle(okHandler("put")),
	}})

	r := chi.NewRouter()
	docs.SetRoutes(reg.Mount(r))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var env shared.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	doc, ok := env.Data.(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "3.0.3", doc["openapi"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, paths, "/api/users/{id}")
	require.Contains(t, paths, "/docs")

	userPath, ok := paths["/api/users/{id}"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, userPath, "get")
	assert.Contains(t, userPath, "put")

	putOp, ok := userPath["put"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, putOp, "security", "auth routes must declare the bearer scheme")
	getOp, ok := userPath["get"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, getOp, "security")
	assert.Equal(t, "Fetch a user by id", getOp["summary"])
}
