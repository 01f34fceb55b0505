package routes

import (
	"github.com/zlin-dev/userhub/internal/api"
)

// UserModule declares the /api/users routes. Creation and login are public;
// mutations require a valid token.
func UserModule(h *api.UserHandler) Module {
	return Module{
		Name: "user",
		Routes: []Rule{
			Post("/login").Summary("Authenticate and receive a token").Handle(h.Login),
			Post("/").Summary("Create a user").Handle(h.Create),
			Get("/").Summary("List users with pagination and search").Handle(h.List),
			Get("/{id}").Summary("Fetch a user by id").Handle(h.Get),
			Put("/{id}").Summary("Update a user").Auth().Handle(h.Update),
			Delete("/{id}").Summary("Delete a user").Auth().Handle(h.Delete),
		},
	}
}

// HealthModule declares the liveness endpoints.
func HealthModule(h *api.HealthHandler) Module {
	return Module{
		Name: "health",
		Routes: []Rule{
			Get("/health").Summary("Liveness check").Handle(h.Check),
			Get("/health/detailed").Summary("Liveness check with runtime detail").Handle(h.Detailed),
		},
	}
}

// DocsModule declares the generated API documentation endpoint.
func DocsModule(h *DocsHandler) Module {
	return Module{
		Name: "docs",
		Routes: []Rule{
			Get("/").Summary("OpenAPI document").Handle(h.Serve),
		},
	}
}
