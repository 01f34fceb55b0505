package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/httperr"
	"github.com/zlin-dev/userhub/internal/service/user"
	"github.com/zlin-dev/userhub/internal/store"
)

// Listing defaults mirror the store's pagination behavior.
const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// UserHandler implements the /api/users endpoints on top of the user service.
type UserHandler struct {
	service *user.Service
}

// NewUserHandler creates a UserHandler backed by the given service.
func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var req CreateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return validationError(err)
	}

	created, err := h.service.Create(r.Context(), user.CreateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return mapServiceError(err)
	}

	shared.RespondWithMessage(w, r, http.StatusCreated, "user created", NewUserResponse(created))
	return nil
}

// List handles GET /api/users with page/limit/search query parameters.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) error {
	page := queryInt(r, "page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	limit := queryInt(r, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	result, err := h.service.FindAll(r.Context(), store.ListFilters{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		return mapServiceError(err)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserListResponse(result.Users, page, limit, result.Total))
	return nil
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(found))
	return nil
}

// Update handles PUT /api/users/{id}. Only the fields present in the payload
// are changed.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return validationError(err)
	}

	updated, err := h.service.Update(r.Context(), id, user.UpdateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		return mapServiceError(err)
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "user updated", NewUserResponse(updated))
	return nil
}

// Delete handles DELETE /api/users/{id} and echoes the removed record.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "user deleted", NewUserResponse(deleted))
	return nil
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return validationError(err)
	}

	token, authed, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return mapServiceError(err)
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "login successful", LoginResponse{
		Token: token,
		User:  NewUserResponse(authed),
	})
	return nil
}

// pathID parses the {id} path parameter as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, httperr.BadRequest("invalid user id").WithDetails(map[string]any{
			"received": raw,
		})
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
