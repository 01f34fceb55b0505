package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/httperr"
	"github.com/zlin-dev/userhub/internal/platform/logger"
	"github.com/zlin-dev/userhub/internal/service/auth"
)

const bearerPrefix = "Bearer "

// Authenticator validates the Bearer token on protected routes and attaches
// the verified claims to the request context. It is applied per-route by the
// registry, not globally, so public routes never pay the validation cost.
func Authenticator(tokens auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				shared.RespondWithError(w, r, httperr.Unauthorized(
					httperr.CodeMissingAuthToken,
					"authorization token required"))
				return
			}

			if !strings.HasPrefix(header, bearerPrefix) {
				shared.RespondWithError(w, r, httperr.Unauthorized(
					httperr.CodeInvalidAuthFormat,
					"authorization header must use the Bearer scheme"))
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if tokenString == "" {
				shared.RespondWithError(w, r, httperr.Unauthorized(
					httperr.CodeInvalidAuthFormat,
					"authorization header must use the Bearer scheme"))
				return
			}

			claims, err := tokens.ValidateToken(r.Context(), tokenString)
			if err != nil {
				logger.FromContext(r.Context()).Warn("token validation failed",
					"error", err,
					"path", r.URL.Path)
				shared.RespondWithError(w, r, classifyTokenError(err))
				return
			}

			ctx := shared.SetClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// classifyTokenError maps token validation failures onto the auth error
// taxonomy. All outcomes are 401s; only the code differs.
func classifyTokenError(err error) *httperr.Error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return httperr.Unauthorized(httperr.CodeTokenExpired, "token has expired")
	case errors.Is(err, auth.ErrMalformedToken):
		return httperr.Unauthorized(httperr.CodeMalformedToken, "token is malformed")
	default:
		return httperr.Unauthorized(httperr.CodeInvalidToken, "token is invalid")
	}
}
