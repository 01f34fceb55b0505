package api

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zlin-dev/userhub/internal/httperr"
	"github.com/zlin-dev/userhub/internal/service/user"
	"github.com/zlin-dev/userhub/internal/store"
)

// mapServiceError translates service and store sentinels into the HTTP error
// taxonomy. Anything unrecognized passes through for the error boundary to
// render as a 500.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return httperr.NotFound("user not found").Wrap(err)
	case errors.Is(err, store.ErrUsernameExists):
		return httperr.Conflict("username already exists").Wrap(err)
	case errors.Is(err, store.ErrEmailExists):
		return httperr.Conflict("email already exists").Wrap(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return httperr.BadRequest(entityMessage(err)).Wrap(err)
	case errors.Is(err, user.ErrInvalidCredentials):
		return httperr.Unauthorized(httperr.CodeInvalidCredentials, "invalid credentials").Wrap(err)
	// Generic sentinel fallbacks so a new entity sentinel still maps to the
	// right status class before it gets a tailored message above.
	case store.IsNotFound(err):
		return httperr.NotFound("resource not found").Wrap(err)
	case store.IsDuplicate(err):
		return httperr.Conflict("resource already exists").Wrap(err)
	default:
		return err
	}
}

// entityMessage strips the sentinel prefix so the client sees only the
// human-readable validation message.
func entityMessage(err error) string {
	msg := err.Error()
	prefix := store.ErrInvalidEntity.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}

// validationError converts validator failures into a 400 with per-field
// details.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return httperr.BadRequest("invalid request payload").Wrap(err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = validationMessage(fe)
	}

	return httperr.BadRequest("validation failed").
		WithDetails(map[string]any{"fields": fields}).
		Wrap(err)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
