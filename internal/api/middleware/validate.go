package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/httperr"
)

// supportedContentTypes is the whitelist for mutating requests.
var supportedContentTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// ContentValidator rejects requests whose method/Content-Type/body-size
// combination is disallowed before they reach business logic. Failures are
// terminal responses, never panics.
func ContentValidator(maxBodyBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				contentType := r.Header.Get("Content-Type")
				if contentType == "" {
					shared.RespondWithError(w, r, httperr.New(
						http.StatusBadRequest,
						httperr.CodeMissingContentType,
						"missing Content-Type header",
					).WithDetails(map[string]any{
						"supported": supportedContentTypes,
					}))
					return
				}

				if !isSupported(contentType) {
					shared.RespondWithError(w, r, httperr.New(
						http.StatusUnsupportedMediaType,
						httperr.CodeUnsupportedContentType,
						"unsupported Content-Type",
					).WithDetails(map[string]any{
						"received":  contentType,
						"supported": supportedContentTypes,
					}))
					return
				}
			}

			if r.ContentLength > maxBodyBytes {
				shared.RespondWithError(w, r, httperr.New(
					http.StatusRequestEntityTooLarge,
					httperr.CodePayloadTooLarge,
					"request body too large",
				).WithDetails(map[string]any{
					"received":    fmt.Sprintf("%d bytes", r.ContentLength),
					"max_allowed": fmt.Sprintf("%d bytes", maxBodyBytes),
				}))
				return
			}

			// Guard against bodies larger than their declared length.
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSupported(contentType string) bool {
	for _, supported := range supportedContentTypes {
		if strings.Contains(contentType, supported) {
			return true
		}
	}
	return false
}
