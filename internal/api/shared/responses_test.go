package shared_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/httperr"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/1", nil)
	shared.RespondWithJSON(rr, req, http.StatusOK, map[string]string{"username": "alice"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var env shared.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Empty(t, env.Message)
	assert.Nil(t, env.Error)
	assert.Equal(t, "alice", env.Data.(map[string]any)["username"])

	ts, err := time.Parse(time.RFC3339, env.Timestamp)
	require.NoError(t, err, "timestamp must be RFC3339")
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestRespondWithMessage(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	shared.RespondWithMessage(rr, req, http.StatusCreated, "user created", map[string]int{"id": 1})

	var env shared.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "user created", env.Message)
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/9", nil)
	herr := httperr.NotFound("user not found").WithDetails(map[string]any{"id": 9})
	shared.RespondWithError(rr, req, herr)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var env shared.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "user not found", env.Error.Message)
	assert.Equal(t, httperr.CodeNotFound, env.Error.Code)
	assert.Equal(t, http.StatusNotFound, env.Error.Status)
	assert.NotNil(t, env.Error.Details)
}
