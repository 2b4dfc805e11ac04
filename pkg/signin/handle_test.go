package signin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(f *fixture) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(f.service).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignInHandler_Success(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user@example.com", "secret123", futureTime(time.Hour), false, true)
	router := newTestRouter(f)

	rec := postJSON(t, router, "/sign-in", SignInRequest{Email: "user@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result SignInResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Session.AccessToken)
	assert.False(t, result.FirstConnection)
	require.NotNil(t, result.Profile)
}

func TestSignInHandler_FirstConnection(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "new@example.com", "secret123", futureTime(time.Hour), true, true)
	router := newTestRouter(f)

	rec := postJSON(t, router, "/sign-in", SignInRequest{Email: "new@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result SignInResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.FirstConnection)
	assert.Nil(t, result.Profile)
}

func TestSignInHandler_StatusCodes(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user@example.com", "secret123", futureTime(time.Hour), false, true)
	f.seedUser(t, "late@example.com", "secret123", futureTime(-time.Hour), true, true)
	router := newTestRouter(f)

	tests := []struct {
		name string
		req  SignInRequest
		want int
	}{
		{"wrong password", SignInRequest{Email: "user@example.com", Password: "wrong"}, http.StatusUnauthorized},
		{"not invited", SignInRequest{Email: "nobody@example.com", Password: "whatever"}, http.StatusForbidden},
		{"expired invitation", SignInRequest{Email: "late@example.com", Password: "secret123"}, http.StatusForbidden},
		{"missing fields", SignInRequest{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/sign-in", tt.req)
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSignInHandler_MalformedBody(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/sign-in", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
