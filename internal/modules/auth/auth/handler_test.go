package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devopsenabler/identity-core/internal/middleware"
	"github.com/devopsenabler/identity-core/internal/pkg/denylist"
	"github.com/devopsenabler/identity-core/internal/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	codec := jwt.NewCodec("test-secret")
	dl := denylist.NewStore(newMemKV())
	svc := NewService(newMemUsers(), codec, dl, 5*time.Minute)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group(""), middleware.Auth(codec, dl))
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEndToEndSessionLifecycle(t *testing.T) {
	r := newTestRouter()

	register := gin.H{"email": "a@b.com", "password": "p", "name": "A"}

	w := doJSON(r, http.MethodPost, "/registration", register, "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "created successfully")

	w = doJSON(r, http.MethodPost, "/registration", register, "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "already registered")

	w = doJSON(r, http.MethodPost, "/login", gin.H{"email": "a@b.com", "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), `"error"`)

	w = doJSON(r, http.MethodPost, "/login", gin.H{"email": "a@b.com", "password": "p"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Status      bool   `json:"status"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.True(t, login.Status)
	require.NotEmpty(t, login.AccessToken)

	w = doJSON(r, http.MethodGet, "/profile", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"logged_in_as":"a@b.com","name":"A"}`, w.Body.String())

	w = doJSON(r, http.MethodDelete, "/logout", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "revoked")

	w = doJSON(r, http.MethodGet, "/profile", nil, login.AccessToken)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "revoked")
}

func TestRegistrationValidation(t *testing.T) {
	r := newTestRouter()

	t.Run("missing body", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/registration", nil, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed email", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/registration", gin.H{"email": "nope", "password": "p", "name": "A"}, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	r := newTestRouter()

	w := doJSON(r, http.MethodGet, "/profile", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodDelete, "/logout", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutIsTerminalForThatTokenOnly(t *testing.T) {
	r := newTestRouter()

	register := gin.H{"email": "a@b.com", "password": "p", "name": "A"}
	w := doJSON(r, http.MethodPost, "/registration", register, "")
	require.Equal(t, http.StatusCreated, w.Code)

	loginOnce := func() string {
		w := doJSON(r, http.MethodPost, "/login", gin.H{"email": "a@b.com", "password": "p"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		var login struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
		return login.AccessToken
	}

	first := loginOnce()
	second := loginOnce()

	w = doJSON(r, http.MethodDelete, "/logout", nil, first)
	require.Equal(t, http.StatusOK, w.Code)

	// Revocation is per token identifier, not per account.
	w = doJSON(r, http.MethodGet, "/profile", nil, first)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, http.MethodGet, "/profile", nil, second)
	require.Equal(t, http.StatusOK, w.Code)
}
