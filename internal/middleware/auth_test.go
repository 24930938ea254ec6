package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/devopsenabler/identity-core/internal/middleware"
	"github.com/devopsenabler/identity-core/internal/pkg/denylist"
	"github.com/devopsenabler/identity-core/internal/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu      sync.Mutex
	entries map[string]time.Time
	failing bool
}

func newMemKV() *memKV { return &memKV{entries: make(map[string]time.Time)} }

func (m *memKV) Set(_ context.Context, key string, _ interface{}, ttl time.Duration) error {
	if m.failing {
		return errors.New("kv unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = time.Now().Add(ttl)
	return nil
}

func (m *memKV) Exists(_ context.Context, key string) (bool, error) {
	if m.failing {
		return false, errors.New("kv unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.entries[key]
	return ok && time.Now().Before(expiry), nil
}

func newProtectedRouter(codec *jwt.Codec, dl *denylist.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.Auth(codec, dl), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": middleware.CurrentSubject(c)})
	})
	return r
}

func doGet(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	codec := jwt.NewCodec("test-secret")
	kv := newMemKV()
	dl := denylist.NewStore(kv)
	r := newProtectedRouter(codec, dl)

	t.Run("missing token", func(t *testing.T) {
		w := doGet(r, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Contains(t, w.Body.String(), "required")
	})

	t.Run("malformed token", func(t *testing.T) {
		w := doGet(r, "Bearer not-a-token")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Contains(t, w.Body.String(), "malformed")
	})

	t.Run("expired token", func(t *testing.T) {
		encoded, _, err := codec.Issue("a@b.com", -time.Second)
		require.NoError(t, err)
		w := doGet(r, "Bearer "+encoded)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Contains(t, w.Body.String(), "expired")
	})

	t.Run("valid token exposes subject", func(t *testing.T) {
		encoded, _, err := codec.Issue("a@b.com", time.Minute)
		require.NoError(t, err)
		w := doGet(r, "Bearer "+encoded)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"subject":"a@b.com"`)
	})

	t.Run("revoked token", func(t *testing.T) {
		encoded, claims, err := codec.Issue("a@b.com", time.Minute)
		require.NoError(t, err)
		require.NoError(t, dl.Revoke(context.Background(), claims.ID, time.Minute))

		w := doGet(r, "Bearer "+encoded)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Contains(t, w.Body.String(), "revoked")
	})

	t.Run("denylist store failure is a server error", func(t *testing.T) {
		encoded, _, err := codec.Issue("a@b.com", time.Minute)
		require.NoError(t, err)

		kv.failing = true
		defer func() { kv.failing = false }()

		w := doGet(r, "Bearer "+encoded)
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestNormalizeToken(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", middleware.NormalizeToken("abc"))
	require.Equal(t, "abc", middleware.NormalizeToken("Bearer abc"))
	require.Equal(t, "abc", middleware.NormalizeToken("bearer abc"))
	require.Equal(t, "abc", middleware.NormalizeToken("  Bearer   abc  "))
	require.Equal(t, "", middleware.NormalizeToken("   "))
}
