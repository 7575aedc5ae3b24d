package handlers

import (
	"net/http"
	"testing"
	"time"

	"safecity-dashboard/be/config"
	"safecity-dashboard/be/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminJWT(t *testing.T, password string) config.JWTConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return config.JWTConfig{
		Secret:            "test-secret",
		Expiry:            "2h",
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
	}
}

func TestLoginDisabled(t *testing.T) {
	env := newTestEnv(t, testOptions{})

	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "admin", "password": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Authentication is disabled", decodeBody(t, w)["error"])

	w = env.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["auth_enabled"])

	w = env.do(t, http.MethodPost, "/api/endpoints", map[string]any{"name": "open", "url": "/x"})
	assert.Equal(t, http.StatusOK, w.Code, "writes are open without an admin password")
}

func TestLoginFlow(t *testing.T) {
	jwtCfg := adminJWT(t, "s3cret")
	env := newTestEnv(t, testOptions{jwt: jwtCfg})

	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "admin"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username and password are required", decodeBody(t, w)["error"])

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "admin", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", decodeBody(t, w)["error"])

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "root", "password": "s3cret"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, map[string]any{"username": "admin", "role": "admin"}, body["user"])

	expiresAt, err := time.Parse(time.RFC3339Nano, body["expires_at"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiresAt, time.Minute)

	claims, err := middleware.ParseToken(token, jwtCfg.Secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["username"])
	assert.Equal(t, "admin", claims["role"])

	w = env.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeBody(t, w)
	assert.Equal(t, true, me["auth_enabled"])
	assert.Equal(t, "admin", me["user"].(map[string]any)["username"])

	w = env.do(t, http.MethodPost, "/api/endpoints", map[string]any{"name": "guarded", "url": "/x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/endpoints", map[string]any{"name": "guarded", "url": "/x"}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/endpoints", nil)
	assert.Equal(t, http.StatusOK, w.Code, "reads stay public")
}
